package typegraph

// BaseSchema declares the indexer's built-in scalar types. It is parsed
// ahead of every user schema so user fields can reference these names
// without redeclaring them, mirroring fuel-indexer-schema's BASE_SCHEMA.
// ID and Boolean are not declared here: gqlparser's prelude already
// defines them and rejects a redeclaration.
const BaseSchema = `
directive @unique on FIELD_DEFINITION
directive @indexed on FIELD_DEFINITION
directive @join(on: String!) on FIELD_DEFINITION

scalar Address
scalar AssetId
scalar ContractId
scalar Bytes4
scalar Bytes8
scalar Bytes32
scalar Bytes64
scalar Int8
scalar Int16
scalar Int32
scalar Int64
scalar Int128
scalar UInt8
scalar UInt16
scalar UInt32
scalar UInt64
scalar UInt128
scalar UInt256
scalar Charfield
scalar Json
scalar Timestamp
scalar Signature
scalar Tai64Timestamp
`

// Primitives is the set of leaf scalar type names declared by BaseSchema,
// plus the prelude's ID and Boolean.
var Primitives = map[string]bool{
	"ID": true, "Address": true, "AssetId": true, "ContractId": true,
	"Bytes4": true, "Bytes8": true, "Bytes32": true, "Bytes64": true,
	"Int8": true, "Int16": true, "Int32": true, "Int64": true, "Int128": true,
	"UInt8": true, "UInt16": true, "UInt32": true, "UInt64": true, "UInt128": true, "UInt256": true,
	"Boolean": true, "Charfield": true, "Json": true, "Timestamp": true,
	"Signature": true, "Tai64Timestamp": true,
}

// IsPrimitive reports whether name is one of the built-in scalar types.
func IsPrimitive(name string) bool {
	return Primitives[name]
}
