package typegraph

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	fuelindexer "github.com/luizstacio/fuel-indexer"
)

// Parse parses schema text (prefixed internally with BaseSchema) into a
// Document. It fails with SchemaParse when the text doesn't conform to the
// type definition language, or MissingQueryRoot when no
// "schema { query: X }" declaration is present.
func Parse(text string) (*Document, error) {
	schema, err := gqlparser.LoadSchema(
		&ast.Source{Name: "base.graphql", Input: BaseSchema},
		&ast.Source{Name: "schema.graphql", Input: text},
	)
	if err != nil {
		return nil, fuelindexer.NewSchemaCompileError(fuelindexer.SchemaParse, "", "")
	}
	if schema.Query == nil {
		return nil, fuelindexer.NewSchemaCompileError(fuelindexer.MissingQueryRoot, "", "")
	}

	doc := &Document{QueryRoot: schema.Query.Name}
	var defs []*ast.Definition
	for _, def := range schema.Types {
		if def.BuiltIn || def.Kind != ast.Object {
			continue
		}
		if IsPrimitive(def.Name) {
			continue
		}
		defs = append(defs, def)
	}
	// schema.Types is a map; restore declaration order from source positions.
	sort.Slice(defs, func(i, j int) bool { return defs[i].Position.Start < defs[j].Position.Start })
	for _, def := range defs {
		td := &TypeDef{Name: def.Name}
		for _, f := range def.Fields {
			fd := &FieldDef{
				Name: f.Name,
				Type: fromASTType(f.Type),
			}
			if dir := f.Directives.ForName("unique"); dir != nil {
				fd.Unique = true
			}
			if dir := f.Directives.ForName("indexed"); dir != nil {
				fd.Indexed = true
			}
			if dir := f.Directives.ForName("join"); dir != nil {
				if arg := dir.Arguments.ForName("on"); arg != nil && arg.Value != nil {
					fd.HasJoinOn = true
					fd.JoinOn = arg.Value.Raw
				}
			}
			td.Fields = append(td.Fields, fd)
		}
		doc.Types = append(doc.Types, td)
	}
	return doc, nil
}

func fromASTType(t *ast.Type) *TypeRef {
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		return &TypeRef{Kind: KindNonNull, Of: fromASTType(&inner)}
	}
	if t.Elem != nil {
		return &TypeRef{Kind: KindList, Of: fromASTType(t.Elem)}
	}
	return &TypeRef{Kind: KindNamed, Name: t.NamedType}
}

// TypeID derives a stable identifier for a type within a namespace by
// hashing "namespace:typeName" with SHA-256, truncated to 64 bits. It
// mirrors fuel-indexer-lib's sha256_digest-based type-id derivation.
func TypeID(namespace, typeName string) uint64 {
	sum := sha256.Sum256([]byte(namespace + ":" + typeName))
	return binary.BigEndian.Uint64(sum[:8])
}
