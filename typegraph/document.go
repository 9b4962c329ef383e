package typegraph

// Document is an ordered sequence of TypeDefs parsed from schema text,
// plus the name of the distinguished query root type.
type Document struct {
	QueryRoot string
	Types     []*TypeDef
}

// TypeDef defines one object type: a unique name and its ordered fields.
type TypeDef struct {
	Name   string
	Fields []*FieldDef
}

// FieldDef defines one field of a TypeDef: its name, its resolved type
// reference, and any directives attached to it.
type FieldDef struct {
	Name       string
	Type       *TypeRef
	Unique     bool
	Indexed    bool
	JoinOn     string // empty unless @join(on: X) is present
	HasJoinOn  bool
}

// TypeRefKind discriminates the three shapes a TypeRef can take.
type TypeRefKind int

const (
	KindNamed TypeRefKind = iota
	KindList
	KindNonNull
)

// TypeRef is Name | [TypeRef] | TypeRef!.
type TypeRef struct {
	Kind TypeRefKind
	Name string   // valid when Kind == KindNamed
	Of   *TypeRef // valid when Kind == KindList or KindNonNull
}

// NamedType returns the innermost named type this TypeRef wraps.
func (t *TypeRef) NamedType() string {
	for t.Kind != KindNamed {
		t = t.Of
	}
	return t.Name
}

// IsList reports whether a List(...) wrapper occurs anywhere in t.
func (t *TypeRef) IsList() bool {
	switch t.Kind {
	case KindList:
		return true
	case KindNonNull:
		return t.Of.IsList()
	default:
		return false
	}
}

// Type looks up a TypeDef by name, returning nil if not found.
func (d *Document) Type(name string) *TypeDef {
	for _, t := range d.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Field looks up a FieldDef by name within this TypeDef, returning nil
// if not found.
func (t *TypeDef) Field(name string) *FieldDef {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}
