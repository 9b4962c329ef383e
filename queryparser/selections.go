// Package queryparser lowers query text into a selection tree rooted at
// the schema's query type, resolving fragment spreads and field/argument
// names against a schema reflection, without leaking gqlparser's AST
// types past this package.
package queryparser

// Selections is a resolved, fragment-free selection tree.
type Selections struct {
	Root  string
	Items []*Selection
}

// Selection is one resolved field selection. Leaf selections have a nil
// SubSelections; composite selections have a non-nil EntityType naming
// the GraphQL type of the nested object.
type Selection struct {
	Name          string
	Alias         string
	Arguments     map[string]any
	EntityType    string
	SubSelections []*Selection
}

// Key returns the alias if the user supplied one, else the field name.
func (s *Selection) Key() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// IsLeaf reports whether the selection has no nested fields.
func (s *Selection) IsLeaf() bool { return len(s.SubSelections) == 0 }
