package queryparser

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	fuelindexer "github.com/luizstacio/fuel-indexer"
	"github.com/luizstacio/fuel-indexer/schema/store"
)

// recognizedArguments is the vocabulary of spec.md §4.5's
// argument/filter lowering: any other argument name is rejected here so
// the query compiler never has to guard against it.
var recognizedArguments = map[string]bool{
	"filter": true,
	"order":  true,
	"first":  true,
	"last":   true,
	"offset": true,
	"after":  true,
	"before": true,
	"id":     true,
}

type resolver struct {
	refl *store.Reflection
}

// Parse lowers query text into a Selections tree rooted at root's query
// type, resolving field names, argument names, and fragment spreads
// against root.
func Parse(text string, root *store.Reflection) (*Selections, error) {
	doc, gqlErr := parser.ParseQuery(&ast.Source{Name: "query.graphql", Input: text})
	if gqlErr != nil {
		return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnableToParseValue, "", "", "")
	}

	var op *ast.OperationDefinition
	for _, o := range doc.Operations {
		if o.Operation != ast.Query {
			return nil, fuelindexer.NewQueryCompileError(fuelindexer.OperationNotSupported, "", "", "")
		}
		op = o
		break
	}
	if op == nil {
		return &Selections{Root: root.Query}, nil
	}

	fragments := make(map[string]*ast.FragmentDefinition, len(doc.Fragments))
	for _, f := range doc.Fragments {
		fragments[f.Name] = f
	}

	r := &resolver{refl: root}
	items, err := r.lowerSet(op.SelectionSet, root.Query, fragments, map[string]bool{})
	if err != nil {
		return nil, err
	}
	return &Selections{Root: root.Query, Items: items}, nil
}

func (r *resolver) lowerSet(set ast.SelectionSet, contextType string, fragments map[string]*ast.FragmentDefinition, expanding map[string]bool) ([]*Selection, error) {
	var out []*Selection
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			children, err := r.lowerField(s, contextType, fragments, expanding)
			if err != nil {
				return nil, err
			}
			out = append(out, children)

		case *ast.FragmentSpread:
			if expanding[s.Name] {
				return nil, fuelindexer.NewQueryCompileError(fuelindexer.FragmentResolverFailed, "", "", "")
			}
			frag, ok := fragments[s.Name]
			if !ok {
				return nil, fuelindexer.NewQueryCompileError(fuelindexer.FragmentResolverFailed, "", "", "")
			}
			if frag.TypeCondition != contextType {
				return nil, fuelindexer.NewQueryCompileError(fuelindexer.InvalidFragmentSelection, frag.TypeCondition, "", "")
			}
			expanding[s.Name] = true
			sub, err := r.lowerSet(frag.SelectionSet, contextType, fragments, expanding)
			delete(expanding, s.Name)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)

		case *ast.InlineFragment:
			sub, err := r.lowerSet(s.SelectionSet, contextType, fragments, expanding)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}
	return out, nil
}

func (r *resolver) lowerField(f *ast.Field, contextType string, fragments map[string]*ast.FragmentDefinition, expanding map[string]bool) (*Selection, error) {
	fieldType, ok := r.refl.FieldType(contextType, f.Name)
	if !ok {
		return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnrecognizedField, contextType, f.Name, "")
	}

	args, err := r.lowerArgs(f, contextType)
	if err != nil {
		return nil, err
	}

	sel := &Selection{
		Name:      f.Name,
		Alias:     f.Alias,
		Arguments: args,
	}
	if f.Alias == f.Name {
		sel.Alias = ""
	}

	if len(f.SelectionSet) > 0 {
		sel.EntityType = fieldType
		children, err := r.lowerSet(f.SelectionSet, fieldType, fragments, expanding)
		if err != nil {
			return nil, err
		}
		sel.SubSelections = children
	}

	return sel, nil
}

func (r *resolver) lowerArgs(f *ast.Field, contextType string) (map[string]any, error) {
	if len(f.Arguments) == 0 {
		return nil, nil
	}
	args := make(map[string]any, len(f.Arguments))
	for _, a := range f.Arguments {
		if !recognizedArguments[a.Name] {
			return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnrecognizedArgument, contextType, f.Name, a.Name)
		}
		v, err := a.Value.Value(nil)
		if err != nil {
			return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnableToParseValue, contextType, f.Name, a.Name)
		}
		args[a.Name] = v
	}
	return args, nil
}
