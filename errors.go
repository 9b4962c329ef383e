// Package fuelindexer implements the query-compilation and
// indexing-execution core of a blockchain indexer: a schema compiler, a
// query compiler, and an ingestion/handler runtime, tied together by a
// persisted metadata store.
package fuelindexer

import (
	"errors"
	"fmt"
)

// ErrKilled is returned by an ingestion scheduler loop after its kill flag
// has been observed set.
var ErrKilled = errors.New("fuelindexer: indexer killed")

// SchemaCompileError reports a failure while lowering a type-graph document
// into DDL (C1/C2).
type SchemaCompileError struct {
	Kind  SchemaCompileErrorKind
	Type  string
	Field string
}

// SchemaCompileErrorKind enumerates the ways a schema can fail to compile.
type SchemaCompileErrorKind string

const (
	SchemaParse           SchemaCompileErrorKind = "SchemaParse"
	MissingQueryRoot       SchemaCompileErrorKind = "MissingQueryRoot"
	ListFieldUnsupported   SchemaCompileErrorKind = "ListFieldUnsupported"
	UnresolvedType         SchemaCompileErrorKind = "UnresolvedType"
)

func (e *SchemaCompileError) Error() string {
	switch {
	case e.Type != "" && e.Field != "":
		return fmt.Sprintf("fuelindexer: schema compile: %s: %s.%s", e.Kind, e.Type, e.Field)
	case e.Type != "":
		return fmt.Sprintf("fuelindexer: schema compile: %s: %s", e.Kind, e.Type)
	default:
		return fmt.Sprintf("fuelindexer: schema compile: %s", e.Kind)
	}
}

// NewSchemaCompileError returns a new SchemaCompileError of the given kind.
func NewSchemaCompileError(kind SchemaCompileErrorKind, typeName, field string) *SchemaCompileError {
	return &SchemaCompileError{Kind: kind, Type: typeName, Field: field}
}

// IsSchemaCompileError reports whether err is a SchemaCompileError, optionally
// of the given kind (pass "" to match any kind).
func IsSchemaCompileError(err error, kind SchemaCompileErrorKind) bool {
	var e *SchemaCompileError
	if !errors.As(err, &e) {
		return false
	}
	return kind == "" || e.Kind == kind
}

// QueryCompileError reports a failure while parsing or compiling a query
// against a schema reflection (C4/C5).
type QueryCompileError struct {
	Kind     QueryCompileErrorKind
	Type     string
	Field    string
	Argument string
}

// QueryCompileErrorKind enumerates the ways a query can fail to compile.
type QueryCompileErrorKind string

const (
	OperationNotSupported                    QueryCompileErrorKind = "OperationNotSupported"
	UnrecognizedField                        QueryCompileErrorKind = "UnrecognizedField"
	UnrecognizedArgument                     QueryCompileErrorKind = "UnrecognizedArgument"
	UnsupportedSelection                     QueryCompileErrorKind = "UnsupportedSelection"
	InvalidFragmentSelection                 QueryCompileErrorKind = "InvalidFragmentSelection"
	FragmentResolverFailed                   QueryCompileErrorKind = "FragmentResolverFailed"
	NoPredicatesInFilter                     QueryCompileErrorKind = "NoPredicatesInFilter"
	UnsupportedNegation                      QueryCompileErrorKind = "UnsupportedNegation"
	UnableToParseValue                       QueryCompileErrorKind = "UnableToParseValue"
	MissingPartnerForBinaryLogicalOperator   QueryCompileErrorKind = "MissingPartnerForBinaryLogicalOperator"
	UnorderedPaginatedQuery                  QueryCompileErrorKind = "UnorderedPaginatedQuery"
)

func (e *QueryCompileError) Error() string {
	switch {
	case e.Argument != "":
		return fmt.Sprintf("fuelindexer: query compile: %s: %s.%s(%s)", e.Kind, e.Type, e.Field, e.Argument)
	case e.Field != "":
		return fmt.Sprintf("fuelindexer: query compile: %s: %s.%s", e.Kind, e.Type, e.Field)
	case e.Type != "":
		return fmt.Sprintf("fuelindexer: query compile: %s: %s", e.Kind, e.Type)
	default:
		return fmt.Sprintf("fuelindexer: query compile: %s", e.Kind)
	}
}

// NewQueryCompileError returns a new QueryCompileError of the given kind.
func NewQueryCompileError(kind QueryCompileErrorKind, typeName, field, argument string) *QueryCompileError {
	return &QueryCompileError{Kind: kind, Type: typeName, Field: field, Argument: argument}
}

// IsQueryCompileError reports whether err is a QueryCompileError, optionally
// of the given kind (pass "" to match any kind).
func IsQueryCompileError(err error, kind QueryCompileErrorKind) bool {
	var e *QueryCompileError
	if !errors.As(err, &e) {
		return false
	}
	return kind == "" || e.Kind == kind
}

// RuntimeError reports a failure during handler invocation or database
// access within a block batch transaction (C6).
type RuntimeError struct {
	Kind  RuntimeErrorKind
	Cause error
}

// RuntimeErrorKind enumerates the ways the handler host can fail at runtime.
type RuntimeErrorKind string

const (
	DatabaseTransport    RuntimeErrorKind = "DatabaseTransport"
	HandlerTrap          RuntimeErrorKind = "HandlerTrap"
	MissingHandler       RuntimeErrorKind = "MissingHandler"
	NativeExecutionFailed RuntimeErrorKind = "NativeExecutionFailed"
)

func (e *RuntimeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fuelindexer: runtime: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("fuelindexer: runtime: %s", e.Kind)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// NewRuntimeError returns a new RuntimeError of the given kind wrapping cause.
func NewRuntimeError(kind RuntimeErrorKind, cause error) *RuntimeError {
	return &RuntimeError{Kind: kind, Cause: cause}
}

// IsRuntimeError reports whether err is a RuntimeError, optionally of the
// given kind (pass "" to match any kind).
func IsRuntimeError(err error, kind RuntimeErrorKind) bool {
	var e *RuntimeError
	if !errors.As(err, &e) {
		return false
	}
	return kind == "" || e.Kind == kind
}

// IngestionError reports a failure in the block-fetch/scheduler loop (C7).
type IngestionError struct {
	Kind  IngestionErrorKind
	Cause error
}

// IngestionErrorKind enumerates the ways the ingestion scheduler can fail.
type IngestionErrorKind string

const (
	NodeTransport IngestionErrorKind = "NodeTransport"
	Killed        IngestionErrorKind = "Killed"
)

func (e *IngestionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fuelindexer: ingestion: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("fuelindexer: ingestion: %s", e.Kind)
}

// Unwrap returns the underlying cause.
func (e *IngestionError) Unwrap() error {
	return e.Cause
}

// NewIngestionError returns a new IngestionError of the given kind wrapping cause.
func NewIngestionError(kind IngestionErrorKind, cause error) *IngestionError {
	return &IngestionError{Kind: kind, Cause: cause}
}

// IsIngestionError reports whether err is an IngestionError, optionally of
// the given kind (pass "" to match any kind).
func IsIngestionError(err error, kind IngestionErrorKind) bool {
	var e *IngestionError
	if !errors.As(err, &e) {
		return false
	}
	return kind == "" || e.Kind == kind
}
