package schema

import (
	"fmt"
	"strings"
)

// ReloadError represents one reload-safety concern found when comparing a
// previously compiled schema against a newly compiled one for AssetReload.
type ReloadError struct {
	Table    string
	Column   string
	Message  string
	Breaking bool
}

func (e *ReloadError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ReloadReport holds the result of validating a schema reload.
type ReloadReport struct {
	Errors   []*ReloadError
	Warnings []*ReloadError
}

// HasErrors reports whether reload would be unsafe.
func (r *ReloadReport) HasErrors() bool { return len(r.Errors) > 0 }

// String renders a human-readable summary.
func (r *ReloadReport) String() string {
	var sb strings.Builder
	for _, e := range r.Errors {
		sb.WriteString("error: ")
		sb.WriteString(e.Error())
		sb.WriteByte('\n')
	}
	for _, w := range r.Warnings {
		sb.WriteString("warning: ")
		sb.WriteString(w.Error())
		sb.WriteByte('\n')
	}
	if !r.HasErrors() && len(r.Warnings) == 0 {
		sb.WriteString("no issues found")
	}
	return sb.String()
}

// ValidateReload compares a previously compiled schema against a newly
// compiled one and reports whether swapping in the new version under
// AssetReload is safe: a dropped table or column, or a column going from
// nullable to not-null, is breaking — the existing control-table rows and
// any already-persisted object blobs would no longer match the new DDL.
func ValidateReload(current, next *Compiled) *ReloadReport {
	report := &ReloadReport{}

	currentTables := make(map[string]*Table, len(current.Tables))
	for _, t := range current.Tables {
		currentTables[t.Name] = t
	}
	nextTables := make(map[string]*Table, len(next.Tables))
	for _, t := range next.Tables {
		nextTables[t.Name] = t
	}

	for name := range currentTables {
		if _, ok := nextTables[name]; !ok {
			report.Errors = append(report.Errors, &ReloadError{
				Table: name, Message: "table dropped by reload", Breaking: true,
			})
		}
	}

	for name, nextTable := range nextTables {
		curTable, existed := currentTables[name]
		if !existed {
			continue
		}
		validateTableReload(curTable, nextTable, report)
	}

	return report
}

func validateTableReload(current, next *Table, report *ReloadReport) {
	currentCols := make(map[string]*Column, len(current.Columns))
	for _, c := range current.Columns {
		currentCols[c.Name] = c
	}
	nextCols := make(map[string]*Column, len(next.Columns))
	for _, c := range next.Columns {
		nextCols[c.Name] = c
	}

	for name := range currentCols {
		if _, ok := nextCols[name]; !ok {
			report.Errors = append(report.Errors, &ReloadError{
				Table: current.Name, Column: name, Message: "column dropped by reload", Breaking: true,
			})
		}
	}

	for name, nextCol := range nextCols {
		curCol, existed := currentCols[name]
		if !existed {
			if !nextCol.Nullable {
				report.Warnings = append(report.Warnings, &ReloadError{
					Table: current.Name, Column: name,
					Message: "new NOT NULL column has no backfill for existing rows",
				})
			}
			continue
		}
		if curCol.Type != nextCol.Type {
			report.Warnings = append(report.Warnings, &ReloadError{
				Table: current.Name, Column: name,
				Message: fmt.Sprintf("column type changing from %s to %s", curCol.Type, nextCol.Type),
			})
		}
		if curCol.Nullable && !nextCol.Nullable {
			report.Errors = append(report.Errors, &ReloadError{
				Table: current.Name, Column: name,
				Message: "column changing from nullable to not null may fail on existing rows", Breaking: true,
			})
		}
	}
}
