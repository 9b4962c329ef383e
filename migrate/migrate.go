// Package migrate applies a schema.Compiled's DDL statements against the
// control schema's database, the step schema/store.Store.Persist
// deliberately leaves out ("It does not run the DDL itself").
package migrate

import (
	"context"
	"fmt"

	"github.com/luizstacio/fuel-indexer/dialect"
	"github.com/luizstacio/fuel-indexer/schema"
)

// Runner executes a compiled schema's DDL statements in order over a
// dialect.Driver.
type Runner struct {
	driver dialect.Driver
}

// New returns a Runner bound to driver.
func New(driver dialect.Driver) *Runner {
	return &Runner{driver: driver}
}

// Apply runs every statement of c.Statements, in the order schema.Compile
// produced them (schema creation, then tables, then foreign keys and
// indexes), stopping at the first failure.
func (r *Runner) Apply(ctx context.Context, c *schema.Compiled) error {
	for _, stmt := range c.Statements {
		if err := r.driver.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("migrate: apply %q: %w", stmt, err)
		}
	}
	return nil
}
