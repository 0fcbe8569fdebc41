// Package executor provides validation utilities.
package executor

import (
	"fmt"

	"github.com/satishbabariya/multilingual-go/query/compiler"
)

// validateColumns checks that the driver returned the columns the query
// selected, in order.
func validateColumns(columns []string, expected []compiler.ResultColumn) error {
	if len(columns) != len(expected) {
		return fmt.Errorf("%w: got %d columns, want %d", errColumnMismatch, len(columns), len(expected))
	}
	for i, rc := range expected {
		if columns[i] != rc.Name {
			return fmt.Errorf("%w: column %d is %q, want %q", errColumnMismatch, i, columns[i], rc.Name)
		}
	}
	return nil
}
