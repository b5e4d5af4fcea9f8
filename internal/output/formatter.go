// Package output provides a set of formatters for decoded FRM tables. It
// is extendable and for now provides two formats: SQL and JSON.
package output

import (
	"fmt"
	"strings"

	"mysqlkit/internal/frm"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatSQL  Format = "sql"
	FormatJSON Format = "json"
)

// Formatter renders a decoded FRM table to a string.
type Formatter interface {
	FormatTable(*frm.Table) (string, error)
}

// NewFormatter creates a new Formatter instance based on the given name.
// If no format is specified, defaults to SQL format.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatSQL:
		return sqlFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'sql' or 'json'", name)
	}
}
