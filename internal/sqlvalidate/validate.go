// Package sqlvalidate checks that generated DDL parses as valid MySQL,
// using TiDB's parser the same way the schema parser in this module's
// teacher lineage does.
package sqlvalidate

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// ValidateCreateTable parses ddl and reports an error unless it contains
// exactly one well-formed CREATE TABLE statement.
func ValidateCreateTable(ddl string) error {
	stmt, err := parseOne(ddl)
	if err != nil {
		return err
	}
	if _, ok := stmt.(*ast.CreateTableStmt); !ok {
		return fmt.Errorf("sqlvalidate: expected a CREATE TABLE statement, got %T", stmt)
	}
	return nil
}

// ValidateAlterTable parses ddl and reports an error unless it contains
// exactly one well-formed ALTER TABLE statement.
func ValidateAlterTable(ddl string) error {
	stmt, err := parseOne(ddl)
	if err != nil {
		return err
	}
	if _, ok := stmt.(*ast.AlterTableStmt); !ok {
		return fmt.Errorf("sqlvalidate: expected an ALTER TABLE statement, got %T", stmt)
	}
	return nil
}

// Validate parses sql, which may hold any number of statements, and
// reports the first syntax error encountered, if any.
func Validate(sql string) error {
	p := parser.New()
	_, _, err := p.Parse(sql, "", "")
	if err != nil {
		return fmt.Errorf("sqlvalidate: parse error: %w", err)
	}
	return nil
}

func parseOne(sql string) (ast.StmtNode, error) {
	p := parser.New()
	stmts, _, err := p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("sqlvalidate: parse error: %w", err)
	}
	if len(stmts) != 1 {
		return nil, fmt.Errorf("sqlvalidate: expected exactly one statement, got %d", len(stmts))
	}
	return stmts[0], nil
}
