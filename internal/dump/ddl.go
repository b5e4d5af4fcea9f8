package dump

import "strings"

// ExtractCreateTable returns the substring of block beginning at
// "CREATE TABLE" and ending at the first semicolon that starts a line
// (or at the end of block if none is found).
func ExtractCreateTable(block string) string {
	start := strings.Index(block, "CREATE TABLE")
	if start < 0 {
		return ""
	}
	rest := block[start:]
	lines := strings.SplitAfter(rest, "\n")
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		if strings.HasPrefix(line, ";") {
			break
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// clauseKind classifies a single top-level clause of a CREATE TABLE
// body, driving split_indexes' keep-or-defer decision.
type clauseKind int

const (
	clauseColumn clauseKind = iota
	clausePrimaryKey
	clauseSecondaryKey
	clauseConstraint
)

func classifyClause(clause string) clauseKind {
	trimmed := strings.TrimSpace(clause)
	upper := strings.ToUpper(trimmed)
	switch {
	case strings.HasPrefix(upper, "PRIMARY KEY"):
		return clausePrimaryKey
	case strings.HasPrefix(upper, "CONSTRAINT"):
		return clauseConstraint
	case strings.HasPrefix(upper, "KEY"), strings.HasPrefix(upper, "UNIQUE KEY"),
		strings.HasPrefix(upper, "UNIQUE INDEX"), strings.HasPrefix(upper, "INDEX"),
		strings.HasPrefix(upper, "FULLTEXT KEY"), strings.HasPrefix(upper, "FULLTEXT INDEX"),
		strings.HasPrefix(upper, "SPATIAL KEY"), strings.HasPrefix(upper, "SPATIAL INDEX"):
		return clauseSecondaryKey
	default:
		return clauseColumn
	}
}

// splitTopLevelClauses splits a CREATE TABLE body (the text between the
// outermost parentheses) on commas that are not inside a quoted
// identifier or a nested parenthesis, per §4.7's "respecting backtick
// quoting and parenthesis nesting" requirement — a plain comma split
// would break on column definitions like `v DECIMAL(10,2)`.
func splitTopLevelClauses(body string) []string {
	var clauses []string
	depth := 0
	inBacktick := false
	start := 0
	for i, r := range body {
		switch r {
		case '`':
			inBacktick = !inBacktick
		case '(':
			if !inBacktick {
				depth++
			}
		case ')':
			if !inBacktick {
				depth--
			}
		case ',':
			if !inBacktick && depth == 0 {
				clauses = append(clauses, body[start:i])
				start = i + 1
			}
		}
	}
	clauses = append(clauses, body[start:])
	return clauses
}

// columnAutoIncrement reports whether the column clause declares the
// named column as AUTO_INCREMENT.
func columnAutoIncrement(clauses []string, column string) bool {
	target := "`" + column + "`"
	for _, c := range clauses {
		trimmed := strings.TrimSpace(c)
		if classifyClause(trimmed) != clauseColumn {
			continue
		}
		if strings.HasPrefix(trimmed, target) && strings.Contains(strings.ToUpper(trimmed), "AUTO_INCREMENT") {
			return true
		}
	}
	return false
}

// keyColumns extracts the column names referenced by a KEY/UNIQUE KEY
// clause's parenthesized column list, e.g. "KEY `i_v` (`v`)" -> ["v"].
func keyColumns(clause string) []string {
	open := strings.IndexByte(clause, '(')
	closeIdx := strings.LastIndexByte(clause, ')')
	if open < 0 || closeIdx < 0 || closeIdx < open {
		return nil
	}
	inner := clause[open+1 : closeIdx]
	var cols []string
	for _, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimSuffix(part, ")")
		first := strings.IndexByte(part, '`')
		last := strings.LastIndexByte(part, '`')
		if first >= 0 && last > first {
			cols = append(cols, part[first+1:last])
		}
	}
	return cols
}

// SplitIndexes implements §4.7's split_indexes: it separates a CREATE
// TABLE statement's secondary indexes (and, when deferConstraints is
// true, foreign key constraints) from the statement that must stay with
// the table's initial creation. alter is "" when nothing was deferred,
// in which case rewritten == ddl (making the operation idempotent, per
// testable property #4).
func SplitIndexes(ddl string, deferConstraints bool) (alter, rewritten string) {
	nameEnd := strings.Index(ddl, "(")
	bodyEnd := strings.LastIndex(ddl, ")")
	if nameEnd < 0 || bodyEnd < 0 || bodyEnd < nameEnd {
		return "", ddl
	}
	tableName := strings.TrimSpace(ddl[len("CREATE TABLE"):nameEnd])
	body := ddl[nameEnd+1 : bodyEnd]
	tail := ddl[bodyEnd+1:]

	clauses := splitTopLevelClauses(body)

	var autoIncrementCol string
	for _, c := range clauses {
		trimmed := strings.TrimSpace(c)
		if classifyClause(trimmed) == clauseColumn && strings.Contains(strings.ToUpper(trimmed), "AUTO_INCREMENT") {
			first := strings.IndexByte(trimmed, '`')
			last := strings.IndexByte(trimmed[first+1:], '`')
			if first >= 0 && last >= 0 {
				autoIncrementCol = trimmed[first+1 : first+1+last]
			}
		}
	}

	var kept, deferred []string
	for _, c := range clauses {
		trimmed := strings.TrimSpace(c)
		switch classifyClause(trimmed) {
		case clausePrimaryKey, clauseColumn:
			kept = append(kept, c)
		case clauseSecondaryKey:
			if autoIncrementCol != "" && containsColumn(keyColumns(trimmed), autoIncrementCol) {
				kept = append(kept, c)
			} else {
				deferred = append(deferred, trimmed)
			}
		case clauseConstraint:
			if deferConstraints {
				deferred = append(deferred, trimmed)
			} else {
				kept = append(kept, c)
			}
		}
	}

	if len(deferred) == 0 {
		return "", ddl
	}

	rewritten = "CREATE TABLE" + ddl[len("CREATE TABLE"):nameEnd] + "(" + strings.Join(kept, ",") + ")" + tail
	alter = "ALTER TABLE " + strings.TrimSpace(tableName) + " ADD " + strings.Join(deferred, ", ADD ") + ";"
	return alter, rewritten
}

func containsColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}
