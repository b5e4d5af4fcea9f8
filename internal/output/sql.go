package output

import "mysqlkit/internal/frm"

type sqlFormatter struct{}

// FormatTable renders t as a commented CREATE TABLE statement, the way
// dbsake's own sql output prints a decoded FRM file.
func (sqlFormatter) FormatTable(t *frm.Table) (string, error) {
	if t == nil {
		return "", nil
	}
	return t.Render(), nil
}
