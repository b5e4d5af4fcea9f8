package output_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysqlkit/internal/frm"
	"mysqlkit/internal/output"
)

func sampleTable() *frm.Table {
	return &frm.Table{
		Name:         "t",
		Charset:      frm.Charset{ID: 33, Name: "utf8", Collation: "utf8_general_ci"},
		MySQLVersion: frm.MySQLVersionFromID(50723),
		Options:      frm.TableOptions{Engine: "InnoDB"},
		Columns: []frm.Column{
			{Name: "id", TypeName: "INT", Nullable: false},
		},
	}
}

func TestNewFormatterDefaultsToSQL(t *testing.T) {
	f, err := output.NewFormatter("")
	require.NoError(t, err)
	out, err := f.FormatTable(sampleTable())
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE `t`")
}

func TestNewFormatterJSON(t *testing.T) {
	f, err := output.NewFormatter("JSON")
	require.NoError(t, err)
	out, err := f.FormatTable(sampleTable())
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "t"`)
	assert.Contains(t, out, `"engine": "InnoDB"`)
}

func TestNewFormatterRejectsUnknown(t *testing.T) {
	_, err := output.NewFormatter("yaml")
	assert.Error(t, err)
}
