package output

import (
	"encoding/json"

	"mysqlkit/internal/frm"
)

type jsonFormatter struct{}

type tableSummary struct {
	Columns int `json:"columns"`
	Keys    int `json:"keys"`
}

type tablePayload struct {
	Format       string       `json:"format"`
	Name         string       `json:"name"`
	Engine       string       `json:"engine"`
	Charset      string       `json:"charset"`
	MySQLVersion string       `json:"mysqlVersion"`
	Summary      tableSummary `json:"summary"`
	DDL          string       `json:"ddl"`
	Table        *frm.Table   `json:"table"`
}

// FormatTable renders t as a JSON document carrying both the decoded
// structure and its rendered DDL, so a caller can consume either without
// re-parsing.
func (jsonFormatter) FormatTable(t *frm.Table) (string, error) {
	payload := tablePayload{Format: string(FormatJSON)}
	if t != nil {
		payload.Name = t.Name
		payload.Engine = t.Options.Engine
		payload.Charset = t.Charset.Name
		payload.MySQLVersion = t.MySQLVersion.String()
		payload.Summary = tableSummary{Columns: len(t.Columns), Keys: len(t.Keys)}
		payload.DDL = t.DDL()
		payload.Table = t
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
