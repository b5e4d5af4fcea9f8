package frm

import "fmt"

// Charset is a MySQL character-set/collation pair as stored by id in a
// table or column's metadata.
type Charset struct {
	ID         uint16
	Name       string
	Collation  string
	IsDefault  bool
}

// charsetBinary is the well-known id for the binary pseudo-charset, used
// for BLOB columns and forced onto GEOMETRY columns regardless of what
// their metadata charset bytes say.
const charsetBinary uint16 = 63

// charsetTable is a static id -> Charset lookup. It mirrors the subset of
// information_schema.collations that dbsake's charset table ships, scoped
// to the charsets/collations that actually turn up in .frm files produced
// by the common installations in the wild; it is data, not behavior, so
// it has no third-party source of truth distinct from a MySQL server's
// own collation catalog.
var charsetTable = map[uint16]Charset{
	8:   {ID: 8, Name: "latin1", Collation: "latin1_swedish_ci", IsDefault: true},
	33:  {ID: 33, Name: "utf8", Collation: "utf8_general_ci", IsDefault: true},
	45:  {ID: 45, Name: "utf8mb4", Collation: "utf8mb4_general_ci", IsDefault: true},
	46:  {ID: 46, Name: "utf8mb4", Collation: "utf8mb4_bin"},
	63:  {ID: 63, Name: "binary", Collation: "binary", IsDefault: true},
	83:  {ID: 83, Name: "utf8", Collation: "utf8_bin"},
	192: {ID: 192, Name: "utf8", Collation: "utf8_unicode_ci"},
	224: {ID: 224, Name: "utf8mb4", Collation: "utf8mb4_unicode_ci"},
	255: {ID: 255, Name: "utf8mb4", Collation: "utf8mb4_0900_ai_ci", IsDefault: true},
	28:  {ID: 28, Name: "gbk", Collation: "gbk_chinese_ci", IsDefault: true},
	24:  {ID: 24, Name: "gb2312", Collation: "gb2312_chinese_ci", IsDefault: true},
	54:  {ID: 54, Name: "utf16", Collation: "utf16_general_ci", IsDefault: true},
	56:  {ID: 56, Name: "utf32", Collation: "utf32_general_ci", IsDefault: true},
	11:  {ID: 11, Name: "ascii", Collation: "ascii_general_ci", IsDefault: true},
	65:  {ID: 65, Name: "ascii", Collation: "ascii_bin"},
	227: {ID: 227, Name: "utf8mb4", Collation: "utf8mb4_general_ci"},
}

// CharsetUnresolvedError is returned when a column or table references a
// charset id that isn't present in the lookup table.
type CharsetUnresolvedError struct {
	ID uint16
}

func (e *CharsetUnresolvedError) Error() string {
	return fmt.Sprintf("frm: charset id %d not in the charset table", e.ID)
}

// LookupCharset resolves id to its Charset, or CharsetUnresolvedError if
// the id is unknown.
func LookupCharset(id uint16) (Charset, error) {
	cs, ok := charsetTable[id]
	if !ok {
		return Charset{}, &CharsetUnresolvedError{ID: id}
	}
	return cs, nil
}
