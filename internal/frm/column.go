package frm

import (
	"fmt"
	"strings"
)

// ColumnContext carries everything the type formatter and default-value
// unpacker need about one column while it is being decoded. It replaces
// the free-form attribute bag the source code threads through these
// calls; every unpacker reads it freely but only isNullBit (called by
// unpackDefault) mutates NullBit, advancing it once per nullable column
// whose default it decodes, regardless of type.
type ColumnContext struct {
	Name         string
	FieldNr      int
	Length       int
	Flags        FieldFlag
	UniregCheck  Utype
	TypeCode     MySQLType
	SubtypeCode  GeometryType
	Charset      Charset
	Labels       []string
	NullMap      []byte
	NullBit      int
	Table        *Table
}

// Nullable reports whether this column may hold NULL, derived from the
// NOT_NULL bit in Flags.
func (c *ColumnContext) Nullable() bool {
	return !c.Flags.Has(FlagNotNull)
}

// Column is a single decoded column of a Table.
type Column struct {
	Name       string
	TypeCode   MySQLType
	TypeName   string
	Length     int
	Nullable   bool
	Default    string
	HasDefault bool
	Comment    string
	Charset    Charset
}

// AutoIncrement reports whether the packed unireg_check u marks a
// column as the table's AUTO_INCREMENT column.
func (c Column) AutoIncrement(u Utype) bool {
	return u.IsAutoIncrement()
}

func (c Column) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "`%s` %s", strings.ReplaceAll(c.Name, "`", "``"), c.TypeName)
	if c.HasDefault {
		fmt.Fprintf(&b, " DEFAULT %s", c.Default)
	}
	if c.Comment != "" {
		fmt.Fprintf(&b, " COMMENT '%s'", strings.ReplaceAll(c.Comment, "'", "\\'"))
	}
	return b.String()
}

// packedColumnData holds the column sub-section byte slices sliced out
// of the .frm file by Parse, plus the counts needed to walk them.
type packedColumnData struct {
	count     int
	nullCount int
	metadata  []byte
	names     []byte
	labels    []byte
	comments  []byte
	defaults  []byte
}

// unpackColumnNames splits the names sub-section into individual column
// names. The blob is framed with a leading byte and two trailing bytes
// that aren't part of any name, and the names themselves are 0xff
// delimited.
func unpackColumnNames(names []byte) ([]string, error) {
	if len(names) < 3 {
		return nil, fmt.Errorf("frm: names section too short (%d bytes)", len(names))
	}
	body := names[1 : len(names)-2]
	parts := splitByte(body, 0xff)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = string(p)
	}
	return out, nil
}

// unpackColumnLabels splits the labels sub-section into one group of
// label strings per ENUM/SET column that has one, used later via
// label_id lookups.
func unpackColumnLabels(labels []byte) ([][]string, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	body := labels[:len(labels)-1]
	groups := splitByte(body, 0x00)
	out := make([][]string, len(groups))
	for i, g := range groups {
		if len(g) < 2 {
			out[i] = nil
			continue
		}
		inner := g[1 : len(g)-1]
		parts := splitByte(inner, 0xff)
		vals := make([]string, len(parts))
		for j, p := range parts {
			vals[j] = string(p)
		}
		out[i] = vals
	}
	return out, nil
}

func splitByte(b []byte, sep byte) [][]byte {
	var out [][]byte
	start := 0
	for i, c := range b {
		if c == sep {
			out = append(out, b[start:i])
			start = i + 1
		}
	}
	out = append(out, b[start:])
	return out
}

// unpackColumns decodes the column metadata/names/labels/comments/
// defaults sub-sections into a slice of Columns, in declaration order.
func unpackColumns(data packedColumnData, table *Table) ([]Column, error) {
	names, err := unpackColumnNames(data.names)
	if err != nil {
		return nil, err
	}
	labels, err := unpackColumnLabels(data.labels)
	if err != nil {
		return nil, err
	}

	metadata := NewByteReader(data.metadata)
	defaults := NewByteReader(data.defaults)
	comments := NewByteReader(data.comments)

	nullMapLen := (data.nullCount + 1 + 7) / 8
	nullMap, err := defaults.Read(nullMapLen)
	if err != nil {
		return nil, fmt.Errorf("frm: reading null bitmap: %w", err)
	}

	ctx := &ColumnContext{NullMap: nullMap, NullBit: 1, Table: table}

	const metadataRecordSize = 17

	columns := make([]Column, 0, len(names))
	for fieldnr, name := range names {
		recordStart := fieldnr * metadataRecordSize

		length, err := metadata.Uint16At(recordStart+3, FromStart)
		if err != nil {
			return nil, fmt.Errorf("frm: column %d length: %w", fieldnr, err)
		}
		defaultsOffsetRaw, err := metadata.Uint24At(recordStart+5, FromStart)
		if err != nil {
			return nil, fmt.Errorf("frm: column %d defaults offset: %w", fieldnr, err)
		}
		flagsRaw, err := metadata.Uint16At(recordStart+8, FromStart)
		if err != nil {
			return nil, fmt.Errorf("frm: column %d flags: %w", fieldnr, err)
		}
		uniregRaw, err := metadata.Uint8At(recordStart+10, FromStart)
		if err != nil {
			return nil, fmt.Errorf("frm: column %d unireg_check: %w", fieldnr, err)
		}
		unireg, err := parseUtype(uniregRaw)
		if err != nil {
			return nil, err
		}
		charsetHi, err := metadata.Uint8At(recordStart+11, FromStart)
		if err != nil {
			return nil, fmt.Errorf("frm: column %d charset hi byte: %w", fieldnr, err)
		}
		labelID, err := metadata.Uint8At(recordStart+12, FromStart)
		if err != nil {
			return nil, fmt.Errorf("frm: column %d label id: %w", fieldnr, err)
		}
		typeRaw, err := metadata.Uint8At(recordStart+13, FromStart)
		if err != nil {
			return nil, fmt.Errorf("frm: column %d type code: %w", fieldnr, err)
		}
		typeCode, err := ParseMySQLType(typeRaw)
		if err != nil {
			return nil, err
		}
		charsetLo, err := metadata.Uint8At(recordStart+14, FromStart)
		if err != nil {
			return nil, fmt.Errorf("frm: column %d charset lo byte: %w", fieldnr, err)
		}
		commentLength, err := metadata.Uint16At(recordStart+15, FromStart)
		if err != nil {
			return nil, fmt.Errorf("frm: column %d comment length: %w", fieldnr, err)
		}

		var colLabels []string
		if typeCode == TypeEnum || typeCode == TypeSet {
			idx := int(labelID) - 1
			if idx >= 0 && idx < len(labels) {
				colLabels = labels[idx]
			}
		}

		var charsetID uint16
		var subtype GeometryType
		if typeCode != TypeGeometry {
			charsetID = uint16(charsetHi)<<8 | uint16(charsetLo)
		} else {
			charsetID = charsetBinary
			subtype = GeometryType(charsetLo)
			if _, err := subtype.Name(); err != nil {
				return nil, err
			}
		}
		charset, err := LookupCharset(charsetID)
		if err != nil {
			return nil, err
		}

		ctx.Name = name
		ctx.FieldNr = fieldnr
		ctx.Length = int(length)
		ctx.Flags = FieldFlag(flagsRaw)
		ctx.UniregCheck = unireg
		ctx.TypeCode = typeCode
		ctx.SubtypeCode = subtype
		ctx.Charset = charset
		ctx.Labels = colLabels

		var (
			def    string
			hasDef bool
		)
		if defaultsOffsetRaw > 0 {
			offsetErr := defaults.Offset(int(defaultsOffsetRaw)-1, func() error {
				d, ok, err := unpackDefault(defaults, ctx)
				if err != nil {
					return err
				}
				def, hasDef = d, ok
				return nil
			})
			if offsetErr != nil {
				return nil, fmt.Errorf("frm: column %q default: %w", name, offsetErr)
			}
		}

		comment, err := comments.Read(int(commentLength))
		if err != nil {
			return nil, fmt.Errorf("frm: column %q comment: %w", name, err)
		}

		columns = append(columns, Column{
			Name:       name,
			TypeCode:   typeCode,
			TypeName:   formatType(ctx),
			Length:     int(length),
			Nullable:   ctx.Nullable(),
			Default:    def,
			HasDefault: hasDef,
			Comment:    string(comment),
			Charset:    charset,
		})
	}
	return columns, nil
}

func parseUtype(b uint8) (Utype, error) {
	u := Utype(b)
	if _, err := u.Name(); err != nil {
		return 0, err
	}
	return u, nil
}
