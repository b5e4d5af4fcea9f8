package frm

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// isNullBit reports whether the null bit this column owns is set in the
// shared null bitmap, then advances the shared cursor by one bit — every
// nullable column consumes exactly one bit regardless of its type, per
// the column loop's "shared null_bit cursor" invariant.
func isNullBit(ctx *ColumnContext) bool {
	if !ctx.Nullable() {
		return false
	}
	bit := ctx.NullBit
	ctx.NullBit++
	byteIdx := bit / 8
	if byteIdx >= len(ctx.NullMap) {
		return false
	}
	return ctx.NullMap[byteIdx]&(1<<uint(bit%8)) != 0
}

// formatType renders the SQL type name (with length/precision parameters
// and UNSIGNED/ZEROFILL qualifiers) for the column described by ctx. It
// is a pure function of ctx: the same context always renders the same
// type string.
func formatType(ctx *ColumnContext) string {
	unsigned := ""
	if ctx.Flags.Has(FlagUnsigned) {
		unsigned = " UNSIGNED"
	}
	zerofill := ""
	if ctx.Flags.Has(FlagZerofill) {
		zerofill = " ZEROFILL"
	}

	switch ctx.TypeCode {
	case TypeTiny:
		return "TINYINT" + unsigned + zerofill
	case TypeShort:
		return "SMALLINT" + unsigned + zerofill
	case TypeInt24:
		return "MEDIUMINT" + unsigned + zerofill
	case TypeLong:
		return "INT" + unsigned + zerofill
	case TypeLongLong:
		return "BIGINT" + unsigned + zerofill
	case TypeFloat:
		return "FLOAT" + unsigned + zerofill
	case TypeDouble:
		return "DOUBLE" + unsigned + zerofill
	case TypeDecimal, TypeNewDecimal:
		precision, scale := decodeDecimalLength(ctx.Length)
		return fmt.Sprintf("DECIMAL(%d,%d)%s%s", precision, scale, unsigned, zerofill)
	case TypeYear:
		return "YEAR(4)"
	case TypeDate:
		return "DATE"
	case TypeTime:
		return "TIME"
	case TypeDateTime:
		return "DATETIME"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeNewDate:
		return "DATE"
	case TypeNull:
		return "NULL"
	case TypeBit:
		return fmt.Sprintf("BIT(%d)", ctx.Length)
	case TypeVarchar, TypeVarString:
		return fmt.Sprintf("VARCHAR(%d)%s", charLength(ctx), charsetClause(ctx))
	case TypeString:
		return fmt.Sprintf("CHAR(%d)%s", charLength(ctx), charsetClause(ctx))
	case TypeTinyBlob:
		return blobOrText(ctx, "TINYBLOB", "TINYTEXT")
	case TypeBlob:
		return blobOrText(ctx, "BLOB", "TEXT")
	case TypeMediumBlob:
		return blobOrText(ctx, "MEDIUMBLOB", "MEDIUMTEXT")
	case TypeLongBlob:
		return blobOrText(ctx, "LONGBLOB", "LONGTEXT")
	case TypeEnum:
		return fmt.Sprintf("ENUM(%s)%s", quoteLabels(ctx.Labels), charsetClause(ctx))
	case TypeSet:
		return fmt.Sprintf("SET(%s)%s", quoteLabels(ctx.Labels), charsetClause(ctx))
	case TypeGeometry:
		if name, err := ctx.SubtypeCode.Name(); err == nil && ctx.SubtypeCode != GeometryGeometry {
			return name
		}
		return "GEOMETRY"
	case TypeJSON:
		return "JSON"
	default:
		return ctx.TypeCode.String()
	}
}

// blobOrText renders a BLOB-family type name, switching to the textual
// counterpart when the column's charset isn't binary — MySQL stores TEXT
// columns using the same type codes as BLOB, distinguished only by
// charset id.
func blobOrText(ctx *ColumnContext, blobName, textName string) string {
	if ctx.Charset.ID == charsetBinary {
		return blobName
	}
	return textName + charsetClause(ctx)
}

func charLength(ctx *ColumnContext) int {
	if ctx.Charset.ID == charsetBinary || ctx.Length == 0 {
		return ctx.Length
	}
	return ctx.Length
}

// charsetClause renders a trailing "CHARACTER SET x" clause for a column
// whose charset differs from the table's default — the common case is
// no clause at all, since most columns inherit the table default.
func charsetClause(ctx *ColumnContext) string {
	if ctx.Table == nil || ctx.Charset.Name == "" {
		return ""
	}
	if ctx.Table.Charset.ID == ctx.Charset.ID {
		return ""
	}
	return fmt.Sprintf(" CHARACTER SET %s", ctx.Charset.Name)
}

func quoteLabels(labels []string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = "'" + strings.ReplaceAll(l, "'", "''") + "'"
	}
	return strings.Join(parts, ",")
}

// decodeDecimalLength splits a packed DECIMAL length byte into
// (precision, scale). The scale is packed into the low byte and the
// precision into the remaining bits, mirroring how old_decimal_length
// packs the two dimensions of a DECIMAL column into a single 16-bit
// field.
func decodeDecimalLength(packed int) (precision, scale int) {
	scale = packed & 0xff
	precision = (packed >> 8) & 0xff
	if precision == 0 {
		precision = 10
	}
	return precision, scale
}

// unpackDefault decodes a column's packed default value, returning
// (rendered SQL literal, hasDefault). A NULL default reports
// ("NULL", true). Columns with no stored default, and BLOB/TEXT columns
// (which never carry an inline default), report hasDefault=false.
func unpackDefault(r *ByteReader, ctx *ColumnContext) (string, bool, error) {
	isNull := isNullBit(ctx)
	if isNull {
		return "NULL", true, nil
	}

	switch ctx.TypeCode {
	case TypeTiny:
		b, err := r.Read(1)
		if err != nil {
			return "", false, err
		}
		if ctx.Flags.Has(FlagUnsigned) {
			return strconv.FormatUint(uint64(b[0]), 10), true, nil
		}
		return strconv.FormatInt(int64(int8(b[0])), 10), true, nil
	case TypeShort:
		b, err := r.Read(2)
		if err != nil {
			return "", false, err
		}
		v := binary.LittleEndian.Uint16(b)
		if ctx.Flags.Has(FlagUnsigned) {
			return strconv.FormatUint(uint64(v), 10), true, nil
		}
		return strconv.FormatInt(int64(int16(v)), 10), true, nil
	case TypeInt24:
		b, err := r.Read(3)
		if err != nil {
			return "", false, err
		}
		v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
		if ctx.Flags.Has(FlagUnsigned) {
			return strconv.FormatUint(uint64(v), 10), true, nil
		}
		if v&0x800000 != 0 {
			v |= 0xff000000
		}
		return strconv.FormatInt(int64(int32(v)), 10), true, nil
	case TypeLong:
		b, err := r.Read(4)
		if err != nil {
			return "", false, err
		}
		v := binary.LittleEndian.Uint32(b)
		if ctx.Flags.Has(FlagUnsigned) {
			return strconv.FormatUint(uint64(v), 10), true, nil
		}
		return strconv.FormatInt(int64(int32(v)), 10), true, nil
	case TypeLongLong:
		b, err := r.Read(8)
		if err != nil {
			return "", false, err
		}
		v := binary.LittleEndian.Uint64(b)
		if ctx.Flags.Has(FlagUnsigned) {
			return strconv.FormatUint(v, 10), true, nil
		}
		return strconv.FormatInt(int64(v), 10), true, nil
	case TypeFloat:
		b, err := r.Read(4)
		if err != nil {
			return "", false, err
		}
		f := math.Float32frombits(binary.LittleEndian.Uint32(b))
		return strconv.FormatFloat(float64(f), 'g', -1, 32), true, nil
	case TypeDouble:
		b, err := r.Read(8)
		if err != nil {
			return "", false, err
		}
		f := math.Float64frombits(binary.LittleEndian.Uint64(b))
		return strconv.FormatFloat(f, 'g', -1, 64), true, nil
	case TypeYear:
		b, err := r.Read(1)
		if err != nil {
			return "", false, err
		}
		return strconv.Itoa(1900 + int(b[0])), true, nil
	case TypeVarchar, TypeVarString, TypeString:
		b, err := r.Read(ctx.Length)
		if err != nil {
			return "", false, err
		}
		s := strings.TrimRight(string(b), "\x00 ")
		return "'" + strings.ReplaceAll(s, "'", "''") + "'", true, nil
	case TypeEnum:
		b, err := r.Read(enumStorageSize(len(ctx.Labels)))
		if err != nil {
			return "", false, err
		}
		idx := int(decodeLE(b))
		if idx == 0 || idx > len(ctx.Labels) {
			return "", false, nil
		}
		return "'" + strings.ReplaceAll(ctx.Labels[idx-1], "'", "''") + "'", true, nil
	case TypeSet:
		n := enumStorageSize(len(ctx.Labels))
		if n == 0 {
			n = 8
		}
		b, err := r.Read(n)
		if err != nil {
			return "", false, err
		}
		mask := decodeLE(b)
		var vals []string
		for i, l := range ctx.Labels {
			if mask&(1<<uint(i)) != 0 {
				vals = append(vals, l)
			}
		}
		return "'" + strings.Join(vals, ",") + "'", true, nil
	case TypeBit:
		n := (ctx.Length + 7) / 8
		if _, err := r.Read(n); err != nil {
			return "", false, err
		}
		return "", false, nil
	case TypeDate, TypeNewDate, TypeTime, TypeDateTime, TypeTimestamp,
		TypeTinyBlob, TypeBlob, TypeMediumBlob, TypeLongBlob,
		TypeGeometry, TypeJSON, TypeDecimal, TypeNewDecimal, TypeNull:
		return "", false, nil
	default:
		return "", false, nil
	}
}

func enumStorageSize(labelCount int) int {
	switch {
	case labelCount <= 0:
		return 0
	case labelCount <= 8:
		return 1
	case labelCount <= 16:
		return 2
	case labelCount <= 24:
		return 3
	default:
		return 4
	}
}

func decodeLE(b []byte) uint64 {
	var v uint64
	for i, c := range b {
		v |= uint64(c) << (8 * uint(i))
	}
	return v
}
