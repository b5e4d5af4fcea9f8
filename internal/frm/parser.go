package frm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotAFrm is returned when a file's magic bytes don't match the
// expected 0xFE 0x01 .frm header.
var ErrNotAFrm = errors.New("frm: not a binary .frm file")

const headerSize = 64

// Parse reads the .frm file at path and decodes it into a Table. It
// opens, reads, and closes the file within this single call; there is no
// background work and no state retained between calls.
func Parse(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("frm: reading %s: %w", path, err)
	}
	return ParseBytes(raw, path)
}

// ParseBytes decodes raw .frm file content, using name only to derive the
// table name the way the filesystem path would (<name>.frm -> name,
// reversing MySQL's @xxxx filename escaping). It is split out from Parse
// so tests can exercise the decoder against in-memory fixtures.
func ParseBytes(raw []byte, name string) (*Table, error) {
	data := NewByteReader(raw)

	magic, err := data.ReadAt(2, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAFrm, name)
	}
	if magic[0] != 0xfe || magic[1] != 0x01 {
		return nil, fmt.Errorf("%w: %s", ErrNotAFrm, name)
	}

	version, err := data.Uint32At(0x33, FromStart)
	if err != nil {
		return nil, err
	}
	mysqlVersion := MySQLVersionFromID(version)

	keyinfoOffset, err := data.Uint16At(0x06, FromStart)
	if err != nil {
		return nil, err
	}
	keyinfoLength, err := data.Uint16At(0x0e, FromStart)
	if err != nil {
		return nil, err
	}
	keyinfoLength32 := uint32(keyinfoLength)
	if keyinfoLength == 0xffff {
		keyinfoLength32, err = data.Uint32At(0x2f, FromStart)
		if err != nil {
			return nil, err
		}
	}

	defaultsOffset := uint32(keyinfoOffset) + keyinfoLength32
	defaultsLength, err := data.Uint16At(0x10, FromStart)
	if err != nil {
		return nil, err
	}

	extrainfoOffset := defaultsOffset + uint32(defaultsLength)
	extrainfoLength, err := data.Uint32At(0x37, FromStart)
	if err != nil {
		return nil, err
	}
	extrainfoBytes, err := data.ReadAt(int(extrainfoLength), int(extrainfoOffset))
	if err != nil {
		return nil, fmt.Errorf("frm: extrainfo section: %w", err)
	}
	extrainfo := NewByteReader(extrainfoBytes)

	namesLengthRaw, err := data.Uint16At(0x04, FromStart)
	if err != nil {
		return nil, err
	}
	forminfoOffset, err := data.Uint32At(headerSize+int(namesLengthRaw), FromStart)
	if err != nil {
		return nil, err
	}
	const forminfoLength = 288
	screensLength, err := data.Uint16At(int(forminfoOffset)+260, FromStart)
	if err != nil {
		return nil, err
	}

	nullFields, err := data.Uint16At(int(forminfoOffset)+282, FromStart)
	if err != nil {
		return nil, err
	}
	columnCount, err := data.Uint16At(int(forminfoOffset)+258, FromStart)
	if err != nil {
		return nil, err
	}
	namesLength, err := data.Uint16At(int(forminfoOffset)+268, FromStart)
	if err != nil {
		return nil, err
	}
	labelsLength, err := data.Uint16At(int(forminfoOffset)+274, FromStart)
	if err != nil {
		return nil, err
	}
	commentsLength, err := data.Uint16At(int(forminfoOffset)+284, FromStart)
	if err != nil {
		return nil, err
	}

	metadataOffset := int(forminfoOffset) + forminfoLength + int(screensLength)
	metadataLength := 17 * int(columnCount)

	var colData packedColumnData
	err = data.Offset(metadataOffset, func() error {
		var err error
		colData.metadata, err = data.Read(metadataLength)
		if err != nil {
			return err
		}
		colData.names, err = data.Read(int(namesLength))
		if err != nil {
			return err
		}
		colData.labels, err = data.Read(int(labelsLength))
		if err != nil {
			return err
		}
		colData.comments, err = data.Read(int(commentsLength))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("frm: column sub-sections: %w", err)
	}
	colData.count = int(columnCount)
	colData.nullCount = int(nullFields)
	colData.defaults, err = data.ReadAt(int(defaultsLength), int(defaultsOffset))
	if err != nil {
		return nil, fmt.Errorf("frm: defaults section: %w", err)
	}

	table, err := decodeTableHeader(data, extrainfo, mysqlVersion, name)
	if err != nil {
		return nil, err
	}

	columns, err := unpackColumns(colData, table)
	if err != nil {
		return nil, err
	}
	table.Columns = columns

	keyinfo, err := data.ReadAt(int(keyinfoLength32), int(keyinfoOffset))
	if err != nil {
		return nil, fmt.Errorf("frm: keyinfo section: %w", err)
	}
	keys, err := unpackKeys(keyinfo, columns)
	if err != nil {
		return nil, err
	}
	table.Keys = keys

	comment, err := decodeTableComment(data, extrainfo, int(forminfoOffset), table.Charset)
	if err != nil {
		return nil, err
	}
	table.Options.Comment = comment

	return table, nil
}

// decodeTableHeader decodes the fixed-offset table header fields (§4.3)
// and the extrainfo-derived connection/engine/partition strings.
func decodeTableHeader(data, extrainfo *ByteReader, version MySQLVersion, path string) (*Table, error) {
	charsetID, err := data.Uint8At(0x26, FromStart)
	if err != nil {
		return nil, err
	}
	charset, err := LookupCharset(uint16(charsetID))
	if err != nil {
		return nil, err
	}

	minRows, err := data.Uint32At(0x16, FromStart)
	if err != nil {
		return nil, err
	}
	maxRows, err := data.Uint32At(0x12, FromStart)
	if err != nil {
		return nil, err
	}
	avgRowLength, err := data.Uint32At(0x22, FromStart)
	if err != nil {
		return nil, err
	}
	rowFormatRaw, err := data.Uint8At(0x28, FromStart)
	if err != nil {
		return nil, err
	}
	rowFormat := HaRowType(rowFormatRaw)
	if _, err := rowFormat.Name(); err != nil {
		return nil, err
	}
	keyBlockSize, err := data.Uint16At(0x3e, FromStart)
	if err != nil {
		return nil, err
	}
	handlerOptionsRaw, err := data.Uint16At(0x1e, FromStart)
	if err != nil {
		return nil, err
	}
	handlerOptions := HaOption(handlerOptionsRaw)

	var connection, engineFromExtra, partitionInfo string
	if extrainfo.Len() > 0 {
		b, err := extrainfo.BytesPrefix16()
		if err != nil {
			return nil, fmt.Errorf("frm: extrainfo connection: %w", err)
		}
		connection = string(b)

		b, err = extrainfo.BytesPrefix16()
		if err != nil {
			return nil, fmt.Errorf("frm: extrainfo engine: %w", err)
		}
		engineFromExtra = string(b)

		b, err = extrainfo.BytesPrefix32()
		if err != nil {
			return nil, fmt.Errorf("frm: extrainfo partition info: %w", err)
		}
		partitionInfo = string(b)

		if err := extrainfo.Skip(2); err != nil {
			return nil, fmt.Errorf("frm: extrainfo trailer: %w", err)
		}
	}

	engine, err := resolveEngine(data, engineFromExtra)
	if err != nil {
		return nil, err
	}

	var packKeys *bool
	if handlerOptions.Has(HaOptionPackKeys) {
		v := true
		packKeys = &v
	} else if handlerOptions.Has(HaOptionNoPackKeys) {
		v := false
		packKeys = &v
	}

	var statsPersistent *bool
	if handlerOptions.Has(HaOptionStatsPersistent) {
		v := true
		statsPersistent = &v
	} else if handlerOptions.Has(HaOptionNoStatsPersistent) {
		v := false
		statsPersistent = &v
	}

	return &Table{
		Name:         FilenameToTablename(tableNameFromPath(path)),
		Charset:      charset,
		MySQLVersion: version,
		Options: TableOptions{
			Connection:      connection,
			Engine:          engine,
			Charset:         charset,
			HasCharset:      true,
			MinRows:         minRows,
			MaxRows:         maxRows,
			AvgRowLength:    avgRowLength,
			PackKeys:        packKeys,
			StatsPersistent: statsPersistent,
			Checksum:        handlerOptions.Has(HaOptionChecksum),
			DelayKeyWrite:   handlerOptions.Has(HaOptionDelayKeyWrite),
			RowFormat:       rowFormat,
			KeyBlockSize:    keyBlockSize,
			Partitions:      partitionInfo,
		},
	}, nil
}

// resolveEngine implements the exact-order engine resolution of §4.3:
// prefer the extrainfo engine string, falling back to the legacy db_type
// byte, and unwrapping a "partition" placeholder to the underlying
// engine recorded for partitioned tables.
func resolveEngine(data *ByteReader, engineFromExtra string) (string, error) {
	if engineFromExtra == "" {
		legacy, err := data.Uint8At(0x03, FromStart)
		if err != nil {
			return "", err
		}
		return LegacyDBType(legacy).Name()
	}
	if engineFromExtra == "partition" {
		underlying, err := data.Uint8At(0x3d, FromStart)
		if err != nil {
			return "", err
		}
		return LegacyDBType(underlying).Name()
	}
	return engineFromExtra, nil
}

// decodeTableComment implements §4.5: a short comment stored inline in
// forminfo, or (when forminfo signals 0xff) a longer one in extrainfo.
func decodeTableComment(data, extrainfo *ByteReader, forminfoOffset int, charset Charset) (string, error) {
	length, err := data.Uint8At(forminfoOffset+46, FromStart)
	if err != nil {
		return "", err
	}
	var raw []byte
	if length != 0xff {
		if length == 0 {
			return "", nil
		}
		raw, err = data.ReadAt(int(length), forminfoOffset+47)
		if err != nil {
			return "", fmt.Errorf("frm: table comment: %w", err)
		}
	} else {
		raw, err = extrainfo.BytesPrefix16()
		if err != nil {
			return "", fmt.Errorf("frm: table comment (extrainfo): %w", err)
		}
	}
	if len(raw) == 0 {
		return "", nil
	}
	return string(raw), nil
}

func tableNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
