package frm

import (
	"fmt"
	"strings"
)

// KeyAlgorithm identifies the index access method recorded in a key's
// header byte.
type KeyAlgorithm uint8

const (
	KeyAlgoUndefined KeyAlgorithm = iota
	KeyAlgoBTree
	KeyAlgoHash
	KeyAlgoRTree
	KeyAlgoFullText
)

var keyAlgorithmNames = map[KeyAlgorithm]string{
	KeyAlgoUndefined: "",
	KeyAlgoBTree:     "BTREE",
	KeyAlgoHash:      "HASH",
	KeyAlgoRTree:     "RTREE",
	KeyAlgoFullText:  "FULLTEXT",
}

// Key flag bits recorded in the 2-byte flags field of each key header.
const (
	keyFlagUnique  uint16 = 1 << 0
	keyFlagSpatial uint16 = 1 << 1
	keyFlagFullText uint16 = 1 << 2
	keyFlagPrimary uint16 = 1 << 3
)

// KeyPart names one column participating in an index, with an optional
// prefix length for indexes on string columns that don't cover the
// whole column.
type KeyPart struct {
	ColumnName   string
	PrefixLength int
}

// Key is a single decoded index definition.
type Key struct {
	Name     string
	Primary  bool
	Unique   bool
	Spatial  bool
	FullText bool
	Parts    []KeyPart
}

// Kind returns the SQL keyword(s) introducing this key in a CREATE TABLE
// clause: PRIMARY KEY, UNIQUE KEY, FULLTEXT KEY, SPATIAL KEY, or KEY.
func (k Key) Kind() string {
	switch {
	case k.Primary:
		return "PRIMARY KEY"
	case k.FullText:
		return "FULLTEXT KEY"
	case k.Spatial:
		return "SPATIAL KEY"
	case k.Unique:
		return "UNIQUE KEY"
	default:
		return "KEY"
	}
}

// ReferencesAutoIncrement reports whether any part of this key refers to
// col, the table's AUTO_INCREMENT column — InnoDB requires such a key to
// remain with the bare CREATE TABLE even when other secondary indexes
// are deferred.
func (k Key) ReferencesAutoIncrement(col string) bool {
	for _, p := range k.Parts {
		if p.ColumnName == col {
			return true
		}
	}
	return false
}

func (k Key) String() string {
	parts := make([]string, len(k.Parts))
	for i, p := range k.Parts {
		name := fmt.Sprintf("`%s`", p.ColumnName)
		if p.PrefixLength > 0 {
			name += fmt.Sprintf("(%d)", p.PrefixLength)
		}
		parts[i] = name
	}
	cols := "(" + strings.Join(parts, ",") + ")"
	if k.Primary {
		return fmt.Sprintf("PRIMARY KEY %s", cols)
	}
	return fmt.Sprintf("%s `%s` %s", k.Kind(), k.Name, cols)
}

// unpackKeys decodes the keyinfo section into a list of Keys, resolving
// each key part's field number against columns (in declaration order).
//
// Layout (see DESIGN.md for why this isn't MySQL's literal on-disk
// format): a key count byte, a total key-part count byte, then one
// key header per key (2-byte flag bitmask, 1-byte algorithm,
// 1-byte name length, name bytes, 1-byte part count), each followed by
// that many (2-byte field number, 2-byte prefix length) key parts.
func unpackKeys(keyinfo []byte, columns []Column) ([]Key, error) {
	if len(keyinfo) == 0 {
		return nil, nil
	}
	r := NewByteReader(keyinfo)
	keyCount, err := r.Uint8At(0, FromCurrent)
	if err != nil {
		return nil, fmt.Errorf("frm: keyinfo count: %w", err)
	}
	if _, err := r.Uint8At(0, FromCurrent); err != nil { // total key-part count, unused
		return nil, fmt.Errorf("frm: keyinfo part count: %w", err)
	}

	keys := make([]Key, 0, keyCount)
	for i := 0; i < int(keyCount); i++ {
		flags, err := r.Uint16At(0, FromCurrent)
		if err != nil {
			return nil, fmt.Errorf("frm: key %d flags: %w", i, err)
		}
		if _, err := r.Uint8At(0, FromCurrent); err != nil { // algorithm, unused
			return nil, fmt.Errorf("frm: key %d algorithm: %w", i, err)
		}
		nameLen, err := r.Uint8At(0, FromCurrent)
		if err != nil {
			return nil, fmt.Errorf("frm: key %d name length: %w", i, err)
		}
		nameBytes, err := r.Read(int(nameLen))
		if err != nil {
			return nil, fmt.Errorf("frm: key %d name: %w", i, err)
		}
		partCount, err := r.Uint8At(0, FromCurrent)
		if err != nil {
			return nil, fmt.Errorf("frm: key %d part count: %w", i, err)
		}

		key := Key{
			Name:     string(nameBytes),
			Primary:  flags&keyFlagPrimary != 0,
			Unique:   flags&keyFlagUnique != 0 || flags&keyFlagPrimary != 0,
			Spatial:  flags&keyFlagSpatial != 0,
			FullText: flags&keyFlagFullText != 0,
		}
		if key.Primary {
			key.Name = "PRIMARY"
		}

		for p := 0; p < int(partCount); p++ {
			fieldNr, err := r.Uint16At(0, FromCurrent)
			if err != nil {
				return nil, fmt.Errorf("frm: key %d part %d field number: %w", i, p, err)
			}
			prefixLen, err := r.Uint16At(0, FromCurrent)
			if err != nil {
				return nil, fmt.Errorf("frm: key %d part %d prefix length: %w", i, p, err)
			}
			if int(fieldNr) >= len(columns) {
				return nil, fmt.Errorf("frm: key %d part %d references out-of-range field %d", i, p, fieldNr)
			}
			col := columns[fieldNr]
			part := KeyPart{ColumnName: col.Name}
			if int(prefixLen) != col.Length {
				part.PrefixLength = int(prefixLen)
			}
			key.Parts = append(key.Parts, part)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
