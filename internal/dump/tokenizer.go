// Package dump streams mysqldump textual output and splits it into
// per-database, per-table files, optionally deferring secondary index
// and constraint creation to a trailing ALTER TABLE.
package dump

import (
	"bufio"
	"io"
	"strings"
)

// SectionKind identifies the kind of a dump section, derived from its
// opening marker comment.
type SectionKind int

const (
	SectionHeader SectionKind = iota
	SectionReplicationInfo
	SectionSchema
	SectionTableDefinition
	SectionTableData
	SectionViewTemporaryDefinition
	SectionViewDefinition
	SectionSchemaRoutines
	SectionSchemaEvents
	SectionUnknown
)

func (k SectionKind) String() string {
	switch k {
	case SectionHeader:
		return "header"
	case SectionReplicationInfo:
		return "replication_info"
	case SectionSchema:
		return "schema"
	case SectionTableDefinition:
		return "table_definition"
	case SectionTableData:
		return "table_data"
	case SectionViewTemporaryDefinition:
		return "view_temporary_definition"
	case SectionViewDefinition:
		return "view_definition"
	case SectionSchemaRoutines:
		return "schema_routines"
	case SectionSchemaEvents:
		return "schema_events"
	default:
		return "unknown"
	}
}

// marker pairs a prefix-matched comment line with the section kind it
// opens. Order matters only in that every prefix must be distinct enough
// not to collide; mysqldump's own marker comments never do.
type marker struct {
	prefix string
	kind   SectionKind
}

var markers = []marker{
	{"-- MySQL dump", SectionHeader},
	{"-- Position to start replication or point-in-time recovery from", SectionReplicationInfo},
	{"-- Current Database:", SectionSchema},
	{"-- Table structure for table", SectionTableDefinition},
	{"-- Dumping data for table", SectionTableData},
	{"-- Temporary view structure for view", SectionViewTemporaryDefinition},
	{"-- Final view structure for view", SectionViewDefinition},
	{"-- Dumping routines for database", SectionSchemaRoutines},
	{"-- Dumping events for database", SectionSchemaEvents},
}

func classify(line string) SectionKind {
	for _, m := range markers {
		if strings.HasPrefix(line, m.prefix) {
			return m.kind
		}
	}
	return SectionUnknown
}

// SectionEvent is one (kind, lines) pair yielded by DumpTokenizer. Lines
// always starts with the line that opened the section: the marker line
// for every marker-opened section, and the first line of the stream for
// the initial Header.
type SectionEvent struct {
	Kind  SectionKind
	Lines []string
}

// DumpTokenizer reads a mysqldump stream line by line and groups it into
// SectionEvents bounded by marker comments. Next is called repeatedly
// until it returns io.EOF; each call fully consumes the section's lines
// before returning, so there is no separate "drain" step for the driver
// to perform — every line physically read is accounted for in some
// event.
type DumpTokenizer struct {
	scanner *bufio.Scanner
	pending string
	hasPending bool
	started bool
}

// NewDumpTokenizer wraps r for line-oriented section scanning.
func NewDumpTokenizer(r io.Reader) *DumpTokenizer {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &DumpTokenizer{scanner: s}
}

func (t *DumpTokenizer) readLine() (string, bool) {
	if t.hasPending {
		t.hasPending = false
		return t.pending, true
	}
	if !t.scanner.Scan() {
		return "", false
	}
	return t.scanner.Text(), true
}

func (t *DumpTokenizer) unreadLine(line string) {
	t.pending = line
	t.hasPending = true
}

// Next returns the next section event, or io.EOF once the stream is
// exhausted. The very first event is always SectionHeader even if the
// stream doesn't open with a "-- MySQL dump" line — an empty header is a
// valid (if unusual) input.
func (t *DumpTokenizer) Next() (SectionEvent, error) {
	first, ok := t.readLine()
	if !ok {
		return SectionEvent{}, io.EOF
	}

	var kind SectionKind
	var lines []string
	if !t.started {
		t.started = true
		kind = SectionHeader
		lines = append(lines, first)
	} else {
		kind = classify(first)
		lines = append(lines, first)
	}

	for {
		line, ok := t.readLine()
		if !ok {
			return SectionEvent{Kind: kind, Lines: lines}, nil
		}
		if classify(line) != SectionUnknown {
			t.unreadLine(line)
			return SectionEvent{Kind: kind, Lines: lines}, nil
		}
		lines = append(lines, line)
	}
}
