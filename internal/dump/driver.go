package dump

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"mysqlkit/internal/logsink"
)

// NoDatabaseError reports that a section requiring a current database
// arrived before any database had been established by a "header" or
// "schema" section.
type NoDatabaseError struct {
	Section SectionKind
}

func (e *NoDatabaseError) Error() string {
	return fmt.Sprintf("dump: %s section arrived with no current database set", e.Section)
}

// Options configures a SplitterDriver run.
type Options struct {
	Target        Target
	Directory     string
	FilterCommand string
	Regex         *regexp.Regexp
}

// SplitterDriver consumes SectionEvents from a DumpTokenizer and routes
// each to its output file under Options.Directory, applying the
// deferred-index rewrite to InnoDB table_definition sections and
// injecting the resulting ALTER TABLE into the matching table_data
// section.
type SplitterDriver struct {
	opts             Options
	sink             logsink.Sink
	state            *SplitterState
	deferIndexes     bool
	deferConstraints bool
}

// NewSplitterDriver builds a driver for a single run, logging the
// UnknownTarget warning immediately if opts.Target isn't recognized.
func NewSplitterDriver(opts Options, sink logsink.Sink) *SplitterDriver {
	if opts.Regex == nil {
		opts.Regex = regexp.MustCompile(".*")
	}
	indexes, constraints, known := Deferrals(opts.Target)
	if !known {
		sink.Warn("unknown target %q; indexes will not be deferred", opts.Target)
	}
	return &SplitterDriver{
		opts:             opts,
		sink:             sink,
		state:            NewSplitterState(),
		deferIndexes:     indexes,
		deferConstraints: constraints,
	}
}

// Run drains tok to completion, writing every routed section to disk,
// and returns the final SplitterState (mainly useful for its counters)
// once the stream reaches EOF.
func (d *SplitterDriver) Run(ctx context.Context, tok *DumpTokenizer) (*SplitterState, error) {
	for {
		event, err := tok.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return d.state, err
		}
		if err := d.handle(ctx, event); err != nil {
			return d.state, err
		}
	}
	d.sink.Info("Split input into %d database(s) %d table(s) %d view(s)",
		d.state.DatabaseCount, d.state.TableCount, d.state.ViewCount)
	return d.state, nil
}

func (d *SplitterDriver) handle(ctx context.Context, e SectionEvent) error {
	switch e.Kind {
	case SectionHeader:
		return d.handleHeader(e)
	case SectionReplicationInfo:
		return d.writeWholeSection(ctx, filepath.Join(d.opts.Directory, "replication_info.sql"), e.Lines, false)
	case SectionSchema:
		return d.handleSchema(ctx, e)
	case SectionSchemaRoutines:
		if d.state.CurrentDB == "" {
			return &NoDatabaseError{Section: e.Kind}
		}
		return d.writeWholeSection(ctx, filepath.Join(d.opts.Directory, d.state.CurrentDB, "routines.sql"), e.Lines, false)
	case SectionSchemaEvents:
		if d.state.CurrentDB == "" {
			return &NoDatabaseError{Section: e.Kind}
		}
		return d.writeWholeSection(ctx, filepath.Join(d.opts.Directory, d.state.CurrentDB, "events.sql"), e.Lines, false)
	case SectionTableDefinition:
		return d.handleTableDefinition(ctx, e)
	case SectionTableData:
		return d.handleTableData(ctx, e)
	case SectionViewTemporaryDefinition, SectionViewDefinition:
		return d.handleView(ctx, e)
	default:
		return nil // unknown: drain silently, already fully consumed by the tokenizer
	}
}

func (d *SplitterDriver) handleHeader(e SectionEvent) error {
	d.state.Header = e.Lines
	joined := strings.Join(e.Lines, "\n")
	if m := databaseHeaderRegexp.FindStringSubmatch(joined); len(m) == 2 && m[1] != "" {
		d.state.CurrentDB = m[1]
		d.state.DatabaseCount++
	}
	return nil
}

var databaseHeaderRegexp = regexp.MustCompile(`(?m)Database: (.*)$`)

func (d *SplitterDriver) handleSchema(ctx context.Context, e SectionEvent) error {
	if len(e.Lines) == 0 {
		return &NoDatabaseError{Section: e.Kind}
	}
	db := ExtractIdentifier(e.Lines[0])
	if db == "" {
		return &NoDatabaseError{Section: e.Kind}
	}
	d.state.CurrentDB = db
	d.state.DatabaseCount++
	return d.writeWholeSection(ctx, filepath.Join(d.opts.Directory, db, "create.sql"), e.Lines, false)
}

func (d *SplitterDriver) handleTableDefinition(ctx context.Context, e SectionEvent) error {
	if d.state.CurrentDB == "" {
		return &NoDatabaseError{Section: e.Kind}
	}
	if len(e.Lines) == 0 {
		return fmt.Errorf("dump: empty table_definition section")
	}
	table := ExtractIdentifier(e.Lines[0])
	path := filepath.Join(d.opts.Directory, d.state.CurrentDB, table+".schema.sql")

	block := strings.Join(e.Lines, "\n")
	if d.deferIndexes && strings.Contains(block, "ENGINE=InnoDB") {
		tableDDL := ExtractCreateTable(block)
		alter, rewritten := SplitIndexes(tableDDL, d.deferConstraints)
		if alter != "" {
			block = strings.Replace(block, tableDDL, rewritten, 1)
			d.state.PendingAlter = alter
			d.state.PendingAlterTable = table
			d.sink.Info("deferring indexes for %s.%s (%s)", d.state.CurrentDB, table, path)
		}
	}

	if !d.opts.Regex.MatchString(path) {
		d.sink.Debug("no regex match on %q", path)
		return nil
	}
	d.state.TableCount++
	return d.writeWholeSection(ctx, path, strings.Split(block, "\n"), false)
}

func (d *SplitterDriver) handleTableData(ctx context.Context, e SectionEvent) error {
	if d.state.CurrentDB == "" {
		return &NoDatabaseError{Section: e.Kind}
	}
	if len(e.Lines) < 3 {
		return fmt.Errorf("dump: table_data section shorter than the expected 3-line comment header")
	}
	table := ExtractIdentifier(e.Lines[0])
	path := filepath.Join(d.opts.Directory, d.state.CurrentDB, table+".data.sql")

	if !d.opts.Regex.MatchString(path) {
		d.sink.Debug("no regex match on %q", path)
		return nil
	}

	lines := append([]string{}, e.Lines...)
	if d.state.PendingAlter != "" && d.state.PendingAlterTable == table {
		lines = append(lines, "", "--", "-- InnoDB Fast Index Creation (generated by dbsake)", "--", "", "",
			d.state.PendingAlter, "")
		d.sink.Info("injecting deferred index creation %s", path)
		d.state.PendingAlter = ""
		d.state.PendingAlterTable = ""
	}
	return d.writeWholeSection(ctx, path, lines, false)
}

func (d *SplitterDriver) handleView(ctx context.Context, e SectionEvent) error {
	if d.state.CurrentDB == "" {
		return &NoDatabaseError{Section: e.Kind}
	}
	path := filepath.Join(d.opts.Directory, d.state.CurrentDB, "views.sql")
	if !d.opts.Regex.MatchString(path) {
		d.sink.Debug("no regex match on %q", path)
		return nil
	}
	truncate := d.state.NeedsViewsTruncation(path)
	d.state.ViewCount++
	w, err := NewOutputWriter(ctx, path, d.opts.FilterCommand, !truncate)
	if err != nil {
		return err
	}
	for _, line := range e.Lines {
		if err := w.WriteString(line + "\n"); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

// writeWholeSection prepends the captured dump header (unless
// withoutHeader) and writes lines through the filter command.
func (d *SplitterDriver) writeWholeSection(ctx context.Context, path string, lines []string, withoutHeader bool) error {
	w, err := NewOutputWriter(ctx, path, d.opts.FilterCommand, false)
	if err != nil {
		return err
	}
	if !withoutHeader {
		for _, h := range d.state.Header {
			if err := w.WriteString(h + "\n"); err != nil {
				w.Close()
				return err
			}
		}
	}
	for _, line := range lines {
		if err := w.WriteString(line + "\n"); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
