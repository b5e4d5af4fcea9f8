package dump_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysqlkit/internal/dump"
	"mysqlkit/internal/logsink"
	"mysqlkit/internal/sqlvalidate"
)

type recordingSink struct {
	warnings []string
}

func (s *recordingSink) Warn(format string, args ...interface{}) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}
func (s *recordingSink) Info(string, ...interface{})  {}
func (s *recordingSink) Debug(string, ...interface{}) {}

func innodbDump(secondaryKeyClause, foreignKeyClause string) string {
	var b strings.Builder
	b.WriteString("-- MySQL dump 10.13  Distrib 5.7.23\n")
	b.WriteString("--\n")
	b.WriteString("-- Current Database: `app`\n")
	b.WriteString("CREATE DATABASE IF NOT EXISTS `app`;\n")
	b.WriteString("USE `app`;\n")
	b.WriteString("\n")
	b.WriteString("-- Table structure for table `t`\n")
	b.WriteString("DROP TABLE IF EXISTS `t`;\n")
	b.WriteString("CREATE TABLE `t` (\n")
	b.WriteString("  `id` int NOT NULL AUTO_INCREMENT,\n")
	b.WriteString("  `v` int NOT NULL,\n")
	if foreignKeyClause != "" {
		b.WriteString("  `c` int NOT NULL,\n")
	}
	b.WriteString("  PRIMARY KEY (`id`)")
	if secondaryKeyClause != "" {
		b.WriteString(",\n  " + secondaryKeyClause)
	}
	if foreignKeyClause != "" {
		b.WriteString(",\n  " + foreignKeyClause)
	}
	b.WriteString("\n) ENGINE=InnoDB DEFAULT CHARSET=utf8;\n")
	b.WriteString("\n")
	b.WriteString("-- Dumping data for table `t`\n")
	b.WriteString("LOCK TABLES `t` WRITE;\n")
	b.WriteString("INSERT INTO `t` VALUES (1,10);\n")
	b.WriteString("UNLOCK TABLES;\n")
	return b.String()
}

func TestSplitterDriverTarget55DefersSecondaryKeyOnly(t *testing.T) {
	dir := t.TempDir()
	input := innodbDump("KEY `i_v` (`v`)", "")
	tok := dump.NewDumpTokenizer(strings.NewReader(input))
	driver := dump.NewSplitterDriver(dump.Options{
		Target:    dump.Target55,
		Directory: dir,
	}, logsink.Nop{})

	state, err := driver.Run(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, 1, state.DatabaseCount)
	assert.Equal(t, 1, state.TableCount)

	schema, err := os.ReadFile(filepath.Join(dir, "app", "t.schema.sql"))
	require.NoError(t, err)
	assert.NotContains(t, string(schema), "KEY `i_v`")
	assert.Contains(t, string(schema), "PRIMARY KEY (`id`)")

	data, err := os.ReadFile(filepath.Join(dir, "app", "t.data.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "ALTER TABLE `t` ADD KEY `i_v` (`v`);")
	assert.Contains(t, string(data), "InnoDB Fast Index Creation")

	create, err := os.ReadFile(filepath.Join(dir, "app", "create.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(create), "CREATE DATABASE IF NOT EXISTS `app`")

	extracted := dump.ExtractCreateTable(string(schema))
	require.NotEmpty(t, extracted)
	assert.NoError(t, sqlvalidate.ValidateCreateTable(extracted))

	alterStart := strings.Index(string(data), "ALTER TABLE")
	require.GreaterOrEqual(t, alterStart, 0)
	alterStmt := string(data)[alterStart:]
	alterStmt = alterStmt[:strings.IndexByte(alterStmt, '\n')]
	assert.NoError(t, sqlvalidate.ValidateAlterTable(strings.TrimSuffix(alterStmt, ";")+";"))
}

func TestSplitterDriverTarget57AlsoDefersForeignKey(t *testing.T) {
	dir := t.TempDir()
	input := innodbDump("KEY `i_v` (`v`)", "CONSTRAINT `fk_c` FOREIGN KEY (`c`) REFERENCES `other` (`id`)")
	tok := dump.NewDumpTokenizer(strings.NewReader(input))
	driver := dump.NewSplitterDriver(dump.Options{
		Target:    dump.Target57,
		Directory: dir,
	}, logsink.Nop{})

	_, err := driver.Run(context.Background(), tok)
	require.NoError(t, err)

	schema, err := os.ReadFile(filepath.Join(dir, "app", "t.schema.sql"))
	require.NoError(t, err)
	assert.NotContains(t, string(schema), "CONSTRAINT `fk_c`")

	data, err := os.ReadFile(filepath.Join(dir, "app", "t.data.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "ADD KEY `i_v` (`v`)")
	assert.Contains(t, string(data), "ADD CONSTRAINT `fk_c`")
}

func TestSplitterDriverUnknownTargetWarnsAndSkipsDeferral(t *testing.T) {
	dir := t.TempDir()
	input := innodbDump("KEY `i_v` (`v`)", "")
	tok := dump.NewDumpTokenizer(strings.NewReader(input))
	sink := &recordingSink{}
	driver := dump.NewSplitterDriver(dump.Options{
		Target:    dump.Target("4.1"),
		Directory: dir,
	}, sink)

	_, err := driver.Run(context.Background(), tok)
	require.NoError(t, err)
	require.Len(t, sink.warnings, 1)
	assert.Contains(t, sink.warnings[0], "unknown target")

	data, err := os.ReadFile(filepath.Join(dir, "app", "t.data.sql"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "ALTER TABLE")

	schema, err := os.ReadFile(filepath.Join(dir, "app", "t.schema.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(schema), "KEY `i_v`")
}

func TestSplitterDriverRegexExcludesTableFiles(t *testing.T) {
	dir := t.TempDir()
	input := innodbDump("KEY `i_v` (`v`)", "")
	tok := dump.NewDumpTokenizer(strings.NewReader(input))
	driver := dump.NewSplitterDriver(dump.Options{
		Target:    dump.Target55,
		Directory: dir,
		Regex:     regexp.MustCompile(`create\.sql$`),
	}, logsink.Nop{})

	state, err := driver.Run(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, 0, state.TableCount)

	_, err = os.Stat(filepath.Join(dir, "app", "t.schema.sql"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "app", "t.data.sql"))
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(dir, "app", "create.sql"))
	assert.NoError(t, err)
}
