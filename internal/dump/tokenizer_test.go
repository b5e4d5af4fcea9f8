package dump_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysqlkit/internal/dump"
)

const sampleDump = "" +
	"-- MySQL dump 10.13  Distrib 5.7.23\n" +
	"--\n" +
	"-- Host: localhost\n" +
	"--\n" +
	"-- Current Database: `app`\n" +
	"CREATE DATABASE IF NOT EXISTS `app`;\n" +
	"USE `app`;\n" +
	"\n" +
	"-- Table structure for table `t`\n" +
	"DROP TABLE IF EXISTS `t`;\n" +
	"CREATE TABLE `t` (\n" +
	"  `id` int NOT NULL AUTO_INCREMENT,\n" +
	"  `v` int NOT NULL,\n" +
	"  PRIMARY KEY (`id`),\n" +
	"  KEY `i_v` (`v`)\n" +
	") ENGINE=InnoDB;\n" +
	"\n" +
	"-- Dumping data for table `t`\n" +
	"LOCK TABLES `t` WRITE;\n" +
	"INSERT INTO `t` VALUES (1,10);\n" +
	"UNLOCK TABLES;\n"

func collectEvents(t *testing.T, input string) []dump.SectionEvent {
	t.Helper()
	tok := dump.NewDumpTokenizer(strings.NewReader(input))
	var events []dump.SectionEvent
	for {
		e, err := tok.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		events = append(events, e)
	}
	return events
}

func TestDumpTokenizerSplitsIntoExpectedSections(t *testing.T) {
	events := collectEvents(t, sampleDump)
	require.Len(t, events, 4)

	assert.Equal(t, dump.SectionHeader, events[0].Kind)
	assert.Contains(t, events[0].Lines[0], "MySQL dump")

	assert.Equal(t, dump.SectionSchema, events[1].Kind)
	assert.Contains(t, events[1].Lines[0], "Current Database: `app`")

	assert.Equal(t, dump.SectionTableDefinition, events[2].Kind)
	assert.Contains(t, events[2].Lines[0], "Table structure for table `t`")
	assert.True(t, strings.Contains(strings.Join(events[2].Lines, "\n"), "CREATE TABLE `t`"))

	assert.Equal(t, dump.SectionTableData, events[3].Kind)
	assert.Contains(t, events[3].Lines[0], "Dumping data for table `t`")
	assert.Contains(t, strings.Join(events[3].Lines, "\n"), "INSERT INTO `t`")
}

func TestDumpTokenizerAlwaysYieldsHeaderFirst(t *testing.T) {
	events := collectEvents(t, "some random line\nanother one\n")
	require.Len(t, events, 1)
	assert.Equal(t, dump.SectionHeader, events[0].Kind)
	assert.Equal(t, []string{"some random line", "another one"}, events[0].Lines)
}

func TestDumpTokenizerEmptyInputYieldsNoEvents(t *testing.T) {
	events := collectEvents(t, "")
	assert.Empty(t, events)
}

func TestSectionKindString(t *testing.T) {
	assert.Equal(t, "table_definition", dump.SectionTableDefinition.String())
	assert.Equal(t, "unknown", dump.SectionKind(99).String())
}
