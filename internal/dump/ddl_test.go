package dump_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysqlkit/internal/dump"
)

const sampleCreateTable = "CREATE TABLE `t` (\n" +
	"  `id` int NOT NULL AUTO_INCREMENT,\n" +
	"  `v` int NOT NULL,\n" +
	"  `c` int NOT NULL,\n" +
	"  PRIMARY KEY (`id`),\n" +
	"  KEY `i_v` (`v`),\n" +
	"  CONSTRAINT `fk_c` FOREIGN KEY (`c`) REFERENCES `other` (`id`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8"

func TestExtractCreateTable(t *testing.T) {
	block := "DROP TABLE IF EXISTS `t`;\n" + sampleCreateTable + ";\n"
	got := dump.ExtractCreateTable(block)
	assert.Equal(t, sampleCreateTable+";", got)
}

func TestExtractCreateTableNoMatch(t *testing.T) {
	assert.Equal(t, "", dump.ExtractCreateTable("LOCK TABLES `t` WRITE;"))
}

func TestSplitIndexesDefersSecondaryKey(t *testing.T) {
	alter, rewritten := dump.SplitIndexes(sampleCreateTable, false)
	require.NotEmpty(t, alter)
	assert.Equal(t, "ALTER TABLE `t` ADD KEY `i_v` (`v`);", alter)
	assert.NotContains(t, rewritten, "KEY `i_v`")
	assert.Contains(t, rewritten, "PRIMARY KEY (`id`)")
	assert.Contains(t, rewritten, "CONSTRAINT `fk_c`")
	assert.Contains(t, rewritten, "ENGINE=InnoDB DEFAULT CHARSET=utf8")
}

func TestSplitIndexesDefersConstraintsWhenRequested(t *testing.T) {
	alter, rewritten := dump.SplitIndexes(sampleCreateTable, true)
	require.NotEmpty(t, alter)
	assert.Contains(t, alter, "ADD KEY `i_v` (`v`)")
	assert.Contains(t, alter, "ADD CONSTRAINT `fk_c` FOREIGN KEY (`c`) REFERENCES `other` (`id`)")
	assert.NotContains(t, rewritten, "CONSTRAINT `fk_c`")
}

func TestSplitIndexesKeepsKeyOnAutoIncrementColumn(t *testing.T) {
	ddl := "CREATE TABLE `t` (\n" +
		"  `id` int NOT NULL AUTO_INCREMENT,\n" +
		"  KEY `i_id` (`id`)\n" +
		") ENGINE=InnoDB"
	alter, rewritten := dump.SplitIndexes(ddl, false)
	assert.Equal(t, "", alter)
	assert.Equal(t, ddl, rewritten)
}

func TestSplitIndexesIsIdempotent(t *testing.T) {
	_, rewritten := dump.SplitIndexes(sampleCreateTable, true)
	alter2, rewritten2 := dump.SplitIndexes(rewritten, true)
	assert.Equal(t, "", alter2)
	assert.Equal(t, rewritten, rewritten2)
}

func TestSplitIndexesNoSecondaryKeysReturnsUnchanged(t *testing.T) {
	ddl := "CREATE TABLE `t` (`id` int NOT NULL, PRIMARY KEY (`id`)) ENGINE=InnoDB"
	alter, rewritten := dump.SplitIndexes(ddl, true)
	assert.Equal(t, "", alter)
	assert.Equal(t, ddl, rewritten)
}

func TestSplitIndexesHandlesDecimalColumnWithComma(t *testing.T) {
	ddl := "CREATE TABLE `t` (\n" +
		"  `id` int NOT NULL AUTO_INCREMENT,\n" +
		"  `v` decimal(10,2) NOT NULL,\n" +
		"  PRIMARY KEY (`id`),\n" +
		"  KEY `i_v` (`v`)\n" +
		") ENGINE=InnoDB"
	alter, rewritten := dump.SplitIndexes(ddl, false)
	require.NotEmpty(t, alter)
	assert.Contains(t, rewritten, "`v` decimal(10,2) NOT NULL")
	assert.True(t, strings.Count(rewritten, "decimal(10,2)") == 1)
}
