package dump_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mysqlkit/internal/dump"
)

func TestExtractIdentifier(t *testing.T) {
	cases := []struct {
		name string
		line string
		want string
	}{
		{"table", "-- Table structure for table `orders`", "orders"},
		{"database", "-- Current Database: `app`", "app"},
		{"view", "-- Final view structure for view `v1`", "v1"},
		{"no backticks", "-- Dumping routines for database", ""},
		{"single backtick", "-- broken `line", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, dump.ExtractIdentifier(tc.line))
		})
	}
}
