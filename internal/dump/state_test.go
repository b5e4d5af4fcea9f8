package dump_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mysqlkit/internal/dump"
)

func TestDeferrals(t *testing.T) {
	cases := []struct {
		target                       dump.Target
		indexes, constraints, known bool
	}{
		{dump.Target55, true, false, true},
		{dump.Target56, true, true, true},
		{dump.Target57, true, true, true},
		{dump.Target("4.1"), false, false, false},
		{dump.Target(""), false, false, false},
	}
	for _, tc := range cases {
		indexes, constraints, known := dump.Deferrals(tc.target)
		assert.Equal(t, tc.indexes, indexes, "target %q indexes", tc.target)
		assert.Equal(t, tc.constraints, constraints, "target %q constraints", tc.target)
		assert.Equal(t, tc.known, known, "target %q known", tc.target)
	}
}

func TestNeedsViewsTruncationOnlyFirstCallPerPath(t *testing.T) {
	state := dump.NewSplitterState()
	assert.True(t, state.NeedsViewsTruncation("app/views.sql"))
	assert.False(t, state.NeedsViewsTruncation("app/views.sql"))
	assert.True(t, state.NeedsViewsTruncation("other/views.sql"))
}
