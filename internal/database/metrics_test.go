package database

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStats struct{}

func (fixedStats) AcquiredConns() int32 { return 3 }
func (fixedStats) IdleConns() int32     { return 2 }
func (fixedStats) TotalConns() int32    { return 5 }
func (fixedStats) MaxConns() int32      { return 20 }
func (fixedStats) AcquireCount() int64  { return 41 }

func TestPoolCollector(t *testing.T) {
	t.Parallel()

	collector := newPoolCollector(func() poolStats { return fixedStats{} })
	assert.Equal(t, 5, testutil.CollectAndCount(collector))

	expected := `
# HELP pgxpool_acquired_conns Connections currently checked out.
# TYPE pgxpool_acquired_conns gauge
pgxpool_acquired_conns 3
# HELP pgxpool_max_conns Configured maximum pool size.
# TYPE pgxpool_max_conns gauge
pgxpool_max_conns 20
`
	require.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"pgxpool_acquired_conns", "pgxpool_max_conns"))
}
