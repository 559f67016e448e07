package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries, "the binary must carry its schema")
	for _, e := range entries {
		assert.Regexp(t, `^\d{5}_.+\.sql$`, e.Name())
	}
}

func TestGooseLoggerWrites(t *testing.T) {
	assert.NotPanics(t, func() {
		gooseLogger{log: zap.NewNop().Sugar()}.Printf("applied %d", 1)
	})
}
