package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creativedestruction/searchdash/internal/adapters/driven/storage/memory"
	"github.com/creativedestruction/searchdash/internal/core/domain"
)

func TestStatsCmd(t *testing.T) {
	_, _, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Keys: 3")
	assert.Contains(t, out, "Sample keys:")
	assert.Contains(t, out, "  Tweet:1")
	assert.Contains(t, out, "Random key: ")
}

func TestStatsCmd_Error(t *testing.T) {
	store, _, cleanup := setupTestServices(t)
	defer cleanup()
	store.Fail(memory.OpStats, domain.ErrConnectionLost)

	_, err := execute(t, "stats")

	assert.ErrorIs(t, err, domain.ErrConnectionLost)
}

func TestFormatFields(t *testing.T) {
	got := formatFields(map[string]string{"content": "hi", "author": "carol"})
	assert.Equal(t, "    author = carol\n    content = hi\n", got)
}
