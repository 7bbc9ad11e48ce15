package defaults

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyDefaults(t *testing.T) {
	cfg := Empty()

	require.Equal(t, "", cfg.String("user.email"))
	require.Equal(t, int64(2), cfg.Int("resolve.min-prefix-length"))
	require.Equal(t, int64(2), cfg.Int("suggestions.max-distance"))
}

func TestSetAndGet(t *testing.T) {
	cfg := Empty()

	require.Nil(t, cfg.SetString("user.email", "ada@example.org"))
	require.Equal(t, "ada@example.org", cfg.String("user.email"))
}
