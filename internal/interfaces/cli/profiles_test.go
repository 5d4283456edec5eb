package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
)

func TestProfilesCmd_NeedsNoConfig(t *testing.T) {
	out, _, err := runCLI(t, NewRootCommand(), "--config", "/nonexistent/coalition.yaml", "profiles", "-o", "json")
	require.NoError(t, err)

	var profiles []profileInfo
	require.NoError(t, json.Unmarshal([]byte(out), &profiles))
	require.Len(t, profiles, len(coalition.ProfileNames()))

	byName := map[string]profileInfo{}
	for _, p := range profiles {
		byName[p.Name] = p
	}
	tk, ok := byName[coalition.ProfileTK2023]
	require.True(t, ok)
	assert.True(t, tk.Topics)
	assert.Len(t, tk.Spaces, 2)
	assert.Equal(t, 12, tk.UnrealisticPairs)

	ek, ok := byName[coalition.ProfileEK]
	require.True(t, ok)
	assert.False(t, ek.Topics)
	assert.Equal(t, 19, ek.Parties)
}

func TestProfilesCmd_Table(t *testing.T) {
	out, _, err := runCLI(t, NewRootCommand(), "profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, coalition.ProfileTK2023)
	assert.Contains(t, out, "kieskompas_2d(2D, w=0.5)")
}
