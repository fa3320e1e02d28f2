package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames_Ordered(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_users.sql", "0002_user_slots.sql"}, names)
}

func TestSlotsTableKeyedByUserAndSlot(t *testing.T) {
	body, err := files.ReadFile("0002_user_slots.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "PRIMARY KEY (user_id, slot)"))
}
