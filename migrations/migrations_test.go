package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_ContainsOrderedMigrations(t *testing.T) {
	names, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"001_create_products.up.sql",
		"002_create_users.up.sql",
		"003_create_orders.up.sql",
	}, names)
}
