package db

import (
	"testing"

	"github.com/huandu/go-sqlbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteMemory(t *testing.T) {
	conn, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, sqlbuilder.SQLite, conn.Flavor())

	var one int
	require.NoError(t, conn.DB.Get(&one, "SELECT 1"))
	assert.Equal(t, 1, one)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "root@/db")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestPostgresFlavor(t *testing.T) {
	conn := &Connection{Driver: DriverPostgres}
	assert.Equal(t, sqlbuilder.PostgreSQL, conn.Flavor())
}
