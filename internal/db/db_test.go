package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverFor(t *testing.T) {
	assert.Equal(t, DriverPostgres, DriverFor("postgres://toilet:pw@localhost:5432/toilet?sslmode=disable"))
	assert.Equal(t, DriverPostgres, DriverFor("postgresql://localhost/toilet"))
	assert.Equal(t, DriverSQLite, DriverFor("toilet.db?_journal_mode=WAL"))
	assert.Equal(t, DriverSQLite, DriverFor("file::memory:"))
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	database, err := Connect("file::memory:")
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, RunMigrations(database))
	require.NoError(t, RunMigrations(database))

	var tables []string
	err = database.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('owners', 'teams', 'games', 'schedules') ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []string{"games", "owners", "schedules", "teams"}, tables)
}
