package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/appointments-api/internal/config"
	"github.com/aanand-mishra/appointments-api/internal/storage/jsonfile"
	"github.com/aanand-mishra/appointments-api/internal/storage/sqlite"
)

func TestNewStorage(t *testing.T) {
	dir := t.TempDir()

	fileStore, err := newStorage(&config.Config{
		StorageDriver: config.DriverFile,
		StoragePath:   filepath.Join(dir, "appointments.txt"),
	})
	require.NoError(t, err)
	assert.IsType(t, &jsonfile.JSONFile{}, fileStore)

	dbStore, err := newStorage(&config.Config{
		StorageDriver: config.DriverSQLite,
		StoragePath:   filepath.Join(dir, "appointments.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &sqlite.SQLite{}, dbStore)
	assert.NoError(t, dbStore.Close())

	_, err = newStorage(&config.Config{StorageDriver: "postgres"})
	assert.Error(t, err)
}

func TestNewStorage_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appointments.txt")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := newStorage(&config.Config{StorageDriver: config.DriverFile, StoragePath: path})
	assert.Error(t, err)
}
