package directory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheretolive/wheretolive/internal/directory"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestService_Build(t *testing.T) {
	path := writeDataset(t, ",average_monthly_cost_$,safety_index\n"+
		"portugal,1200,75\n"+
		"hong kong,2800,82\n"+
		"atlantis,0,0\n"+
		"portugal,1200,75\n")

	svc := directory.NewService(directory.ServiceConfig{
		DatasetPath: path,
		Logger:      zerolog.Nop(),
	})

	entries, err := svc.Build()
	require.NoError(t, err)

	// Duplicate portugal collapses to one entry, first occurrence wins.
	require.Len(t, entries, 3)

	assert.Equal(t, "portugal", entries[0].Country)
	assert.Equal(t, "PRT", entries[0].Code)
	assert.True(t, entries[0].HasData)

	// Override table entry, deterministic regardless of registry behavior.
	assert.Equal(t, "HKG", entries[1].Code)
	assert.True(t, entries[1].HasData)

	// Unresolved entries are kept in the build output but flagged.
	assert.Equal(t, directory.CodeUnresolved, entries[2].Code)
	assert.False(t, entries[2].HasData)
}

func TestService_Build_MissingFile(t *testing.T) {
	svc := directory.NewService(directory.ServiceConfig{
		DatasetPath: filepath.Join(t.TempDir(), "nope.csv"),
		Logger:      zerolog.Nop(),
	})

	entries, err := svc.Build()
	assert.Error(t, err)
	assert.Empty(t, entries)
}

func TestService_Build_HeaderOnly(t *testing.T) {
	path := writeDataset(t, ",col_a,col_b\n")

	svc := directory.NewService(directory.ServiceConfig{
		DatasetPath: path,
		Logger:      zerolog.Nop(),
	})

	entries, err := svc.Build()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolved_DropsUnresolvedEntries(t *testing.T) {
	entries := []directory.Entry{
		{Country: "portugal", Code: "PRT", HasData: true},
		{Country: "atlantis", Code: directory.CodeUnresolved},
		{Country: "spain", Code: "ESP", HasData: true},
	}

	resolved := directory.Resolved(entries)
	require.Len(t, resolved, 2)
	assert.Equal(t, "PRT", resolved[0].Code)
	assert.Equal(t, "ESP", resolved[1].Code)
}
