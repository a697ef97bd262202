package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTemp(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestAddAssignsID(t *testing.T) {
	repo := openTemp(t)

	rec := &Record{Filename: "Screenshot a.html", Destination: "folder", Location: "/tmp/a.html"}
	require.NoError(t, repo.Add(rec))
	assert.Len(t, rec.ID, 36)

	got, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, "/tmp/a.html", got[0].Location)
}

func TestRecentNewestFirstWithLimit(t *testing.T) {
	repo := openTemp(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"one", "two", "three"} {
		require.NoError(t, repo.Add(&Record{Filename: name, Destination: "folder", CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	got, err := repo.Recent(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "three", got[0].Filename)
	assert.Equal(t, "two", got[1].Filename)
}

func TestSetShareURL(t *testing.T) {
	repo := openTemp(t)
	rec := &Record{Filename: "x", Destination: "dropbox"}
	require.NoError(t, repo.Add(rec))

	require.NoError(t, repo.SetShareURL(rec.ID, "https://example.com/s/x?dl=0&raw=1"))
	got, err := repo.Recent(1)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/s/x?dl=0&raw=1", got[0].ShareURL)

	assert.ErrorIs(t, repo.SetShareURL("missing", "u"), gorm.ErrRecordNotFound)
}
