package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestArchive_PutGet(t *testing.T) {
	a, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	rec := NewArchiveRecord(failed(t, "3 == 4"))
	require.NoError(t, a.Put(rec))

	got, ok, err := a.Get(rec.Key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec.Expression, got.Expression)
	assert.Equal(t, rec.Report, got.Report)
	assert.Equal(t, rec.Location, got.Location)
	assert.True(t, rec.Time.Equal(got.Time))

	_, ok, err = a.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArchive_PutReplacesSite(t *testing.T) {
	a, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	first := NewArchiveRecord(failed(t, "a == b", 1, 2))
	second := NewArchiveRecord(failed(t, "a == b", 5, 6))
	require.Equal(t, first.Key, second.Key)

	require.NoError(t, a.Put(first))
	require.NoError(t, a.Put(second))

	list, err := a.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Report, "- a = 5")

	entries, err := os.ReadDir(a.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestArchive_ListNewestFirst(t *testing.T) {
	a, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	old := NewArchiveRecord(failed(t, "ok", false))
	old.Time = time.Now().Add(-time.Hour)
	recent := NewArchiveRecord(failed(t, "1 > 2"))
	require.NoError(t, a.Put(old))
	require.NoError(t, a.Put(recent))

	list, err := a.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1 > 2", list[0].Expression)
	assert.Equal(t, "ok", list[1].Expression)
}

func TestArchive_SkipsOtherSchema(t *testing.T) {
	a, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	stale := ArchiveRecord{Schema: archiveSchemaVersion + 1, Key: "stale"}
	data, err := msgpack.Marshal(&stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(a.Dir(), "stale.mp"), data, 0o644))

	_, ok, err := a.Get("stale")
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := a.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestArchive_DropAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "failures")
	a, err := NewArchive(dir)
	require.NoError(t, err)
	require.NoError(t, a.Put(NewArchiveRecord(failed(t, "ok", false))))

	require.NoError(t, a.DropAll())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	list, err := a.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, a.Put(NewArchiveRecord(failed(t, "ok", false))))
	list, err = a.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOpenArchive_XDGCacheHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	a, err := OpenArchive("equate")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "equate", "failures"), a.Dir())
}

func TestArchive_Nil(t *testing.T) {
	var a *Archive
	assert.NoError(t, a.Put(&ArchiveRecord{}))
	_, ok, err := a.Get("x")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, a.DropAll())
}

func TestSiteKey(t *testing.T) {
	k := SiteKey(testLoc, "x == y")
	assert.Len(t, k, 32)
	assert.Equal(t, k, SiteKey(testLoc, "x == y"))
	assert.NotEqual(t, k, SiteKey(testLoc, "x != y"))
}
