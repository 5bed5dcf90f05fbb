// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTime() time.Time {
	return time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "stats.json"), "")

	rec, err := store.Load(testTime())
	require.NoError(t, err)
	assert.Empty(t, rec.Notes)
	assert.Empty(t, rec.LifetimePortHits)
	assert.Equal(t, testTime(), rec.EngineStart)
}

func TestLoad_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewStore(path, "")
	rec, err := store.Load(testTime())
	require.Error(t, err)
	require.NotNil(t, rec)
	require.Len(t, rec.Notes, 1)
	assert.Contains(t, rec.Notes[0], "corrupt")
	assert.Empty(t, rec.LifetimePortHits)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.json")
	store := NewStore(path, "")

	rec := NewRecord(testTime())
	rec.IncrementPortHit(2222)
	rec.IncrementPortHit(2222)
	rec.IncrementPortHit(8080)
	rec.AddEnded(EndedSession{
		EndedAt: testTime(), SrcIP: "203.0.113.9", DstPort: 2222,
		Proto: "tcp", State: "ESTABLISHED", DurationS: 42,
	}, 50)

	require.NoError(t, store.Save(rec, "", testTime().Add(time.Minute)))

	loaded, err := store.Load(testTime().Add(2 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), loaded.LifetimePortHits[2222])
	assert.Equal(t, uint64(1), loaded.LifetimePortHits[8080])
	require.Len(t, loaded.EndedHistory, 1)
	assert.Equal(t, "203.0.113.9", loaded.EndedHistory[0].SrcIP)
	assert.Equal(t, testTime(), loaded.Created)
	assert.Equal(t, testTime().Add(2*time.Minute), loaded.EngineStart)
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "stats.json"), "")

	require.NoError(t, store.Save(NewRecord(testTime()), "", testTime()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "stats.json", entries[0].Name())
}

func TestSave_WritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "snapshot.txt")
	store := NewStore(filepath.Join(dir, "stats.json"), snapPath)

	require.NoError(t, store.Save(NewRecord(testTime()), "hello snapshot\n", testTime()))

	data, err := os.ReadFile(snapPath)
	require.NoError(t, err)
	assert.Equal(t, "hello snapshot\n", string(data))
}

func TestResetLifetimeCounts(t *testing.T) {
	rec := NewRecord(testTime())
	rec.IncrementPortHit(2222)
	rec.AddEnded(EndedSession{SrcIP: "198.51.100.1", DstPort: 2222, Proto: "tcp", DurationS: 5}, 50)
	rec.AddNote("a note")

	rec.ResetLifetimeCounts(testTime().Add(time.Hour))

	assert.Empty(t, rec.LifetimePortHits)
	assert.Equal(t, 1, rec.Resets)
	assert.Equal(t, testTime().Add(time.Hour), rec.LastReset)
	assert.Len(t, rec.EndedHistory, 1, "history survives a counter reset")
	assert.Len(t, rec.Notes, 1, "notes survive a counter reset")
}

func TestAddEnded_BoundedAndRanked(t *testing.T) {
	rec := NewRecord(testTime())
	rec.AddEnded(EndedSession{SrcIP: "10.0.0.1", DstPort: 22, Proto: "tcp", DurationS: 10}, 3)
	rec.AddEnded(EndedSession{SrcIP: "10.0.0.2", DstPort: 22, Proto: "tcp", DurationS: 30}, 3)
	rec.AddEnded(EndedSession{SrcIP: "10.0.0.3", DstPort: 22, Proto: "tcp", DurationS: 20}, 3)
	// Over capacity: the shortest entry is evicted.
	rec.AddEnded(EndedSession{SrcIP: "10.0.0.4", DstPort: 22, Proto: "tcp", DurationS: 25}, 3)

	require.Len(t, rec.EndedHistory, 3)
	assert.Equal(t, "10.0.0.2", rec.EndedHistory[0].SrcIP)
	assert.Equal(t, "10.0.0.4", rec.EndedHistory[1].SrcIP)
	assert.Equal(t, "10.0.0.3", rec.EndedHistory[2].SrcIP)
}

func TestAddEnded_ShorterThanAllWhenFull(t *testing.T) {
	rec := NewRecord(testTime())
	for i := 0; i < 3; i++ {
		rec.AddEnded(EndedSession{SrcIP: "10.0.0.1", DstPort: 22 + i, Proto: "tcp", DurationS: 100}, 3)
	}
	rec.AddEnded(EndedSession{SrcIP: "10.0.0.9", DstPort: 99, Proto: "tcp", DurationS: 1}, 3)

	require.Len(t, rec.EndedHistory, 3)
	for _, e := range rec.EndedHistory {
		assert.NotEqual(t, "10.0.0.9", e.SrcIP)
	}
}

func TestTopPortHits(t *testing.T) {
	rec := NewRecord(testTime())
	for i := 0; i < 5; i++ {
		rec.IncrementPortHit(2222)
	}
	for i := 0; i < 3; i++ {
		rec.IncrementPortHit(8080)
	}
	rec.IncrementPortHit(21)
	rec.IncrementPortHit(23) // ties with 21, lower port first

	top := rec.TopPortHits(3)
	require.Len(t, top, 3)
	assert.Equal(t, PortHits{Port: 2222, Hits: 5}, top[0])
	assert.Equal(t, PortHits{Port: 8080, Hits: 3}, top[1])
	assert.Equal(t, PortHits{Port: 21, Hits: 1}, top[2])
}
