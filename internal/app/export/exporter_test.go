package export

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	chunkDir := filepath.Join(dir, "chunks")
	require.NoError(t, os.MkdirAll(chunkDir, 0o755))

	// Leftovers from a previous, larger run must disappear.
	stale := filepath.Join(chunkDir, "entries-0009.sql")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))
	unrelated := filepath.Join(chunkDir, "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep"), 0o644))

	exp := NewExporter(discardLogger(), Config{
		OutDir:           dir,
		ChunkDir:         chunkDir,
		MaxChunkBytes:    200,
		RowsPerStatement: 1,
	})

	records := testRecords()
	summary, err := exp.Export(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Records)
	assert.Equal(t, 3, summary.Statements)
	require.NotEmpty(t, summary.ChunkPaths)
	assert.Equal(t, filepath.Join(chunkDir, "entries-0001.sql"), summary.ChunkPaths[0])

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale chunk was not removed")
	_, err = os.Stat(unrelated)
	assert.NoError(t, err)

	files, err := ChunkFiles(chunkDir)
	require.NoError(t, err)
	assert.Equal(t, summary.ChunkPaths, files)

	for _, path := range files {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}

	update, err := os.ReadFile(summary.UpdatePath)
	require.NoError(t, err)
	assert.Contains(t, string(update), "WHERE head = 'chiah' AND head_number = 2;")

	back, err := ReadJSON(summary.JSONPath)
	require.NoError(t, err)
	require.Len(t, back, len(records))
	for i := range records {
		assert.Equal(t, records[i].Head, back[i].Head)
		assert.Equal(t, records[i].HeadNumber, back[i].HeadNumber)
		assert.Equal(t, records[i].Page, back[i].Page)
		assert.Equal(t, records[i].SortKey, back[i].SortKey)
		assert.Equal(t, records[i].IsComplete, back[i].IsComplete)
		assert.Equal(t, records[i].SourceFile, back[i].SourceFile)
		assert.JSONEq(t, string(records[i].EntryData), string(back[i].EntryData))
	}
}

func TestExporter_RegeneratesChunkSet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	records := testRecords()

	small := NewExporter(discardLogger(), Config{OutDir: dir, MaxChunkBytes: 1, RowsPerStatement: 1})
	first, err := small.Export(context.Background(), records)
	require.NoError(t, err)
	assert.Len(t, first.ChunkPaths, 3)

	big := NewExporter(discardLogger(), Config{OutDir: dir, MaxChunkBytes: 1 << 20, RowsPerStatement: 50})
	second, err := big.Export(context.Background(), records)
	require.NoError(t, err)
	assert.Len(t, second.ChunkPaths, 1)

	files, err := ChunkFiles(filepath.Join(dir, "sql-chunks"))
	require.NoError(t, err)
	assert.Equal(t, second.ChunkPaths, files)
}

func TestExporter_ChunkFilesRespectBound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	const maxBytes = 400
	exp := NewExporter(discardLogger(), Config{OutDir: dir, MaxChunkBytes: maxBytes, RowsPerStatement: 1})

	records := append(testRecords(), testRecords()...)
	summary, err := exp.Export(context.Background(), records)
	require.NoError(t, err)

	for _, path := range summary.ChunkPaths {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.LessOrEqual(t, info.Size(), int64(maxBytes), path)
	}
}

func TestExporter_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exp := NewExporter(discardLogger(), Config{OutDir: t.TempDir(), MaxChunkBytes: 100, RowsPerStatement: 1})
	_, err := exp.Export(ctx, testRecords())
	assert.ErrorIs(t, err, context.Canceled)
}
