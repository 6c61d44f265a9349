package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceWriteAndReadBack(t *testing.T) {
	tempDir := t.TempDir()

	tw, err := NewTraceWriter(tempDir, "study-1", false)
	require.NoError(t, err)

	entries := []TraceEntry{
		{Run: 0, Generation: 0, BestFitness: 12.5, Timestamp: time.Now()},
		{Run: 0, Generation: 1, BestFitness: 7.25, Timestamp: time.Now()},
		{Run: 1, Generation: 0, BestFitness: 20.0, Timestamp: time.Now(), BestPosition: []float64{1, -1}},
	}
	for _, e := range entries {
		require.NoError(t, tw.Write(e))
	}
	require.NoError(t, tw.Close())

	tr, err := NewTraceReader(tempDir, "study-1")
	require.NoError(t, err)
	defer tr.Close()

	got, err := tr.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 0, got[0].Run)
	assert.Equal(t, 1, got[1].Generation)
	assert.Equal(t, 7.25, got[1].BestFitness)
	assert.Nil(t, got[1].BestPosition)
	assert.Equal(t, []float64{1, -1}, got[2].BestPosition)
}

func TestTraceAppendMode(t *testing.T) {
	tempDir := t.TempDir()

	tw, err := NewTraceWriter(tempDir, "study-1", false)
	require.NoError(t, err)
	require.NoError(t, tw.Write(TraceEntry{Run: 0, Generation: 0, BestFitness: 5, Timestamp: time.Now()}))
	require.NoError(t, tw.Close())

	tw, err = NewTraceWriter(tempDir, "study-1", true)
	require.NoError(t, err)
	require.NoError(t, tw.Write(TraceEntry{Run: 0, Generation: 1, BestFitness: 3, Timestamp: time.Now()}))
	require.NoError(t, tw.Close())

	tr, err := NewTraceReader(tempDir, "study-1")
	require.NoError(t, err)
	defer tr.Close()

	got, err := tr.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3.0, got[1].BestFitness)
}

func TestTraceTruncateMode(t *testing.T) {
	tempDir := t.TempDir()

	tw, err := NewTraceWriter(tempDir, "study-1", false)
	require.NoError(t, err)
	require.NoError(t, tw.Write(TraceEntry{Run: 0, Generation: 0, BestFitness: 5, Timestamp: time.Now()}))
	require.NoError(t, tw.Close())

	// Reopening without append truncates the previous contents.
	tw, err = NewTraceWriter(tempDir, "study-1", false)
	require.NoError(t, err)
	require.NoError(t, tw.Write(TraceEntry{Run: 1, Generation: 0, BestFitness: 9, Timestamp: time.Now()}))
	require.NoError(t, tw.Close())

	tr, err := NewTraceReader(tempDir, "study-1")
	require.NoError(t, err)
	defer tr.Close()

	got, err := tr.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Run)
}

func TestTraceReaderNotFound(t *testing.T) {
	_, err := NewTraceReader(t.TempDir(), "missing")
	require.Error(t, err)

	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestTraceFlushDurability(t *testing.T) {
	tempDir := t.TempDir()

	tw, err := NewTraceWriter(tempDir, "study-1", false)
	require.NoError(t, err)
	defer tw.Close()

	require.NoError(t, tw.Write(TraceEntry{Run: 0, Generation: 0, BestFitness: 1, Timestamp: time.Now()}))
	require.NoError(t, tw.Flush())

	// Readable while the writer is still open after a flush.
	tr, err := NewTraceReader(tempDir, "study-1")
	require.NoError(t, err)
	defer tr.Close()

	got, err := tr.ReadAll()
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDeleteTrace(t *testing.T) {
	tempDir := t.TempDir()

	tw, err := NewTraceWriter(tempDir, "study-1", false)
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	require.NoError(t, DeleteTrace(tempDir, "study-1"))

	// Deleting again is a no-op.
	require.NoError(t, DeleteTrace(tempDir, "study-1"))
}
