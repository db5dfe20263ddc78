package queue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, make([]byte, size), 0o600))
	return p
}

func TestAddDeduplicates(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "wallet.dat", 16)

	q := New()
	assert.True(t, q.Add(p))
	assert.False(t, q.Add(p))
	assert.Equal(t, 1, q.Len())

	// Repeated adds of an already-present path leave the length stable.
	for i := 0; i < 5; i++ {
		q.Add(p)
	}
	assert.Equal(t, 1, q.Len())
	assert.True(t, q.Contains(p))
}

func TestAddDropsMissingPath(t *testing.T) {
	q := New()
	assert.False(t, q.Add(filepath.Join(t.TempDir(), "no-such-file")))
	assert.Equal(t, 0, q.Len())
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", 1)
	b := writeFile(t, dir, "b.txt", 1)
	c := writeFile(t, dir, "c.txt", 1)

	q := New()
	q.Add(b)
	q.Add(a)
	q.Add(c)

	assert.Equal(t, []string{b, a, c}, q.Paths())
}

func TestEstimateTotalBytes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small.txt", 100)
	big := writeFile(t, dir, "big.bin", 4096)

	sub := filepath.Join(dir, "walletdir")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "inner.dat", 999)

	q := New()
	q.Add(filepath.Join(dir, "small.txt"))
	q.Add(big)
	q.Add(sub) // directory entries contribute zero

	assert.Equal(t, uint64(100+4096), q.EstimateTotalBytes())
}

func TestPreviewTruncatesDepth(t *testing.T) {
	dir := t.TempDir()
	deep := filepath.Join(dir, "one", "two", "three")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	p := writeFile(t, deep, "seed.txt", 1)

	q := New()
	q.Add(p)

	preview := q.Preview(10, 2)
	require.Len(t, preview, 1)
	assert.NotEqual(t, p, preview[0])
	assert.NotContains(t, preview[0], "seed.txt")

	// A generous depth keeps the full path.
	full := q.Preview(10, 64)
	assert.Equal(t, p, full[0])
}

func TestPreviewLimitsEntries(t *testing.T) {
	dir := t.TempDir()
	q := New()
	for _, name := range []string{"a", "b", "c", "d"} {
		q.Add(writeFile(t, dir, name, 1))
	}
	assert.Len(t, q.Preview(2, 10), 2)
	assert.Equal(t, 4, q.Len())
}

func TestPreviewNegativeLimit(t *testing.T) {
	dir := t.TempDir()
	q := New()
	q.Add(writeFile(t, dir, "a", 1))

	assert.Empty(t, q.Preview(-1, 10))
	assert.Empty(t, q.Preview(0, 10))
}
