package capacity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBoundary(t *testing.T) {
	free := ReserveBytes + 1000

	// Exactly free-reserve passes.
	res, err := Check(1000, free)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, uint64(1000), res.EstimatedBytes)
	assert.Equal(t, free, res.FreeBytes)

	// One byte over fails.
	res, err = Check(1001, free)
	require.Error(t, err)
	assert.False(t, res.OK)

	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, uint64(1001), capErr.EstimatedBytes)
	assert.Equal(t, free, capErr.FreeBytes)
}

func TestCheckFreeBelowReserve(t *testing.T) {
	_, err := Check(0, ReserveBytes-1)
	assert.Error(t, err)
}

func TestCapacityErrorMessage(t *testing.T) {
	err := &CapacityError{EstimatedBytes: 5 << 30, FreeBytes: 1 << 30}
	assert.Contains(t, err.Error(), "insufficient destination space")
}

func TestFreeBytesOnTempDir(t *testing.T) {
	free, err := FreeBytes(t.TempDir())
	require.NoError(t, err)
	assert.Greater(t, free, uint64(0))
}
