// Package capacity implements the destination space preflight: the estimated
// payload must fit in the destination's free space with a fixed reserve left
// for the manifest, catalog, and session log.
package capacity

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// ReserveBytes is the safety margin kept free on the destination (100 MiB).
const ReserveBytes uint64 = 100 * 1024 * 1024

// CapacityError reports an estimated payload that does not fit on the
// destination. It carries both sides so the operator message is precise.
type CapacityError struct {
	EstimatedBytes uint64
	FreeBytes      uint64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient destination space: need %s plus %s reserve, only %s free",
		humanize.Bytes(e.EstimatedBytes), humanize.Bytes(ReserveBytes), humanize.Bytes(e.FreeBytes))
}

// Result summarizes a capacity check for reporting.
type Result struct {
	OK             bool
	EstimatedBytes uint64
	FreeBytes      uint64
}

// Check validates that estimated bytes fit within free bytes minus the
// reserve. The boundary estimated == free-reserve passes. On failure the
// returned error is a *CapacityError and the run must abort; collection never
// proceeds with partial data.
func Check(estimatedBytes, freeBytes uint64) (Result, error) {
	res := Result{EstimatedBytes: estimatedBytes, FreeBytes: freeBytes}
	if freeBytes < ReserveBytes || estimatedBytes > freeBytes-ReserveBytes {
		return res, &CapacityError{EstimatedBytes: estimatedBytes, FreeBytes: freeBytes}
	}
	res.OK = true
	return res, nil
}

// FreeBytes probes the free space available to the caller on the volume
// holding path.
func FreeBytes(path string) (uint64, error) {
	free, ok := freeBytes(path)
	if !ok {
		return 0, fmt.Errorf("free space detection failed for %s", path)
	}
	return free, nil
}
