//go:build linux

package lifecycle

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// LockMemory calls mlockall(MCL_CURRENT|MCL_FUTURE) so the render and
// audio tasks never take a page fault mid-frame from a swapped-out
// stack or heap page. Best-effort: callers without CAP_IPC_LOCK (most
// non-root dev environments) should log the failure and continue
// rather than refuse to start.
func LockMemory() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("mlockall: %w", err)
	}

	return nil
}
