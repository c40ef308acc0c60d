//go:build !linux

package lifecycle

// LockMemory is a no-op on platforms without mlockall; only the
// production Linux target needs the real-time memory guarantee.
func LockMemory() error {
	return nil
}
