package audio_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/lightwaveos/core/internal/audio"
)

// TestSnapshotNeverTorn hammers Publish from one goroutine and Read from
// several concurrently; every read must see internally consistent fields
// (RMS and MonotonicHopIndex move together), never a torn mix of an old
// and new payload.
func TestSnapshotNeverTorn(t *testing.T) {
	slot := audio.NewSnapshotSlot()

	var stop atomic.Bool

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		var hop uint64

		for !stop.Load() {
			hop++
			slot.Publish(audio.Snapshot{ //nolint:exhaustruct
				RMS:               float32(hop % 100),
				MonotonicHopIndex: hop,
			})
		}
	}()

	for range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 2000 {
				snap := slot.Read()
				assert.Equal(t, float32(snap.MonotonicHopIndex%100), snap.RMS)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	stop.Store(true)
	wg.Wait()
}

// TestSnapshotReadIsAlwaysSelfConsistent generalises TestSnapshotNeverTorn
// over the writer/reader concurrency ratio itself: for any number of
// concurrent readers and any number of published hops, every Read must
// still observe RMS and MonotonicHopIndex moving together, never a torn
// mix of an old and new payload.
func TestSnapshotReadIsAlwaysSelfConsistent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		readers := rapid.IntRange(1, 6).Draw(t, "readers")
		hops := rapid.IntRange(1, 500).Draw(t, "hops")

		slot := audio.NewSnapshotSlot()

		var wg sync.WaitGroup

		var mismatch atomic.Bool

		wg.Add(1)

		go func() {
			defer wg.Done()

			for hop := 1; hop <= hops; hop++ {
				slot.Publish(audio.Snapshot{ //nolint:exhaustruct
					RMS:               float32(hop % 100),
					MonotonicHopIndex: uint64(hop),
				})
			}
		}()

		for range readers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				for range hops {
					snap := slot.Read()
					if snap.RMS != float32(snap.MonotonicHopIndex%100) {
						mismatch.Store(true)
					}
				}
			}()
		}

		wg.Wait()

		assert.False(t, mismatch.Load(), "observed a torn snapshot")
	})
}
