// Package pasrc implements audiosrc.Source on top of PortAudio, for
// development and desktop builds where the target's I²S microphone
// driver is unavailable. gordonklaus/portaudio links against the system
// PortAudio library, and this package carries no build constraint, so
// every build that imports it needs that library.
package pasrc

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/lightwaveos/core/internal/logx"
)

// Source reads mono float32 samples from the default PortAudio input
// device at a fixed sample rate and frames-per-buffer size.
type Source struct {
	stream     *portaudio.Stream
	buf        []float32
	sampleRate float64
	log        logx.Logger

	mu     sync.Mutex
	closed bool
}

// Open initialises PortAudio and opens the default input device at
// sampleRate with framesPerBuffer samples per read.
func Open(sampleRate float64, framesPerBuffer int, log logx.Logger) (*Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("pasrc: initialize: %w", err)
	}

	buf := make([]float32, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, framesPerBuffer, buf)
	if err != nil {
		_ = portaudio.Terminate()

		return nil, fmt.Errorf("pasrc: open default stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()

		return nil, fmt.Errorf("pasrc: start stream: %w", err)
	}

	return &Source{stream: stream, buf: buf, sampleRate: sampleRate, log: log}, nil //nolint:exhaustruct
}

// Read blocks until one PortAudio buffer is available and copies it
// into into. A shorter into than the device buffer copies only the
// first len(into) samples; a longer into is zero-padded beyond the
// device buffer's length.
func (s *Source) Read(ctx context.Context, into []float32) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil //nolint:nilerr
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return 0, nil
	}

	if err := s.stream.Read(); err != nil {
		if s.log != nil {
			s.log.Warn("pasrc: stream read error", "err", err)
		}

		return 0, nil
	}

	n := copy(into, s.buf)
	clear(into[n:])

	return n, nil
}

// SampleRate returns the fixed capture rate.
func (s *Source) SampleRate() float64 { return s.sampleRate }

// Close stops the stream and terminates the PortAudio session. Safe to
// call more than once.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("pasrc: close stream: %w", err)
	}

	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("pasrc: terminate: %w", err)
	}

	return nil
}
