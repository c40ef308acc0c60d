package streampub_test

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightwaveos/core/internal/framebuf"
	"github.com/lightwaveos/core/internal/ledgeo"
	"github.com/lightwaveos/core/internal/streampub"
)

type captureSink struct {
	frames [][]byte
}

func (s *captureSink) Send(frame []byte) {
	cp := make([]byte, len(frame))
	copy(cp, frame)
	s.frames = append(s.frames, cp)
}

func TestFrameSizeIs966Bytes(t *testing.T) {
	assert.Equal(t, 966, streampub.FrameSize)
}

func TestPublishIsNoOpWithoutSubscribers(t *testing.T) {
	sink := &captureSink{}
	pub := streampub.New(sink, time.Millisecond)

	var front [ledgeo.TotalLEDs]framebuf.RGB

	pub.Publish(&front, time.Now())
	assert.Empty(t, sink.frames)
}

func TestPublishSendsOnceSubscribed(t *testing.T) {
	sink := &captureSink{}
	pub := streampub.New(sink, time.Millisecond)
	pub.Subscribe()

	var front [ledgeo.TotalLEDs]framebuf.RGB
	front[0] = framebuf.RGB{R: 10, G: 20, B: 30}

	pub.Publish(&front, time.Now())
	require.Len(t, sink.frames, 1)

	frame := sink.frames[0]
	require.Len(t, frame, streampub.FrameSize)

	magic := binary.LittleEndian.Uint16(frame[0:2])
	assert.Equal(t, streampub.Magic, magic)
	assert.Equal(t, streampub.Version, frame[2])
	assert.Equal(t, streampub.NumStrips, frame[3])

	ledsPerStrip := binary.LittleEndian.Uint16(frame[4:6])
	assert.Equal(t, streampub.LEDsPerStrip, ledsPerStrip)

	assert.Equal(t, byte(10), frame[6])
	assert.Equal(t, byte(20), frame[7])
	assert.Equal(t, byte(30), frame[8])
}

func TestPublishThrottlesBelowMinInterval(t *testing.T) {
	sink := &captureSink{}
	pub := streampub.New(sink, 50*time.Millisecond)
	pub.Subscribe()

	var front [ledgeo.TotalLEDs]framebuf.RGB

	now := time.Now()
	pub.Publish(&front, now)
	pub.Publish(&front, now.Add(10*time.Millisecond))
	pub.Publish(&front, now.Add(60*time.Millisecond))

	assert.Len(t, sink.frames, 2)
}

func TestUnsubscribeStopsPublishing(t *testing.T) {
	sink := &captureSink{}
	pub := streampub.New(sink, time.Millisecond)
	pub.Subscribe()
	pub.Unsubscribe()

	var front [ledgeo.TotalLEDs]framebuf.RGB

	pub.Publish(&front, time.Now())
	assert.Empty(t, sink.frames)
	assert.Equal(t, 0, pub.SubscriberCount())
}

func TestUnsubscribeFloorsAtZero(t *testing.T) {
	pub := streampub.New(nil, time.Millisecond)
	pub.Unsubscribe()
	pub.Unsubscribe()

	assert.Equal(t, 0, pub.SubscriberCount())
}
