package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memorySink records written PCM and close calls.
type memorySink struct {
	mu     sync.Mutex
	data   []byte
	closed int
}

func (s *memorySink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append(s.data, p...)

	return len(p), nil
}

func (s *memorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed++

	return nil
}

func (s *memorySink) written() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.data)
}

// sampleAt decodes the PCM sample at index i as a [-1, 1] float.
func sampleAt(pulse []byte, i int) float64 {
	raw := int16(binary.LittleEndian.Uint16(pulse[i*bytesPerSample:]))

	return float64(raw) / math.MaxInt16
}

// TestRenderPulse_Envelope checks the attack/decay shape of the tone.
func TestRenderPulse_Envelope(t *testing.T) {
	t.Parallel()

	pulse := renderPulse(880, SampleRate)

	attackSamples := samplesFor(attackDuration, SampleRate)
	decaySamples := samplesFor(decayDuration, SampleRate)
	require.Len(t, pulse, (attackSamples+decaySamples)*bytesPerSample)

	// Starts at silence.
	require.InDelta(t, 0, sampleAt(pulse, 0), 0.001)

	// Peak gain is reached around the end of the attack: scan a few
	// cycles for the loudest sample since the sine may be near a zero
	// crossing exactly at the boundary.
	peak := 0.0
	for i := attackSamples - 200; i < attackSamples+200; i++ {
		if v := math.Abs(sampleAt(pulse, i)); v > peak {
			peak = v
		}
	}
	require.InDelta(t, peakGain, peak, 0.05)

	// Decays back to near silence at the tail.
	tail := 0.0
	for i := attackSamples + decaySamples - 100; i < attackSamples+decaySamples; i++ {
		if v := math.Abs(sampleAt(pulse, i)); v > tail {
			tail = v
		}
	}
	require.Less(t, tail, 0.01)
}

// TestBeeper_StartStop verifies the pattern writes to the sink and that
// Stop releases it exactly once per session.
func TestBeeper_StartStop(t *testing.T) {
	t.Parallel()

	sink := new(memorySink)
	b := NewBeeper(880, func() (io.WriteCloser, error) {
		return sink, nil
	})

	require.NoError(t, b.Start(context.Background()))

	// The first pulse is written immediately.
	require.Eventually(t, func() bool {
		return sink.written() > 0
	}, time.Second, 5*time.Millisecond)

	b.Stop()
	require.Equal(t, 1, sink.closed)

	// Idempotent.
	b.Stop()
	require.Equal(t, 1, sink.closed)
}

// TestBeeper_StartTwice ensures a second Start while ringing is a no-op.
func TestBeeper_StartTwice(t *testing.T) {
	t.Parallel()

	opened := 0
	b := NewBeeper(880, func() (io.WriteCloser, error) {
		opened++

		return new(memorySink), nil
	})

	require.NoError(t, b.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))
	require.Equal(t, 1, opened)

	b.Stop()
}

// TestBeeper_SinkFailure verifies a failing factory surfaces the error
// but leaves the beeper usable on a later attempt.
func TestBeeper_SinkFailure(t *testing.T) {
	t.Parallel()

	errLocked := errors.New("audio device locked")
	unlocked := false
	sink := new(memorySink)

	b := NewBeeper(880, func() (io.WriteCloser, error) {
		if !unlocked {
			return nil, errLocked
		}

		return sink, nil
	})

	require.ErrorIs(t, b.Start(context.Background()), errLocked)

	// Stop after a failed start is a no-op.
	b.Stop()

	unlocked = true
	require.NoError(t, b.Start(context.Background()))
	b.Stop()
	require.Equal(t, 1, sink.closed)
}
