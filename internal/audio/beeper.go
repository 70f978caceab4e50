// Package audio synthesizes the repeating ring tone of the alarm clock.
//
// The Beeper renders a sine pulse with a short gain envelope (linear
// attack to moderate volume, longer decay back to silence) as 16-bit
// mono PCM and writes one pulse per pattern period to a pluggable sink.
// No sound files are involved; the waveform is computed on the fly.
package audio

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/logger"
)

const (
	// SampleRate is the PCM sample rate in frames per second.
	SampleRate = 44100

	// attackDuration is the ramp from silence to peak gain.
	attackDuration = 20 * time.Millisecond
	// decayDuration is the ramp from peak gain back to silence.
	decayDuration = 160 * time.Millisecond
	// patternPeriod is how often the pulse repeats while ringing.
	patternPeriod = 400 * time.Millisecond

	// peakGain is the maximum amplitude of the envelope, kept moderate
	// so the tone is audible without clipping.
	peakGain = 0.5

	// bytesPerSample is the size of one 16-bit mono PCM frame.
	bytesPerSample = 2
)

// SinkFactory opens the audio output. It is invoked lazily on the first
// Start so platforms that gate audio behind a user gesture can fail now
// and succeed on a later attempt.
type SinkFactory func() (io.WriteCloser, error)

// Beeper produces the repeating ring pulse until stopped.
// Start and Stop are safe to call repeatedly and in any order.
type Beeper struct {
	// frequency is the tone frequency in hertz.
	frequency float64
	// newSink opens the audio output on first use.
	newSink SinkFactory

	// mu guards the fields below.
	mu sync.Mutex
	// sink is the open audio output, nil until first successful Start.
	sink io.WriteCloser
	// done signals the pattern loop to stop; nil while idle.
	done chan struct{}
}

// NewBeeper creates a beeper producing the given frequency through the
// sink opened by factory.
func NewBeeper(frequency float64, factory SinkFactory) *Beeper {
	return &Beeper{
		frequency: frequency,
		newSink:   factory,
	}
}

// Start begins the repeating pulse pattern. It is a no-op when already
// running. A sink that cannot be opened is reported but does not keep
// the beeper from being started (and stopped) again later.
func (b *Beeper) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done != nil {
		return nil
	}

	if b.sink == nil {
		sink, err := b.newSink()
		if err != nil {
			return err
		}

		b.sink = sink
	}

	b.done = make(chan struct{})

	go b.patternLoop(ctx, b.sink, b.done)

	return nil
}

// Stop ends the pulse pattern and releases the audio output.
// Calling Stop on an idle or already stopped beeper is a no-op.
func (b *Beeper) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done != nil {
		close(b.done)
		b.done = nil
	}

	if b.sink != nil {
		_ = b.sink.Close()
		b.sink = nil
	}
}

// patternLoop writes one rendered pulse per pattern period until done
// is closed or the context is canceled.
func (b *Beeper) patternLoop(ctx context.Context, sink io.WriteCloser, done <-chan struct{}) {
	pulse := renderPulse(b.frequency, SampleRate)

	ticker := time.NewTicker(patternPeriod)
	defer ticker.Stop()

	for {
		if _, err := sink.Write(pulse); err != nil {
			// A broken sink only costs the sound, never the session.
			logger.WarnKV(ctx, "Ring tone write failed", "error", err)

			return
		}

		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// renderPulse computes one attack/decay envelope of the sine tone as
// 16-bit little-endian mono PCM.
func renderPulse(frequency float64, sampleRate int) []byte {
	var (
		attackSamples = samplesFor(attackDuration, sampleRate)
		decaySamples  = samplesFor(decayDuration, sampleRate)
		total         = attackSamples + decaySamples
		out           = make([]byte, total*bytesPerSample)
	)

	for i := 0; i < total; i++ {
		gain := envelopeGain(i, attackSamples, decaySamples)
		phase := 2 * math.Pi * frequency * float64(i) / float64(sampleRate)
		sample := int16(gain * math.Sin(phase) * math.MaxInt16)

		binary.LittleEndian.PutUint16(out[i*bytesPerSample:], uint16(sample))
	}

	return out
}

// envelopeGain returns the linear attack/decay gain for sample i.
func envelopeGain(i, attackSamples, decaySamples int) float64 {
	if i < attackSamples {
		return peakGain * float64(i) / float64(attackSamples)
	}

	progress := float64(i-attackSamples) / float64(decaySamples)

	return peakGain * (1 - progress)
}

// samplesFor converts a duration to a sample count at the given rate.
func samplesFor(d time.Duration, sampleRate int) int {
	return int(d.Seconds() * float64(sampleRate))
}
