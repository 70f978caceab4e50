package shell

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/oshokin/alarm-clock/internal/audio"
)

// playbackCommand is the PCM playback tool the sink pipes samples into.
const playbackCommand = "aplay"

// playbackSink is the audio.SinkFactory of the shell: it pipes the
// synthesized samples into a system playback tool. The factory runs on
// the first ring, not at startup, so a missing or busy audio device only
// costs the sound of that session.
func playbackSink() (io.WriteCloser, error) {
	path, err := exec.LookPath(playbackCommand)
	if err != nil {
		return nil, fmt.Errorf("no audio playback tool: %w", err)
	}

	//nolint:gosec // The binary name is a constant resolved via LookPath.
	cmd := exec.Command(path, "-q", "-f", "S16_LE", "-r", fmt.Sprint(audio.SampleRate), "-c", "1")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open playback pipe: %w", err)
	}

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("start playback tool: %w", err)
	}

	return &playbackPipe{
		stdin: stdin,
		cmd:   cmd,
	}, nil
}

// playbackPipe adapts a running playback process to io.WriteCloser.
type playbackPipe struct {
	// stdin receives the PCM stream.
	stdin io.WriteCloser
	// cmd is the playback process.
	cmd *exec.Cmd
}

// Write streams PCM samples to the playback process.
func (p *playbackPipe) Write(b []byte) (int, error) {
	return p.stdin.Write(b)
}

// Close stops playback immediately, discarding any buffered samples.
func (p *playbackPipe) Close() error {
	_ = p.stdin.Close()

	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}

	return p.cmd.Wait()
}
