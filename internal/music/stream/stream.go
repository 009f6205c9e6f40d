// /internal/music/stream/stream.go
package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// FileSource decodes a downloaded artifact with ffmpeg.
type FileSource struct {
	Path   string
	Volume float64
}

// Open starts ffmpeg and returns its PCM output. Closing the reader kills
// the process.
func (f FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if _, err := os.Stat(f.Path); err != nil {
		return nil, fmt.Errorf("artifact unavailable: %w", err)
	}

	args := []string{"-i", f.Path, "-vn"}
	if f.Volume > 0 && f.Volume != 1 {
		args = append(args, "-filter:a", "volume="+strconv.FormatFloat(f.Volume, 'f', 2, 64))
	}
	args = append(args,
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-loglevel", "error",
		"pipe:1",
	)

	p, err := start(exec.CommandContext(ctx, "ffmpeg", args...))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func start(cmd *exec.Cmd) (*process, error) {
	p := &process{cmd: cmd}
	cmd.Stderr = &p.stderr

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("command start error: %w", err)
	}
	p.ReadCloser = reader
	return p, nil
}

// process is the decoder's stdout. When output ends, the exit status is
// checked so a decoder that died reports an error instead of a clean EOF.
// Read and Close must be called from one goroutine.
type process struct {
	io.ReadCloser
	cmd     *exec.Cmd
	stderr  bytes.Buffer
	waited  bool
	waitErr error
}

func (p *process) Read(b []byte) (int, error) {
	n, err := p.ReadCloser.Read(b)
	if errors.Is(err, io.EOF) {
		if werr := p.wait(); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (p *process) wait() error {
	if p.waited {
		return p.waitErr
	}
	p.waited = true
	if err := p.cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(p.stderr.String()); msg != "" {
			p.waitErr = fmt.Errorf("decoder failed: %s: %w", msg, err)
		} else {
			p.waitErr = fmt.Errorf("decoder failed: %w", err)
		}
	}
	return p.waitErr
}

func (p *process) Close() error {
	if p.waited {
		return nil
	}
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	err := p.ReadCloser.Close()
	p.waited = true
	_ = p.cmd.Wait()
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
