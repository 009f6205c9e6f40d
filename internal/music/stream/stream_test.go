package stream

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSourceMissingArtifact(t *testing.T) {
	src := FileSource{Path: filepath.Join(t.TempDir(), "gone.m4a"), Volume: 0.5}
	_, err := src.Open(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "artifact unavailable")
}

func TestStreamToDiscordEncodesFrames(t *testing.T) {
	// three full frames of silence plus a partial one that is dropped
	pcm := bytes.NewReader(make([]byte, frameSize*channels*2*3+100))
	out := make(chan []byte, 8)

	require.NoError(t, StreamToDiscord(pcm, make(chan struct{}), out))
	assert.Len(t, out, 3)
}

func TestStreamToDiscordStops(t *testing.T) {
	stop := make(chan struct{})
	close(stop)

	pcm := bytes.NewReader(make([]byte, frameSize*channels*2*10))
	out := make(chan []byte)

	require.NoError(t, StreamToDiscord(pcm, stop, out))
}

func TestStreamToDiscordUnblocksOnStop(t *testing.T) {
	stop := make(chan struct{})
	pcm := bytes.NewReader(make([]byte, frameSize*channels*2*10))
	out := make(chan []byte) // nobody receives

	done := make(chan error, 1)
	go func() { done <- StreamToDiscord(pcm, stop, out) }()
	close(stop)

	require.NoError(t, <-done)
}

func shell(t *testing.T, script string) *process {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	p, err := start(exec.Command("sh", "-c", script))
	require.NoError(t, err)
	return p
}

func TestProcessCleanExit(t *testing.T) {
	p := shell(t, "printf pcm")

	data, err := io.ReadAll(p)
	require.NoError(t, err)
	assert.Equal(t, "pcm", string(data))
	assert.NoError(t, p.Close())
}

func TestProcessReportsDecoderFailure(t *testing.T) {
	p := shell(t, "printf pcm; echo 'Invalid data found when processing input' >&2; exit 1")

	data, err := io.ReadAll(p)
	require.Error(t, err)
	assert.Equal(t, "pcm", string(data))
	assert.Contains(t, err.Error(), "Invalid data found when processing input")
	assert.NoError(t, p.Close())
}

func TestStreamToDiscordReturnsDecoderFailure(t *testing.T) {
	// one full frame, then the decoder dies
	p := shell(t, "head -c 3840 /dev/zero; exit 1")
	out := make(chan []byte, 4)

	err := StreamToDiscord(p, make(chan struct{}), out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoder failed")
	assert.Len(t, out, 1)
	assert.NoError(t, p.Close())
}

func TestProcessCloseKillsRunningDecoder(t *testing.T) {
	p := shell(t, "exec sleep 30")
	assert.NoError(t, p.Close())
}
