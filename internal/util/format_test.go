package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes int64
		want  string
	}{
		{bytes: -1, want: "0 B"},
		{bytes: 0, want: "0 B"},
		{bytes: 512, want: "512 B"},
		{bytes: 1024, want: "1.0 KiB"},
		{bytes: 1536, want: "1.5 KiB"},
		{bytes: 5 * 1024 * 1024 * 1024, want: "5.0 GiB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanBytes(tt.bytes), "%d bytes", tt.bytes)
	}
}

func TestShortDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		duration time.Duration
		want     string
	}{
		{duration: 850 * time.Millisecond, want: "850ms"},
		{duration: 45 * time.Second, want: "45s"},
		{duration: 5*time.Minute + 10*time.Second, want: "5m10s"},
		{duration: 90 * time.Minute, want: "1h30m"},
		{duration: 59*time.Second + 600*time.Millisecond, want: "1m0s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ShortDuration(tt.duration), tt.duration.String())
	}
}

func TestFileDigest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "assets.csv")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o600))

	digest, size, err := FileDigest(path)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", digest)
	assert.Equal(t, int64(3), size)

	_, _, err = FileDigest(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
