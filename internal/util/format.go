// Package util holds the formatting helpers of the command line client.
package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"assettrack/internal/errors"

	"github.com/dustin/go-humanize"
)

// HumanBytes renders n in IEC units, e.g. "1.5 KiB".
func HumanBytes(n int64) string {
	if n < 0 {
		n = 0
	}

	return humanize.IBytes(uint64(n))
}

// ShortDuration renders d in its two largest units: "850ms", "45s", "5m10s", "1h30m".
func ShortDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	d = d.Round(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// FileDigest returns the hex SHA-256 and the size of the file at path.
func FileDigest(path string) (digest string, size int64, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, errors.Wrap(err, "open file")
	}
	defer file.Close()

	hash := sha256.New()
	size, err = io.Copy(hash, file)
	if err != nil {
		return "", 0, errors.Wrap(err, "hash file")
	}

	return hex.EncodeToString(hash.Sum(nil)), size, nil
}
