package service

import "context"

// ArtifactSink stores exported reports somewhere other than the caller's response.
type ArtifactSink interface {
	// Put stores data under key and returns a locator for it.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)

	Close() error
}
