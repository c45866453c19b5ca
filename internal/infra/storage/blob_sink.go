// Package storage uploads exported reports to a gocloud.dev bucket.
package storage

import (
	"context"
	"log/slog"

	"assettrack/config"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"

	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	_ "gocloud.dev/blob/s3blob"   // s3:// buckets
)

type blobSink struct {
	bucket    *blob.Bucket
	bucketURL string
}

// SinkParams holds dependencies for the artifact sink, injected by Fx
type SinkParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewArtifactSink opens export.bucketUrl. It returns a nil sink when no bucket
// is configured; exports are then only streamed to the caller.
func NewArtifactSink(params SinkParams) (service.ArtifactSink, error) {
	bucketURL := params.Config.Export.BucketURL
	if bucketURL == "" {
		params.Logger.Info("Export bucket not configured, artifacts are not stored")

		return nil, nil
	}

	sink, err := OpenBlobSink(params.Ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	params.Logger.Info("Export bucket opened", slog.String("bucket", bucketURL))

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return sink.Close()
		},
	})

	return sink, nil
}

// OpenBlobSink opens the bucket at bucketURL.
func OpenBlobSink(ctx context.Context, bucketURL string) (service.ArtifactSink, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "open bucket %s", bucketURL)
	}

	return NewBlobSink(bucket, bucketURL), nil
}

// NewBlobSink wraps an already opened bucket.
func NewBlobSink(bucket *blob.Bucket, bucketURL string) service.ArtifactSink {
	return &blobSink{bucket: bucket, bucketURL: bucketURL}
}

// Put writes data under key and returns "<bucketURL>#<key>".
func (s *blobSink) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return "", errors.Wrapf(err, "open writer for %s", key)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()

		return "", errors.Wrapf(err, "write %s", key)
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrapf(err, "commit %s", key)
	}

	return s.bucketURL + "#" + key, nil
}

func (s *blobSink) Close() error {
	return errors.WithStack(s.bucket.Close())
}
