package service

import "assettrack/internal/domain/entity"

// TagCodec renders tag payloads into QR images and decodes scanned payloads.
type TagCodec interface {
	// RenderPNG encodes the payload as a QR code PNG.
	RenderPNG(payload *entity.TagPayload) ([]byte, error)

	// Parse decodes text read by a scanner: either a JSON payload or a bare tag id.
	Parse(raw string) (*entity.TagPayload, error)
}
