package qrcode

import (
	"encoding/json"
	"strings"
	"unicode"

	"assettrack/config"
	"assettrack/internal/domain/entity"
	domainerrors "assettrack/internal/domain/errors"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"

	"github.com/skip2/go-qrcode"
)

type tagCodec struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewTagCodecFromConfig creates the codec from the qrcode config section.
func NewTagCodecFromConfig(cfg *config.Config) service.TagCodec {
	return NewTagCodec(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

// NewTagCodec creates a codec rendering size x size PNGs.
func NewTagCodec(size int, errorCorrectionLevel string) service.TagCodec {
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}
	if size <= 0 {
		size = 256
	}

	return &tagCodec{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// RenderPNG encodes the payload as JSON into a QR code image.
func (c *tagCodec) RenderPNG(payload *entity.TagPayload) ([]byte, error) {
	if payload == nil || payload.TagID == "" {
		return nil, errors.New("tag payload requires a tag id")
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal tag payload")
	}

	qrCode, err := qrcode.New(string(jsonData), c.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(c.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

// Parse decodes the text a scanner produced from a tag: the JSON payload
// written by RenderPNG or the backend, or a bare tag id.
func (c *tagCodec) Parse(raw string) (*entity.TagPayload, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, domainerrors.ErrInvalidScanPayload.WithDetails("empty scan")
	}

	if strings.HasPrefix(text, "{") {
		var payload entity.TagPayload
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			return nil, domainerrors.ErrInvalidScanPayload.WithDetails("malformed payload")
		}
		if payload.TagID == "" {
			return nil, domainerrors.ErrInvalidScanPayload.WithDetails("payload has no tagId")
		}

		return &payload, nil
	}

	if strings.IndexFunc(text, unicode.IsSpace) >= 0 {
		return nil, domainerrors.ErrInvalidScanPayload.WithDetails("tag id contains whitespace")
	}

	return &entity.TagPayload{TagID: text}, nil
}
