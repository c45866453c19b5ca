package entity

import (
	"strings"
	"time"
)

// TagKind names one of the three digital identifiers an asset can carry.
type TagKind string

const (
	TagKindQR      TagKind = "qr"
	TagKindBarcode TagKind = "barcode"
	TagKindNFC     TagKind = "nfc"
)

// ParseTagKind accepts the route spelling as well as the digitalAssets key.
func ParseTagKind(s string) (TagKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "qr", "qrcode":
		return TagKindQR, true
	case "barcode":
		return TagKindBarcode, true
	case "nfc", "nfcdata":
		return TagKindNFC, true
	default:
		return "", false
	}
}

// DigitalAssets holds at most one of each generated identifier.
type DigitalAssets struct {
	QRCode  *DigitalTag `json:"qrCode,omitempty"`
	Barcode *DigitalTag `json:"barcode,omitempty"`
	NFCData *DigitalTag `json:"nfcData,omitempty"`
}

// Get returns the block for kind, or nil.
func (d *DigitalAssets) Get(kind TagKind) *DigitalTag {
	if d == nil {
		return nil
	}
	switch kind {
	case TagKindQR:
		return d.QRCode
	case TagKindBarcode:
		return d.Barcode
	case TagKindNFC:
		return d.NFCData
	default:
		return nil
	}
}

// Set replaces the block for kind.
func (d *DigitalAssets) Set(kind TagKind, tag *DigitalTag) {
	switch kind {
	case TagKindQR:
		d.QRCode = tag
	case TagKindBarcode:
		d.Barcode = tag
	case TagKindNFC:
		d.NFCData = tag
	}
}

// Clone copies the container and every block in it.
func (d *DigitalAssets) Clone() *DigitalAssets {
	if d == nil {
		return nil
	}

	return &DigitalAssets{
		QRCode:  d.QRCode.Clone(),
		Barcode: d.Barcode.Clone(),
		NFCData: d.NFCData.Clone(),
	}
}

// DigitalTag is a server generated identifier: the signed data block encoded
// into the tag, the hosted image and when it was produced.
type DigitalTag struct {
	Data        TagPayload `json:"data"`
	URL         string     `json:"url,omitempty"`
	GeneratedAt time.Time  `json:"generatedAt,omitzero"`
}

// Ready reports whether the block has an image generated no earlier than since.
func (t *DigitalTag) Ready(since time.Time) bool {
	if t == nil || t.URL == "" || t.GeneratedAt.IsZero() {
		return false
	}

	return !t.GeneratedAt.Before(since)
}

// Clone returns a copy of t.
func (t *DigitalTag) Clone() *DigitalTag {
	if t == nil {
		return nil
	}
	c := *t

	return &c
}

// TagPayload is the data block encoded into a QR code, barcode or NFC tag.
type TagPayload struct {
	TagID     string    `json:"tagId"`
	AssetID   string    `json:"assetId,omitempty"`
	AssetType string    `json:"assetType,omitempty"`
	Brand     string    `json:"brand,omitempty"`
	Model     string    `json:"model,omitempty"`
	Checksum  string    `json:"checksum,omitempty"`
	Signature string    `json:"signature,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}
