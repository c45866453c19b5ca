package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocation_IsSet(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want bool
	}{
		{"nil", nil, false},
		{"empty", &Location{}, false},
		{"zero pair", &Location{Latitude: "0", Longitude: "0"}, false},
		{"zero floats", &Location{Latitude: "0.000", Longitude: "0.0"}, false},
		{"garbage", &Location{Latitude: "north", Longitude: "1"}, false},
		{"real", &Location{Latitude: "25.0330", Longitude: "121.5654"}, true},
		{"equator", &Location{Latitude: "0", Longitude: "32.5"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.IsSet())
		})
	}
}

func TestLocation_Point(t *testing.T) {
	loc := &Location{Latitude: "25.0330", Longitude: "121.5654"}
	p, ok := loc.Point()
	require.True(t, ok)
	assert.InDelta(t, 121.5654, p.Lon(), 1e-9)
	assert.InDelta(t, 25.0330, p.Lat(), 1e-9)

	var out Location
	out.SetPoint(p)
	assert.Equal(t, "25.033000", out.Latitude)
	assert.Equal(t, "121.565400", out.Longitude)
}

func TestAuditDetails_KeepsUnknownKeys(t *testing.T) {
	raw := `{"tagId":"PJ-A001","brand":"Dell","changes":{"status":"retired"},"ip":"10.0.0.1","count":3}`

	var d AuditDetails
	require.NoError(t, json.Unmarshal([]byte(raw), &d))

	assert.Equal(t, "PJ-A001", d.TagID)
	assert.Equal(t, "Dell", d.Brand)
	assert.Equal(t, "retired", d.Changes["status"])
	assert.Equal(t, "10.0.0.1", d.Extra["ip"])
	assert.InDelta(t, 3, d.Extra["count"], 0)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestAuditDetails_MistypedKnownKeyGoesToExtra(t *testing.T) {
	var d AuditDetails
	require.NoError(t, json.Unmarshal([]byte(`{"location":{"latitude":"1","longitude":"2"}}`), &d))

	assert.Empty(t, d.Location)
	v, ok := d.Get("location")
	assert.False(t, ok)
	assert.Empty(t, v)
	assert.Contains(t, d.Extra, "location")
}

func TestAsset_CloneIsDeep(t *testing.T) {
	orig := Asset{
		ID:           "1",
		Location:     &Location{Latitude: "1", Longitude: "2"},
		CustomFields: map[string]string{"voltage": "220"},
		SubAssets:    &SubAssets{Movable: []SubAsset{{TagID: "S1"}}},
		DigitalAssets: &DigitalAssets{
			QRCode: &DigitalTag{URL: "https://cdn/qr.png", GeneratedAt: time.Now()},
		},
	}

	c := orig.Clone()
	c.Location.Latitude = "9"
	c.CustomFields["voltage"] = "110"
	c.SubAssets.Movable[0].TagID = "changed"
	c.DigitalAssets.QRCode.URL = "changed"

	assert.Equal(t, "1", orig.Location.Latitude)
	assert.Equal(t, "220", orig.CustomFields["voltage"])
	assert.Equal(t, "S1", orig.SubAssets.Movable[0].TagID)
	assert.Equal(t, "https://cdn/qr.png", orig.DigitalAssets.QRCode.URL)
}

func TestDigitalTag_Ready(t *testing.T) {
	since := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, (*DigitalTag)(nil).Ready(since))
	assert.False(t, (&DigitalTag{GeneratedAt: since}).Ready(since))
	assert.False(t, (&DigitalTag{URL: "u", GeneratedAt: since.Add(-time.Second)}).Ready(since))
	assert.True(t, (&DigitalTag{URL: "u", GeneratedAt: since}).Ready(since))
}

func TestParseTagKind(t *testing.T) {
	for in, want := range map[string]TagKind{"qr": TagKindQR, "qrCode": TagKindQR, "Barcode": TagKindBarcode, "nfcData": TagKindNFC} {
		got, ok := ParseTagKind(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseTagKind("rfid")
	assert.False(t, ok)
}
