package geocode

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"assettrack/config"
	"assettrack/internal/errors"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleGeocoder_Reverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25.033,121.5654", r.URL.Query().Get("latlng"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"No. 7, Section 5, Xinyi Rd, Taipei"}]}`))
	}))
	defer srv.Close()

	g := NewGoogleGeocoder(srv.URL, "secret", srv.Client())
	address, err := g.Reverse(context.Background(), orb.Point{121.5654, 25.033})
	require.NoError(t, err)
	assert.Equal(t, "No. 7, Section 5, Xinyi Rd, Taipei", address)
}

func TestGoogleGeocoder_Forward(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Taipei 101", r.URL.Query().Get("address"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":25.0339,"lng":121.5645}}}]}`))
	}))
	defer srv.Close()

	g := NewGoogleGeocoder(srv.URL, "secret", srv.Client())
	p, err := g.Forward(context.Background(), "Taipei 101")
	require.NoError(t, err)
	assert.InDelta(t, 25.0339, p.Lat(), 1e-9)
	assert.InDelta(t, 121.5645, p.Lon(), 1e-9)
}

func TestGoogleGeocoder_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		is     error
	}{
		{name: "zero results", status: http.StatusOK, body: `{"status":"ZERO_RESULTS","results":[]}`, is: ErrNoResult},
		{name: "denied", status: http.StatusOK, body: `{"status":"REQUEST_DENIED","error_message":"bad key"}`},
		{name: "http error", status: http.StatusInternalServerError, body: ``},
		{name: "garbage", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := NewGoogleGeocoder(srv.URL, "k", srv.Client())
			_, err := g.Reverse(context.Background(), orb.Point{1, 1})
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is))
			}
		})
	}
}

func TestNewGeocoder(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	g, err := NewGeocoder(&config.Config{Geocoding: &config.GeocodingConfig{}}, logger)
	require.NoError(t, err)
	_, err = g.Reverse(context.Background(), orb.Point{})
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = NewGeocoder(&config.Config{Geocoding: &config.GeocodingConfig{Provider: ProviderGoogle}}, logger)
	assert.Error(t, err)

	_, err = NewGeocoder(&config.Config{Geocoding: &config.GeocodingConfig{Provider: "osm"}}, logger)
	assert.Error(t, err)
}
