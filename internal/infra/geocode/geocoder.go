// Package geocode resolves coordinates and addresses through the Google
// Geocoding API.
package geocode

import (
	"context"
	"log/slog"
	"net/http"

	"assettrack/config"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"

	"github.com/paulmach/orb"
)

// ProviderGoogle selects the Google Geocoding API.
const ProviderGoogle = "google"

// ErrDisabled is returned by every call when no provider is configured.
var ErrDisabled = errors.New("geocoding is disabled")

// NewGeocoder creates the configured geocoder. Without a provider every call
// fails with ErrDisabled, which callers treat like any other lookup failure.
func NewGeocoder(cfg *config.Config, logger *slog.Logger) (service.Geocoder, error) {
	gc := cfg.Geocoding
	switch gc.Provider {
	case "":
		logger.Info("Geocoding not configured, addresses will use the placeholder")

		return disabled{}, nil
	case ProviderGoogle:
		if gc.APIKey == "" {
			return nil, errors.New("geocoding.apiKey is required for google provider")
		}

		return NewGoogleGeocoder(gc.Endpoint, gc.APIKey, &http.Client{Timeout: gc.Timeout}), nil
	default:
		return nil, errors.Errorf("unknown geocoding provider: %s", gc.Provider)
	}
}

type disabled struct{}

func (disabled) Reverse(context.Context, orb.Point) (string, error) { return "", ErrDisabled }

func (disabled) Forward(context.Context, string) (orb.Point, error) { return orb.Point{}, ErrDisabled }
