package service

import (
	"context"

	"github.com/paulmach/orb"
)

// Geocoder resolves addresses and coordinates. Callers treat every failure
// as best-effort.
type Geocoder interface {
	// Reverse resolves a coordinate to a formatted address.
	Reverse(ctx context.Context, point orb.Point) (string, error)

	// Forward resolves a free-form address to a coordinate.
	Forward(ctx context.Context, address string) (orb.Point, error)
}
