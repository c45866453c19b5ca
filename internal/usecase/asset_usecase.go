// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"io"

	"assettrack/internal/domain/entity"
	"assettrack/internal/domain/service"
	"assettrack/internal/usecase/store"

	"github.com/paulmach/orb"
)

// NearbyQuery restricts a query to assets within RadiusMeters of Center.
type NearbyQuery struct {
	Center       orb.Point
	RadiusMeters float64
}

// AssetQuery describes a filtered and sorted view of the asset list.
// Empty strings and "all" match everything.
type AssetQuery struct {
	Search        string
	Status        string
	Priority      string
	AssetType     string
	SortField     string
	SortDirection string
	Near          *NearbyQuery

	// Refresh re-fetches the list before filtering.
	Refresh bool
}

// AssetUsecase defines the interface for asset operations backed by the store.
type AssetUsecase interface {
	Refresh(ctx context.Context) ([]entity.Asset, error)
	Query(ctx context.Context, query AssetQuery) ([]entity.Asset, error)
	Get(ctx context.Context, id string) (*entity.Asset, error)
	Create(ctx context.Context, asset *entity.Asset) (*entity.Asset, error)
	Update(ctx context.Context, id string, asset *entity.Asset) (*entity.Asset, error)
	Delete(ctx context.Context, id string) error
	Scan(ctx context.Context, id string, req *service.ScanRequest) (*entity.Asset, error)
	// ScanPayload resolves text read by a hardware scanner to an asset and records the scan.
	ScanPayload(ctx context.Context, raw string, req *service.ScanRequest) (*entity.Asset, error)
	Import(ctx context.Context, filename string, content io.Reader) (*service.ImportResult, error)

	Select(id string) error
	ClearError()
	State() store.State

	// RenderLabel renders the asset's QR label as PNG.
	RenderLabel(ctx context.Context, id string) ([]byte, error)
}
