package usecase

import (
	"context"
	"fmt"
	"time"

	"assettrack/internal/domain/entity"
	"assettrack/internal/domain/service"
)

// TagTarget identifies one digital tag: a kind on an asset or on one of its sub-assets.
type TagTarget struct {
	AssetID  string               `json:"assetId"`
	Kind     entity.TagKind       `json:"kind"`
	SubAsset *service.SubAssetRef `json:"subAsset,omitempty"`
}

// Key identifies the generation flow of the target.
func (t TagTarget) Key() string {
	if t.SubAsset == nil {
		return fmt.Sprintf("%s/%s", t.AssetID, t.Kind)
	}

	return fmt.Sprintf("%s/%s/%d/%s", t.AssetID, t.SubAsset.Category, t.SubAsset.Index, t.Kind)
}

// TagFlowState is the state of one generation flow.
type TagFlowState string

const (
	TagFlowIdle       TagFlowState = "idle"
	TagFlowGenerating TagFlowState = "generating"
	TagFlowSuccess    TagFlowState = "success"
	TagFlowError      TagFlowState = "error"
)

// TagFlowStatus reports a generation flow.
type TagFlowStatus struct {
	Target     TagTarget          `json:"target"`
	State      TagFlowState       `json:"state"`
	Error      string             `json:"error,omitempty"`
	Tag        *entity.DigitalTag `json:"tag,omitempty"`
	StartedAt  *time.Time         `json:"startedAt,omitempty"`
	FinishedAt *time.Time         `json:"finishedAt,omitempty"`
}

// TagUsecase drives digital tag generation. Generate returns once the backend
// accepted the request; completion is observed through Status, Wait or the
// onGenerated callback.
type TagUsecase interface {
	Generate(ctx context.Context, target TagTarget, onGenerated func(*entity.Asset)) (*TagFlowStatus, error)
	Wait(ctx context.Context, target TagTarget) (*TagFlowStatus, error)
	Status(target TagTarget) *TagFlowStatus
	Close(target TagTarget) *TagFlowStatus
	// HandleWebhook re-fetches a pushed asset that has generating flows,
	// completes the flows whose tag is ready in the backend copy and returns
	// how many completed. The pushed body itself is never stored.
	HandleWebhook(ctx context.Context, asset *entity.Asset) int
	Shutdown()
}
