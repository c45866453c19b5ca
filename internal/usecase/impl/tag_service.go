package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"assettrack/config"
	deliverycontext "assettrack/internal/delivery/context"
	"assettrack/internal/domain/entity"
	domainerrors "assettrack/internal/domain/errors"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"
	"assettrack/internal/usecase"
	"assettrack/internal/usecase/store"
	"assettrack/internal/validation"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/fx"
)

var errTagPending = errors.New("generated tag not visible yet")

// TagServiceParams holds dependencies for the tag service, injected by Fx.
type TagServiceParams struct {
	fx.In

	Config *config.Config
	Store  *store.Store
	API    service.AssetAPI
	Logger *slog.Logger
}

// tagFlow is one generation request and the polling that follows it.
// Fields are guarded by tagService.mu.
type tagFlow struct {
	status      usecase.TagFlowStatus
	err         error
	since       time.Time
	onGenerated func(*entity.Asset)
	cancel      context.CancelFunc
	done        chan struct{}
	doneOnce    sync.Once
}

func (f *tagFlow) finish() {
	f.doneOnce.Do(func() { close(f.done) })
}

// tagService implements the TagUsecase interface.
type tagService struct {
	store  *store.Store
	api    service.AssetAPI
	timing config.TagGenerationConfig
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	flows map[string]*tagFlow
}

// NewTagService creates the tag service for Fx and stops its polls on shutdown.
func NewTagService(lc fx.Lifecycle, params TagServiceParams) usecase.TagUsecase {
	srv := NewTagServiceWith(params.Store, params.API, *params.Config.TagGeneration, params.Logger)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			srv.Shutdown()

			return nil
		},
	})

	return srv
}

// NewTagServiceWith creates the tag service from explicit collaborators.
func NewTagServiceWith(st *store.Store, api service.AssetAPI, timing config.TagGenerationConfig, logger *slog.Logger) usecase.TagUsecase {
	return &tagService{
		store:  st,
		api:    api,
		timing: timing,
		logger: logger,
		now:    time.Now,
		flows:  make(map[string]*tagFlow),
	}
}

func (srv *tagService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Generate requests a tag for target and starts watching for the generated
// image. It fails with ErrGenerationInProgress while an earlier request for
// the same target is still being watched.
func (srv *tagService) Generate(ctx context.Context, target usecase.TagTarget, onGenerated func(*entity.Asset)) (*usecase.TagFlowStatus, error) {
	if err := validateTarget(&target); err != nil {
		return nil, err
	}

	flow, err := srv.start(target, onGenerated)
	if err != nil {
		return nil, err
	}
	logger := srv.log(ctx).With(slog.String("asset_id", target.AssetID), slog.String("kind", string(target.Kind)))

	previous, err := srv.currentTag(ctx, target)
	if err != nil {
		return srv.fail(ctx, flow, err), err
	}
	if previous != nil && !previous.GeneratedAt.IsZero() {
		srv.mu.Lock()
		flow.since = previous.GeneratedAt.Add(time.Nanosecond)
		srv.mu.Unlock()
	}

	if target.SubAsset != nil {
		_, err = srv.api.GenerateSubAssetTag(ctx, target.AssetID, *target.SubAsset, target.Kind)
	} else {
		_, err = srv.api.GenerateTag(ctx, target.AssetID, target.Kind)
	}
	if err != nil {
		logger.Warn("Tag generation request failed", slog.Any("error", err))

		return srv.fail(ctx, flow, err), err
	}
	logger.Info("Tag generation requested")

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	srv.mu.Lock()
	flow.cancel = cancel
	status := flow.status
	closed := srv.flows[target.Key()] != flow
	srv.mu.Unlock()

	if closed {
		cancel()

		return &status, nil
	}
	go srv.poll(pollCtx, flow)

	return &status, nil
}

func validateTarget(target *usecase.TagTarget) error {
	if strings.TrimSpace(target.AssetID) == "" {
		return domainerrors.ErrValidation.WithDetails("asset id is required")
	}
	kind, ok := entity.ParseTagKind(string(target.Kind))
	if !ok {
		return domainerrors.ErrValidation.WithDetails("unknown tag kind " + string(target.Kind))
	}
	target.Kind = kind
	if target.SubAsset != nil {
		return validation.Struct(target.SubAsset)
	}

	return nil
}

// start registers a generating flow for target, replacing a finished one.
func (srv *tagService) start(target usecase.TagTarget, onGenerated func(*entity.Asset)) (*tagFlow, error) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	key := target.Key()
	if existing, ok := srv.flows[key]; ok && existing.status.State == usecase.TagFlowGenerating {
		return nil, domainerrors.ErrGenerationInProgress
	}

	startedAt := srv.now()
	flow := &tagFlow{
		status: usecase.TagFlowStatus{
			Target:    target,
			State:     usecase.TagFlowGenerating,
			StartedAt: &startedAt,
		},
		onGenerated: onGenerated,
		done:        make(chan struct{}),
	}
	srv.flows[key] = flow

	return flow, nil
}

// currentTag returns the block the target holds before the request, so the
// poll can tell the regenerated block apart from it.
func (srv *tagService) currentTag(ctx context.Context, target usecase.TagTarget) (*entity.DigitalTag, error) {
	asset, ok := srv.store.Find(target.AssetID)
	if !ok {
		var err error
		if asset, err = srv.api.GetAsset(ctx, target.AssetID); err != nil {
			return nil, err
		}
	}

	if target.SubAsset != nil {
		subs := asset.SubAssets.Category(target.SubAsset.Category)
		if target.SubAsset.Index >= len(subs) {
			return nil, domainerrors.ErrSubAssetNotFound.WithDetails(target.Key())
		}
	}

	return tagOf(asset, target), nil
}

func tagOf(asset *entity.Asset, target usecase.TagTarget) *entity.DigitalTag {
	if asset == nil {
		return nil
	}
	if target.SubAsset == nil {
		return asset.DigitalAssets.Get(target.Kind)
	}
	subs := asset.SubAssets.Category(target.SubAsset.Category)
	if target.SubAsset.Index < 0 || target.SubAsset.Index >= len(subs) {
		return nil
	}

	return subs[target.SubAsset.Index].DigitalAssets.Get(target.Kind)
}

// poll waits the initial delay, then re-fetches the asset with exponential
// backoff until the target block is ready or the budget is spent.
func (srv *tagService) poll(ctx context.Context, flow *tagFlow) {
	srv.mu.Lock()
	target, since := flow.status.Target, flow.since
	srv.mu.Unlock()

	timer := time.NewTimer(srv.timing.InitialDelay)
	select {
	case <-ctx.Done():
		timer.Stop()

		return
	case <-timer.C:
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = srv.timing.InitialInterval
	policy.MaxInterval = srv.timing.MaxInterval
	policy.MaxElapsedTime = srv.timing.MaxElapsed

	var ready *entity.Asset
	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		asset, err := srv.api.GetAsset(ctx, target.AssetID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrUnauthorized) ||
				errors.Is(err, domainerrors.ErrAuthRequired) ||
				errors.Is(err, domainerrors.ErrSessionExpired) ||
				errors.Is(err, domainerrors.ErrAssetNotFound) {
				return backoff.Permanent(err)
			}

			return err
		}
		if !tagOf(asset, target).Ready(since) {
			return errTagPending
		}
		ready = asset

		return nil
	}, backoff.WithContext(policy, ctx))

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		if errors.Is(err, errTagPending) {
			err = domainerrors.ErrTagNotReady.WithDetails(target.Key())
		}
		srv.log(ctx).Warn("Tag generation did not complete",
			slog.String("target", target.Key()),
			slog.Int("attempts", attempts),
			slog.Any("error", err),
		)
		srv.fail(ctx, flow, err)

		return
	}

	srv.complete(ctx, flow, ready)
}

// complete moves a generating flow to success. It reports false when the flow
// already finished or was closed.
func (srv *tagService) complete(ctx context.Context, flow *tagFlow, asset *entity.Asset) bool {
	srv.mu.Lock()
	target := flow.status.Target
	if srv.flows[target.Key()] != flow || flow.status.State != usecase.TagFlowGenerating {
		srv.mu.Unlock()

		return false
	}
	finishedAt := srv.now()
	flow.status.State = usecase.TagFlowSuccess
	flow.status.Tag = tagOf(asset, target).Clone()
	flow.status.FinishedAt = &finishedAt
	flow.status.Error = ""
	flow.err = nil
	cancel, onGenerated := flow.cancel, flow.onGenerated
	srv.mu.Unlock()

	defer flow.finish()
	if cancel != nil {
		defer cancel()
	}

	srv.store.ApplyServerAsset(ctx, asset)
	if onGenerated != nil {
		c := asset.Clone()
		onGenerated(&c)
	}
	srv.store.Publish(ctx, &service.AssetEvent{
		Type:    service.EventTagGenerated,
		AssetID: asset.ID,
		TagID:   asset.TagID,
		TagKind: string(target.Kind),
	})
	srv.log(ctx).Info("Tag generated", slog.String("target", target.Key()))

	return true
}

// fail moves a generating flow to error and returns its status.
func (srv *tagService) fail(_ context.Context, flow *tagFlow, err error) *usecase.TagFlowStatus {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.flows[flow.status.Target.Key()] == flow && flow.status.State == usecase.TagFlowGenerating {
		finishedAt := srv.now()
		flow.status.State = usecase.TagFlowError
		flow.status.Error = errorMessage(err)
		flow.status.FinishedAt = &finishedAt
		flow.err = err
		if flow.cancel != nil {
			flow.cancel()
		}
		flow.finish()
	}
	status := flow.status

	return &status
}

func errorMessage(err error) string {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}

	return err.Error()
}

// Wait blocks until the flow of target leaves generating or ctx ends.
func (srv *tagService) Wait(ctx context.Context, target usecase.TagTarget) (*usecase.TagFlowStatus, error) {
	srv.mu.Lock()
	flow, ok := srv.flows[target.Key()]
	srv.mu.Unlock()
	if !ok {
		return &usecase.TagFlowStatus{Target: target, State: usecase.TagFlowIdle}, nil
	}

	select {
	case <-ctx.Done():
		return srv.Status(target), errors.WithStack(ctx.Err())
	case <-flow.done:
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	status := flow.status

	return &status, flow.err
}

// Status reports the flow of target; targets without a flow are idle.
func (srv *tagService) Status(target usecase.TagTarget) *usecase.TagFlowStatus {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	flow, ok := srv.flows[target.Key()]
	if !ok {
		return &usecase.TagFlowStatus{Target: target, State: usecase.TagFlowIdle}
	}
	status := flow.status

	return &status
}

// Close stops watching target and resets it to idle, returning the state it
// had. Closing an idle target changes nothing.
func (srv *tagService) Close(target usecase.TagTarget) *usecase.TagFlowStatus {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	key := target.Key()
	flow, ok := srv.flows[key]
	if !ok {
		return &usecase.TagFlowStatus{Target: target, State: usecase.TagFlowIdle}
	}
	delete(srv.flows, key)
	if flow.cancel != nil {
		flow.cancel()
	}
	flow.finish()
	status := flow.status

	return &status
}

// HandleWebhook treats a pushed asset as a notification only. When flows of
// that asset are generating, the asset is re-fetched from the backend and
// every flow whose block is ready in the fetched copy completes with it.
func (srv *tagService) HandleWebhook(ctx context.Context, pushed *entity.Asset) int {
	if pushed == nil || pushed.ID == "" {
		return 0
	}
	if !srv.generating(pushed.ID) {
		srv.log(ctx).Debug("Webhook matched no generating flow", slog.String("asset_id", pushed.ID))

		return 0
	}

	asset, err := srv.api.GetAsset(ctx, pushed.ID)
	if err != nil {
		srv.log(ctx).Warn("Webhook re-fetch failed",
			slog.String("asset_id", pushed.ID),
			slog.Any("error", err),
		)

		return 0
	}

	srv.mu.Lock()
	var ready []*tagFlow
	for _, flow := range srv.flows {
		if flow.status.State != usecase.TagFlowGenerating || flow.status.Target.AssetID != asset.ID {
			continue
		}
		if tagOf(asset, flow.status.Target).Ready(flow.since) {
			ready = append(ready, flow)
		}
	}
	srv.mu.Unlock()

	completed := 0
	for _, flow := range ready {
		if srv.complete(ctx, flow, asset) {
			completed++
		}
	}

	return completed
}

func (srv *tagService) generating(assetID string) bool {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	for _, flow := range srv.flows {
		if flow.status.State == usecase.TagFlowGenerating && flow.status.Target.AssetID == assetID {
			return true
		}
	}

	return false
}

// Shutdown stops every running poll and releases waiters.
func (srv *tagService) Shutdown() {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	for _, flow := range srv.flows {
		if flow.cancel != nil {
			flow.cancel()
		}
		flow.finish()
	}
}
