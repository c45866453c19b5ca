// Package service provides testify mocks of the domain service contracts.
package service

import (
	"context"
	"io"

	"assettrack/internal/domain/entity"
	"assettrack/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockAssetAPI is a mock of service.AssetAPI.
type MockAssetAPI struct {
	mock.Mock
}

// NewMockAssetAPI creates a mock whose expectations are asserted on cleanup.
func NewMockAssetAPI(t testingT) *MockAssetAPI {
	m := &MockAssetAPI{}
	register(t, &m.Mock)

	return m
}

func assetOrNil(v any) *entity.Asset {
	if v == nil {
		return nil
	}

	return v.(*entity.Asset)
}

func (m *MockAssetAPI) ListAssets(ctx context.Context) ([]entity.Asset, error) {
	args := m.Called(ctx)
	assets, _ := args.Get(0).([]entity.Asset)

	return assets, args.Error(1)
}

func (m *MockAssetAPI) GetAsset(ctx context.Context, id string) (*entity.Asset, error) {
	args := m.Called(ctx, id)

	return assetOrNil(args.Get(0)), args.Error(1)
}

func (m *MockAssetAPI) CreateAsset(ctx context.Context, asset *entity.Asset) (*entity.Asset, error) {
	args := m.Called(ctx, asset)

	return assetOrNil(args.Get(0)), args.Error(1)
}

func (m *MockAssetAPI) UpdateAsset(ctx context.Context, id string, asset *entity.Asset) (*entity.Asset, error) {
	args := m.Called(ctx, id, asset)

	return assetOrNil(args.Get(0)), args.Error(1)
}

func (m *MockAssetAPI) DeleteAsset(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAssetAPI) ScanAsset(ctx context.Context, id string, req *service.ScanRequest) (*entity.Asset, error) {
	args := m.Called(ctx, id, req)

	return assetOrNil(args.Get(0)), args.Error(1)
}

func (m *MockAssetAPI) ImportAssets(ctx context.Context, filename string, content io.Reader) (*service.ImportResult, error) {
	args := m.Called(ctx, filename, content)
	result, _ := args.Get(0).(*service.ImportResult)

	return result, args.Error(1)
}

func (m *MockAssetAPI) ListAssetTypes(ctx context.Context) ([]entity.AssetType, error) {
	args := m.Called(ctx)
	types, _ := args.Get(0).([]entity.AssetType)

	return types, args.Error(1)
}

func (m *MockAssetAPI) CreateAssetType(ctx context.Context, assetType *entity.AssetType) (*entity.AssetType, error) {
	args := m.Called(ctx, assetType)
	t, _ := args.Get(0).(*entity.AssetType)

	return t, args.Error(1)
}

func (m *MockAssetAPI) UpdateAssetType(ctx context.Context, id string, assetType *entity.AssetType) (*entity.AssetType, error) {
	args := m.Called(ctx, id, assetType)
	t, _ := args.Get(0).(*entity.AssetType)

	return t, args.Error(1)
}

func (m *MockAssetAPI) DeleteAssetType(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAssetAPI) ListAuditTrails(ctx context.Context, query service.AuditQuery) ([]entity.AuditLog, error) {
	args := m.Called(ctx, query)
	logs, _ := args.Get(0).([]entity.AuditLog)

	return logs, args.Error(1)
}

func (m *MockAssetAPI) GenerateTag(ctx context.Context, assetID string, kind entity.TagKind) (*entity.DigitalTag, error) {
	args := m.Called(ctx, assetID, kind)
	tag, _ := args.Get(0).(*entity.DigitalTag)

	return tag, args.Error(1)
}

func (m *MockAssetAPI) GenerateSubAssetTag(ctx context.Context, assetID string, ref service.SubAssetRef, kind entity.TagKind) (*entity.DigitalTag, error) {
	args := m.Called(ctx, assetID, ref, kind)
	tag, _ := args.Get(0).(*entity.DigitalTag)

	return tag, args.Error(1)
}

func (m *MockAssetAPI) GetAssetPermissions(ctx context.Context, role string) (*entity.AssetPermissions, error) {
	args := m.Called(ctx, role)
	perms, _ := args.Get(0).(*entity.AssetPermissions)

	return perms, args.Error(1)
}

func (m *MockAssetAPI) UpdateAdminAssetPermissions(ctx context.Context, perms *entity.AssetPermissions) (*entity.AssetPermissions, error) {
	args := m.Called(ctx, perms)
	out, _ := args.Get(0).(*entity.AssetPermissions)

	return out, args.Error(1)
}

func (m *MockAssetAPI) GrantAssetPermission(ctx context.Context, grant *entity.AssetPermissionGrant) error {
	return m.Called(ctx, grant).Error(0)
}
