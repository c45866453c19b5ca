package service

import (
	"context"

	"assettrack/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(t testingT, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// MockEventPublisher is a mock of service.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

// NewMockEventPublisher creates a mock whose expectations are asserted on cleanup.
func NewMockEventPublisher(t testingT) *MockEventPublisher {
	m := &MockEventPublisher{}
	register(t, &m.Mock)

	return m
}

func (m *MockEventPublisher) PublishAssetEvent(ctx context.Context, event *service.AssetEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}

// MockGeocoder is a mock of service.Geocoder.
type MockGeocoder struct {
	mock.Mock
}

// NewMockGeocoder creates a mock whose expectations are asserted on cleanup.
func NewMockGeocoder(t testingT) *MockGeocoder {
	m := &MockGeocoder{}
	register(t, &m.Mock)

	return m
}

func (m *MockGeocoder) Reverse(ctx context.Context, point orb.Point) (string, error) {
	args := m.Called(ctx, point)

	return args.String(0), args.Error(1)
}

func (m *MockGeocoder) Forward(ctx context.Context, address string) (orb.Point, error) {
	args := m.Called(ctx, address)
	p, _ := args.Get(0).(orb.Point)

	return p, args.Error(1)
}

// MockArtifactSink is a mock of service.ArtifactSink.
type MockArtifactSink struct {
	mock.Mock
}

// NewMockArtifactSink creates a mock whose expectations are asserted on cleanup.
func NewMockArtifactSink(t testingT) *MockArtifactSink {
	m := &MockArtifactSink{}
	register(t, &m.Mock)

	return m
}

func (m *MockArtifactSink) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)

	return args.String(0), args.Error(1)
}

func (m *MockArtifactSink) Close() error {
	return m.Called().Error(0)
}
