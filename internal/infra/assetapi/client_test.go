package assetapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	deliverycontext "assettrack/internal/delivery/context"
	"assettrack/internal/domain/entity"
	domainerrors "assettrack/internal/domain/errors"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	session *entity.Session
}

func (s *staticTokens) Load() (*entity.Session, error) { return s.session, nil }
func (s *staticTokens) Save(session *entity.Session) error {
	s.session = session

	return nil
}
func (s *staticTokens) Clear() error {
	s.session = nil

	return nil
}

type fixedInspector struct {
	exp *time.Time
}

func (f fixedInspector) ExpiresAt(string) (*time.Time, error) { return f.exp, nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *staticTokens) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &staticTokens{session: &entity.Session{Token: "tok-123"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(srv.URL+"/", tokens, nil, logger, WithHTTPClient(srv.Client())), tokens
}

func TestClient_SendsBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID, gotContentType string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(deliverycontext.HeaderXRequestID)
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"success":true,"assets":[{"_id":"a1","tagId":"T-1"}]}`))
	})

	ctx := deliverycontext.WithRequestID(context.Background(), "req-42")
	assets, err := client.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "T-1", assets[0].TagID)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "req-42", gotRequestID)
	assert.Empty(t, gotContentType)
}

func TestClient_NoTokenFailsBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	tokens.session = nil

	_, err := client.ListAssets(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAuthRequired))
	assert.Zero(t, calls.Load())
}

func TestClient_ExpiredTokenFailsBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	past := time.Now().Add(-time.Minute)
	client.inspector = fixedInspector{exp: &past}

	_, err := client.GetAsset(context.Background(), "a1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionExpired))
	assert.Zero(t, calls.Load())
}

func TestClient_ErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantIs      error
	}{
		{
			name:        "message from body",
			status:      http.StatusBadRequest,
			body:        `{"success":false,"message":"Tag ID already exists"}`,
			wantMessage: "Tag ID already exists",
		},
		{
			name:        "generic message",
			status:      http.StatusInternalServerError,
			body:        `<html>oops</html>`,
			wantMessage: "HTTP error! status: 500",
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        `{}`,
			wantMessage: "HTTP error! status: 401",
			wantIs:      domainerrors.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.ListAssets(context.Background())
			require.Error(t, err)

			var apiErr *domainerrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Error())
			if tt.wantIs != nil {
				assert.True(t, errors.Is(err, tt.wantIs))
			}
		})
	}
}

func TestClient_SuccessFalseIsAnError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"not allowed"}`))
	})

	err := client.DeleteAsset(context.Background(), "a1")
	require.Error(t, err)
	assert.Equal(t, "not allowed", err.Error())
}

func TestClient_UpdateAssetStripsTagIDs(t *testing.T) {
	var body map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/assets/a1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"success":true,"asset":{"_id":"a1","tagId":"T-1","brand":"Acme"}}`))
	})

	asset := &entity.Asset{
		ID:       "a1",
		TagID:    "T-1",
		Brand:    "Acme",
		Location: &entity.Location{Latitude: "0", Longitude: "0"},
		SubAssets: &entity.SubAssets{
			Movable:   []entity.SubAsset{{TagID: "S-1", AssetName: "pump"}},
			Immovable: []entity.SubAsset{{TagID: "S-2", AssetName: "base"}},
		},
	}

	updated, err := client.UpdateAsset(context.Background(), "a1", asset)
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.Brand)

	assert.NotContains(t, body, "tagId")
	assert.NotContains(t, body, "location")
	sub := body["subAssets"].(map[string]any)
	for _, category := range []string{"movable", "immovable"} {
		for _, item := range sub[category].([]any) {
			assert.NotContains(t, item.(map[string]any), "tagId")
		}
	}
	// The caller's value is untouched.
	assert.Equal(t, "T-1", asset.TagID)
	assert.Equal(t, "S-1", asset.SubAssets.Movable[0].TagID)
}

func TestSanitizeForUpdate_Location(t *testing.T) {
	tests := []struct {
		name     string
		location *entity.Location
		want     map[string]any
	}{
		{
			name:     "set coordinates kept",
			location: &entity.Location{Latitude: "25.03", Longitude: "121.56"},
			want:     map[string]any{"latitude": "25.03", "longitude": "121.56"},
		},
		{
			name:     "unset coordinates with building keeps building",
			location: &entity.Location{Latitude: "0", Longitude: "0", Building: "B1"},
			want:     map[string]any{"building": "B1"},
		},
		{
			name:     "empty location dropped",
			location: &entity.Location{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := sanitizeForUpdate(&entity.Asset{ID: "a1", Location: tt.location})
			require.NoError(t, err)

			var fields map[string]any
			require.NoError(t, json.Unmarshal(out, &fields))
			if tt.want == nil {
				assert.NotContains(t, fields, "location")

				return
			}
			assert.Equal(t, tt.want, fields["location"])
		})
	}
}

func TestClient_ImportAssetsSendsMultipart(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "assets.xlsx", header.Filename)
		assert.Equal(t, "xlsx-bytes", string(data))
		_, _ = w.Write([]byte(`{"success":true,"imported":3,"failed":1,"errors":["row 4: missing tagId"]}`))
	})

	result, err := client.ImportAssets(context.Background(), "assets.xlsx", strings.NewReader("xlsx-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"row 4: missing tagId"}, result.Errors)
}

func TestClient_GenerateTagPaths(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"a1","digitalAssets":{"qrCode":{"data":{"tagId":"T-1"},"url":"https://cdn/qr.png"}}}}`))
	})

	tag, err := client.GenerateTag(context.Background(), "a1", entity.TagKindQR)
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Equal(t, "T-1", tag.Data.TagID)

	_, err = client.GenerateSubAssetTag(context.Background(), "a1",
		service.SubAssetRef{Category: entity.MobilityMovable, Index: 2}, entity.TagKindNFC)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/digital-assets/qr/a1",
		"/digital-assets/sub-asset/a1/2/movable/nfc",
	}, paths)
}

func TestClient_AuditTrailQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/export/audit-trails", r.URL.Path)
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("startDate"))
		assert.Empty(t, r.URL.Query().Get("endDate"))
		_, _ = w.Write([]byte(`{"success":true,"data":[{"_id":"l1","action":"CREATE","details":{"tagId":"T-1","floor":"3"}}]}`))
	})

	start, err := ParseAuditDate("2024-01-01")
	require.NoError(t, err)

	logs, err := client.ListAuditTrails(context.Background(), service.AuditQuery{StartDate: start})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "T-1", logs[0].Details.TagID)
	v, ok := logs[0].Details.Get("floor")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestClient_Permissions(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"success":true,"role":"staff","permissions":{"view":true,"edit":false}}`))
		case http.MethodPut:
			var body map[string]map[string]bool
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.True(t, body["permissions"]["export"])
			_, _ = w.Write([]byte(`{"success":true}`))
		}
	})

	perms, err := client.GetAssetPermissions(context.Background(), "staff")
	require.NoError(t, err)
	assert.True(t, perms.Allows(entity.CapabilityView))
	assert.False(t, perms.Allows(entity.CapabilityEdit))

	updated, err := client.UpdateAdminAssetPermissions(context.Background(), &entity.AssetPermissions{
		Role:         "admin",
		Capabilities: map[string]bool{entity.CapabilityExport: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)
	assert.True(t, updated.Allows(entity.CapabilityExport))
}
