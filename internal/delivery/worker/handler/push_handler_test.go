package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"assettrack/config"
	"assettrack/internal/domain/entity"
	"assettrack/internal/errors"
	"assettrack/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTagUsecase struct {
	usecase.TagUsecase
	mock.Mock
}

func (m *mockTagUsecase) HandleWebhook(ctx context.Context, asset *entity.Asset) int {
	return m.Called(ctx, asset).Int(0)
}

func newPushHandler(t *testing.T, cfg *config.Config) (*PushHandler, *mockTagUsecase) {
	t.Helper()
	tags := &mockTagUsecase{}
	t.Cleanup(func() { tags.AssertExpectations(t) })

	return NewPushHandler(PushHandlerParams{
		Config: cfg,
		Logger: slog.New(slog.DiscardHandler),
		TagUC:  tags,
	}), tags
}

func localConfig() *config.Config {
	cfg := &config.Config{PubSub: &config.PubSubConfig{Provider: "google"}}
	cfg.Env.Env = "local"

	return cfg
}

func pushBody(t *testing.T, data string) string {
	t.Helper()
	var msg PubSubMessage
	msg.Message.Data = base64.StdEncoding.EncodeToString([]byte(data))
	msg.Message.MessageID = "m-1"
	msg.Message.Attributes = map[string]string{"request_id": "req-7"}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	return string(body)
}

func push(h *PushHandler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/push", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h.HandlePush(e.NewContext(req, rec))

	return rec
}

func TestPushHandler_CompletesTagFlows(t *testing.T) {
	h, tags := newPushHandler(t, localConfig())
	assert.Nil(t, h.verify, "local pushes are not verified")

	tags.On("HandleWebhook", mock.Anything, mock.MatchedBy(func(a *entity.Asset) bool {
		return a.ID == "a1" && a.DigitalAssets.QRCode.URL == "https://cdn.example.com/a1.png"
	})).Return(1).Once()

	rec := push(h, pushBody(t, `{"type":"tag.generated","asset":{"_id":"a1","digitalAssets":{"qrCode":{"url":"https://cdn.example.com/a1.png"}}}}`))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPushHandler_IgnoresOtherEvents(t *testing.T) {
	h, _ := newPushHandler(t, localConfig())

	rec := push(h, pushBody(t, `{"type":"asset.deleted","asset":{"_id":"a1"}}`))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPushHandler_RejectsMalformed(t *testing.T) {
	h, _ := newPushHandler(t, localConfig())

	tests := map[string]string{
		"not json":         `{`,
		"bad base64":       `{"message":{"data":"***"}}`,
		"bad event":        pushBody(t, `[1,2]`),
		"missing asset":    pushBody(t, `{"type":"tag.generated"}`),
		"asset without id": pushBody(t, `{"asset":{"tagId":"PJ-A001"}}`),
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, push(h, body).Code)
		})
	}
}

func TestPushHandler_VerifiesOutsideLocal(t *testing.T) {
	cfg := localConfig()
	cfg.Env.Env = "production"
	h, _ := newPushHandler(t, cfg)
	require.NotNil(t, h.verify)

	h.verify = func(*http.Request) error { return errors.New("bad token") }
	rec := push(h, pushBody(t, `{"type":"tag.generated","asset":{"_id":"a1"}}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyPubSubToken_RequiresBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/push", nil)
	require.Error(t, verifyPubSubToken(req))

	req.Header.Set("Authorization", "Basic abc")
	require.Error(t, verifyPubSubToken(req))
}
