package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestBaseError_IsMatchesCopies(t *testing.T) {
	detailed := ErrValidation.WithDetails("please select a project")

	assert.True(t, stderrors.Is(detailed, ErrValidation))
	assert.True(t, stderrors.Is(pkgerrors.Wrap(detailed, "create asset"), ErrValidation))
	assert.False(t, stderrors.Is(detailed, ErrAssetNotFound))
	assert.Equal(t, "Invalid input: please select a project", detailed.Error())
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		message      string
		wantMessage  string
		wantHTTPCode int
		wantIs       error
	}{
		{"generic message", http.StatusInternalServerError, "", "HTTP error! status: 500", http.StatusBadGateway, ErrUpstream},
		{"server message", http.StatusBadRequest, "Tag ID already exists", "Tag ID already exists", http.StatusBadRequest, ErrUpstream},
		{"unauthorized", http.StatusUnauthorized, "jwt expired", "jwt expired", http.StatusUnauthorized, ErrUnauthorized},
		{"not found", http.StatusNotFound, "", "HTTP error! status: 404", http.StatusNotFound, ErrAssetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(tt.status, tt.message)
			assert.Equal(t, tt.wantMessage, err.Error())
			assert.Equal(t, tt.wantHTTPCode, err.HTTPCode())
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}
