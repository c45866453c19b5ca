package validation

import (
	"testing"

	domainerrors "assettrack/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	TagID    string `json:"tagId" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=active inactive"`
	Quantity int    `json:"quantity,omitempty" validate:"min=0"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(&sample{TagID: "T-1", Status: "active"}))

	err := Struct(&sample{Status: "lost", Quantity: -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Contains(t, err.Error(), "tagId is required")
	assert.Contains(t, err.Error(), "status must be one of: active, inactive")
	assert.Contains(t, err.Error(), "quantity must be at least 0")
}
