package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addRequest struct {
	ProductID string `validate:"required"`
	WishType  string `validate:"omitempty,oneof=individual full_look"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(addRequest{ProductID: "prod-1", WishType: "individual"})
	assert.NoError(t, err)
}

func TestValidate_OmittedOptionalField(t *testing.T) {
	err := Validate(addRequest{ProductID: "prod-1"})
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(addRequest{WishType: "individual"})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "is required", valErr.Fields()["ProductID"])
	assert.Contains(t, valErr.Error(), "ProductID")
}

func TestValidate_InvalidEnum(t *testing.T) {
	err := Validate(addRequest{ProductID: "prod-1", WishType: "both"})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Fields()["WishType"], "must be one of")
}
