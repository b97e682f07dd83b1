package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/ae-inbuator/second-story-wishlist/pkg/errors"
)

func errResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_StructuredNotFound(t *testing.T) {
	resp := errResponse(http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"record gone"}}`)

	err := ParseResponseError(resp, "record-store")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestParseResponseError_StructuredBadRequest(t *testing.T) {
	resp := errResponse(http.StatusBadRequest, `{"error":{"code":"INVALID_INPUT","message":"missing product id"}}`)

	err := ParseResponseError(resp, "record-store")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "record-store")
	assert.Contains(t, err.Error(), "missing product id")
}

func TestParseResponseError_Conflict(t *testing.T) {
	resp := errResponse(http.StatusConflict, `{"error":{"code":"ALREADY_EXISTS","message":"duplicate"}}`)

	err := ParseResponseError(resp, "record-store")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, apperrors.ClassValidation, apperrors.Classify(err))
}

func TestParseResponseError_Unavailable(t *testing.T) {
	resp := errResponse(http.StatusServiceUnavailable, `{"error":{"code":"SERVICE_UNAVAILABLE","message":"maintenance"}}`)

	err := ParseResponseError(resp, "record-store")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Equal(t, apperrors.ClassNetwork, apperrors.Classify(err))
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	resp := errResponse(http.StatusBadRequest, "plain text failure")

	err := ParseResponseError(resp, "record-store")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "plain text failure")
}

func TestParseResponseError_ServerError(t *testing.T) {
	resp := errResponse(http.StatusInternalServerError, `{"error":{"code":"INTERNAL_ERROR","message":"boom"}}`)

	err := ParseResponseError(resp, "record-store")
	assert.Error(t, err)
	assert.Equal(t, apperrors.ClassUnknown, apperrors.Classify(err))
}
