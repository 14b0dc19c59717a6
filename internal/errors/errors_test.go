package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		errType ErrorType
		status  int
	}{
		{TypeValidation, http.StatusBadRequest},
		{TypeNotFound, http.StatusNotFound},
		{TypeCapacity, http.StatusConflict},
		{TypeExternal, http.StatusBadGateway},
		{TypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			err := &Error{Type: tt.errType, Message: "boom"}
			assert.Equal(t, tt.status, err.HTTPStatus())
		})
	}
}

func TestFromDomainTranslatesSentinels(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType ErrorType
	}{
		{"invalid input", fmt.Errorf("%w: empty text", domain.ErrInvalidInput), TypeValidation},
		{"classification failed", fmt.Errorf("%w: model down", domain.ErrClassificationFailed), TypeExternal},
		{"harvest failed", fmt.Errorf("%w: no reviews", domain.ErrHarvestFailed), TypeExternal},
		{"store full", fmt.Errorf("%w", domain.ErrStoreFull), TypeCapacity},
		{"unknown", errors.New("something else"), TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			structured := FromDomain(tt.err)
			require.NotNil(t, structured)
			assert.Equal(t, tt.errType, structured.Type)
		})
	}
}

func TestFromDomainNil(t *testing.T) {
	assert.Nil(t, FromDomain(nil))
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("root cause")
	err := InternalError("wrapper", cause)

	assert.ErrorIs(t, err, cause)
}

func TestWithFieldChaining(t *testing.T) {
	err := ValidationError("bad request").
		WithField("source", "yelp").
		WithField("url", "https://example.com")

	assert.Equal(t, "yelp", err.Context["source"])
	assert.Equal(t, "https://example.com", err.Context["url"])

	resp := err.ToResponse()
	assert.Equal(t, "bad request", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Len(t, resp.Context, 2)
}

func TestAsStructuredErrorPassThrough(t *testing.T) {
	original := NotFoundError("missing")
	wrapped := fmt.Errorf("handler: %w", original)

	assert.Same(t, original, AsStructuredError(wrapped))
}
