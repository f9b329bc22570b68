package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/diillson/gateway-admin-go/pkg/errors"
)

func TestHTTPStatusMapsSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", pkgerrors.ErrNotFound, http.StatusNotFound},
		{"validation", pkgerrors.ErrValidation, http.StatusBadRequest},
		{"conflict", pkgerrors.ErrConflict, http.StatusConflict},
		{"duplicate", pkgerrors.ErrDuplicate, http.StatusConflict},
		{"transient store", pkgerrors.ErrTransientStore, http.StatusServiceUnavailable},
		{"wrapped sentinel", fmt.Errorf("loading config: %w", pkgerrors.ErrNotFound), http.StatusNotFound},
		{"unknown error", stderrors.New("boom"), http.StatusInternalServerError},
		{"nil-safe default", stderrors.New(""), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, pkgerrors.HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatusPrefersAPIErrorCode(t *testing.T) {
	apiErr := pkgerrors.Conflict("versão ativa não pode ser excluída", pkgerrors.ErrNotFound)
	// The explicit code wins over the wrapped sentinel.
	assert.Equal(t, http.StatusConflict, pkgerrors.HTTPStatus(apiErr))

	wrapped := fmt.Errorf("delete version: %w", apiErr)
	assert.Equal(t, http.StatusConflict, pkgerrors.HTTPStatus(wrapped))
}

func TestAPIErrorUnwrapAndDetails(t *testing.T) {
	cause := stderrors.New("db down")
	apiErr := pkgerrors.Unavailable("", cause).WithDetails(map[string]string{"retryAfter": "5s"})

	assert.True(t, stderrors.Is(apiErr, cause))
	assert.Contains(t, apiErr.Error(), "db down")
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Code)
	assert.NotNil(t, apiErr.Details)
}

func TestNotFoundBuildsResourceMessage(t *testing.T) {
	apiErr := pkgerrors.NotFound("Rota", nil)
	assert.Equal(t, http.StatusNotFound, apiErr.Code)
	assert.Equal(t, "Rota não encontrado", apiErr.Message)
	assert.Equal(t, apiErr.Message, apiErr.Error())
}
