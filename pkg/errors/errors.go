package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Tipos de erro comuns do plano de controle
var (
	// ErrNotFound: a entidade referenciada não existe; não há retry automático
	ErrNotFound = errors.New("recurso não encontrado")

	// ErrValidation: entrada malformada, rejeitada antes de qualquer persistência
	ErrValidation = errors.New("entrada inválida")

	// ErrConflict: operação viola o estado atual (ex: excluir versão ativa,
	// corrida de publicação); o chamador deve reler o estado antes de repetir
	ErrConflict = errors.New("conflito com o estado atual")

	// ErrTransientStore: banco de dados momentaneamente indisponível;
	// o gateway degrada para a última configuração válida conhecida
	ErrTransientStore = errors.New("armazenamento temporariamente indisponível")

	// ErrBusDisconnected: conexão com o bus de notificações perdida;
	// nunca fatal, dispara o ciclo de reconexão
	ErrBusDisconnected = errors.New("desconectado do bus de notificações")

	ErrDuplicate = errors.New("recurso já existe")
)

// APIError representa um erro da API com informações adicionais
type APIError struct {
	Code        int         `json:"-"`
	Message     string      `json:"message"`
	Details     interface{} `json:"details,omitempty"`
	OriginalErr error       `json:"-"`
}

// Error implementa a interface error
func (e *APIError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.OriginalErr)
	}
	return e.Message
}

// Unwrap permite usar errors.Is e errors.As
func (e *APIError) Unwrap() error {
	return e.OriginalErr
}

// New cria um novo APIError
func New(code int, message string, err error) *APIError {
	return &APIError{
		Code:        code,
		Message:     message,
		OriginalErr: err,
	}
}

// WithDetails adiciona detalhes ao erro
func (e *APIError) WithDetails(details interface{}) *APIError {
	e.Details = details
	return e
}

// NotFound cria um erro 404
func NotFound(resource string, err error) *APIError {
	message := fmt.Sprintf("%s não encontrado", resource)
	return New(http.StatusNotFound, message, err)
}

// BadRequest cria um erro 400
func BadRequest(message string, err error) *APIError {
	return New(http.StatusBadRequest, message, err)
}

// Conflict cria um erro 409
func Conflict(message string, err error) *APIError {
	if message == "" {
		message = "Operação conflita com o estado atual"
	}
	return New(http.StatusConflict, message, err)
}

// Unavailable cria um erro 503
func Unavailable(message string, err error) *APIError {
	if message == "" {
		message = "Serviço temporariamente indisponível"
	}
	return New(http.StatusServiceUnavailable, message, err)
}

// InternalServer cria um erro 500
func InternalServer(message string, err error) *APIError {
	if message == "" {
		message = "Erro interno do servidor"
	}
	return New(http.StatusInternalServerError, message, err)
}

// HTTPStatus traduz os erros sentinela para um código HTTP
func HTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrTransientStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
