// Package apierror provides standardized error response structures for the API
// and the error kinds used across the pipeline. Handlers map kinds to HTTP
// status codes; the message returned to clients is always the original one.
package apierror

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// ── Error kinds ───────────────────────────────────────────────────────────────

var (
	// ErrConfiguracion: missing API key, storage credentials, etc.
	ErrConfiguracion = errors.New("configuracion")
	// ErrProveedor: non-2xx or transport failure talking to Holded.
	ErrProveedor = errors.New("proveedor")
	// ErrCredenciales: Holded rejected the API key (401).
	ErrCredenciales = errors.New("credenciales")
	// ErrEntrada: malformed URI, missing CSV column, wrong file type.
	ErrEntrada = errors.New("entrada")
	// ErrNoEncontrado: input object, SKU or warehouse does not exist.
	ErrNoEncontrado = errors.New("no encontrado")
)

// Configuracion builds a configuration error with the given message.
func Configuracion(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrConfiguracion)
}

// Entrada builds an input error with the given message.
func Entrada(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrEntrada)
}

// NoEncontrado builds a not-found error with the given message.
func NoEncontrado(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrNoEncontrado)
}

// Proveedor builds an upstream provider error with the given message.
func Proveedor(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrProveedor)
}

// HTTPStatus maps an error kind to the response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrEntrada):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoEncontrado):
		return http.StatusNotFound
	case errors.Is(err, ErrCredenciales):
		return http.StatusUnauthorized
	case errors.Is(err, ErrProveedor):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FromError converts any error into the response envelope.
func FromError(err error) *APIError {
	return New(err.Error())
}
