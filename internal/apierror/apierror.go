// Package apierror provides the error taxonomy of the terminal core and the
// standardized error envelopes returned by the local API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (agent bodies, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type Validation struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *Validation {
	return &Validation{Detail: "Erro de validação", Fields: fields}
}
