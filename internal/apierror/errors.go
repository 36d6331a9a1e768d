package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError is bad input caught before any network call.
// It is resolved locally and never sent over the wire.
type ValidationError struct {
	Campo    string
	Mensagem string
}

func (e *ValidationError) Error() string {
	if e.Campo == "" {
		return e.Mensagem
	}
	return fmt.Sprintf("%s: %s", e.Campo, e.Mensagem)
}

// Invalido builds a ValidationError for a single field.
func Invalido(campo, mensagem string) error {
	return &ValidationError{Campo: campo, Mensagem: mensagem}
}

// NotFoundError reports a lookup that found nothing (cart sequence, barcode).
type NotFoundError struct {
	Recurso string
	Chave   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s não encontrado: %s", e.Recurso, e.Chave)
}

func NaoEncontrado(recurso, chave string) error {
	return &NotFoundError{Recurso: recurso, Chave: chave}
}

// TransportError means the agent could not be reached or did not answer in time.
type TransportError struct {
	Operacao string
	Timeout  bool
	Err      error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("agente: %s: tempo esgotado: %v", e.Operacao, e.Err)
	}
	return fmt.Sprintf("agente: %s: inacessível: %v", e.Operacao, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError means the agent answered with a non-success status or body.
type RemoteError struct {
	Operacao   string
	StatusCode int
	Mensagem   string
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("agente: %s: %s", e.Operacao, e.Mensagem)
	}
	return fmt.Sprintf("agente: %s: status %d: %s", e.Operacao, e.StatusCode, e.Mensagem)
}

var (
	ErrCaixaJaAberto            = errors.New("já existe um caixa aberto neste terminal")
	ErrCaixaNaoAberto           = errors.New("nenhum caixa aberto neste terminal")
	ErrOperacaoEmAndamento      = errors.New("operação já em andamento")
	ErrSincronizacaoEmAndamento = errors.New("sincronização já em andamento")
	ErrSincronizacaoBloqueada   = errors.New("sincronização bloqueada: API na nuvem indisponível")
)

// IsTransport reports whether err (or anything it wraps) is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsTimeout reports whether err is a TransportError caused by a timeout.
func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Timeout
}

// Status maps an error of the taxonomy to the HTTP status used by the local API.
func Status(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		te *TransportError
		re *RemoteError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &te):
		if te.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusServiceUnavailable
	case errors.As(err, &re):
		return http.StatusBadGateway
	case errors.Is(err, ErrCaixaJaAberto),
		errors.Is(err, ErrOperacaoEmAndamento),
		errors.Is(err, ErrSincronizacaoEmAndamento):
		return http.StatusConflict
	case errors.Is(err, ErrCaixaNaoAberto):
		return http.StatusPreconditionFailed
	case errors.Is(err, ErrSincronizacaoBloqueada):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
