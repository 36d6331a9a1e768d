package model

import "time"

// TipoRecurso identifies a synchronizable resource type.
type TipoRecurso string

const (
	RecursoProdutos        TipoRecurso = "produtos"
	RecursoEmpresas        TipoRecurso = "empresas"
	RecursoFormasPagamento TipoRecurso = "formas-pagamento"
	RecursoVendas          TipoRecurso = "vendas"
)

// OrdemSincronizacao is the fixed order used by a full synchronization:
// reference data first, outbound sales last.
var OrdemSincronizacao = []TipoRecurso{
	RecursoProdutos,
	RecursoEmpresas,
	RecursoFormasPagamento,
	RecursoVendas,
}

func (t TipoRecurso) Valido() bool {
	for _, r := range OrdemSincronizacao {
		if r == t {
			return true
		}
	}
	return false
}

// Nome is the operator-facing label of the resource.
func (t TipoRecurso) Nome() string {
	switch t {
	case RecursoProdutos:
		return "Produtos e Preços"
	case RecursoEmpresas:
		return "Dados da Empresa"
	case RecursoFormasPagamento:
		return "Formas de Pagamento"
	case RecursoVendas:
		return "Enviar Vendas"
	default:
		return string(t)
	}
}

// Estado of a resource synchronization.
type EstadoSincronizacao string

const (
	SyncIdle    EstadoSincronizacao = "idle"
	SyncSyncing EstadoSincronizacao = "syncing"
	SyncSuccess EstadoSincronizacao = "success"
	SyncError   EstadoSincronizacao = "error"
)

// StatusSincronizacao is the per-resource sync status. Only the sync
// coordinator mutates it; UltimaSincronizacao survives restarts.
type StatusSincronizacao struct {
	Tipo                TipoRecurso         `json:"tipo"`
	Nome                string              `json:"nome"`
	UltimaSincronizacao *time.Time          `json:"ultimaSincronizacao"`
	Status              EstadoSincronizacao `json:"status"`
	Erro                string              `json:"erro,omitempty"`
	Total               *int                `json:"total,omitempty"`
}

// ResultadoSincronizacao is the outcome of one resource sync attempt.
type ResultadoSincronizacao struct {
	Tipo     TipoRecurso `json:"tipo"`
	Sucesso  bool        `json:"sucesso"`
	Mensagem string      `json:"mensagem"`
	Total    *int        `json:"total,omitempty"`
	Erros    []string    `json:"erros,omitempty"`
}
