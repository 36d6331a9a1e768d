package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Produto is read-only reference data pulled from the agent.
type Produto struct {
	ID             uuid.UUID       `json:"id"`
	CodigoBarras   string          `json:"codigoBarras"`
	CodigoInterno  string          `json:"codigoInterno"`
	Nome           string          `json:"nome"`
	Descricao      string          `json:"descricao"`
	NCM            string          `json:"ncm,omitempty"`
	CEST           string          `json:"cest,omitempty"`
	UnidadeMedida  string          `json:"unidadeMedida"`
	Ativo          bool            `json:"ativo"`
	PrecoVenda     decimal.Decimal `json:"precoVenda"`
	CriadoEm       Instante        `json:"criadoEm"`
	AtualizadoEm   Instante        `json:"atualizadoEm"`
	SincronizadoEm *Instante       `json:"sincronizadoEm,omitempty"`
}
