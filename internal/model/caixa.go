package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status values of a Caixa as emitted by the agent.
const (
	CaixaAberto  = "Aberto"
	CaixaFechado = "Fechado"
)

// Caixa is one drawer session of a terminal. The running aggregates are
// maintained by the agent; the client only reads them.
// At most one Caixa with Status "Aberto" exists per terminal.
type Caixa struct {
	ID               uuid.UUID        `json:"id"`
	NumeroTerminal   int              `json:"numeroTerminal"`
	OperadorNome     string           `json:"operadorNome"`
	DataAbertura     Instante         `json:"dataAbertura"`
	DataFechamento   *Instante        `json:"dataFechamento,omitempty"`
	Status           string           `json:"status"`
	ValorAbertura    decimal.Decimal  `json:"valorAbertura"`
	ValorFechamento  *decimal.Decimal `json:"valorFechamento,omitempty"`
	QuantidadeVendas int              `json:"quantidadeVendas"`
	TotalVendas      decimal.Decimal  `json:"totalVendas"`
	TotalDinheiro    decimal.Decimal  `json:"totalDinheiro"`
	TotalDebito      decimal.Decimal  `json:"totalDebito"`
	TotalCredito     decimal.Decimal  `json:"totalCredito"`
	TotalPix         decimal.Decimal  `json:"totalPix"`
	TotalOutros      decimal.Decimal  `json:"totalOutros"`
	Diferenca        decimal.Decimal  `json:"diferenca"`
	Observacoes      *string          `json:"observacoes,omitempty"`
	Sincronizado     bool             `json:"sincronizado"`
	SincronizadoEm   *Instante        `json:"sincronizadoEm,omitempty"`
}

func (c *Caixa) Aberto() bool { return c.Status == CaixaAberto }

// ValorEsperado is the cash that should be in the drawer: opening float plus
// cash-tendered sales only.
func (c *Caixa) ValorEsperado() decimal.Decimal {
	return c.ValorAbertura.Add(c.TotalDinheiro)
}

// DiferencaPara returns contado − esperado. Positive is a surplus, negative a
// shortage. It is a reporting signal and is never corrected automatically.
func (c *Caixa) DiferencaPara(contado decimal.Decimal) decimal.Decimal {
	return contado.Sub(c.ValorEsperado())
}

// Situacao of a drawer count relative to the expected cash.
const (
	SituacaoConfere = "confere"
	SituacaoSobra   = "sobra"
	SituacaoFalta   = "falta"
)

// ClassificarDiferenca returns "confere" | "sobra" | "falta".
func ClassificarDiferenca(diferenca decimal.Decimal) string {
	switch diferenca.Sign() {
	case 0:
		return SituacaoConfere
	case 1:
		return SituacaoSobra
	default:
		return SituacaoFalta
	}
}
