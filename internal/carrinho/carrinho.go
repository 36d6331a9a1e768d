// Package carrinho is the sale cart ledger of a terminal.
//
// A Carrinho is an immutable value: every operation returns a new Carrinho
// and leaves the receiver untouched, so callers can keep snapshots and
// reason about mutations as (state, action) -> state. Derived totals are
// recomputed from the current items on every call.
package carrinho

import (
	"strconv"
	"time"

	"solispdv/internal/apierror"
	"solispdv/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one sale line. Name, code and price are snapshotted when the
// product is added so later catalogue changes do not alter the sale.
// ValorTotal is always quantidade×precoUnitario − descontoItem.
type Item struct {
	ID            uuid.UUID       `json:"id"`
	Sequencia     int             `json:"sequencia"`
	ProdutoID     uuid.UUID       `json:"produtoId"`
	CodigoProduto string          `json:"codigoProduto"`
	NomeProduto   string          `json:"nomeProduto"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"precoUnitario"`
	DescontoItem  decimal.Decimal `json:"descontoItem"`
	ValorTotal    decimal.Decimal `json:"valorTotal"`
	CriadoEm      time.Time       `json:"createdAt"`
}

// Subtotal is quantidade×precoUnitario, before the line discount.
func (i Item) Subtotal() decimal.Decimal {
	return i.PrecoUnitario.Mul(i.Quantidade)
}

func (i Item) recalcular() Item {
	i.ValorTotal = i.Subtotal().Sub(i.DescontoItem)
	return i
}

// Carrinho is the ordered list of items of the in-progress sale.
// The zero value is an empty cart.
type Carrinho struct {
	itens []Item
}

func Novo() Carrinho { return Carrinho{} }

// Itens returns a copy of the items in sequence order.
func (c Carrinho) Itens() []Item {
	out := make([]Item, len(c.itens))
	copy(out, c.itens)
	return out
}

func (c Carrinho) Vazio() bool { return len(c.itens) == 0 }

func (c Carrinho) Len() int { return len(c.itens) }

// Adicionar appends a new line for produto with sequencia = len+1.
func (c Carrinho) Adicionar(p model.Produto, quantidade decimal.Decimal, agora time.Time) (Carrinho, error) {
	if !quantidade.IsPositive() {
		return c, apierror.Invalido("quantidade", "deve ser maior que zero")
	}
	if !p.Ativo {
		return c, apierror.Invalido("produto", "produto inativo não pode ser vendido")
	}
	if p.PrecoVenda.IsNegative() {
		return c, apierror.Invalido("precoVenda", "preço de venda negativo")
	}

	item := Item{
		ID:            uuid.New(),
		Sequencia:     len(c.itens) + 1,
		ProdutoID:     p.ID,
		CodigoProduto: p.CodigoInterno,
		NomeProduto:   p.Nome,
		Quantidade:    quantidade,
		PrecoUnitario: p.PrecoVenda,
		DescontoItem:  decimal.Zero,
		CriadoEm:      agora,
	}.recalcular()

	itens := make([]Item, 0, len(c.itens)+1)
	itens = append(itens, c.itens...)
	itens = append(itens, item)
	return Carrinho{itens: itens}, nil
}

// Remover drops the line at sequencia and renumbers the following lines so
// sequences stay a dense 1..N range in the original relative order.
func (c Carrinho) Remover(sequencia int) (Carrinho, error) {
	idx := c.indice(sequencia)
	if idx < 0 {
		return c, naoEncontrado(sequencia)
	}
	itens := make([]Item, 0, len(c.itens)-1)
	for i, item := range c.itens {
		if i == idx {
			continue
		}
		item.Sequencia = len(itens) + 1
		itens = append(itens, item)
	}
	return Carrinho{itens: itens}, nil
}

// AtualizarQuantidade changes a line's quantity, keeping its discount.
func (c Carrinho) AtualizarQuantidade(sequencia int, quantidade decimal.Decimal) (Carrinho, error) {
	if !quantidade.IsPositive() {
		return c, apierror.Invalido("quantidade", "deve ser maior que zero")
	}
	return c.alterar(sequencia, func(item Item) (Item, error) {
		item.Quantidade = quantidade
		if item.DescontoItem.GreaterThan(item.Subtotal()) {
			return item, apierror.Invalido("quantidade", "desconto do item excederia o subtotal")
		}
		return item, nil
	})
}

// AplicarDesconto sets a line discount; 0 ≤ desconto ≤ subtotal.
func (c Carrinho) AplicarDesconto(sequencia int, desconto decimal.Decimal) (Carrinho, error) {
	if desconto.IsNegative() {
		return c, apierror.Invalido("desconto", "não pode ser negativo")
	}
	return c.alterar(sequencia, func(item Item) (Item, error) {
		if desconto.GreaterThan(item.Subtotal()) {
			return item, apierror.Invalido("desconto", "não pode exceder o subtotal do item")
		}
		item.DescontoItem = desconto
		return item, nil
	})
}

// Limpar empties the cart, used after a sale is finalized or cancelled.
func (c Carrinho) Limpar() Carrinho { return Carrinho{} }

// ValorBruto is Σ(precoUnitario×quantidade).
func (c Carrinho) ValorBruto() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.itens {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ValorDesconto is Σ descontoItem.
func (c Carrinho) ValorDesconto() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.itens {
		total = total.Add(item.DescontoItem)
	}
	return total
}

func (c Carrinho) ValorLiquido() decimal.Decimal {
	return c.ValorBruto().Sub(c.ValorDesconto())
}

// QuantidadeItens is Σ quantidade (fractional for weighed products).
func (c Carrinho) QuantidadeItens() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.itens {
		total = total.Add(item.Quantidade)
	}
	return total
}

func (c Carrinho) alterar(sequencia int, fn func(Item) (Item, error)) (Carrinho, error) {
	idx := c.indice(sequencia)
	if idx < 0 {
		return c, naoEncontrado(sequencia)
	}
	item, err := fn(c.itens[idx])
	if err != nil {
		return c, err
	}
	itens := c.Itens()
	itens[idx] = item.recalcular()
	return Carrinho{itens: itens}, nil
}

func (c Carrinho) indice(sequencia int) int {
	for i, item := range c.itens {
		if item.Sequencia == sequencia {
			return i
		}
	}
	return -1
}

func naoEncontrado(sequencia int) error {
	return apierror.NaoEncontrado("item do carrinho", strconv.Itoa(sequencia))
}
