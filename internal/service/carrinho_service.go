package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"solispdv/internal/apierror"
	"solispdv/internal/carrinho"
	"solispdv/internal/dto"
	"solispdv/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CarrinhoService owns the live cart of each terminal and turns it into a
// Venda on the agent. Cart mutations happen under the lock and never wait on
// I/O; product lookups happen before the lock is taken.
type CarrinhoService interface {
	Obter(numeroTerminal int) carrinho.Carrinho
	AdicionarPorCodigoBarras(ctx context.Context, numeroTerminal int, codigo string, quantidade decimal.Decimal) (carrinho.Carrinho, error)
	Remover(numeroTerminal, sequencia int) (carrinho.Carrinho, error)
	AtualizarQuantidade(numeroTerminal, sequencia int, quantidade decimal.Decimal) (carrinho.Carrinho, error)
	AplicarDesconto(numeroTerminal, sequencia int, desconto decimal.Decimal) (carrinho.Carrinho, error)
	// Cancelar discards the in-progress cart. A sale already created on the
	// agent for it is cancelled there on the next Finalizar.
	Cancelar(numeroTerminal int) carrinho.Carrinho
	Finalizar(ctx context.Context, numeroTerminal int, req dto.FinalizarVendaRequest) (*dto.VendaFinalizadaResponse, error)
}

type carrinhoService struct {
	produtos ProdutoService
	caixas   CaixaService
	vendas   VendaAgente
	agora    func() time.Time

	mu          sync.Mutex
	carrinhos   map[int]carrinho.Carrinho
	finalizando map[int]bool
	// pendentes holds sales created on the agent whose payment failed; a retry
	// reuses them. orfas are pending sales whose cart changed afterwards.
	pendentes map[int]*model.Venda
	orfas     map[int][]uuid.UUID
}

func NewCarrinhoService(produtos ProdutoService, caixas CaixaService, vendas VendaAgente) CarrinhoService {
	return &carrinhoService{
		produtos:    produtos,
		caixas:      caixas,
		vendas:      vendas,
		agora:       time.Now,
		carrinhos:   make(map[int]carrinho.Carrinho),
		finalizando: make(map[int]bool),
		pendentes:   make(map[int]*model.Venda),
		orfas:       make(map[int][]uuid.UUID),
	}
}

func (s *carrinhoService) Obter(numeroTerminal int) carrinho.Carrinho {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carrinhos[numeroTerminal]
}

func (s *carrinhoService) AdicionarPorCodigoBarras(ctx context.Context, numeroTerminal int, codigo string, quantidade decimal.Decimal) (carrinho.Carrinho, error) {
	if s.caixas.CaixaAtual(numeroTerminal) == nil {
		return s.Obter(numeroTerminal), apierror.ErrCaixaNaoAberto
	}
	if !quantidade.IsPositive() {
		return s.Obter(numeroTerminal), apierror.Invalido("quantidade", "deve ser maior que zero")
	}
	produto, err := s.produtos.BuscarPorCodigoBarras(ctx, codigo)
	if err != nil {
		return s.Obter(numeroTerminal), err
	}
	agora := s.agora()
	return s.mutar(numeroTerminal, func(c carrinho.Carrinho) (carrinho.Carrinho, error) {
		return c.Adicionar(*produto, quantidade, agora)
	})
}

func (s *carrinhoService) Remover(numeroTerminal, sequencia int) (carrinho.Carrinho, error) {
	return s.mutar(numeroTerminal, func(c carrinho.Carrinho) (carrinho.Carrinho, error) {
		return c.Remover(sequencia)
	})
}

func (s *carrinhoService) AtualizarQuantidade(numeroTerminal, sequencia int, quantidade decimal.Decimal) (carrinho.Carrinho, error) {
	return s.mutar(numeroTerminal, func(c carrinho.Carrinho) (carrinho.Carrinho, error) {
		return c.AtualizarQuantidade(sequencia, quantidade)
	})
}

func (s *carrinhoService) AplicarDesconto(numeroTerminal, sequencia int, desconto decimal.Decimal) (carrinho.Carrinho, error) {
	return s.mutar(numeroTerminal, func(c carrinho.Carrinho) (carrinho.Carrinho, error) {
		return c.AplicarDesconto(sequencia, desconto)
	})
}

func (s *carrinhoService) Cancelar(numeroTerminal int) carrinho.Carrinho {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carrinhos, numeroTerminal)
	s.abandonarPendente(numeroTerminal)
	return carrinho.Novo()
}

// abandonarPendente must be called with mu held.
func (s *carrinhoService) abandonarPendente(numeroTerminal int) {
	if v, ok := s.pendentes[numeroTerminal]; ok {
		s.orfas[numeroTerminal] = append(s.orfas[numeroTerminal], v.ID)
		delete(s.pendentes, numeroTerminal)
	}
}

// ── Finalizar ─────────────────────────────────────────────────────────────────
// Creates the sale on the agent and registers its payments. Change (troco)
// goes on the last payment. The cart is cleared only after both calls succeed.
// When the payment call fails the created sale is kept and the next attempt
// only registers payments for it.

func (s *carrinhoService) Finalizar(ctx context.Context, numeroTerminal int, req dto.FinalizarVendaRequest) (*dto.VendaFinalizadaResponse, error) {
	s.mu.Lock()
	if s.finalizando[numeroTerminal] {
		s.mu.Unlock()
		return nil, apierror.ErrOperacaoEmAndamento
	}
	s.finalizando[numeroTerminal] = true
	c := s.carrinhos[numeroTerminal]
	pendente := s.pendentes[numeroTerminal]
	orfas := s.orfas[numeroTerminal]
	delete(s.orfas, numeroTerminal)
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.finalizando, numeroTerminal)
		s.mu.Unlock()
	}()

	s.cancelarOrfas(ctx, numeroTerminal, orfas)

	if c.Vazio() {
		return nil, apierror.Invalido("itens", "carrinho vazio")
	}
	pagamentos, troco, err := montarPagamentos(req.Pagamentos, c.ValorLiquido())
	if err != nil {
		return nil, err
	}

	consulta := s.caixas.ConsultarAberto(ctx, numeroTerminal)
	switch consulta.Situacao {
	case CaixaInacessivel:
		return nil, consulta.Err
	case CaixaNaoEncontrado:
		return nil, apierror.ErrCaixaNaoAberto
	}
	caixaID := consulta.Caixa.ID

	venda := pendente
	if venda != nil && venda.CaixaID != nil && *venda.CaixaID != caixaID {
		// Created under a caixa that has since been closed.
		s.cancelarOrfas(ctx, numeroTerminal, []uuid.UUID{venda.ID})
		venda = nil
	}
	if venda == nil {
		venda, err = s.vendas.CriarVenda(ctx, montarVenda(c, &caixaID, req))
		if err != nil {
			return nil, fmt.Errorf("criar venda: %w", err)
		}
	}
	if err := s.vendas.FinalizarVenda(ctx, venda.ID, dto.FinalizarVendaDto{Pagamentos: pagamentos}); err != nil {
		// The sale is still open on the agent; keep it and the cart so the
		// operator can retry the payment.
		log.Error().Err(err).Str("venda_id", venda.ID.String()).Msg("venda criada mas não finalizada")
		s.mu.Lock()
		s.pendentes[numeroTerminal] = venda
		s.mu.Unlock()
		return nil, fmt.Errorf("finalizar venda: %w", err)
	}

	s.mu.Lock()
	delete(s.carrinhos, numeroTerminal)
	delete(s.pendentes, numeroTerminal)
	s.mu.Unlock()

	log.Info().
		Str("venda_id", venda.ID.String()).
		Int64("numero_cupom", venda.NumeroCupom).
		Int("terminal", numeroTerminal).
		Str("valor_liquido", c.ValorLiquido().StringFixed(2)).
		Str("troco", troco.StringFixed(2)).
		Msg("venda finalizada")

	// Refresh the cached caixa so its running totals include this sale.
	s.caixas.ConsultarAberto(ctx, numeroTerminal)

	return &dto.VendaFinalizadaResponse{Venda: *venda, Troco: troco}, nil
}

func (s *carrinhoService) mutar(numeroTerminal int, fn func(carrinho.Carrinho) (carrinho.Carrinho, error)) (carrinho.Carrinho, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	atual := s.carrinhos[numeroTerminal]
	if s.finalizando[numeroTerminal] {
		return atual, apierror.ErrOperacaoEmAndamento
	}
	novo, err := fn(atual)
	if err != nil {
		return atual, err
	}
	s.carrinhos[numeroTerminal] = novo
	s.abandonarPendente(numeroTerminal)
	return novo, nil
}

// cancelarOrfas cancels on the agent the sales left open by an earlier failed
// payment whose cart was later changed. Failures are kept for the next attempt
// and never block the current sale.
func (s *carrinhoService) cancelarOrfas(ctx context.Context, numeroTerminal int, orfas []uuid.UUID) {
	var restantes []uuid.UUID
	for _, id := range orfas {
		if err := s.vendas.CancelarVenda(ctx, id, motivoCancelamentoOrfa); err != nil {
			log.Warn().Err(err).Str("venda_id", id.String()).Msg("falha ao cancelar venda abandonada")
			restantes = append(restantes, id)
			continue
		}
		log.Info().Str("venda_id", id.String()).Int("terminal", numeroTerminal).Msg("venda abandonada cancelada")
	}
	if len(restantes) > 0 {
		s.mu.Lock()
		s.orfas[numeroTerminal] = append(restantes, s.orfas[numeroTerminal]...)
		s.mu.Unlock()
	}
}

const motivoCancelamentoOrfa = "Carrinho alterado após falha no pagamento"

func montarPagamentos(reqs []dto.PagamentoRequest, liquido decimal.Decimal) ([]dto.PagamentoDto, decimal.Decimal, error) {
	if len(reqs) == 0 {
		return nil, decimal.Zero, apierror.Invalido("pagamentos", "informe ao menos um pagamento")
	}
	pagamentos := make([]dto.PagamentoDto, 0, len(reqs))
	total := decimal.Zero
	for i, p := range reqs {
		id, err := uuid.Parse(p.FormaPagamentoID)
		if err != nil {
			return nil, decimal.Zero, apierror.Invalido(fmt.Sprintf("pagamentos[%d].formaPagamentoId", i), "identificador inválido")
		}
		if !p.Valor.IsPositive() {
			return nil, decimal.Zero, apierror.Invalido(fmt.Sprintf("pagamentos[%d].valor", i), "deve ser maior que zero")
		}
		total = total.Add(p.Valor)
		pagamentos = append(pagamentos, dto.PagamentoDto{
			FormaPagamentoID: id,
			Valor:            p.Valor,
			ValorTroco:       decimal.Zero,
			Parcelas:         p.Parcelas,
			NSU:              p.NSU,
			Autorizacao:      p.Autorizacao,
			Bandeira:         p.Bandeira,
		})
	}
	if total.LessThan(liquido) {
		return nil, decimal.Zero, apierror.Invalido("pagamentos", "valor pago menor que o total da venda")
	}
	troco := total.Sub(liquido)
	pagamentos[len(pagamentos)-1].ValorTroco = troco
	return pagamentos, troco, nil
}

func montarVenda(c carrinho.Carrinho, caixaID *uuid.UUID, req dto.FinalizarVendaRequest) dto.CriarVendaDto {
	itens := make([]dto.CriarVendaItemDto, 0, c.Len())
	for _, item := range c.Itens() {
		produtoID := item.ProdutoID
		itens = append(itens, dto.CriarVendaItemDto{
			ProdutoID:     &produtoID,
			Sequencia:     item.Sequencia,
			CodigoProduto: item.CodigoProduto,
			NomeProduto:   item.NomeProduto,
			Quantidade:    item.Quantidade,
			PrecoUnitario: item.PrecoUnitario,
			DescontoItem:  item.DescontoItem,
			ValorTotal:    item.ValorTotal,
		})
	}
	return dto.CriarVendaDto{
		CaixaID:       caixaID,
		ClienteCpf:    req.ClienteCpf,
		ValorBruto:    c.ValorBruto(),
		ValorDesconto: c.ValorDesconto(),
		ValorLiquido:  c.ValorLiquido(),
		Observacoes:   req.Observacoes,
		Itens:         itens,
	}
}

