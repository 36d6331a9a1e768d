package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"solispdv/internal/apierror"
	"solispdv/internal/dto"
	"solispdv/internal/model"
	"solispdv/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const maxObservacoes = 1000

// SituacaoConsulta tags the outcome of an open-caixa query.
type SituacaoConsulta string

const (
	CaixaEncontrado    SituacaoConsulta = "encontrado"
	CaixaNaoEncontrado SituacaoConsulta = "nao_encontrado"
	CaixaInacessivel   SituacaoConsulta = "inacessivel"
)

// ConsultaCaixa distinguishes "no open caixa" from "could not ask".
// Caixa is set only when Encontrado; Err only when Inacessivel.
type ConsultaCaixa struct {
	Situacao SituacaoConsulta
	Caixa    *model.Caixa
	Err      error
}

type CaixaService interface {
	Abrir(ctx context.Context, numeroTerminal int, operadorNome string, valorAbertura *decimal.Decimal, observacoes *string) (*model.Caixa, error)
	Fechar(ctx context.Context, caixaID uuid.UUID, valorFechamento *decimal.Decimal, observacoes *string) (*model.Caixa, error)
	ConsultarAberto(ctx context.Context, numeroTerminal int) ConsultaCaixa
	// CaixaAtual is the cached open session of a terminal; no network.
	CaixaAtual(numeroTerminal int) *model.Caixa
	// PreviaFechamento reads the live session from the agent and falls back to
	// the cached copy, flagged Desatualizada, only when the agent is unreachable.
	PreviaFechamento(ctx context.Context, numeroTerminal int, contado decimal.Decimal) (*dto.PreviaFechamentoResponse, error)
	// Restaurar loads the durable snapshot so the session is known right
	// after a restart, before the first agent round-trip.
	Restaurar(ctx context.Context, numeroTerminal int) error
}

type caixaService struct {
	agente     CaixaAgente
	repo       repository.EstadoLocalRepository
	relatorios RelatorioDespachante // optional

	mu          sync.Mutex
	abertos     map[int]*model.Caixa
	emAndamento map[string]struct{}
}

func NewCaixaService(agente CaixaAgente, repo repository.EstadoLocalRepository, relatorios RelatorioDespachante) CaixaService {
	return &caixaService{
		agente:      agente,
		repo:        repo,
		relatorios:  relatorios,
		abertos:     make(map[int]*model.Caixa),
		emAndamento: make(map[string]struct{}),
	}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *caixaService) Abrir(ctx context.Context, numeroTerminal int, operadorNome string, valorAbertura *decimal.Decimal, observacoes *string) (*model.Caixa, error) {
	operadorNome = strings.TrimSpace(operadorNome)
	switch {
	case numeroTerminal < 1:
		return nil, apierror.Invalido("numeroTerminal", "terminal não selecionado")
	case operadorNome == "":
		return nil, apierror.Invalido("operadorNome", "informe o nome do operador")
	case valorAbertura == nil:
		return nil, apierror.Invalido("valorAbertura", "informe o valor de abertura")
	case valorAbertura.IsNegative():
		return nil, apierror.Invalido("valorAbertura", "não pode ser negativo")
	}
	if err := validarObservacoes(observacoes); err != nil {
		return nil, err
	}

	chave := fmt.Sprintf("abrir:%d", numeroTerminal)
	if !s.reservar(chave) {
		return nil, apierror.ErrOperacaoEmAndamento
	}
	defer s.liberar(chave)

	// The agent is authoritative: re-check right before opening.
	consulta := s.ConsultarAberto(ctx, numeroTerminal)
	switch consulta.Situacao {
	case CaixaEncontrado:
		return nil, apierror.ErrCaixaJaAberto
	case CaixaInacessivel:
		return nil, consulta.Err
	}

	caixa, err := s.agente.AbrirCaixa(ctx, dto.AbrirCaixaDto{
		NumeroTerminal: numeroTerminal,
		OperadorNome:   operadorNome,
		ValorAbertura:  *valorAbertura,
		Observacoes:    observacoes,
	})
	if err != nil {
		return nil, fmt.Errorf("abrir caixa: %w", err)
	}
	if caixa.NumeroTerminal == 0 {
		caixa.NumeroTerminal = numeroTerminal
	}

	s.lembrar(ctx, caixa)
	log.Info().
		Str("caixa_id", caixa.ID.String()).
		Int("terminal", numeroTerminal).
		Str("operador", operadorNome).
		Str("valor_abertura", valorAbertura.StringFixed(2)).
		Msg("caixa aberto")
	return caixa, nil
}

// ── Fechar ────────────────────────────────────────────────────────────────────
// No automatic retry: a failed close leaves the session open and the operator
// decides what to do.

func (s *caixaService) Fechar(ctx context.Context, caixaID uuid.UUID, valorFechamento *decimal.Decimal, observacoes *string) (*model.Caixa, error) {
	switch {
	case caixaID == uuid.Nil:
		return nil, apierror.Invalido("caixaId", "caixa não informado")
	case valorFechamento == nil:
		return nil, apierror.Invalido("valorFechamento", "informe o valor contado")
	case valorFechamento.IsNegative():
		return nil, apierror.Invalido("valorFechamento", "não pode ser negativo")
	}
	if err := validarObservacoes(observacoes); err != nil {
		return nil, err
	}

	chave := "fechar:" + caixaID.String()
	if !s.reservar(chave) {
		return nil, apierror.ErrOperacaoEmAndamento
	}
	defer s.liberar(chave)

	caixa, err := s.agente.FecharCaixa(ctx, dto.FecharCaixaDto{
		CaixaID:         caixaID,
		ValorFechamento: *valorFechamento,
		Observacoes:     observacoes,
	})
	if err != nil {
		return nil, fmt.Errorf("fechar caixa: %w", err)
	}
	if caixa.ValorFechamento == nil {
		caixa.ValorFechamento = valorFechamento
	}

	s.esquecer(ctx, caixaID, caixa.NumeroTerminal)
	log.Info().
		Str("caixa_id", caixaID.String()).
		Int("terminal", caixa.NumeroTerminal).
		Str("diferenca", caixa.DiferencaPara(*valorFechamento).StringFixed(2)).
		Msg("caixa fechado")

	if s.relatorios != nil {
		s.relatorios.DespacharRelatorio(*caixa)
	}
	return caixa, nil
}

// ── ConsultarAberto ───────────────────────────────────────────────────────────

func (s *caixaService) ConsultarAberto(ctx context.Context, numeroTerminal int) ConsultaCaixa {
	caixa, err := s.agente.CaixaAberto(ctx, numeroTerminal)
	if err != nil {
		return ConsultaCaixa{Situacao: CaixaInacessivel, Err: err}
	}
	if caixa == nil || !caixa.Aberto() {
		s.mu.Lock()
		anterior := s.abertos[numeroTerminal]
		delete(s.abertos, numeroTerminal)
		s.mu.Unlock()
		if anterior != nil {
			s.removerSnapshot(ctx, numeroTerminal)
		}
		return ConsultaCaixa{Situacao: CaixaNaoEncontrado}
	}
	if caixa.NumeroTerminal == 0 {
		caixa.NumeroTerminal = numeroTerminal
	}
	s.lembrar(ctx, caixa)
	return ConsultaCaixa{Situacao: CaixaEncontrado, Caixa: caixa}
}

func (s *caixaService) CaixaAtual(numeroTerminal int) *model.Caixa {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.abertos[numeroTerminal]; c != nil {
		cp := *c
		return &cp
	}
	return nil
}

// PreviaFechamento is advisory only; the agent computes the recorded difference.
func (s *caixaService) PreviaFechamento(ctx context.Context, numeroTerminal int, contado decimal.Decimal) (*dto.PreviaFechamentoResponse, error) {
	consulta := s.ConsultarAberto(ctx, numeroTerminal)
	switch consulta.Situacao {
	case CaixaEncontrado:
		return previa(consulta.Caixa, contado, false), nil
	case CaixaNaoEncontrado:
		return nil, apierror.ErrCaixaNaoAberto
	}
	cache := s.CaixaAtual(numeroTerminal)
	if cache == nil {
		return nil, consulta.Err
	}
	log.Warn().Err(consulta.Err).Int("terminal", numeroTerminal).Msg("prévia de fechamento com caixa em cache")
	return previa(cache, contado, true), nil
}

func previa(caixa *model.Caixa, contado decimal.Decimal, desatualizada bool) *dto.PreviaFechamentoResponse {
	diferenca := caixa.DiferencaPara(contado)
	return &dto.PreviaFechamentoResponse{
		CaixaID:       caixa.ID.String(),
		ValorAbertura: caixa.ValorAbertura,
		TotalDinheiro: caixa.TotalDinheiro,
		ValorEsperado: caixa.ValorEsperado(),
		ValorContado:  contado,
		Diferenca:     diferenca,
		Situacao:      model.ClassificarDiferenca(diferenca),
		Desatualizada: desatualizada,
	}
}

func (s *caixaService) Restaurar(ctx context.Context, numeroTerminal int) error {
	caixa, err := s.repo.CaixaAberto(ctx, numeroTerminal)
	if err != nil {
		return fmt.Errorf("restaurar caixa: %w", err)
	}
	if caixa == nil {
		return nil
	}
	s.mu.Lock()
	if _, ok := s.abertos[numeroTerminal]; !ok {
		s.abertos[numeroTerminal] = caixa
	}
	s.mu.Unlock()
	return nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (s *caixaService) reservar(chave string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emAndamento[chave]; ok {
		return false
	}
	s.emAndamento[chave] = struct{}{}
	return true
}

func (s *caixaService) liberar(chave string) {
	s.mu.Lock()
	delete(s.emAndamento, chave)
	s.mu.Unlock()
}

// lembrar makes caixa the terminal's single open session, in memory and on disk.
func (s *caixaService) lembrar(ctx context.Context, caixa *model.Caixa) {
	cp := *caixa
	s.mu.Lock()
	s.abertos[caixa.NumeroTerminal] = &cp
	s.mu.Unlock()

	if err := s.repo.SalvarCaixaAberto(ctx, &cp); err != nil {
		log.Warn().Err(err).Int("terminal", caixa.NumeroTerminal).Msg("falha ao salvar snapshot do caixa")
	}
}

func (s *caixaService) esquecer(ctx context.Context, caixaID uuid.UUID, numeroTerminal int) {
	s.mu.Lock()
	for terminal, c := range s.abertos {
		if c.ID == caixaID {
			numeroTerminal = terminal
			delete(s.abertos, terminal)
		}
	}
	s.mu.Unlock()
	if numeroTerminal > 0 {
		s.removerSnapshot(ctx, numeroTerminal)
	}
}

func (s *caixaService) removerSnapshot(ctx context.Context, numeroTerminal int) {
	if err := s.repo.RemoverCaixaAberto(ctx, numeroTerminal); err != nil {
		log.Warn().Err(err).Int("terminal", numeroTerminal).Msg("falha ao remover snapshot do caixa")
	}
}

func validarObservacoes(observacoes *string) error {
	if observacoes != nil && utf8.RuneCountInString(*observacoes) > maxObservacoes {
		return apierror.Invalido("observacoes", fmt.Sprintf("máximo de %d caracteres", maxObservacoes))
	}
	return nil
}
