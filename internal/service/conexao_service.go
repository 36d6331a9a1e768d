package service

import (
	"context"
	"sync"
	"time"

	"solispdv/internal/apierror"
	"solispdv/internal/metrics"
	"solispdv/internal/model"

	"github.com/rs/zerolog/log"
)

// ConexaoService tracks the two links of the terminal: terminal ↔ agent and
// agent ↔ cloud API. State is derived only from the latest poll.
type ConexaoService interface {
	// Verificar polls the agent once and replaces the snapshot.
	Verificar(ctx context.Context) model.EstadoConexao
	Atual() model.EstadoConexao
	// AgenteDisponivel and UpstreamDisponivel re-poll; used at point of action.
	AgenteDisponivel(ctx context.Context) bool
	UpstreamDisponivel(ctx context.Context) bool
}

type conexaoService struct {
	agente StatusAgente
	agora  func() time.Time

	mu     sync.RWMutex
	estado model.EstadoConexao
}

func NewConexaoService(agente StatusAgente) ConexaoService {
	return newConexaoService(agente, time.Now)
}

func newConexaoService(agente StatusAgente, agora func() time.Time) *conexaoService {
	return &conexaoService{
		agente: agente,
		agora:  agora,
		estado: model.EstadoDesconectado(agora(), "Ainda não verificado"),
	}
}

func (s *conexaoService) Verificar(ctx context.Context) model.EstadoConexao {
	agora := s.agora()

	var novo model.EstadoConexao
	resp, err := s.agente.Status(ctx)
	switch {
	case err != nil:
		motivo := "Agente não disponível"
		if apierror.IsTimeout(err) {
			motivo = "Agente não respondeu a tempo"
		}
		novo = model.EstadoDesconectado(agora, motivo)
	case resp == nil:
		novo = model.EstadoDesconectado(agora, "Resposta de status vazia")
	default:
		novo = *resp
		if novo.Timestamp.IsZero() {
			novo.Timestamp = model.NovoInstante(agora)
		}
	}

	s.mu.Lock()
	anterior := s.estado
	s.estado = novo
	s.mu.Unlock()

	logTransicao(anterior.Agente, novo.Agente, err)
	logTransicao(anterior.API, novo.API, nil)
	metrics.DefinirConectado("agente", novo.Agente.Conectado)
	metrics.DefinirConectado("api", novo.API.Conectado)
	return novo
}

func (s *conexaoService) Atual() model.EstadoConexao {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.estado
}

func (s *conexaoService) AgenteDisponivel(ctx context.Context) bool {
	return s.Verificar(ctx).Agente.Conectado
}

func (s *conexaoService) UpstreamDisponivel(ctx context.Context) bool {
	e := s.Verificar(ctx)
	return e.Agente.Conectado && e.API.Conectado
}

func logTransicao(anterior, atual model.StatusConexao, err error) {
	if anterior.Conectado == atual.Conectado {
		return
	}
	if atual.Conectado {
		log.Info().Str("link", atual.Nome).Msg("conexão restabelecida")
		return
	}
	log.Warn().Err(err).Str("link", atual.Nome).Str("motivo", atual.Mensagem).Msg("conexão perdida")
}
