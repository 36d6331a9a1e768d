package service

import (
	"context"
	"sync"

	"solispdv/internal/apierror"
	"solispdv/internal/dto"
	"solispdv/internal/model"

	"github.com/rs/zerolog/log"
)

// CatalogoService serves reference data kept by the agent: payment methods,
// the company profile and the agent's own health.
type CatalogoService interface {
	FormasPagamento(ctx context.Context) ([]model.FormaPagamento, error)
	Empresa(ctx context.Context) (*model.Empresa, error)
	// UltimaEmpresa is the last profile seen; nil until one was fetched.
	UltimaEmpresa() *model.Empresa
	Health(ctx context.Context) (*dto.HealthCheck, error)
}

type catalogoService struct {
	agente CatalogoAgente

	mu      sync.RWMutex
	formas  []model.FormaPagamento
	empresa *model.Empresa
}

func NewCatalogoService(agente CatalogoAgente) CatalogoService {
	return &catalogoService{agente: agente}
}

// FormasPagamento falls back to the last known list while the agent is
// unreachable so a sale in progress can still be paid.
func (s *catalogoService) FormasPagamento(ctx context.Context) ([]model.FormaPagamento, error) {
	formas, err := s.agente.FormasPagamentoAtivas(ctx)
	if err != nil {
		s.mu.RLock()
		cache := s.formas
		s.mu.RUnlock()
		if apierror.IsTransport(err) && cache != nil {
			log.Warn().Err(err).Msg("formas de pagamento: usando última lista conhecida")
			return cache, nil
		}
		return nil, err
	}
	s.mu.Lock()
	s.formas = formas
	s.mu.Unlock()
	return formas, nil
}

func (s *catalogoService) Empresa(ctx context.Context) (*model.Empresa, error) {
	empresa, err := s.agente.Empresa(ctx)
	if err != nil {
		return nil, err
	}
	if empresa != nil {
		s.mu.Lock()
		s.empresa = empresa
		s.mu.Unlock()
	}
	return empresa, nil
}

func (s *catalogoService) UltimaEmpresa() *model.Empresa {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.empresa
}

func (s *catalogoService) Health(ctx context.Context) (*dto.HealthCheck, error) {
	return s.agente.Health(ctx)
}
