package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"solispdv/internal/apierror"
	"solispdv/internal/repository"

	"github.com/rs/zerolog/log"
)

const chaveTerminal = "terminal.numero"

// TerminalService holds the terminal number this daemon operates as.
type TerminalService interface {
	Numero() int
	Definir(ctx context.Context, numero int) error
}

type terminalService struct {
	repo repository.EstadoLocalRepository

	mu     sync.RWMutex
	numero int
}

// NewTerminalService restores the persisted selection, falling back to padrao
// (TERMINAL_NUMERO) on first run.
func NewTerminalService(ctx context.Context, repo repository.EstadoLocalRepository, padrao int) (TerminalService, error) {
	s := &terminalService{repo: repo, numero: padrao}
	v, ok, err := repo.Preferencia(ctx, chaveTerminal)
	if err != nil {
		return nil, fmt.Errorf("carregar terminal: %w", err)
	}
	if ok {
		n, convErr := strconv.Atoi(v)
		if convErr == nil && n > 0 {
			s.numero = n
		} else {
			log.Warn().Str("valor", v).Msg("preferência de terminal inválida, usando padrão")
		}
	}
	return s, nil
}

func (s *terminalService) Numero() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.numero
}

func (s *terminalService) Definir(ctx context.Context, numero int) error {
	if numero < 1 {
		return apierror.Invalido("numeroTerminal", "deve ser maior que zero")
	}
	if err := s.repo.SalvarPreferencia(ctx, chaveTerminal, strconv.Itoa(numero)); err != nil {
		return fmt.Errorf("salvar terminal: %w", err)
	}
	s.mu.Lock()
	s.numero = numero
	s.mu.Unlock()
	log.Info().Int("terminal", numero).Msg("terminal selecionado")
	return nil
}
