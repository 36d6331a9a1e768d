package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"solispdv/internal/apierror"
	"solispdv/internal/metrics"
	"solispdv/internal/model"
	"solispdv/internal/repository"

	"github.com/rs/zerolog/log"
)

// SyncService coordinates the agent-side synchronization of every resource
// type. At most one sync per resource runs at a time; a full sync runs the
// resources strictly in sequence and isolates failures.
type SyncService interface {
	// SincronizarRecurso returns the outcome of the attempt. The error is
	// non-nil when nothing was attempted (validation, in progress, upstream
	// down) or when the attempt failed.
	SincronizarRecurso(ctx context.Context, tipo model.TipoRecurso) (model.ResultadoSincronizacao, error)
	SincronizarTudo(ctx context.Context) ([]model.ResultadoSincronizacao, error)
	Status() []model.StatusSincronizacao
}

type syncService struct {
	agente  SyncAgente
	conexao ConexaoService
	repo    repository.EstadoLocalRepository
	cache   repository.ProdutoCache
	agora   func() time.Time

	mu       sync.Mutex
	status   map[model.TipoRecurso]*model.StatusSincronizacao
	ocupados map[model.TipoRecurso]bool
	tudo     bool
}

// NewSyncService restores the last successful timestamps from the local store.
func NewSyncService(ctx context.Context, agente SyncAgente, conexao ConexaoService, repo repository.EstadoLocalRepository, cache repository.ProdutoCache) (SyncService, error) {
	return newSyncService(ctx, agente, conexao, repo, cache, time.Now)
}

func newSyncService(ctx context.Context, agente SyncAgente, conexao ConexaoService, repo repository.EstadoLocalRepository, cache repository.ProdutoCache, agora func() time.Time) (*syncService, error) {
	s := &syncService{
		agente:   agente,
		conexao:  conexao,
		repo:     repo,
		cache:    cache,
		agora:    agora,
		status:   make(map[model.TipoRecurso]*model.StatusSincronizacao, len(model.OrdemSincronizacao)),
		ocupados: make(map[model.TipoRecurso]bool),
	}
	for _, tipo := range model.OrdemSincronizacao {
		s.status[tipo] = &model.StatusSincronizacao{Tipo: tipo, Nome: tipo.Nome(), Status: model.SyncIdle}
	}

	regs, err := repo.CarregarSincronizacoes(ctx)
	if err != nil {
		return nil, fmt.Errorf("carregar sincronizações: %w", err)
	}
	for tipo, reg := range regs {
		st, ok := s.status[tipo]
		if !ok {
			continue
		}
		ultima := reg.UltimaSincronizacao
		st.UltimaSincronizacao = &ultima
		st.Total = reg.Total
	}
	return s, nil
}

func (s *syncService) SincronizarRecurso(ctx context.Context, tipo model.TipoRecurso) (model.ResultadoSincronizacao, error) {
	if !tipo.Valido() {
		return model.ResultadoSincronizacao{}, apierror.Invalido("tipo", "recurso de sincronização desconhecido: "+string(tipo))
	}
	if !s.reservar(tipo) {
		return model.ResultadoSincronizacao{}, apierror.ErrSincronizacaoEmAndamento
	}
	defer s.liberar(tipo)

	if !s.conexao.UpstreamDisponivel(ctx) {
		return model.ResultadoSincronizacao{}, apierror.ErrSincronizacaoBloqueada
	}
	return s.executar(ctx, tipo)
}

func (s *syncService) SincronizarTudo(ctx context.Context) ([]model.ResultadoSincronizacao, error) {
	s.mu.Lock()
	if s.tudo {
		s.mu.Unlock()
		return nil, apierror.ErrSincronizacaoEmAndamento
	}
	s.tudo = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.tudo = false
		s.mu.Unlock()
	}()

	if !s.conexao.UpstreamDisponivel(ctx) {
		return nil, apierror.ErrSincronizacaoBloqueada
	}

	log.Info().Msg("sincronização completa iniciada")
	resultados := make([]model.ResultadoSincronizacao, 0, len(model.OrdemSincronizacao))
	for _, tipo := range model.OrdemSincronizacao {
		if !s.reservar(tipo) {
			resultados = append(resultados, model.ResultadoSincronizacao{
				Tipo:     tipo,
				Mensagem: apierror.ErrSincronizacaoEmAndamento.Error(),
			})
			continue
		}
		res, _ := s.executar(ctx, tipo)
		s.liberar(tipo)
		resultados = append(resultados, res)
	}

	falhas := 0
	for _, r := range resultados {
		if !r.Sucesso {
			falhas++
		}
	}
	log.Info().Int("recursos", len(resultados)).Int("falhas", falhas).Msg("sincronização completa finalizada")
	return resultados, nil
}

func (s *syncService) Status() []model.StatusSincronizacao {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.StatusSincronizacao, 0, len(model.OrdemSincronizacao))
	for _, tipo := range model.OrdemSincronizacao {
		st := *s.status[tipo]
		if st.UltimaSincronizacao != nil {
			t := *st.UltimaSincronizacao
			st.UltimaSincronizacao = &t
		}
		out = append(out, st)
	}
	return out
}

// executar performs exactly one outbound call. The caller holds the
// resource reservation.
func (s *syncService) executar(ctx context.Context, tipo model.TipoRecurso) (model.ResultadoSincronizacao, error) {
	s.mu.Lock()
	st := s.status[tipo]
	st.Status = model.SyncSyncing
	st.Erro = ""
	s.mu.Unlock()

	resp, err := s.agente.Sincronizar(ctx, tipo)
	if err == nil && !resp.Sucesso {
		msg := resp.Mensagem
		if msg == "" {
			msg = "sincronização recusada pelo agente"
		}
		err = &apierror.RemoteError{Operacao: "sincronizar " + string(tipo), Mensagem: msg}
	}

	if err != nil {
		s.mu.Lock()
		st.Status = model.SyncError
		st.Erro = err.Error()
		s.mu.Unlock()

		log.Warn().Err(err).Str("recurso", string(tipo)).Msg("sincronização falhou")
		metrics.Sincronizacoes.WithLabelValues(string(tipo), "erro").Inc()
		res := model.ResultadoSincronizacao{
			Tipo:     tipo,
			Mensagem: "Erro ao sincronizar " + tipo.Nome(),
			Erros:    []string{err.Error()},
		}
		if resp != nil {
			res.Erros = append(res.Erros, resp.Erros...)
		}
		return res, fmt.Errorf("sincronizar %s: %w", tipo, err)
	}

	metrics.Sincronizacoes.WithLabelValues(string(tipo), "sucesso").Inc()
	agora := s.agora()
	if perr := s.repo.SalvarSincronizacao(ctx, tipo, agora, resp.Total); perr != nil {
		log.Warn().Err(perr).Str("recurso", string(tipo)).Msg("falha ao persistir data da sincronização")
	}

	s.mu.Lock()
	st.Status = model.SyncSuccess
	st.UltimaSincronizacao = &agora
	st.Total = resp.Total
	s.mu.Unlock()

	if tipo == model.RecursoProdutos && s.cache != nil {
		s.cache.Flush(ctx)
	}

	log.Info().Str("recurso", string(tipo)).Msg("sincronização concluída")
	msg := resp.Mensagem
	if msg == "" {
		msg = tipo.Nome() + " sincronizado"
	}
	return model.ResultadoSincronizacao{
		Tipo:     tipo,
		Sucesso:  true,
		Mensagem: msg,
		Total:    resp.Total,
		Erros:    resp.Erros,
	}, nil
}

func (s *syncService) reservar(tipo model.TipoRecurso) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ocupados[tipo] {
		return false
	}
	s.ocupados[tipo] = true
	return true
}

func (s *syncService) liberar(tipo model.TipoRecurso) {
	s.mu.Lock()
	delete(s.ocupados, tipo)
	s.mu.Unlock()
}
