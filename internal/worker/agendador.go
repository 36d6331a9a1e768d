package worker

// agendador.go
// Periodic "send pending sales" job. Runs through the sync coordinator so a
// manual trigger and the scheduled one never overlap.

import (
	"context"
	"errors"
	"time"

	"solispdv/internal/apierror"
	"solispdv/internal/model"
	"solispdv/internal/service"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

type AgendadorConfig struct {
	Sync      service.SyncService
	Conexao   service.ConexaoService
	Intervalo time.Duration // ≤ 0 disables the job
}

// StartAgendador schedules the auto-sync of sales and stops it with ctx.
// Returns nil when disabled.
func StartAgendador(ctx context.Context, cfg AgendadorConfig) (*gocron.Scheduler, error) {
	if cfg.Intervalo <= 0 {
		log.Info().Msg("agendador: auto-sync disabled")
		return nil, nil
	}

	s := gocron.NewScheduler(time.Local)
	s.SingletonModeAll()
	s.WaitForScheduleAll()
	if _, err := s.Every(cfg.Intervalo).Do(enviarVendasPendentes, ctx, cfg); err != nil {
		return nil, err
	}
	s.StartAsync()
	log.Info().Dur("intervalo", cfg.Intervalo).Msg("agendador: started")

	go func() {
		<-ctx.Done()
		s.Stop()
		log.Info().Msg("agendador: shutting down")
	}()
	return s, nil
}

func enviarVendasPendentes(ctx context.Context, cfg AgendadorConfig) {
	// Cheap pre-check on the last snapshot; the coordinator re-polls anyway.
	if !cfg.Conexao.Atual().API.Conectado {
		log.Debug().Msg("agendador: API na nuvem indisponível, pulando envio")
		return
	}
	res, err := cfg.Sync.SincronizarRecurso(ctx, model.RecursoVendas)
	switch {
	case errors.Is(err, apierror.ErrSincronizacaoEmAndamento),
		errors.Is(err, apierror.ErrSincronizacaoBloqueada):
		log.Debug().Err(err).Msg("agendador: envio pulado")
	case err != nil:
		log.Warn().Err(err).Msg("agendador: envio de vendas falhou")
	default:
		log.Info().Str("mensagem", res.Mensagem).Msg("agendador: vendas enviadas")
	}
}
