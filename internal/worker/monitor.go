package worker

// monitor.go
// Background goroutine that polls the agent status on a fixed interval so
// the connectivity snapshot is never older than one interval.

import (
	"context"
	"time"

	"solispdv/internal/service"

	"github.com/rs/zerolog/log"
)

const monitorIntervaloPadrao = 5 * time.Second

// StartMonitor checks once immediately, then every intervalo until ctx is
// cancelled.
func StartMonitor(ctx context.Context, conexao service.ConexaoService, intervalo time.Duration) {
	if intervalo <= 0 {
		intervalo = monitorIntervaloPadrao
	}
	go func() {
		ticker := time.NewTicker(intervalo)
		defer ticker.Stop()

		log.Info().Dur("intervalo", intervalo).Msg("monitor: started")
		conexao.Verificar(ctx)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("monitor: shutting down")
				return
			case <-ticker.C:
				conexao.Verificar(ctx)
			}
		}
	}()
}
