// Command sincronizar runs one full synchronization against the local agent
// and exits non-zero when any resource failed. Intended for cron or support.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"solispdv/internal/config"
	"solispdv/internal/infra"
	"solispdv/internal/model"
	"solispdv/internal/repository"
	"solispdv/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	recurso := flag.String("recurso", "", "produtos | empresas | formas-pagamento | vendas (vazio = todos)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local database")
	}

	ctx := context.Background()
	agente := infra.NewAgenteClient(cfg.AgenteURL, cfg.AgenteTimeout)
	repo := repository.NewEstadoLocalRepository(db)
	conexao := service.NewConexaoService(agente)

	// The daemon's cache lives in another process; only a shared Redis cache
	// can be invalidated from here.
	var cache repository.ProdutoCache
	if cfg.RedisURL != "" {
		rdb, err := infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		cache = repository.NewRedisProdutoCache(rdb, cfg.ProdutoCacheTTL)
	} else {
		cache = repository.NewMemoriaProdutoCache(cfg.ProdutoCacheTTL)
	}

	syncSvc, err := service.NewSyncService(ctx, agente, conexao, repo, cache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load sync history")
	}

	var resultados []model.ResultadoSincronizacao
	if *recurso != "" {
		res, err := syncSvc.SincronizarRecurso(ctx, model.TipoRecurso(*recurso))
		if err != nil && res.Tipo == "" {
			log.Fatal().Err(err).Msg("sincronização não executada")
		}
		resultados = append(resultados, res)
	} else {
		resultados, err = syncSvc.SincronizarTudo(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("sincronização não executada")
		}
	}

	falhas := 0
	for _, r := range resultados {
		ev := log.Info()
		if !r.Sucesso {
			ev = log.Error()
			falhas++
		}
		ev.Str("recurso", string(r.Tipo)).Strs("erros", r.Erros).Msg(r.Mensagem)
	}
	if falhas > 0 {
		os.Exit(1)
	}
}
