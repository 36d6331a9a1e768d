package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solispdv/internal/config"
	"solispdv/internal/infra"
	"solispdv/internal/repository"
	"solispdv/internal/router"
	"solispdv/internal/service"
	"solispdv/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local database")
	}

	// Redis is optional on a terminal: without it the product cache and the
	// job queues stay in-process.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Infrastructure ───────────────────────────────────────────────────────
	agente := infra.NewAgenteClient(cfg.AgenteURL, cfg.AgenteTimeout)
	estadoRepo := repository.NewEstadoLocalRepository(db)

	var produtoCache repository.ProdutoCache
	if rdb != nil {
		produtoCache = repository.NewRedisProdutoCache(rdb, cfg.ProdutoCacheTTL)
	} else {
		produtoCache = repository.NewMemoriaProdutoCache(cfg.ProdutoCacheTTL)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	conexaoSvc := service.NewConexaoService(agente)
	catalogoSvc := service.NewCatalogoService(agente)
	terminalSvc, err := service.NewTerminalService(ctx, estadoRepo, cfg.TerminalNumero)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load terminal selection")
	}

	// Worker dispatcher — closing reports and their e-mails run off the request path
	dispatcher := worker.NewDispatcher(rdb)
	var emailWorker *worker.EmailWorker
	if mailer := infra.NewMailer(cfg); mailer != nil {
		emailWorker = worker.NewEmailWorker(mailer)
	}
	relatorios := worker.NewRelatorioWorker(worker.RelatorioConfig{
		Dispatcher:  dispatcher,
		Empresas:    catalogoSvc,
		Gerar:       infra.GerarRelatorioFechamentoPDF,
		StoragePath: cfg.RelatorioPath,
		EmailGestor: cfg.RelatorioEmail,
	}, emailWorker)

	caixaSvc := service.NewCaixaService(agente, estadoRepo, relatorios)
	produtoSvc := service.NewProdutoService(agente, produtoCache)
	carrinhoSvc := service.NewCarrinhoService(produtoSvc, caixaSvc, agente)
	syncSvc, err := service.NewSyncService(ctx, agente, conexaoSvc, estadoRepo, produtoCache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load sync history")
	}

	// Known open caixa first from disk, then confirmed with the agent
	numero := terminalSvc.Numero()
	if err := caixaSvc.Restaurar(ctx, numero); err != nil {
		log.Warn().Err(err).Msg("failed to restore open caixa snapshot")
	}
	if consulta := caixaSvc.ConsultarAberto(ctx, numero); consulta.Situacao == service.CaixaInacessivel {
		log.Warn().Err(consulta.Err).Int("terminal", numero).Msg("agente inacessível na inicialização")
	}

	// ── Background jobs ──────────────────────────────────────────────────────
	dispatcher.Start(ctx, cfg.WorkerPoolSize)
	worker.StartMonitor(ctx, conexaoSvc, cfg.MonitorIntervalo)
	if _, err := worker.StartAgendador(ctx, worker.AgendadorConfig{
		Sync:      syncSvc,
		Conexao:   conexaoSvc,
		Intervalo: cfg.AutoSyncIntervalo,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule auto-sync")
	}

	r := router.New(ctx, cfg, db, rdb, router.Services{
		Conexao:  conexaoSvc,
		Terminal: terminalSvc,
		Caixa:    caixaSvc,
		Carrinho: carrinhoSvc,
		Produto:  produtoSvc,
		Catalogo: catalogoSvc,
		Sync:     syncSvc,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AgenteTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Int("terminal", numero).Str("agente", cfg.AgenteURL).Msgf("Solis PDV terminal listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
