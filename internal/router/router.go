package router

import (
	"context"
	"time"

	"solispdv/internal/config"
	"solispdv/internal/handler"
	"solispdv/internal/metrics"
	"solispdv/internal/middleware"
	"solispdv/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services are built in the composition root because the background
// workers share them with the HTTP layer.
type Services struct {
	Conexao  service.ConexaoService
	Terminal service.TerminalService
	Caixa    service.CaixaService
	Carrinho service.CarrinhoService
	Produto  service.ProdutoService
	Catalogo service.CatalogoService
	Sync     service.SyncService
}

// New wires the handlers and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Agent client / Repository ← DB/Redis
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, svc Services) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	limiter := middleware.NewRateLimiter(cfg.RateLimitPorMinuto)
	limiter.StartPurge(ctx)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(metrics.Middleware())
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.Middleware())

	// ── Handlers ─────────────────────────────────────────────────────────────
	statusH := handler.NewStatusHandler(svc.Conexao, svc.Terminal)
	caixaH := handler.NewCaixaHandler(svc.Caixa, svc.Terminal)
	carrinhoH := handler.NewCarrinhoHandler(svc.Carrinho, svc.Terminal)
	produtosH := handler.NewProdutosHandler(svc.Produto)
	catalogoH := handler.NewCatalogoHandler(svc.Catalogo)
	syncH := handler.NewSincronizacaoHandler(svc.Sync)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, svc.Catalogo))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/status", statusH.Status)
		v1.GET("/status/ws", statusH.StatusStream(time.Second))
		v1.GET("/terminal", statusH.Terminal)
		v1.PUT("/terminal", statusH.DefinirTerminal)

		caixa := v1.Group("/caixa")
		{
			caixa.GET("/aberto", caixaH.Aberto)
			caixa.POST("/abrir", caixaH.Abrir)
			caixa.POST("/fechar", caixaH.Fechar)
			caixa.POST("/previa-fechamento", caixaH.PreviaFechamento)
		}

		carr := v1.Group("/carrinho")
		{
			carr.GET("", carrinhoH.Obter)
			carr.DELETE("", carrinhoH.Cancelar)
			carr.POST("/itens", carrinhoH.Adicionar)
			carr.DELETE("/itens/:seq", carrinhoH.Remover)
			carr.PUT("/itens/:seq/quantidade", carrinhoH.AtualizarQuantidade)
			carr.PUT("/itens/:seq/desconto", carrinhoH.AplicarDesconto)
			carr.POST("/finalizar", carrinhoH.Finalizar)
		}

		prods := v1.Group("/produtos")
		{
			prods.GET("", produtosH.Listar)
			prods.GET("/buscar", produtosH.Buscar)
			prods.GET("/codigo-barras/:codigo", produtosH.PorCodigoBarras)
			prods.DELETE("/cache", produtosH.LimparCache)
		}

		v1.GET("/formas-pagamento", catalogoH.FormasPagamento)
		v1.GET("/empresa", catalogoH.Empresa)

		sync := v1.Group("/sincronizacao")
		{
			sync.GET("", syncH.Status)
			sync.POST("", syncH.Tudo)
			sync.POST("/:tipo", syncH.Recurso)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
