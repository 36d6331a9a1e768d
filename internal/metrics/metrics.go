package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector of the terminal daemon. A private registry
// keeps tests free of duplicate-registration panics.
var Registry = prometheus.NewRegistry()

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	AgenteChamadas = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agente_chamadas_total",
			Help: "Calls to the PDV agent by operation and outcome",
		},
		[]string{"operacao", "resultado"},
	)

	AgenteDuracao = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agente_chamada_duracao_seconds",
			Help:    "Latency of calls to the PDV agent",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operacao"},
	)

	Sincronizacoes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sincronizacoes_total",
			Help: "Sync runs by resource and result",
		},
		[]string{"recurso", "resultado"},
	)

	Conectado = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "conexao_conectado",
			Help: "1 when the link is up, 0 otherwise",
		},
		[]string{"link"},
	)
)

func init() {
	Registry.MustRegister(
		HttpRequestsTotal,
		HttpRequestDuration,
		AgenteChamadas,
		AgenteDuracao,
		Sincronizacoes,
		Conectado,
		collectors.NewGoCollector(),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "undefined"
		}

		HttpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HttpRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
	}
}

// ObservarAgente records one agent call.
func ObservarAgente(operacao, resultado string, d time.Duration) {
	AgenteChamadas.WithLabelValues(operacao, resultado).Inc()
	AgenteDuracao.WithLabelValues(operacao).Observe(d.Seconds())
}

func DefinirConectado(link string, conectado bool) {
	v := 0.0
	if conectado {
		v = 1
	}
	Conectado.WithLabelValues(link).Set(v)
}
