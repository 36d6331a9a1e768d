package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"solispdv/internal/apierror"
	"solispdv/internal/dto"
	"solispdv/internal/metrics"
	"solispdv/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func init() {
	// The agent is a .NET service: it binds JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// syncPaths maps each resource type to the agent endpoint that triggers it.
var syncPaths = map[model.TipoRecurso]string{
	model.RecursoProdutos:        "/api/produtos/sync",
	model.RecursoEmpresas:        "/api/empresas/sincronizar",
	model.RecursoFormasPagamento: "/api/formas-pagamento/sync",
	model.RecursoVendas:          "/api/vendas/enviar-pendentes",
}

// AgenteClient talks HTTP/JSON to the local Agente PDV process.
// Every failure is classified into the apierror taxonomy: TransportError when
// the agent could not be reached or timed out, RemoteError for non-2xx answers.
// Calls other than the status/health probes go through a circuit breaker
// that only counts transport failures.
type AgenteClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewAgenteClient(baseURL string, timeout time.Duration) *AgenteClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg := DefaultCBConfig()
	cfg.IsFailure = apierror.IsTransport
	return &AgenteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cb:         NewCircuitBreaker(cfg),
	}
}

// CircuitState exposes the breaker state.
func (c *AgenteClient) CircuitState() CBState { return c.cb.State() }

// ─── Status / health ─────────────────────────────────────────────────────────

// Status polls GET /api/status: the agent's own view of both links.
func (c *AgenteClient) Status(ctx context.Context) (*model.EstadoConexao, error) {
	var estado model.EstadoConexao
	if err := c.do(ctx, "status", http.MethodGet, "/api/status", nil, nil, &estado); err != nil {
		return nil, err
	}
	return &estado, nil
}

func (c *AgenteClient) Health(ctx context.Context) (*dto.HealthCheck, error) {
	var hc dto.HealthCheck
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, nil, &hc); err != nil {
		return nil, err
	}
	return &hc, nil
}

// ─── Caixa ───────────────────────────────────────────────────────────────────

func (c *AgenteClient) AbrirCaixa(ctx context.Context, in dto.AbrirCaixaDto) (*model.Caixa, error) {
	var caixa model.Caixa
	if err := c.guarded(ctx, "abrir caixa", http.MethodPost, "/api/caixa/abrir", nil, in, &caixa); err != nil {
		return nil, err
	}
	return &caixa, nil
}

func (c *AgenteClient) FecharCaixa(ctx context.Context, in dto.FecharCaixaDto) (*model.Caixa, error) {
	var caixa model.Caixa
	if err := c.guarded(ctx, "fechar caixa", http.MethodPost, "/api/caixa/fechar", nil, in, &caixa); err != nil {
		return nil, err
	}
	return &caixa, nil
}

// CaixaAberto returns the open caixa of a terminal, or nil when there is none.
// The agent answers either 200 with null or 404 for "no open caixa".
func (c *AgenteClient) CaixaAberto(ctx context.Context, numeroTerminal int) (*model.Caixa, error) {
	var caixa *model.Caixa
	path := "/api/caixa/aberto/" + strconv.Itoa(numeroTerminal)
	err := c.guarded(ctx, "consultar caixa aberto", http.MethodGet, path, nil, nil, &caixa)
	if isStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return caixa, nil
}

// ─── Produtos ────────────────────────────────────────────────────────────────

func (c *AgenteClient) ProdutoPorCodigoBarras(ctx context.Context, codigo string) (*model.Produto, error) {
	var produto *model.Produto
	path := "/api/produtos/codigo-barras/" + url.PathEscape(codigo)
	err := c.guarded(ctx, "buscar produto", http.MethodGet, path, nil, nil, &produto)
	if isStatus(err, http.StatusNotFound) || (err == nil && produto == nil) {
		return nil, apierror.NaoEncontrado("produto", codigo)
	}
	if err != nil {
		return nil, err
	}
	return produto, nil
}

func (c *AgenteClient) BuscarProdutos(ctx context.Context, termo string) ([]model.Produto, error) {
	produtos := []model.Produto{}
	q := url.Values{"termo": {termo}}
	if err := c.guarded(ctx, "buscar produtos", http.MethodGet, "/api/produtos/buscar", q, nil, &produtos); err != nil {
		return nil, err
	}
	return produtos, nil
}

func (c *AgenteClient) ListarProdutos(ctx context.Context, skip, take int) ([]model.Produto, error) {
	produtos := []model.Produto{}
	q := url.Values{"skip": {strconv.Itoa(skip)}, "take": {strconv.Itoa(take)}}
	if err := c.guarded(ctx, "listar produtos", http.MethodGet, "/api/produtos", q, nil, &produtos); err != nil {
		return nil, err
	}
	return produtos, nil
}

// ─── Catálogo ────────────────────────────────────────────────────────────────

func (c *AgenteClient) FormasPagamentoAtivas(ctx context.Context) ([]model.FormaPagamento, error) {
	formas := []model.FormaPagamento{}
	if err := c.guarded(ctx, "formas de pagamento", http.MethodGet, "/api/formas-pagamento/ativas", nil, nil, &formas); err != nil {
		return nil, err
	}
	return formas, nil
}

// Empresa returns the company profile, or nil when the agent has none yet.
func (c *AgenteClient) Empresa(ctx context.Context) (*model.Empresa, error) {
	var empresa *model.Empresa
	err := c.guarded(ctx, "empresa", http.MethodGet, "/api/empresas", nil, nil, &empresa)
	if isStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return empresa, nil
}

// ─── Vendas ──────────────────────────────────────────────────────────────────

func (c *AgenteClient) CriarVenda(ctx context.Context, in dto.CriarVendaDto) (*model.Venda, error) {
	var venda model.Venda
	if err := c.guarded(ctx, "criar venda", http.MethodPost, "/api/vendas", nil, in, &venda); err != nil {
		return nil, err
	}
	return &venda, nil
}

func (c *AgenteClient) FinalizarVenda(ctx context.Context, vendaID uuid.UUID, in dto.FinalizarVendaDto) error {
	path := "/api/vendas/" + vendaID.String() + "/finalizar"
	return c.guarded(ctx, "finalizar venda", http.MethodPost, path, nil, in, nil)
}

// CancelarVenda posts the reason as a bare JSON string, as the agent expects.
func (c *AgenteClient) CancelarVenda(ctx context.Context, vendaID uuid.UUID, motivo string) error {
	path := "/api/vendas/" + vendaID.String() + "/cancelar"
	return c.guarded(ctx, "cancelar venda", http.MethodPost, path, nil, motivo, nil)
}

// ─── Sincronização ───────────────────────────────────────────────────────────

// Sincronizar triggers the agent-side sync of one resource type. The caller
// decides what a 200 with sucesso=false means.
func (c *AgenteClient) Sincronizar(ctx context.Context, tipo model.TipoRecurso) (*dto.SyncResponse, error) {
	path, ok := syncPaths[tipo]
	if !ok {
		return nil, apierror.Invalido("tipo", "recurso de sincronização desconhecido: "+string(tipo))
	}
	var resp dto.SyncResponse
	if err := c.guarded(ctx, "sincronizar "+string(tipo), http.MethodPost, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ─── Transport ───────────────────────────────────────────────────────────────

func (c *AgenteClient) guarded(ctx context.Context, op, method, path string, q url.Values, in, out any) error {
	err := c.cb.Execute(func() error {
		return c.do(ctx, op, method, path, q, in, out)
	})
	if errors.Is(err, ErrCircuitOpen) {
		return &apierror.TransportError{Operacao: op, Err: err}
	}
	return err
}

func (c *AgenteClient) do(ctx context.Context, op, method, path string, q url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("agente: %s: marshal payload: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("agente: %s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("path", path).Msg("agente: sem resposta")
		metrics.ObservarAgente(op, "transporte", time.Since(start))
		return &apierror.TransportError{Operacao: op, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return &apierror.TransportError{Operacao: op, Timeout: isTimeout(err), Err: err}
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("agente")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObservarAgente(op, strconv.Itoa(resp.StatusCode), time.Since(start))
		return &apierror.RemoteError{
			Operacao:   op,
			StatusCode: resp.StatusCode,
			Mensagem:   mensagemRemota(resp.StatusCode, raw),
		}
	}

	metrics.ObservarAgente(op, "ok", time.Since(start))

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &apierror.RemoteError{
			Operacao:   op,
			StatusCode: resp.StatusCode,
			Mensagem:   "resposta inválida: " + err.Error(),
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isStatus(err error, status int) bool {
	var re *apierror.RemoteError
	return errors.As(err, &re) && re.StatusCode == status
}

// mensagemRemota extracts a human message from an error body: .NET problem
// details, the agent's {mensagem} envelope or plain text.
func mensagemRemota(status int, raw []byte) string {
	var corpo struct {
		Mensagem string `json:"mensagem"`
		Message  string `json:"message"`
		Detail   string `json:"detail"`
		Title    string `json:"title"`
		Erro     string `json:"erro"`
		Error    string `json:"error"`
	}
	if json.Unmarshal(raw, &corpo) == nil {
		for _, m := range []string{corpo.Mensagem, corpo.Message, corpo.Detail, corpo.Erro, corpo.Error, corpo.Title} {
			if m != "" {
				return m
			}
		}
	}
	if txt := strings.TrimSpace(string(raw)); txt != "" && len(txt) <= 300 && !strings.HasPrefix(txt, "{") {
		return txt
	}
	return http.StatusText(status)
}
