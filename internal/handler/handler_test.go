package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"solispdv/internal/apierror"
	"solispdv/internal/carrinho"
	"solispdv/internal/dto"
	"solispdv/internal/model"
	"solispdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ─── Fakes ───────────────────────────────────────────────────────────────────

type fakeTerminal struct{ numero int }

func (f *fakeTerminal) Numero() int { return f.numero }
func (f *fakeTerminal) Definir(_ context.Context, n int) error {
	f.numero = n
	return nil
}

type fakeCaixas struct {
	consulta service.ConsultaCaixa
	atual    *model.Caixa
	abrirErr error

	fechadoID uuid.UUID
}

func (f *fakeCaixas) Abrir(_ context.Context, terminal int, operador string, valor *decimal.Decimal, _ *string) (*model.Caixa, error) {
	if f.abrirErr != nil {
		return nil, f.abrirErr
	}
	return &model.Caixa{ID: uuid.New(), NumeroTerminal: terminal, OperadorNome: operador, ValorAbertura: *valor, Status: model.CaixaAberto}, nil
}

func (f *fakeCaixas) Fechar(_ context.Context, id uuid.UUID, _ *decimal.Decimal, _ *string) (*model.Caixa, error) {
	f.fechadoID = id
	return &model.Caixa{ID: id, Status: model.CaixaFechado}, nil
}

func (f *fakeCaixas) ConsultarAberto(context.Context, int) service.ConsultaCaixa { return f.consulta }
func (f *fakeCaixas) CaixaAtual(int) *model.Caixa                                { return f.atual }
func (f *fakeCaixas) Restaurar(context.Context, int) error                       { return nil }

func (f *fakeCaixas) PreviaFechamento(_ context.Context, _ int, contado decimal.Decimal) (*dto.PreviaFechamentoResponse, error) {
	switch f.consulta.Situacao {
	case service.CaixaNaoEncontrado:
		return nil, apierror.ErrCaixaNaoAberto
	case service.CaixaInacessivel:
		return nil, f.consulta.Err
	}
	c := f.consulta.Caixa
	dif := c.DiferencaPara(contado)
	return &dto.PreviaFechamentoResponse{
		ValorEsperado: c.ValorEsperado(),
		ValorContado:  contado,
		Diferenca:     dif,
		Situacao:      model.ClassificarDiferenca(dif),
	}, nil
}

type fakeCarrinhos struct {
	carr       carrinho.Carrinho
	adicionado decimal.Decimal
	err        error
}

func (f *fakeCarrinhos) Obter(int) carrinho.Carrinho { return f.carr }
func (f *fakeCarrinhos) AdicionarPorCodigoBarras(_ context.Context, _ int, codigo string, qtd decimal.Decimal) (carrinho.Carrinho, error) {
	if f.err != nil {
		return carrinho.Carrinho{}, f.err
	}
	f.adicionado = qtd
	p := model.Produto{ID: uuid.New(), CodigoBarras: codigo, CodigoInterno: codigo, Nome: "Café", Ativo: true, PrecoVenda: decimal.RequireFromString("12.90")}
	c, err := f.carr.Adicionar(p, qtd, time.Now())
	f.carr = c
	return c, err
}
func (f *fakeCarrinhos) Remover(_ int, seq int) (carrinho.Carrinho, error) {
	c, err := f.carr.Remover(seq)
	if err != nil {
		return f.carr, err
	}
	f.carr = c
	return c, nil
}
func (f *fakeCarrinhos) AtualizarQuantidade(_ int, seq int, q decimal.Decimal) (carrinho.Carrinho, error) {
	return f.carr.AtualizarQuantidade(seq, q)
}
func (f *fakeCarrinhos) AplicarDesconto(_ int, seq int, d decimal.Decimal) (carrinho.Carrinho, error) {
	return f.carr.AplicarDesconto(seq, d)
}
func (f *fakeCarrinhos) Cancelar(int) carrinho.Carrinho {
	f.carr = carrinho.Novo()
	return f.carr
}
func (f *fakeCarrinhos) Finalizar(context.Context, int, dto.FinalizarVendaRequest) (*dto.VendaFinalizadaResponse, error) {
	return nil, f.err
}

type fakeSync struct {
	tipo model.TipoRecurso
	err  error
}

func (f *fakeSync) SincronizarRecurso(_ context.Context, tipo model.TipoRecurso) (model.ResultadoSincronizacao, error) {
	f.tipo = tipo
	return model.ResultadoSincronizacao{Tipo: tipo, Sucesso: f.err == nil}, f.err
}
func (f *fakeSync) SincronizarTudo(context.Context) ([]model.ResultadoSincronizacao, error) {
	return []model.ResultadoSincronizacao{{Tipo: model.RecursoProdutos, Sucesso: true}}, f.err
}
func (f *fakeSync) Status() []model.StatusSincronizacao { return nil }

// ─── Helpers ─────────────────────────────────────────────────────────────────

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e.Detail
}

func caixaRouter(caixas *fakeCaixas) *gin.Engine {
	h := NewCaixaHandler(caixas, &fakeTerminal{numero: 2})
	r := gin.New()
	r.GET("/v1/caixa/aberto", h.Aberto)
	r.POST("/v1/caixa/abrir", h.Abrir)
	r.POST("/v1/caixa/fechar", h.Fechar)
	r.POST("/v1/caixa/previa-fechamento", h.PreviaFechamento)
	return r
}

// ─── Caixa ───────────────────────────────────────────────────────────────────

func TestCaixaAberto_DistinguishesNoneFromUnreachable(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		r := caixaRouter(&fakeCaixas{consulta: service.ConsultaCaixa{Situacao: service.CaixaNaoEncontrado}})
		w := do(r, http.MethodGet, "/v1/caixa/aberto", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.CaixaAbertoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Aberto)
		assert.Nil(t, resp.Caixa)
		assert.Equal(t, 2, resp.NumeroTerminal)
	})
	t.Run("unreachable", func(t *testing.T) {
		r := caixaRouter(&fakeCaixas{consulta: service.ConsultaCaixa{
			Situacao: service.CaixaInacessivel,
			Err:      &apierror.TransportError{Operacao: "caixa aberto", Err: fmt.Errorf("connection refused")},
		}})
		w := do(r, http.MethodGet, "/v1/caixa/aberto", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestCaixaAbrir(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		w := do(caixaRouter(&fakeCaixas{}), http.MethodPost, "/v1/caixa/abrir",
			map[string]any{"operadorNome": "Ana", "valorAbertura": 100})
		assert.Equal(t, http.StatusCreated, w.Code)
	})
	t.Run("missing opening float", func(t *testing.T) {
		w := do(caixaRouter(&fakeCaixas{}), http.MethodPost, "/v1/caixa/abrir",
			map[string]any{"operadorNome": "Ana"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
	t.Run("negative opening float", func(t *testing.T) {
		w := do(caixaRouter(&fakeCaixas{}), http.MethodPost, "/v1/caixa/abrir",
			map[string]any{"operadorNome": "Ana", "valorAbertura": -1})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
	t.Run("already open", func(t *testing.T) {
		w := do(caixaRouter(&fakeCaixas{abrirErr: apierror.ErrCaixaJaAberto}), http.MethodPost, "/v1/caixa/abrir",
			map[string]any{"operadorNome": "Ana", "valorAbertura": 0})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, apierror.ErrCaixaJaAberto.Error(), detail(t, w))
	})
}

func TestCaixaFechar(t *testing.T) {
	t.Run("defaults to the known open caixa", func(t *testing.T) {
		atual := &model.Caixa{ID: uuid.New(), Status: model.CaixaAberto}
		caixas := &fakeCaixas{atual: atual}
		w := do(caixaRouter(caixas), http.MethodPost, "/v1/caixa/fechar", map[string]any{"valorFechamento": 345})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, atual.ID, caixas.fechadoID)
	})
	t.Run("no open caixa", func(t *testing.T) {
		w := do(caixaRouter(&fakeCaixas{}), http.MethodPost, "/v1/caixa/fechar", map[string]any{"valorFechamento": 10})
		assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	})
	t.Run("invalid id", func(t *testing.T) {
		w := do(caixaRouter(&fakeCaixas{}), http.MethodPost, "/v1/caixa/fechar",
			map[string]any{"caixaId": "nope", "valorFechamento": 10})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestCaixaPreviaFechamento(t *testing.T) {
	atual := &model.Caixa{
		ID:            uuid.New(),
		Status:        model.CaixaAberto,
		ValorAbertura: decimal.NewFromInt(100),
		TotalDinheiro: decimal.NewFromInt(250),
	}
	encontrado := service.ConsultaCaixa{Situacao: service.CaixaEncontrado, Caixa: atual}
	w := do(caixaRouter(&fakeCaixas{consulta: encontrado}), http.MethodPost, "/v1/caixa/previa-fechamento",
		map[string]any{"valorContado": 345})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.PreviaFechamentoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.ValorEsperado.Equal(decimal.NewFromInt(350)))
	assert.True(t, resp.Diferenca.Equal(decimal.NewFromInt(-5)))
	assert.Equal(t, model.SituacaoFalta, resp.Situacao)

	t.Run("no open caixa", func(t *testing.T) {
		w := do(caixaRouter(&fakeCaixas{consulta: service.ConsultaCaixa{Situacao: service.CaixaNaoEncontrado}}),
			http.MethodPost, "/v1/caixa/previa-fechamento", map[string]any{"valorContado": 1})
		assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	})
	t.Run("agent unreachable", func(t *testing.T) {
		inacessivel := service.ConsultaCaixa{
			Situacao: service.CaixaInacessivel,
			Err:      &apierror.TransportError{Operacao: "caixa aberto", Err: fmt.Errorf("refused")},
		}
		w := do(caixaRouter(&fakeCaixas{consulta: inacessivel}),
			http.MethodPost, "/v1/caixa/previa-fechamento", map[string]any{"valorContado": 1})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

// ─── Carrinho ────────────────────────────────────────────────────────────────

func carrinhoRouter(svc *fakeCarrinhos) *gin.Engine {
	h := NewCarrinhoHandler(svc, &fakeTerminal{numero: 1})
	r := gin.New()
	r.GET("/v1/carrinho", h.Obter)
	r.DELETE("/v1/carrinho", h.Cancelar)
	r.POST("/v1/carrinho/itens", h.Adicionar)
	r.DELETE("/v1/carrinho/itens/:seq", h.Remover)
	r.PUT("/v1/carrinho/itens/:seq/desconto", h.AplicarDesconto)
	r.POST("/v1/carrinho/finalizar", h.Finalizar)
	return r
}

func TestCarrinhoAdicionar_DefaultsQuantityToOne(t *testing.T) {
	svc := &fakeCarrinhos{}
	w := do(carrinhoRouter(svc), http.MethodPost, "/v1/carrinho/itens", map[string]any{"codigoBarras": "7891000100103"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, svc.adicionado.Equal(decimal.NewFromInt(1)))

	var resp dto.CarrinhoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Itens, 1)
	assert.Equal(t, 1, resp.Itens[0].Sequencia)
	assert.True(t, resp.ValorLiquido.Equal(decimal.RequireFromString("12.90")))
}

func TestCarrinhoAdicionar_Errors(t *testing.T) {
	t.Run("zero quantity", func(t *testing.T) {
		w := do(carrinhoRouter(&fakeCarrinhos{}), http.MethodPost, "/v1/carrinho/itens",
			map[string]any{"codigoBarras": "789", "quantidade": 0})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
	t.Run("no open caixa", func(t *testing.T) {
		w := do(carrinhoRouter(&fakeCarrinhos{err: apierror.ErrCaixaNaoAberto}), http.MethodPost, "/v1/carrinho/itens",
			map[string]any{"codigoBarras": "789"})
		assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	})
	t.Run("unknown barcode", func(t *testing.T) {
		w := do(carrinhoRouter(&fakeCarrinhos{err: apierror.NaoEncontrado("produto", "789")}), http.MethodPost, "/v1/carrinho/itens",
			map[string]any{"codigoBarras": "789"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCarrinhoRemover(t *testing.T) {
	svc := &fakeCarrinhos{}
	r := carrinhoRouter(svc)
	do(r, http.MethodPost, "/v1/carrinho/itens", map[string]any{"codigoBarras": "1"})
	do(r, http.MethodPost, "/v1/carrinho/itens", map[string]any{"codigoBarras": "2"})

	t.Run("bad sequence", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(r, http.MethodDelete, "/v1/carrinho/itens/abc", nil).Code)
		assert.Equal(t, http.StatusBadRequest, do(r, http.MethodDelete, "/v1/carrinho/itens/0", nil).Code)
	})
	t.Run("missing sequence", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/v1/carrinho/itens/9", nil).Code)
	})
	t.Run("renumbers", func(t *testing.T) {
		w := do(r, http.MethodDelete, "/v1/carrinho/itens/1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.CarrinhoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Itens, 1)
		assert.Equal(t, 1, resp.Itens[0].Sequencia)
		assert.Equal(t, "2", resp.Itens[0].CodigoProduto)
	})
}

func TestCarrinhoDesconto_AboveSubtotal(t *testing.T) {
	svc := &fakeCarrinhos{}
	r := carrinhoRouter(svc)
	do(r, http.MethodPost, "/v1/carrinho/itens", map[string]any{"codigoBarras": "1"})

	w := do(r, http.MethodPut, "/v1/carrinho/itens/1/desconto", map[string]any{"desconto": 13})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCarrinhoFinalizar_RequiresPayments(t *testing.T) {
	w := do(carrinhoRouter(&fakeCarrinhos{}), http.MethodPost, "/v1/carrinho/finalizar", map[string]any{"pagamentos": []any{}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCarrinhoFinalizar_InFlight(t *testing.T) {
	svc := &fakeCarrinhos{err: fmt.Errorf("finalizar: %w", apierror.ErrOperacaoEmAndamento)}
	w := do(carrinhoRouter(svc), http.MethodPost, "/v1/carrinho/finalizar", map[string]any{
		"pagamentos": []any{map[string]any{"formaPagamentoId": uuid.NewString(), "valor": 10}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// ─── Sincronização / terminal ────────────────────────────────────────────────

func TestSincronizacao(t *testing.T) {
	newRouter := func(s *fakeSync) *gin.Engine {
		h := NewSincronizacaoHandler(s)
		r := gin.New()
		r.POST("/v1/sincronizacao", h.Tudo)
		r.POST("/v1/sincronizacao/:tipo", h.Recurso)
		return r
	}

	t.Run("resource", func(t *testing.T) {
		s := &fakeSync{}
		w := do(newRouter(s), http.MethodPost, "/v1/sincronizacao/vendas", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, model.RecursoVendas, s.tipo)
	})
	t.Run("blocked upstream", func(t *testing.T) {
		w := do(newRouter(&fakeSync{err: apierror.ErrSincronizacaoBloqueada}), http.MethodPost, "/v1/sincronizacao", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
	t.Run("in progress", func(t *testing.T) {
		w := do(newRouter(&fakeSync{err: apierror.ErrSincronizacaoEmAndamento}), http.MethodPost, "/v1/sincronizacao/produtos", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
	t.Run("agent refused", func(t *testing.T) {
		s := &fakeSync{err: &apierror.RemoteError{Operacao: "sincronizar produtos", Mensagem: "API offline"}}
		w := do(newRouter(s), http.MethodPost, "/v1/sincronizacao/produtos", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestTerminal(t *testing.T) {
	term := &fakeTerminal{numero: 1}
	h := NewStatusHandler(nil, term)
	r := gin.New()
	r.GET("/v1/terminal", h.Terminal)
	r.PUT("/v1/terminal", h.DefinirTerminal)

	assert.Equal(t, http.StatusUnprocessableEntity, do(r, http.MethodPut, "/v1/terminal", map[string]any{"numeroTerminal": 0}).Code)

	w := do(r, http.MethodPut, "/v1/terminal", map[string]any{"numeroTerminal": 7})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, term.numero)
	assert.JSONEq(t, `{"numeroTerminal":7}`, do(r, http.MethodGet, "/v1/terminal", nil).Body.String())
}
