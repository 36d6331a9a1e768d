package service

import (
	"context"
	"sync"
	"time"

	"solispdv/internal/apierror"
	"solispdv/internal/dto"
	"solispdv/internal/model"

	"github.com/google/uuid"
)

// ── agent fakes ──────────────────────────────────────────────────────────────

type fakeStatusAgente struct {
	mu     sync.Mutex
	estado *model.EstadoConexao
	err    error
	calls  int
}

func (f *fakeStatusAgente) Status(context.Context) (*model.EstadoConexao, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.estado
	return &cp, nil
}

func estadoOnline(agora time.Time) *model.EstadoConexao {
	ts := model.NovoInstante(agora)
	return &model.EstadoConexao{
		Agente:    model.StatusConexao{Nome: "Agente PDV", Conectado: true, UltimaVerificacao: ts},
		API:       model.StatusConexao{Nome: "API Solis", Conectado: true, StatusCode: 200, UltimaVerificacao: ts},
		Timestamp: ts,
	}
}

type fakeCaixaAgente struct {
	mu           sync.Mutex
	aberto       *model.Caixa
	consultaErr  error
	abrirErr     error
	fecharErr    error
	abrirCalls   int
	fecharCalls  int
	consultas    int
	fecharGate   chan struct{}
	fecharEntrou chan struct{}
}

func (f *fakeCaixaAgente) AbrirCaixa(_ context.Context, in dto.AbrirCaixaDto) (*model.Caixa, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abrirCalls++
	if f.abrirErr != nil {
		return nil, f.abrirErr
	}
	f.aberto = &model.Caixa{
		ID:             uuid.New(),
		NumeroTerminal: in.NumeroTerminal,
		OperadorNome:   in.OperadorNome,
		Status:         model.CaixaAberto,
		ValorAbertura:  in.ValorAbertura,
	}
	cp := *f.aberto
	return &cp, nil
}

func (f *fakeCaixaAgente) FecharCaixa(_ context.Context, in dto.FecharCaixaDto) (*model.Caixa, error) {
	if f.fecharEntrou != nil {
		f.fecharEntrou <- struct{}{}
	}
	if f.fecharGate != nil {
		<-f.fecharGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fecharCalls++
	if f.fecharErr != nil {
		return nil, f.fecharErr
	}
	fechado := model.Caixa{ID: in.CaixaID, Status: model.CaixaFechado, ValorFechamento: &in.ValorFechamento}
	if f.aberto != nil && f.aberto.ID == in.CaixaID {
		fechado = *f.aberto
		fechado.Status = model.CaixaFechado
		fechado.ValorFechamento = &in.ValorFechamento
		f.aberto = nil
	}
	return &fechado, nil
}

func (f *fakeCaixaAgente) CaixaAberto(_ context.Context, numeroTerminal int) (*model.Caixa, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consultas++
	if f.consultaErr != nil {
		return nil, f.consultaErr
	}
	if f.aberto == nil || f.aberto.NumeroTerminal != numeroTerminal {
		return nil, nil
	}
	cp := *f.aberto
	return &cp, nil
}

type fakeSyncAgente struct {
	mu    sync.Mutex
	erros map[model.TipoRecurso]error
	resps map[model.TipoRecurso]*dto.SyncResponse
	calls []model.TipoRecurso
	// gate, when set, blocks every call until closed; entrou signals entry.
	gate   chan struct{}
	entrou chan struct{}
}

func (f *fakeSyncAgente) Sincronizar(_ context.Context, tipo model.TipoRecurso) (*dto.SyncResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, tipo)
	err := f.erros[tipo]
	resp := f.resps[tipo]
	f.mu.Unlock()

	if f.entrou != nil {
		f.entrou <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if err != nil {
		return nil, err
	}
	if resp != nil {
		return resp, nil
	}
	total := 3
	return &dto.SyncResponse{Sucesso: true, Mensagem: "ok", Total: &total}, nil
}

func (f *fakeSyncAgente) chamadas() []model.TipoRecurso {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.TipoRecurso(nil), f.calls...)
}

type fakeProdutoAgente struct {
	produtos map[string]model.Produto
	buscas   int
	lookups  int
	skip     int
	take     int
}

func (f *fakeProdutoAgente) ProdutoPorCodigoBarras(_ context.Context, codigo string) (*model.Produto, error) {
	f.lookups++
	p, ok := f.produtos[codigo]
	if !ok {
		return nil, apierror.NaoEncontrado("produto", codigo)
	}
	return &p, nil
}

func (f *fakeProdutoAgente) BuscarProdutos(context.Context, string) ([]model.Produto, error) {
	f.buscas++
	return []model.Produto{}, nil
}

func (f *fakeProdutoAgente) ListarProdutos(_ context.Context, skip, take int) ([]model.Produto, error) {
	f.skip, f.take = skip, take
	return []model.Produto{}, nil
}

type fakeVendaAgente struct {
	criadas      []dto.CriarVendaDto
	finalizadas  []dto.FinalizarVendaDto
	finalizadoID []uuid.UUID
	canceladas   []uuid.UUID
	criarErr     error
	finalizarErr error
	cancelarErr  error
}

func (f *fakeVendaAgente) CriarVenda(_ context.Context, in dto.CriarVendaDto) (*model.Venda, error) {
	f.criadas = append(f.criadas, in)
	if f.criarErr != nil {
		return nil, f.criarErr
	}
	return &model.Venda{ID: uuid.New(), NumeroCupom: int64(len(f.criadas)), CaixaID: in.CaixaID, ValorLiquido: in.ValorLiquido}, nil
}

func (f *fakeVendaAgente) FinalizarVenda(_ context.Context, id uuid.UUID, in dto.FinalizarVendaDto) error {
	f.finalizadas = append(f.finalizadas, in)
	f.finalizadoID = append(f.finalizadoID, id)
	return f.finalizarErr
}

func (f *fakeVendaAgente) CancelarVenda(_ context.Context, id uuid.UUID, _ string) error {
	if f.cancelarErr != nil {
		return f.cancelarErr
	}
	f.canceladas = append(f.canceladas, id)
	return nil
}

// ── local fakes ──────────────────────────────────────────────────────────────

type fakeConexao struct {
	mu       sync.Mutex
	upstream bool
	checks   int
}

func (f *fakeConexao) Verificar(context.Context) model.EstadoConexao { return f.Atual() }

func (f *fakeConexao) Atual() model.EstadoConexao {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := model.EstadoDesconectado(time.Now(), "")
	e.Agente.Conectado = true
	e.API.Conectado = f.upstream
	return e
}

func (f *fakeConexao) AgenteDisponivel(context.Context) bool { return true }

func (f *fakeConexao) UpstreamDisponivel(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	return f.upstream
}

type fakeRepo struct {
	mu     sync.Mutex
	syncs  map[model.TipoRecurso]model.RegistroSincronizacao
	prefs  map[string]string
	caixas map[int]model.Caixa
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		syncs:  map[model.TipoRecurso]model.RegistroSincronizacao{},
		prefs:  map[string]string{},
		caixas: map[int]model.Caixa{},
	}
}

func (r *fakeRepo) CarregarSincronizacoes(context.Context) (map[model.TipoRecurso]model.RegistroSincronizacao, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.TipoRecurso]model.RegistroSincronizacao{}
	for k, v := range r.syncs {
		out[k] = v
	}
	return out, nil
}

func (r *fakeRepo) SalvarSincronizacao(_ context.Context, tipo model.TipoRecurso, quando time.Time, total *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncs[tipo] = model.RegistroSincronizacao{Tipo: string(tipo), UltimaSincronizacao: quando, Total: total}
	return nil
}

func (r *fakeRepo) Preferencia(_ context.Context, chave string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.prefs[chave]
	return v, ok, nil
}

func (r *fakeRepo) SalvarPreferencia(_ context.Context, chave, valor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[chave] = valor
	return nil
}

func (r *fakeRepo) CaixaAberto(_ context.Context, numeroTerminal int) (*model.Caixa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.caixas[numeroTerminal]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeRepo) SalvarCaixaAberto(_ context.Context, caixa *model.Caixa) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caixas[caixa.NumeroTerminal] = *caixa
	return nil
}

func (r *fakeRepo) RemoverCaixaAberto(_ context.Context, numeroTerminal int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.caixas, numeroTerminal)
	return nil
}

type fakeCache struct {
	itens   map[string]model.Produto
	flushes int
}

func newFakeCache() *fakeCache { return &fakeCache{itens: map[string]model.Produto{}} }

func (c *fakeCache) Get(_ context.Context, codigo string) (*model.Produto, bool) {
	p, ok := c.itens[codigo]
	return &p, ok
}

func (c *fakeCache) Set(_ context.Context, p *model.Produto) { c.itens[p.CodigoBarras] = *p }

func (c *fakeCache) Flush(context.Context) {
	c.flushes++
	c.itens = map[string]model.Produto{}
}

type fakeRelatorios struct {
	mu     sync.Mutex
	caixas []model.Caixa
}

func (f *fakeRelatorios) DespacharRelatorio(caixa model.Caixa) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.caixas = append(f.caixas, caixa)
}
