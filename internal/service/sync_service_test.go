package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"solispdv/internal/apierror"
	"solispdv/internal/dto"
	"solispdv/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	svc     *syncService
	agente  *fakeSyncAgente
	conexao *fakeConexao
	repo    *fakeRepo
	cache   *fakeCache
	agora   time.Time
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		agente:  &fakeSyncAgente{erros: map[model.TipoRecurso]error{}, resps: map[model.TipoRecurso]*dto.SyncResponse{}},
		conexao: &fakeConexao{upstream: true},
		repo:    newFakeRepo(),
		cache:   newFakeCache(),
		agora:   time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	svc, err := newSyncService(context.Background(), f.agente, f.conexao, f.repo, f.cache, func() time.Time { return f.agora })
	require.NoError(t, err)
	f.svc = svc
	return f
}

func statusDe(svc SyncService, tipo model.TipoRecurso) model.StatusSincronizacao {
	for _, st := range svc.Status() {
		if st.Tipo == tipo {
			return st
		}
	}
	return model.StatusSincronizacao{}
}

func TestSincronizarTudoIsolatesFailures(t *testing.T) {
	f := newSyncFixture(t)
	f.agente.erros[model.RecursoProdutos] = &apierror.TransportError{Operacao: "sync", Err: errors.New("refused")}

	resultados, err := f.svc.SincronizarTudo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.OrdemSincronizacao, f.agente.chamadas())
	require.Len(t, resultados, 4)
	sucessos := 0
	for i, r := range resultados {
		assert.Equal(t, model.OrdemSincronizacao[i], r.Tipo)
		if r.Sucesso {
			sucessos++
		}
	}
	assert.Equal(t, 3, sucessos)
	assert.False(t, resultados[0].Sucesso)
	assert.NotEmpty(t, resultados[0].Erros)
	assert.Equal(t, model.SyncError, statusDe(f.svc, model.RecursoProdutos).Status)
	assert.Equal(t, model.SyncSuccess, statusDe(f.svc, model.RecursoVendas).Status)
	assert.Equal(t, 1, f.conexao.checks)
}

func TestFailedSyncKeepsPreviousTimestamp(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	primeira := f.agora

	_, err := f.svc.SincronizarRecurso(ctx, model.RecursoEmpresas)
	require.NoError(t, err)
	require.NotNil(t, statusDe(f.svc, model.RecursoEmpresas).UltimaSincronizacao)

	f.agora = primeira.Add(time.Hour)
	f.agente.erros[model.RecursoEmpresas] = &apierror.RemoteError{Operacao: "sync", StatusCode: 500, Mensagem: "erro"}
	res, err := f.svc.SincronizarRecurso(ctx, model.RecursoEmpresas)
	require.Error(t, err)
	assert.False(t, res.Sucesso)

	st := statusDe(f.svc, model.RecursoEmpresas)
	assert.Equal(t, model.SyncError, st.Status)
	assert.NotEmpty(t, st.Erro)
	assert.True(t, st.UltimaSincronizacao.Equal(primeira))
	assert.True(t, f.repo.syncs[model.RecursoEmpresas].UltimaSincronizacao.Equal(primeira))

	delete(f.agente.erros, model.RecursoEmpresas)
	f.agora = primeira.Add(2 * time.Hour)
	_, err = f.svc.SincronizarRecurso(ctx, model.RecursoEmpresas)
	require.NoError(t, err)
	st = statusDe(f.svc, model.RecursoEmpresas)
	assert.True(t, st.UltimaSincronizacao.Equal(f.agora))
	assert.Empty(t, st.Erro)
	assert.True(t, f.repo.syncs[model.RecursoEmpresas].UltimaSincronizacao.Equal(f.agora))
}

func TestSucessoFalseIsAFailure(t *testing.T) {
	f := newSyncFixture(t)
	f.agente.resps[model.RecursoFormasPagamento] = &dto.SyncResponse{Sucesso: false, Mensagem: "API fora do ar", Erros: []string{"timeout"}}

	res, err := f.svc.SincronizarRecurso(context.Background(), model.RecursoFormasPagamento)
	var re *apierror.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "API fora do ar", re.Mensagem)
	assert.False(t, res.Sucesso)
	assert.Contains(t, res.Erros, "timeout")
	assert.Nil(t, statusDe(f.svc, model.RecursoFormasPagamento).UltimaSincronizacao)
}

func TestDoubleTriggerMakesOneCall(t *testing.T) {
	f := newSyncFixture(t)
	f.agente.gate = make(chan struct{})
	f.agente.entrou = make(chan struct{}, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	var primeiroErr error
	go func() {
		defer wg.Done()
		_, primeiroErr = f.svc.SincronizarRecurso(context.Background(), model.RecursoVendas)
	}()
	<-f.agente.entrou

	assert.Equal(t, model.SyncSyncing, statusDe(f.svc, model.RecursoVendas).Status)
	_, err := f.svc.SincronizarRecurso(context.Background(), model.RecursoVendas)
	assert.ErrorIs(t, err, apierror.ErrSincronizacaoEmAndamento)

	close(f.agente.gate)
	wg.Wait()
	require.NoError(t, primeiroErr)
	assert.Equal(t, []model.TipoRecurso{model.RecursoVendas}, f.agente.chamadas())
}

func TestSincronizarTudoIsNotReentrant(t *testing.T) {
	f := newSyncFixture(t)
	f.agente.gate = make(chan struct{})
	f.agente.entrou = make(chan struct{}, 4)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.svc.SincronizarTudo(context.Background())
	}()
	<-f.agente.entrou

	_, err := f.svc.SincronizarTudo(context.Background())
	assert.ErrorIs(t, err, apierror.ErrSincronizacaoEmAndamento)

	close(f.agente.gate)
	<-done
	assert.Len(t, f.agente.chamadas(), 4)
}

func TestUpstreamDownBlocksWithoutStateChange(t *testing.T) {
	f := newSyncFixture(t)
	f.conexao.upstream = false

	_, err := f.svc.SincronizarRecurso(context.Background(), model.RecursoProdutos)
	assert.ErrorIs(t, err, apierror.ErrSincronizacaoBloqueada)

	_, err = f.svc.SincronizarTudo(context.Background())
	assert.ErrorIs(t, err, apierror.ErrSincronizacaoBloqueada)

	assert.Empty(t, f.agente.chamadas())
	for _, st := range f.svc.Status() {
		assert.Equal(t, model.SyncIdle, st.Status)
	}
}

func TestInvalidTipoIsValidationError(t *testing.T) {
	f := newSyncFixture(t)
	_, err := f.svc.SincronizarRecurso(context.Background(), "clientes")
	assert.ErrorAs(t, err, new(*apierror.ValidationError))
	assert.Empty(t, f.agente.chamadas())
}

func TestProdutosSyncFlushesCache(t *testing.T) {
	f := newSyncFixture(t)
	f.cache.itens["789"] = model.Produto{CodigoBarras: "789"}

	_, err := f.svc.SincronizarRecurso(context.Background(), model.RecursoEmpresas)
	require.NoError(t, err)
	assert.Equal(t, 0, f.cache.flushes)

	_, err = f.svc.SincronizarRecurso(context.Background(), model.RecursoProdutos)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.flushes)
	assert.Empty(t, f.cache.itens)
}

func TestTimestampsRestoredAtConstruction(t *testing.T) {
	repo := newFakeRepo()
	ontem := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	total := 42
	require.NoError(t, repo.SalvarSincronizacao(context.Background(), model.RecursoProdutos, ontem, &total))

	svc, err := NewSyncService(context.Background(), &fakeSyncAgente{}, &fakeConexao{upstream: true}, repo, newFakeCache())
	require.NoError(t, err)

	st := statusDe(svc, model.RecursoProdutos)
	require.NotNil(t, st.UltimaSincronizacao)
	assert.True(t, st.UltimaSincronizacao.Equal(ontem))
	assert.Equal(t, model.SyncIdle, st.Status)
	require.NotNil(t, st.Total)
	assert.Equal(t, 42, *st.Total)
	assert.Nil(t, statusDe(svc, model.RecursoVendas).UltimaSincronizacao)
}
