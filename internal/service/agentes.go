package service

import (
	"context"

	"solispdv/internal/dto"
	"solispdv/internal/model"

	"github.com/google/uuid"
)

// Collaborator interfaces over the Agente PDV. infra.AgenteClient implements
// all of them; tests use in-memory fakes.

type StatusAgente interface {
	Status(ctx context.Context) (*model.EstadoConexao, error)
}

type CaixaAgente interface {
	AbrirCaixa(ctx context.Context, in dto.AbrirCaixaDto) (*model.Caixa, error)
	FecharCaixa(ctx context.Context, in dto.FecharCaixaDto) (*model.Caixa, error)
	CaixaAberto(ctx context.Context, numeroTerminal int) (*model.Caixa, error)
}

type ProdutoAgente interface {
	ProdutoPorCodigoBarras(ctx context.Context, codigo string) (*model.Produto, error)
	BuscarProdutos(ctx context.Context, termo string) ([]model.Produto, error)
	ListarProdutos(ctx context.Context, skip, take int) ([]model.Produto, error)
}

type CatalogoAgente interface {
	FormasPagamentoAtivas(ctx context.Context) ([]model.FormaPagamento, error)
	Empresa(ctx context.Context) (*model.Empresa, error)
	Health(ctx context.Context) (*dto.HealthCheck, error)
}

type VendaAgente interface {
	CriarVenda(ctx context.Context, in dto.CriarVendaDto) (*model.Venda, error)
	FinalizarVenda(ctx context.Context, vendaID uuid.UUID, in dto.FinalizarVendaDto) error
	CancelarVenda(ctx context.Context, vendaID uuid.UUID, motivo string) error
}

type SyncAgente interface {
	Sincronizar(ctx context.Context, tipo model.TipoRecurso) (*dto.SyncResponse, error)
}

// RelatorioDespachante receives a closed caixa for report generation.
// Implemented by the background report worker.
type RelatorioDespachante interface {
	DespacharRelatorio(caixa model.Caixa)
}
