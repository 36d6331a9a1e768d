package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"solispdv/internal/apierror"
	"solispdv/internal/model"
	"solispdv/internal/repository"
)

const (
	minTermoBusca = 3
	takePadrao    = 50
	takeMaximo    = 100
)

type ProdutoService interface {
	// BuscarPorCodigoBarras is cache-first; a miss asks the agent.
	BuscarPorCodigoBarras(ctx context.Context, codigo string) (*model.Produto, error)
	Buscar(ctx context.Context, termo string) ([]model.Produto, error)
	Listar(ctx context.Context, skip, take int) ([]model.Produto, error)
	LimparCache(ctx context.Context)
}

type produtoService struct {
	agente ProdutoAgente
	cache  repository.ProdutoCache
}

func NewProdutoService(agente ProdutoAgente, cache repository.ProdutoCache) ProdutoService {
	return &produtoService{agente: agente, cache: cache}
}

func (s *produtoService) BuscarPorCodigoBarras(ctx context.Context, codigo string) (*model.Produto, error) {
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return nil, apierror.Invalido("codigoBarras", "informe o código de barras")
	}
	if p, ok := s.cache.Get(ctx, codigo); ok {
		return p, nil
	}
	p, err := s.agente.ProdutoPorCodigoBarras(ctx, codigo)
	if err != nil {
		return nil, err
	}
	if p.CodigoBarras == "" {
		p.CodigoBarras = codigo
	}
	s.cache.Set(ctx, p)
	return p, nil
}

func (s *produtoService) Buscar(ctx context.Context, termo string) ([]model.Produto, error) {
	termo = strings.TrimSpace(termo)
	if utf8.RuneCountInString(termo) < minTermoBusca {
		return nil, apierror.Invalido("termo", "digite ao menos 3 caracteres")
	}
	return s.agente.BuscarProdutos(ctx, termo)
}

// Listar clamps take to 1..100 (default 50) and skip to ≥ 0.
func (s *produtoService) Listar(ctx context.Context, skip, take int) ([]model.Produto, error) {
	if skip < 0 {
		skip = 0
	}
	switch {
	case take <= 0:
		take = takePadrao
	case take > takeMaximo:
		take = takeMaximo
	}
	return s.agente.ListarProdutos(ctx, skip, take)
}

func (s *produtoService) LimparCache(ctx context.Context) { s.cache.Flush(ctx) }
