package dto

// ProdutoFilter is bound from the query string of GET /v1/produtos.
type ProdutoFilter struct {
	Skip int `form:"skip,default=0"  validate:"min=0"`
	Take int `form:"take,default=50"`
}

type BuscarProdutoFilter struct {
	Termo string `form:"termo"`
}
