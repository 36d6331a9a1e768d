package model

// Empresa is the company / tax profile used on fiscal coupons.
type Empresa struct {
	CNPJ              string    `json:"cnpj"`
	InscricaoEstadual string    `json:"inscricaoEstadual,omitempty"`
	RazaoSocial       string    `json:"razaoSocial"`
	NomeFantasia      string    `json:"nomeFantasia"`
	RegimeTributario  string    `json:"regimeTributario,omitempty"`
	Telefone          string    `json:"telefone,omitempty"`
	Email             string    `json:"email,omitempty"`
	Logradouro        string    `json:"logradouro,omitempty"`
	Numero            string    `json:"numero,omitempty"`
	Complemento       string    `json:"complemento,omitempty"`
	Bairro            string    `json:"bairro,omitempty"`
	Cidade            string    `json:"cidade,omitempty"`
	UF                string    `json:"uf,omitempty"`
	CEP               string    `json:"cep,omitempty"`
	SincronizadoEm    *Instante `json:"sincronizadoEm,omitempty"`
}
