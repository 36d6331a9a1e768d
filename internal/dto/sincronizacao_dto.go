package dto

import "solispdv/internal/model"

type SincronizacaoStatusResponse struct {
	Recursos []model.StatusSincronizacao `json:"recursos"`
}

type SincronizarTudoResponse struct {
	Resultados []model.ResultadoSincronizacao `json:"resultados"`
}
