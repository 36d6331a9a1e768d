package model

import "time"

// RegistroSincronizacao persists the last successful sync of a resource type.
// A failed attempt never touches this row.
type RegistroSincronizacao struct {
	Tipo                string    `gorm:"type:varchar(40);primaryKey"`
	UltimaSincronizacao time.Time `gorm:"not null"`
	Total               *int
	UpdatedAt           time.Time
}

func (RegistroSincronizacao) TableName() string { return "registros_sincronizacao" }

// Preferencia is a generic durable key/value setting of the terminal
// (e.g. the selected terminal number).
type Preferencia struct {
	Chave     string `gorm:"type:varchar(60);primaryKey"`
	Valor     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (Preferencia) TableName() string { return "preferencias" }

// CaixaSnapshot caches the open Caixa of a terminal as JSON so the terminal
// can show it immediately after a restart. The agent holds the authoritative copy.
type CaixaSnapshot struct {
	NumeroTerminal int    `gorm:"primaryKey;autoIncrement:false"`
	CaixaID        string `gorm:"type:varchar(36);not null"`
	Dados          string `gorm:"type:text;not null"`
	UpdatedAt      time.Time
}

func (CaixaSnapshot) TableName() string { return "caixas_abertos" }
