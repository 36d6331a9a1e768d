package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"solispdv/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EstadoLocalRepository holds the small amount of state the terminal keeps
// across restarts. Everything else is owned by the agent.
type EstadoLocalRepository interface {
	CarregarSincronizacoes(ctx context.Context) (map[model.TipoRecurso]model.RegistroSincronizacao, error)
	SalvarSincronizacao(ctx context.Context, tipo model.TipoRecurso, quando time.Time, total *int) error

	Preferencia(ctx context.Context, chave string) (string, bool, error)
	SalvarPreferencia(ctx context.Context, chave, valor string) error

	CaixaAberto(ctx context.Context, numeroTerminal int) (*model.Caixa, error)
	SalvarCaixaAberto(ctx context.Context, caixa *model.Caixa) error
	RemoverCaixaAberto(ctx context.Context, numeroTerminal int) error
}

type estadoLocalRepo struct{ db *gorm.DB }

func NewEstadoLocalRepository(db *gorm.DB) EstadoLocalRepository { return &estadoLocalRepo{db: db} }

func (r *estadoLocalRepo) CarregarSincronizacoes(ctx context.Context) (map[model.TipoRecurso]model.RegistroSincronizacao, error) {
	var rows []model.RegistroSincronizacao
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[model.TipoRecurso]model.RegistroSincronizacao, len(rows))
	for _, row := range rows {
		out[model.TipoRecurso(row.Tipo)] = row
	}
	return out, nil
}

func (r *estadoLocalRepo) SalvarSincronizacao(ctx context.Context, tipo model.TipoRecurso, quando time.Time, total *int) error {
	row := model.RegistroSincronizacao{Tipo: string(tipo), UltimaSincronizacao: quando, Total: total}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tipo"}},
		DoUpdates: clause.AssignmentColumns([]string{"ultima_sincronizacao", "total", "updated_at"}),
	}).Create(&row).Error
}

func (r *estadoLocalRepo) Preferencia(ctx context.Context, chave string) (string, bool, error) {
	var p model.Preferencia
	err := r.db.WithContext(ctx).First(&p, "chave = ?", chave).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return p.Valor, true, nil
}

func (r *estadoLocalRepo) SalvarPreferencia(ctx context.Context, chave, valor string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chave"}},
		DoUpdates: clause.AssignmentColumns([]string{"valor", "updated_at"}),
	}).Create(&model.Preferencia{Chave: chave, Valor: valor}).Error
}

// CaixaAberto returns the last known open caixa of a terminal, or nil.
func (r *estadoLocalRepo) CaixaAberto(ctx context.Context, numeroTerminal int) (*model.Caixa, error) {
	var snap model.CaixaSnapshot
	err := r.db.WithContext(ctx).First(&snap, "numero_terminal = ?", numeroTerminal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var caixa model.Caixa
	if err := json.Unmarshal([]byte(snap.Dados), &caixa); err != nil {
		return nil, fmt.Errorf("snapshot do caixa corrompido: %w", err)
	}
	return &caixa, nil
}

func (r *estadoLocalRepo) SalvarCaixaAberto(ctx context.Context, caixa *model.Caixa) error {
	dados, err := json.Marshal(caixa)
	if err != nil {
		return err
	}
	snap := model.CaixaSnapshot{
		NumeroTerminal: caixa.NumeroTerminal,
		CaixaID:        caixa.ID.String(),
		Dados:          string(dados),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "numero_terminal"}},
		DoUpdates: clause.AssignmentColumns([]string{"caixa_id", "dados", "updated_at"}),
	}).Create(&snap).Error
}

func (r *estadoLocalRepo) RemoverCaixaAberto(ctx context.Context, numeroTerminal int) error {
	return r.db.WithContext(ctx).Delete(&model.CaixaSnapshot{}, "numero_terminal = ?", numeroTerminal).Error
}
