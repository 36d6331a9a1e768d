package worker

// relatorio_worker.go
// Renders the closing report PDF of a caixa after it was closed and, when a
// manager e-mail is configured, queues the e-mail with the PDF attached.

import (
	"context"
	"encoding/json"
	"fmt"

	"solispdv/internal/model"

	"github.com/rs/zerolog/log"
)

const JobRelatorio = "relatorio_fechamento"

// EmpresaProvider yields the last known company profile for the report header.
type EmpresaProvider interface {
	UltimaEmpresa() *model.Empresa
}

// GeradorPDF renders the report and returns the file path. infra.GerarRelatorioFechamentoPDF.
type GeradorPDF func(caixa *model.Caixa, empresa *model.Empresa, storagePath string) (string, error)

type RelatorioConfig struct {
	Dispatcher  *Dispatcher
	Empresas    EmpresaProvider
	Gerar       GeradorPDF
	StoragePath string
	EmailGestor string // empty disables e-mail
}

// RelatorioWorker is both the service-side despachante and the job handler.
type RelatorioWorker struct {
	cfg RelatorioConfig
}

// NewRelatorioWorker registers the report and e-mail jobs on the dispatcher.
func NewRelatorioWorker(cfg RelatorioConfig, email *EmailWorker) *RelatorioWorker {
	w := &RelatorioWorker{cfg: cfg}
	cfg.Dispatcher.Register(JobRelatorio, QueueRelatorio, w.Process)
	if email != nil {
		cfg.Dispatcher.Register(JobEmail, QueueEmail, email.Process)
	}
	return w
}

// DespacharRelatorio queues the report; it never blocks the close request.
func (w *RelatorioWorker) DespacharRelatorio(caixa model.Caixa) {
	if err := w.cfg.Dispatcher.Enqueue(context.Background(), JobRelatorio, caixa); err != nil {
		log.Error().Err(err).Str("caixa_id", caixa.ID.String()).Msg("relatorio_worker: failed to enqueue")
	}
}

func (w *RelatorioWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var caixa model.Caixa
	if err := json.Unmarshal(raw, &caixa); err != nil {
		log.Error().Err(err).Msg("relatorio_worker: invalid payload")
		return nil
	}

	var empresa *model.Empresa
	if w.cfg.Empresas != nil {
		empresa = w.cfg.Empresas.UltimaEmpresa()
	}
	path, err := w.cfg.Gerar(&caixa, empresa, w.cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("relatorio_worker: %w", err)
	}
	log.Info().Str("caixa_id", caixa.ID.String()).Str("path", path).Msg("relatorio_worker: relatório gerado")

	if w.cfg.EmailGestor == "" {
		return nil
	}
	return w.cfg.Dispatcher.Enqueue(ctx, JobEmail, EmailJobPayload{
		ToEmail: w.cfg.EmailGestor,
		Subject: fmt.Sprintf("Fechamento de caixa — terminal %d", caixa.NumeroTerminal),
		Body: fmt.Sprintf("Caixa do operador %s fechado. Vendas: %d. Total: R$ %s.",
			caixa.OperadorNome, caixa.QuantidadeVendas, caixa.TotalVendas.StringFixed(2)),
		PDFPath: path,
	})
}
