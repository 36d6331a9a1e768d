package infra

// pdf.go — closing report (relatório de fechamento) of a caixa using go-pdf/fpdf.
// Receipt-width page with:
//   - company header (when the profile was synchronized)
//   - session info: terminal, operator, opening and closing time
//   - totals per payment type
//   - cash reconciliation: esperado, contado, diferença
//
// The output file is saved to storagePath/fechamento_{terminal}_{caixaID}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"solispdv/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GerarRelatorioFechamentoPDF renders the closing report of a closed Caixa.
// empresa may be nil. Returns the path of the generated file.
func GerarRelatorioFechamentoPDF(caixa *model.Caixa, empresa *model.Empresa, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("fechamento_%d_%s.pdf", caixa.NumeroTerminal, caixa.ID)
	filePath := filepath.Join(storagePath, fileName)

	// 80mm thermal roll, tall enough for the whole report on one page
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: 160},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8
	labelW := contentW * 0.6
	valueW := contentW - labelW

	linha := func(label string, valor decimal.Decimal) {
		pdf.CellFormat(labelW, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 5, "R$ "+valor.StringFixed(2), "", 1, "R", false, 0, "")
	}
	separador := func() {
		pdf.Ln(1)
		pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
		pdf.Ln(2)
	}

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	if empresa != nil && empresa.NomeFantasia != "" {
		pdf.CellFormat(contentW, 6, tr(empresa.NomeFantasia), "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(contentW, 4, "CNPJ "+empresa.CNPJ, "", 1, "C", false, 0, "")
	} else {
		pdf.CellFormat(contentW, 6, "Solis PDV", "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 6, tr("Relatório de Fechamento de Caixa"), "", 1, "C", false, 0, "")
	separador()

	// ── Session info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, fmt.Sprintf("Terminal: %d", caixa.NumeroTerminal), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Operador: "+caixa.OperadorNome), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Abertura: "+caixa.DataAbertura.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if caixa.DataFechamento != nil && !caixa.DataFechamento.IsZero() {
		pdf.CellFormat(contentW, 4, "Fechamento: "+caixa.DataFechamento.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 4, fmt.Sprintf("Vendas: %d", caixa.QuantidadeVendas), "", 1, "L", false, 0, "")
	separador()

	// ── Totals by payment type ───────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	linha("Dinheiro", caixa.TotalDinheiro)
	linha("Débito", caixa.TotalDebito)
	linha("Crédito", caixa.TotalCredito)
	linha("PIX", caixa.TotalPix)
	linha("Outros", caixa.TotalOutros)
	pdf.SetFont("Helvetica", "B", 8)
	linha("Total vendido", caixa.TotalVendas)
	separador()

	// ── Cash reconciliation ──────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	linha("Valor de abertura", caixa.ValorAbertura)
	linha("Esperado em dinheiro", caixa.ValorEsperado())
	contado := decimal.Zero
	if caixa.ValorFechamento != nil {
		contado = *caixa.ValorFechamento
	}
	linha("Contado", contado)
	diferenca := caixa.DiferencaPara(contado)
	pdf.SetFont("Helvetica", "B", 9)
	linha("Diferença ("+model.ClassificarDiferenca(diferenca)+")", diferenca)

	if caixa.Observacoes != nil && *caixa.Observacoes != "" {
		separador()
		pdf.SetFont("Helvetica", "I", 7)
		pdf.MultiCell(contentW, 4, tr(*caixa.Observacoes), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
