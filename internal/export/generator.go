// Package export renders progress statements as PDF documents.
package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/mlevasseur/batisuivi-backend/internal/progress"
	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
)

// Statement bundles everything a rendered progress statement needs.
type Statement struct {
	Site     models.Site
	Contract models.Contract
	Detail   progress.StateDetail
}

// Generator renders a progress statement PDF. CompanyName and FooterNote
// come from configuration and appear on every document.
type Generator struct {
	CompanyName string
	FooterNote  string
}

// NewGenerator builds a statement generator.
func NewGenerator(companyName, footerNote string) *Generator {
	return &Generator{CompanyName: companyName, FooterNote: footerNote}
}

// Generate renders the statement to PDF bytes.
func (g *Generator) Generate(stmt Statement) ([]byte, error) {
	state := stmt.Detail.State

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Etat d'avancement n°%d", state.SequenceNumber), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Etat d'avancement n°%d", state.SequenceNumber))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("%s - %s", stmt.Site.ClientName, stmt.Site.Name))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Marche %s du %s", stmt.Contract.Reference, state.StateDate.Format("02/01/2006")))
	pdf.Ln(6)
	if state.PeriodLabel != nil && *state.PeriodLabel != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Periode: %s", *state.PeriodLabel))
		pdf.Ln(6)
	}
	if !state.Finalized {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, "Document provisoire")
		pdf.Ln(6)
	}

	pdf.Ln(4)
	g.lineTable(pdf, state.Lines)

	if len(state.Amendments) > 0 {
		pdf.Ln(4)
		g.amendmentTable(pdf, state.Amendments)
	}

	totals := stmt.Detail.Totals
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Avancement de la periode HT: %s", money(totals.CurrentAmount)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Avancement cumule HT: %s", money(totals.CumulativeAmount)))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 5, g.CompanyName)
	if g.FooterNote != "" {
		pdf.Ln(5)
		pdf.Cell(0, 5, g.FooterNote)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render progress statement: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) lineTable(pdf *gofpdf.Fpdf, lines []models.ProgressLine) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(72, 7, "Designation")
	pdf.Cell(12, 7, "U")
	pdf.Cell(20, 7, "PU HT")
	pdf.Cell(22, 7, "Qte cumulee")
	pdf.Cell(22, 7, "Qte periode")
	pdf.Cell(24, 7, "Montant cumule")
	pdf.Ln(7)

	for _, line := range lines {
		if line.Kind.IsHeading() {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.Cell(0, 6, trim(line.Description, 90))
			pdf.Ln(6)
			continue
		}
		pdf.SetFont("Helvetica", "", 9)
		pdf.Cell(72, 6, trim(line.Description, 48))
		pdf.Cell(12, 6, line.Unit)
		pdf.Cell(20, 6, money(line.UnitPrice))
		pdf.Cell(22, 6, line.TotalQty.StringFixed(3))
		pdf.Cell(22, 6, line.CurrentQty.StringFixed(3))
		pdf.Cell(24, 6, money(line.TotalAmount))
		pdf.Ln(6)
	}
}

func (g *Generator) amendmentTable(pdf *gofpdf.Fpdf, amendments []models.Amendment) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 7, "Avenants")
	pdf.Ln(7)

	for _, amendment := range amendments {
		pdf.SetFont("Helvetica", "", 9)
		pdf.Cell(120, 6, trim(amendment.Description, 75))
		pdf.Cell(24, 6, money(amendment.CurrentAmount))
		pdf.Cell(24, 6, money(amendment.TotalAmount))
		pdf.Ln(6)
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2) + " EUR"
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "..."
}
