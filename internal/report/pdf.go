package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"example.com/edmgate/internal/diag"
)

// PDFOptions controls PDF rendering.
type PDFOptions struct {
	Lang Language
	// EmbedQR adds a QR code of the source file digest when the report
	// carries one.
	EmbedQR bool
}

// SaveReportPDF renders the decode report into a PDF document.
func SaveReportPDF(rep diag.DecodeReport, out string, opts PDFOptions) error {
	if opts.Lang == "" {
		opts.Lang = LangEnglish
	}
	if err := ValidateLanguage(opts.Lang); err != nil {
		return err
	}
	lang := opts.Lang

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(label(lang, "report.title"), false)
	pdf.SetAuthor("edmctl", false)
	pdf.SetCreator("edmctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, label(lang, "report.title"))
	addSummarySection(pdf, lang, rep)
	addHeaderSection(pdf, lang, rep)
	addFindingsSection(pdf, lang, rep.Findings)
	if opts.EmbedQR && rep.Sha256 != "" {
		if err := addDigestQR(pdf, rep.Sha256); err != nil {
			return err
		}
	}

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummarySection(pdf *gofpdf.Fpdf, lang Language, rep diag.DecodeReport) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, label(lang, "summary.heading"))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: label(lang, "summary.file"), value: rep.File},
		{label: label(lang, "summary.sha256"), value: rep.Sha256},
		{label: label(lang, "summary.total"), value: strconv.Itoa(rep.Summary.Total)},
		{label: label(lang, "summary.errors"), value: strconv.Itoa(rep.Summary.Errors)},
		{label: label(lang, "summary.warnings"), value: strconv.Itoa(rep.Summary.Warnings)},
		{label: label(lang, "summary.overall"), value: passLabel(lang, rep.Summary.Pass)},
	}
	for _, item := range items {
		if item.value == "" {
			continue
		}
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addHeaderSection(pdf *gofpdf.Fpdf, lang Language, rep diag.DecodeReport) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, label(lang, "header.heading"))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	registration := label(lang, "header.unset")
	if rep.Header.Registration != nil {
		registration = *rep.Header.Registration
	}
	pdf.CellFormat(50, 6, label(lang, "header.registration"), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, registration, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, label(lang, "alarms.heading"))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	if rep.Header.Alarms == nil {
		pdf.Cell(0, 6, label(lang, "header.unset"))
		pdf.Ln(8)
		return
	}
	alarms := rep.Header.Alarms
	rows := []struct {
		label string
		value string
	}{
		{label: label(lang, "alarms.voltsMax"), value: fmt.Sprintf("%.1f", alarms.VoltsMax)},
		{label: label(lang, "alarms.voltsMin"), value: fmt.Sprintf("%.1f", alarms.VoltsMin)},
		{label: label(lang, "alarms.egtSpreadMax"), value: strconv.Itoa(alarms.EGTSpreadMax)},
		{label: label(lang, "alarms.chtMax"), value: strconv.Itoa(alarms.CHTMax)},
		{label: label(lang, "alarms.chtCoolRateMax"), value: strconv.Itoa(alarms.CHTCoolRateMax)},
		{label: label(lang, "alarms.egtMax"), value: strconv.Itoa(alarms.EGTMax)},
		{label: label(lang, "alarms.oilTempMax"), value: strconv.Itoa(alarms.OilTempMax)},
		{label: label(lang, "alarms.oilTempMin"), value: strconv.Itoa(alarms.OilTempMin)},
	}
	for _, row := range rows {
		pdf.CellFormat(50, 6, row.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, row.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addFindingsSection(pdf *gofpdf.Fpdf, lang Language, findings []diag.Diagnostic) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, label(lang, "findings.heading"))
	pdf.Ln(9)

	if len(findings) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 6, label(lang, "findings.none"))
		pdf.Ln(8)
		return
	}

	headers := []string{
		label(lang, "findings.line"),
		label(lang, "findings.tag"),
		label(lang, "findings.code"),
		label(lang, "findings.severity"),
		label(lang, "findings.message"),
	}
	widths := []float64{16, 14, 24, 24, 102}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lineHeight := 5.0
	for _, d := range findings {
		values := []string{
			strconv.Itoa(d.Line),
			d.Tag,
			d.Code,
			string(d.Severity),
			d.Message,
		}
		renderTableRow(pdf, widths, values, lineHeight)
	}
	pdf.Ln(4)
}

// renderTableRow draws one bordered row, wrapping the last column across
// multiple lines when its text overflows.
func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	last := len(values) - 1
	wrapped := pdf.SplitText(values[last], widths[last]-2)
	if len(wrapped) == 0 {
		wrapped = []string{""}
	}
	rowHeight := lineHeight * float64(len(wrapped))
	x, y := pdf.GetXY()
	for i := 0; i < last; i++ {
		pdf.Rect(x, y, widths[i], rowHeight, "D")
		pdf.CellFormat(widths[i], lineHeight, values[i], "", 0, "L", false, 0, "")
		x += widths[i]
		pdf.SetXY(x, y)
	}
	pdf.Rect(x, y, widths[last], rowHeight, "D")
	for i, part := range wrapped {
		pdf.SetXY(x, y+lineHeight*float64(i))
		pdf.CellFormat(widths[last], lineHeight, part, "", 0, "L", false, 0, "")
	}
	pdf.SetXY(15, y+rowHeight)
}

func addDigestQR(pdf *gofpdf.Fpdf, digest string) error {
	png, err := FileDigestQR(digest, 256)
	if err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("digest-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("digest-qr", 15, pdf.GetY()+4, 30, 30, false, opts, 0, "")
	return nil
}

func passLabel(lang Language, pass bool) string {
	if pass {
		return label(lang, "overall.pass")
	}
	return label(lang, "overall.fail")
}
