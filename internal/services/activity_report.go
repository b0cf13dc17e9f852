package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/query"
)

var reportColumns = []struct {
	title string
	width float64
}{
	{"Time (UTC)", 38},
	{"User", 32},
	{"Action", 18},
	{"Path", 62},
	{"Reference", 40},
	{"Message", 87},
}

func buildActivityReportPDF(tenantID string, page query.PagedResult[models.UserActivity], now time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("User Activity", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "USER ACTIVITY")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Tenant    : "+safe(tenantID, "-"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Generated : "+now.UTC().Format("2006-01-02 15:04"))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Page %d of %d, %d records in total", page.Page, page.TotalPages, page.TotalItems))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 9)
	for _, c := range reportColumns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	if len(page.Items) == 0 {
		pdf.CellFormat(0, 7, "No activity matches the filter.", "1", 1, "C", false, 0, "")
	}
	for _, a := range page.Items {
		cells := []string{
			a.CreatedOn.UTC().Format("2006-01-02 15:04:05"),
			a.Username,
			a.Action,
			a.Path,
			a.Reference,
			a.Message,
		}
		for i, c := range reportColumns {
			pdf.CellFormat(c.width, 6, clip(pdf, safe(cells[i], "-"), c.width-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("ACTIVITY_%s_%s_p%d.pdf", safeFilenamePart(tenantID), now.UTC().Format("20060102"), page.Page)
	return buf.Bytes(), filename, nil
}

// clip shortens s until it fits width.
func clip(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func safe(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
