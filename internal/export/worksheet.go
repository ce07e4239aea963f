// Package export renders print jobs for the people who run them: the
// compounding worksheet and container labels as PDF, and a toolpath
// preview as PNG.
package export

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/piwi3910/tabletpath/internal/formulation"
	"github.com/piwi3910/tabletpath/internal/model"
)

// unitColor represents an RGB color for a unit on the bed diagram.
type unitColor struct {
	R, G, B int
}

var unitColors = []unitColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
}

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	worksheetQR  = 28.0
)

// Worksheet is everything printed on a compounding worksheet.
type Worksheet struct {
	JobID       string
	ProductType string
	Date        time.Time
	Quantity    int
	Dose        formulation.DoseResult
	Lines       []formulation.BatchLine
	Shape       model.ShapeKind
	HeadMode    model.HeadMode

	// Optional bed diagram
	Outline    model.Outline
	Placements []model.UnitPlacement

	// Number formatting; the zero tag formats as English
	Language language.Tag
}

// WorksheetTitle returns the heading line of a worksheet.
func WorksheetTitle(productType string) string {
	return productType + " - Formulation Worksheet"
}

// SummaryLine returns the "Date | Qty | Unit Size" line under the title.
func (ws Worksheet) SummaryLine() string {
	p := ws.printer()
	return fmt.Sprintf("Date: %s | Qty: %s | Unit Size: %s mg",
		ws.Date.Format("2006-01-02"),
		p.Sprintf("%d", ws.Quantity),
		p.Sprintf("%.1f", ws.Dose.UnitWeight))
}

func (ws Worksheet) printer() *message.Printer {
	tag := ws.Language
	if tag == language.Und {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// ExportWorksheet writes a one-page compounding worksheet: title, batch
// summary, ingredient table with batch totals, a QR code carrying the
// job ID, and the bed layout when an outline is supplied.
func ExportWorksheet(path string, ws Worksheet) error {
	if len(ws.Lines) == 0 {
		return fmt.Errorf("no ingredients to export")
	}
	if ws.JobID == "" {
		return fmt.Errorf("worksheet needs a job ID")
	}
	if ws.Date.IsZero() {
		ws.Date = time.Now()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()

	if err := renderWorksheetHeader(pdf, ws); err != nil {
		return err
	}
	y := renderIngredientTable(pdf, ws, marginTop+headerHeight+worksheetQR)
	if len(ws.Outline) > 1 && len(ws.Placements) > 0 {
		renderBedLayout(pdf, ws.Outline, ws.Placements, y+10)
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by TabletPath", "", 0, "C", false, 0, "")

	return pdf.OutputFileAndClose(path)
}

func renderWorksheetHeader(pdf *fpdf.Fpdf, ws Worksheet) error {
	textW := pageWidth - marginLeft - marginRight - worksheetQR - 5

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(textW, headerHeight, WorksheetTitle(ws.ProductType), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	pdf.CellFormat(textW, 5, ws.SummaryLine(), "", 0, "L", false, 0, "")

	p := ws.printer()
	details := fmt.Sprintf("Job %s | %s, %s | Fill volume %s mm³ | API %s mg (limit %.0f%%)",
		ws.JobID, ws.Shape, ws.HeadMode,
		p.Sprintf("%.1f", ws.Dose.Volume),
		p.Sprintf("%.2f", ws.Dose.TotalAPI),
		ws.Dose.Limit*100)
	pdf.SetXY(marginLeft, marginTop+headerHeight+6)
	pdf.CellFormat(textW, 5, pdf.UnicodeTranslatorFromDescriptor("")(details), "", 0, "L", false, 0, "")

	qrPNG, err := qrcode.Encode(ws.JobID, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	imgName := "qr_job_" + ws.JobID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, pageWidth-marginRight-worksheetQR, marginTop, worksheetQR, worksheetQR,
		false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+worksheetQR+2, pageWidth-marginRight, marginTop+worksheetQR+2)
	return nil
}

// renderIngredientTable draws the ingredient table and returns the Y
// position below it.
func renderIngredientTable(pdf *fpdf.Fpdf, ws Worksheet, y float64) float64 {
	p := ws.printer()
	colWidths := []float64{80, 25, 30, 45}
	headers := []string{"Ingredient", "Type", "%", "Total (mg)"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetTextColor(0, 0, 0)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	var pct, total float64
	pdf.SetFont("Helvetica", "", 9)
	for i, line := range ws.Lines {
		pct += line.Percentage
		total += line.Total
		row := []string{
			line.Name,
			string(line.Type),
			p.Sprintf("%.2f", line.Percentage),
			p.Sprintf("%.2f", line.Total),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		y = tableRow(pdf, colWidths, row, y, true)
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	y = tableRow(pdf, colWidths, []string{"Total", "", p.Sprintf("%.2f", pct), p.Sprintf("%.2f", total)}, y, true)
	return y
}

func tableRow(pdf *fpdf.Fpdf, widths []float64, cells []string, y float64, fill bool) float64 {
	xPos := marginLeft
	for j, cell := range cells {
		align := "R"
		if j < 2 {
			align = "L"
		}
		pdf.SetXY(xPos, y)
		pdf.CellFormat(widths[j], 6, cell, "1", 0, align, fill, 0, "")
		xPos += widths[j]
	}
	return y + 6
}

// renderBedLayout draws every unit outline at its tiling offset, scaled
// to the remaining page area. Bed Y grows upwards, page Y downwards.
func renderBedLayout(pdf *fpdf.Fpdf, outline model.Outline, placements []model.UnitPlacement, top float64) {
	min, max := outline.BoundingBox()
	bedMinX, bedMinY := math.Inf(1), math.Inf(1)
	bedMaxX, bedMaxY := math.Inf(-1), math.Inf(-1)
	for _, p := range placements {
		bedMinX = math.Min(bedMinX, min.X+p.OffsetX)
		bedMinY = math.Min(bedMinY, min.Y+p.OffsetY)
		bedMaxX = math.Max(bedMaxX, max.X+p.OffsetX)
		bedMaxY = math.Max(bedMaxY, max.Y+p.OffsetY)
	}
	bedW := bedMaxX - bedMinX
	bedH := bedMaxY - bedMinY
	if bedW <= 0 || bedH <= 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginLeft, top)
	pdf.CellFormat(100, 7, fmt.Sprintf("Bed Layout (%d units, %.0f x %.0f mm)", len(placements), bedW, bedH),
		"", 0, "L", false, 0, "")
	top += 9

	drawW := pageWidth - marginLeft - marginRight
	drawH := pageHeight - top - marginBottom - 8
	if drawH <= 10 {
		return
	}
	scale := math.Min(drawW/bedW, drawH/bedH)
	offsetX := marginLeft + (drawW-bedW*scale)/2

	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.3)
	pdf.Rect(offsetX, top, bedW*scale, bedH*scale, "D")

	pdf.SetFont("Helvetica", "", labelFontSize(scale*(max.X-min.X)))
	for i, p := range placements {
		col := unitColors[i%len(unitColors)]
		pts := make([]fpdf.PointType, 0, len(outline))
		for _, pt := range outline {
			pts = append(pts, fpdf.PointType{
				X: offsetX + (pt.X+p.OffsetX-bedMinX)*scale,
				Y: top + (bedMaxY-pt.Y-p.OffsetY)*scale,
			})
		}
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.Polygon(pts, "FD")

		label := fmt.Sprintf("%d", p.Index+1)
		cx := offsetX + (p.OffsetX-bedMinX)*scale
		cy := top + (bedMaxY-p.OffsetY)*scale
		labelW := pdf.GetStringWidth(label)
		pdf.SetXY(cx-labelW/2, cy-2)
		pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
	}
}

// labelFontSize returns an appropriate font size for a unit drawn w mm wide.
func labelFontSize(w float64) float64 {
	switch {
	case w > 20:
		return 9
	case w > 10:
		return 7
	default:
		return 5
	}
}
