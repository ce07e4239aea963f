package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/tabletpath/internal/formulation"
)

// LabelInfo holds the data encoded into each container label's QR code.
type LabelInfo struct {
	JobID       string  `json:"job"`
	ProductType string  `json:"product"`
	Actives     string  `json:"actives"`
	UnitWeight  float64 `json:"unit_weight_mg"`
	Units       int     `json:"units"`
	Container   int     `json:"container"`
	Containers  int     `json:"containers"`
	Date        string  `json:"date"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// CollectLabelInfos splits a batch across containers and returns one
// label per container. Units are spread as evenly as possible, earlier
// containers taking the remainder.
func CollectLabelInfos(ws Worksheet, containers int) []LabelInfo {
	if containers <= 0 || ws.Quantity <= 0 {
		return nil
	}
	if containers > ws.Quantity {
		containers = ws.Quantity
	}

	var actives []string
	for _, l := range ws.Lines {
		if l.Type == formulation.TypeAPI {
			actives = append(actives, fmt.Sprintf("%s %.4g mg", l.Name, l.PerUnit))
		}
	}

	date := ""
	if !ws.Date.IsZero() {
		date = ws.Date.Format("2006-01-02")
	}

	per, extra := ws.Quantity/containers, ws.Quantity%containers
	labels := make([]LabelInfo, containers)
	for i := range labels {
		units := per
		if i < extra {
			units++
		}
		labels[i] = LabelInfo{
			JobID:       ws.JobID,
			ProductType: ws.ProductType,
			Actives:     strings.Join(actives, ", "),
			UnitWeight:  ws.Dose.UnitWeight,
			Units:       units,
			Container:   i + 1,
			Containers:  containers,
			Date:        date,
		}
	}
	return labels
}

// ExportLabels generates a PDF of QR-coded container labels for a batch.
// Labels are laid out on a standard label sheet format (Avery 5160 /
// 3 columns x 10 rows on US Letter).
func ExportLabels(path string, ws Worksheet, containers int) error {
	labels := CollectLabelInfos(ws, containers)
	if len(labels) == 0 {
		return fmt.Errorf("no containers to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label %d of %d: %w", label.Container, label.Containers, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%d", info.JobID, info.Container)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, truncate(pdf, info.ProductType, textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, truncate(pdf, info.Actives, textW), "", 1, "L", false, 0, "")

	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%d units @ %.1f mg", info.Units, info.UnitWeight), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+13)
	meta := fmt.Sprintf("Job %s  %d/%d  %s", info.JobID, info.Container, info.Containers, info.Date)
	pdf.CellFormat(textW, 3, truncate(pdf, meta, textW), "", 1, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// truncate shortens s with an ellipsis until it fits in w at the current font.
func truncate(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}
