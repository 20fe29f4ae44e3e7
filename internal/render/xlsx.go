package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"Instagraph/internal/model"
)

const (
	bannerTitle  = "Stock Price Instagraph"
	bannerNote   = "For finance nerds too broke to afford Bloomberg/CapIQ or too lazy to format an Excel chart themselves."
	summaryTitle = "1-Year Historical Price Summary"

	// excelize border styles
	borderThick     = 5
	borderThickDash = 8

	chartAnchor      = "T7"
	chartWidthPixel  = 407
	chartHeightPixel = 320
)

// Header is the data table's first row.
var Header = []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}

type column struct {
	name   string
	width  float64
	fill   string
	numFmt string
}

func dataColumns() []column {
	return []column{
		{"A", 12.21, "FAFAFA", model.DateFormat},
		{"B", 10.00, "FFFFFF", model.PriceFormatCents},
		{"C", 10.00, "E6F1DF", model.PriceFormatCents},
		{"D", 10.00, "FFB9B9", model.PriceFormatCents},
		{"E", 10.00, "DDEBF7", model.PriceFormatCents},
		{"F", 10.00, "D9E1F2", model.PriceFormatCents},
		{"G", 10.50, "FFF2CC", model.VolumeFormat},
	}
}

// summaryCells are the labels of the summary box and the number format of their values in column K.
var summaryCells = []struct {
	row    int
	label  string
	numFmt string
}{
	{13, "Company", ""},
	{14, "Date", model.DateFormat},
	{16, "Last Price", model.PriceFormatCents},
	{17, "High", model.PriceFormatCents},
	{18, "Low", model.PriceFormatCents},
	{20, "ADTV", model.VolumeFormat},
}

type edges struct{ top, bottom, left, right bool }

var allEdges = edges{true, true, true, true}

type workbook struct {
	f     *excelize.File
	sheet string
}

// WriteWorkbook lays out the data table, summary box and adjusted close chart
// and saves the workbook at path.
func WriteWorkbook(path string, r *Report) error {
	if err := r.check(1); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	w := &workbook{f: f, sheet: r.Quote}
	if w.sheet == "" {
		w.sheet = r.Dataset.Symbol
	}
	if err := f.SetSheetName("Sheet1", w.sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	steps := []struct {
		name string
		fn   func(*Report) error
	}{
		{"data table", w.writeData},
		{"banner", w.writeBanner},
		{"summary box", w.writeSummary},
		{"chart", w.addChart},
	}
	for _, s := range steps {
		if err := s.fn(r); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (w *workbook) writeData(r *Report) error {
	last := r.Dataset.Len() + 1

	// The used area starts on a white background.
	white, err := w.f.NewStyle(&excelize.Style{Fill: solid("FFFFFF")})
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(w.sheet, "A1", fmt.Sprintf("S%d", last), white); err != nil {
		return err
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := w.f.SetSheetRow(w.sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range r.Dataset.Rows {
		values := []interface{}{row.Date, row.Open, row.High, row.Low, row.Close, row.AdjClose, row.Volume}
		if err := w.f.SetSheetRow(w.sheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}

	for _, c := range dataColumns() {
		numFmt := c.numFmt
		id, err := w.f.NewStyle(&excelize.Style{Fill: solid(c.fill), CustomNumFmt: &numFmt})
		if err != nil {
			return err
		}
		if err := w.f.SetCellStyle(w.sheet, c.name+"2", fmt.Sprintf("%s%d", c.name, last), id); err != nil {
			return err
		}
		if err := w.f.SetColWidth(w.sheet, c.name, c.name, c.width); err != nil {
			return err
		}
	}

	titles, err := w.f.NewStyle(&excelize.Style{
		Fill:      solid("000000"),
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, "A1", "G1", titles)
}

func (w *workbook) writeBanner(_ *Report) error {
	if err := w.f.MergeCell(w.sheet, "I2", "R4"); err != nil {
		return err
	}
	if err := w.f.SetCellValue(w.sheet, "I2", bannerTitle); err != nil {
		return err
	}
	banner := excelize.Style{
		Fill:      solid("000000"),
		Font:      &excelize.Font{Color: "FFFFFF", Size: 20},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}
	if err := w.outline("I2", "R4", banner, borderThick, edges{top: true, left: true, right: true}); err != nil {
		return err
	}

	if err := w.f.MergeCell(w.sheet, "I5", "R5"); err != nil {
		return err
	}
	if err := w.f.SetCellValue(w.sheet, "I5", bannerNote); err != nil {
		return err
	}
	note := excelize.Style{
		Font:      &excelize.Font{Italic: true, Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}
	return w.outline("I5", "R5", note, borderThick, edges{bottom: true, left: true, right: true})
}

func (w *workbook) writeSummary(r *Report) error {
	for _, col := range []string{"H", "I", "R"} {
		if err := w.f.SetColWidth(w.sheet, col, col, 2.58); err != nil {
			return err
		}
	}
	if err := w.f.SetColWidth(w.sheet, "K", "K", 10.25); err != nil {
		return err
	}

	box := excelize.Style{Fill: solid("FAFAFA")}
	if err := w.outline("I7", "R25", box, borderThickDash, allEdges); err != nil {
		return err
	}

	if err := w.f.MergeCell(w.sheet, "J8", "Q8"); err != nil {
		return err
	}
	if err := w.f.SetCellValue(w.sheet, "J8", summaryTitle); err != nil {
		return err
	}
	title, err := w.f.NewStyle(&excelize.Style{
		Fill:      solid("FAFAFA"),
		Font:      &excelize.Font{Size: 15, Underline: "single"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(w.sheet, "J8", "Q8", title); err != nil {
		return err
	}
	if err := w.f.SetRowHeight(w.sheet, 8, 14.40); err != nil {
		return err
	}

	s := r.Summary
	values := map[int]interface{}{
		13: s.Company,
		14: s.Date,
		16: s.LastPrice,
		17: s.High,
		18: s.Low,
		20: s.ADTV,
	}
	for _, c := range summaryCells {
		if err := w.f.SetCellValue(w.sheet, fmt.Sprintf("J%d", c.row), c.label); err != nil {
			return err
		}
		cell := fmt.Sprintf("K%d", c.row)
		if err := w.f.SetCellValue(w.sheet, cell, values[c.row]); err != nil {
			return err
		}
		style := excelize.Style{Fill: solid("FAFAFA")}
		if c.numFmt != "" {
			numFmt := c.numFmt
			style.CustomNumFmt = &numFmt
		} else {
			style.Alignment = &excelize.Alignment{Horizontal: "right"}
		}
		id, err := w.f.NewStyle(&style)
		if err != nil {
			return err
		}
		if err := w.f.SetCellStyle(w.sheet, cell, cell, id); err != nil {
			return err
		}
	}
	return nil
}

func (w *workbook) addChart(r *Report) error {
	last := r.Dataset.Len() + 1
	ref := func(col string) string {
		return fmt.Sprintf("'%s'!$%s$2:$%s$%d", w.sheet, col, col, last)
	}
	scaleMax, scaleMin := r.Stats.ScaleMax, r.Stats.ScaleMin

	return w.f.AddChart(w.sheet, chartAnchor, &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$F$1", w.sheet),
			Categories: ref("A"),
			Values:     ref("F"),
			Line:       excelize.ChartLine{Width: 1.5},
			Marker:     excelize.ChartMarker{Symbol: "none"},
		}},
		Title:  []excelize.RichTextRun{{Text: r.Quote}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis: excelize.ChartAxis{
			NumFmt: excelize.ChartNumFmt{CustomNumFmt: model.ChartDateFormat},
		},
		YAxis: excelize.ChartAxis{
			Maximum:        &scaleMax,
			Minimum:        &scaleMin,
			MajorGridLines: true,
			NumFmt:         excelize.ChartNumFmt{CustomNumFmt: r.Stats.PriceFormat},
		},
		Dimension: excelize.ChartDimension{Width: chartWidthPixel, Height: chartHeightPixel},
	})
}

// outline styles every cell of from:to with base and draws the requested outer edges.
func (w *workbook) outline(from, to string, base excelize.Style, lineStyle int, e edges) error {
	c1, r1, err := excelize.CellNameToCoordinates(from)
	if err != nil {
		return err
	}
	c2, r2, err := excelize.CellNameToCoordinates(to)
	if err != nil {
		return err
	}
	for row := r1; row <= r2; row++ {
		for col := c1; col <= c2; col++ {
			s := base
			s.Border = nil
			side := func(on bool, name string) {
				if on {
					s.Border = append(s.Border, excelize.Border{Type: name, Color: "000000", Style: lineStyle})
				}
			}
			side(e.top && row == r1, "top")
			side(e.bottom && row == r2, "bottom")
			side(e.left && col == c1, "left")
			side(e.right && col == c2, "right")

			id, err := w.f.NewStyle(&s)
			if err != nil {
				return err
			}
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			if err := w.f.SetCellStyle(w.sheet, cell, cell, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func solid(hex string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex}}
}
