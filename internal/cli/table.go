package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func num(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}

// RenderResults renders batch results, with an ID column when the input had one.
func RenderResults(rows []model.ResultRow, withID bool) string {
	headers := []string{"Mass (g)", "Long Axis (mm)", "Short Axis (mm)", "Predicted Sex"}
	aligns := []columnAlignment{alignRight, alignRight, alignRight, alignLeft}
	if withID {
		headers = append([]string{"ID"}, headers...)
		aligns = append([]columnAlignment{alignLeft}, aligns...)
	}

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := []string{num(r.Mass, 1), num(r.LongAxis, 1), num(r.ShortAxis, 1), FormatLabel(r.PredictedSex)}
		if withID {
			row = append([]string{r.ID}, row...)
		}
		out = append(out, row)
	}
	return renderTable(headers, out, aligns)
}

// RenderCounts renders per-label totals.
func RenderCounts(counts map[model.Label]int) string {
	labels := []model.Label{model.LabelMale, model.LabelFemale, model.LabelUnknown, model.LabelError}
	rows := make([][]string, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, []string{l.Title(), strconv.Itoa(counts[l])})
	}
	return renderTable([]string{"Prediction", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}

// RenderFeatures renders a measurement and its derived features.
func RenderFeatures(m model.Measurement, f model.DerivedFeatures) string {
	rows := [][]string{
		{"Mass", num(m.Mass, 2), "g"},
		{"Long Axis", num(m.LongAxis, 2), "mm"},
		{"Short Axis", num(m.ShortAxis, 2), "mm"},
		{"Shape Index", num(f.ShapeIndex, 4), ""},
		{"Ovality", num(f.Ovality, 4), ""},
		{"Surface Area", num(f.SurfaceArea, 2), "cm²"},
		{"Volume", num(f.Volume, 2), "cm³"},
		{"Density", num(f.Density, 4), "g/cm³"},
	}
	return renderTable([]string{"Feature", "Value", "Unit"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft})
}

// RenderLog renders log entries in the order given.
func RenderLog(entries []model.LogEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.BatchNumber, FormatLabel(e.Prediction), string(e.Source), e.Timestamp.Format(time.DateTime)})
	}
	return renderTable([]string{"Batch Number", "Prediction", "Source", "Timestamp"}, rows, nil)
}

// RenderCitations renders grounding sources. Sources without a URI show their title only.
func RenderCitations(cites []model.Citation) string {
	rows := make([][]string, 0, len(cites))
	for i, c := range cites {
		title := c.Title
		if title == "" {
			title = c.URI
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), title, c.URI})
	}
	return renderTable([]string{"#", "Source", "Link"}, rows, []columnAlignment{alignRight})
}
