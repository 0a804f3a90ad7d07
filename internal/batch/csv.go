package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/morphometry"
)

// Required input columns.
var requiredColumns = []string{"mass", "long_axis", "short_axis"}

// SampleCSV is the downloadable input template.
const SampleCSV = "id,mass,long_axis,short_axis\n" +
	"E001,60.5,58.2,43.5\n" +
	"E002,55.1,56.9,41.8\n" +
	"E003,62.0,59.1,44.2\n"

// Dataset is a parsed batch input file.
type Dataset struct {
	Rows  []model.Measurement
	HasID bool
}

// ParseCSV reads a batch input file. The header must contain mass, long_axis
// and short_axis in any order; id is optional. Blank lines are ignored. Any
// non-numeric measurement rejects the whole file.
func ParseCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, common.InvalidInput("CSV file must have a header and at least one data row.")
	}
	if err != nil {
		return nil, common.NewUserError("Failed to parse CSV file. Please ensure it is correctly formatted.",
			fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, common.InvalidInput("CSV header must contain: " + strings.Join(requiredColumns, ", ") + ".")
		}
	}
	idIdx, hasID := index["id"]

	ds := &Dataset{HasID: hasID}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, common.NewUserError("Failed to parse CSV file. Please ensure it is correctly formatted.",
				fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		}
		if blank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		m := model.Measurement{}
		if hasID {
			m.ID = strings.TrimSpace(field(record, idIdx))
		}
		values := [3]*float64{&m.Mass, &m.LongAxis, &m.ShortAxis}
		for i, col := range requiredColumns {
			v, ok := parseNumber(field(record, index[col]))
			if !ok {
				return nil, common.NewUserError("CSV contains non-numeric data in measurement columns. Please check the file.",
					fmt.Errorf("%w: line %d column %s", common.ErrInvalidInput, line, col))
			}
			*values[i] = v
		}
		ds.Rows = append(ds.Rows, m)
	}

	if len(ds.Rows) == 0 {
		return nil, common.InvalidInput("CSV file must have a header and at least one data row.")
	}
	return ds, nil
}

// ExportOptions controls the result CSV columns.
type ExportOptions struct {
	IncludeID       bool
	IncludeFeatures bool
}

// WriteResultsCSV writes the input columns followed by predicted_sex, and
// optionally the derived feature columns.
func WriteResultsCSV(w io.Writer, rows []model.ResultRow, opts ExportOptions) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, 10)
	if opts.IncludeID {
		header = append(header, "id")
	}
	header = append(header, requiredColumns...)
	header = append(header, "predicted_sex")
	if opts.IncludeFeatures {
		header = append(header, "shape_index", "ovality", "surface_area", "volume", "density")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := make([]string, 0, len(header))
		if opts.IncludeID {
			record = append(record, row.ID)
		}
		record = append(record, formatFloat(row.Mass), formatFloat(row.LongAxis), formatFloat(row.ShortAxis), string(row.PredictedSex))
		if opts.IncludeFeatures {
			if f, ok := morphometry.Compute(row.Measurement); ok {
				record = append(record,
					strconv.FormatFloat(f.ShapeIndex, 'f', 4, 64),
					strconv.FormatFloat(f.Ovality, 'f', 4, 64),
					strconv.FormatFloat(f.SurfaceArea, 'f', 2, 64),
					strconv.FormatFloat(f.Volume, 'f', 2, 64),
					strconv.FormatFloat(f.Density, 'f', 4, 64))
			} else {
				record = append(record, "", "", "", "", "")
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSampleCSV writes the input template.
func WriteSampleCSV(w io.Writer) error {
	_, err := io.WriteString(w, SampleCSV)
	return err
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
