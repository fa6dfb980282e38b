package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/yotsuba-lab/iristree/pkg/errors"
)

// Load reads a delimited file with a header row containing the four numeric
// feature columns and the Species column. Column order in the file decides
// matrix column order. Malformed input fails with a DataLoadError naming the
// offending row and column.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataLoadError(path, 0, "", err.Error())
	}
	defer f.Close()

	return read(path, f)
}

func read(path string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewDataLoadError(path, 0, "", "empty file")
	}
	if err != nil {
		return nil, errors.NewDataLoadError(path, 0, "", err.Error())
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	required := append(FeatureColumns(), SpeciesCol)
	for _, name := range required {
		if _, ok := colIdx[name]; !ok {
			return nil, errors.NewDataLoadError(path, 1, name, "missing required column")
		}
	}

	var (
		rows    [][]float64
		species []string
	)

	featureCols := FeatureColumns()
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.NewDataLoadError(path, line, "", err.Error())
		}

		row := make([]float64, len(featureCols))
		for j, name := range featureCols {
			cell := strings.TrimSpace(record[colIdx[name]])
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.NewDataLoadError(path, line, name,
					"cannot parse "+strconv.Quote(cell)+" as float")
			}
			row[j] = v
		}

		label := strings.TrimSpace(record[colIdx[SpeciesCol]])
		if label == "" {
			return nil, errors.NewDataLoadError(path, line, SpeciesCol, "empty label")
		}

		rows = append(rows, row)
		species = append(species, label)
	}

	if len(rows) == 0 {
		return nil, errors.NewDataLoadError(path, 0, "", "no data rows")
	}

	features := mat.NewDense(len(rows), len(featureCols), nil)
	for i, row := range rows {
		features.SetRow(i, row)
	}

	if err := errors.CheckMatrixFinite("dataset.Load", features); err != nil {
		return nil, errors.Wrap(err, "invalid feature values in "+path)
	}

	return &Table{
		Columns:  featureCols,
		Features: features,
		Species:  species,
	}, nil
}
