package artifact

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"housepredict/internal/feature"
)

//go:embed sampledata.csv
var sampleCSV string

// SampleData returns the embedded California housing sample used to bake
// fixture artifacts: a frame of the nine input features plus the matching
// median house values.
func SampleData() (*feature.Frame, []float64, error) {
	reader := csv.NewReader(strings.NewReader(sampleCSV))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("sample data: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("sample data: no rows")
	}

	header := rows[0]
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}
	for _, name := range append(append([]string(nil), feature.Names...), "median_house_value") {
		if _, ok := colIdx[name]; !ok {
			return nil, nil, fmt.Errorf("sample data: missing column %q", name)
		}
	}

	records := make([]feature.Record, 0, len(rows)-1)
	targets := make([]float64, 0, len(rows)-1)
	for rn, row := range rows[1:] {
		rec := make(feature.Record, len(feature.Names))
		for _, name := range feature.NumericNames {
			v, err := strconv.ParseFloat(row[colIdx[name]], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("sample data: row %d column %q: %w", rn+1, name, err)
			}
			rec[name] = v
		}
		rec[feature.CategoricalName] = row[colIdx[feature.CategoricalName]]
		records = append(records, rec)

		target, err := strconv.ParseFloat(row[colIdx["median_house_value"]], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("sample data: row %d target: %w", rn+1, err)
		}
		targets = append(targets, target)
	}

	return feature.FrameFromRecords(records), targets, nil
}

// BakeFixtures fits a pipeline and forest on the embedded sample and writes
// both artifacts. Fitting is deterministic for a fixed seed, so repeated
// bakes produce identical predictions.
func BakeFixtures(modelPath, pipelinePath string, opts FitOptions) error {
	frame, targets, err := SampleData()
	if err != nil {
		return err
	}
	pipeline, err := FitPipeline(frame)
	if err != nil {
		return err
	}
	X, err := pipeline.Transform(frame)
	if err != nil {
		return err
	}
	forest, err := FitForest(X, targets, opts)
	if err != nil {
		return err
	}
	if err := SaveModel(modelPath, forest); err != nil {
		return err
	}
	return SavePipeline(pipelinePath, pipeline)
}
