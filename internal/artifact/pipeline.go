// Package artifact holds the serialized model and preprocessing pipeline
// types, their gob codecs, and the resolver that locates artifact files
// locally or on the model hub.
package artifact

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"housepredict/internal/feature"
)

// Pipeline is the preprocessing transform bound by the predictor: standard
// scaling of the numeric columns followed by one-hot encoding of the
// categorical column. All fields are exported for gob.
type Pipeline struct {
	NumericColumns []string
	Categorical    string
	Categories     []string
	Means          []float64
	Scales         []float64
}

// Width returns the number of output features.
func (p *Pipeline) Width() int {
	return len(p.NumericColumns) + len(p.Categories)
}

// Transform produces the model-ready numeric matrix from a validated frame.
// Columns are selected by name; extra columns in the frame are ignored.
func (p *Pipeline) Transform(f *feature.Frame) (*mat.Dense, error) {
	rows := f.Rows()
	if rows == 0 {
		return nil, fmt.Errorf("pipeline: cannot transform empty frame")
	}
	for _, name := range p.NumericColumns {
		if !f.HasColumn(name) {
			return nil, fmt.Errorf("pipeline: missing column %q", name)
		}
	}
	if !f.HasColumn(p.Categorical) {
		return nil, fmt.Errorf("pipeline: missing column %q", p.Categorical)
	}

	catIndex := make(map[string]int, len(p.Categories))
	for i, c := range p.Categories {
		catIndex[c] = i
	}

	out := mat.NewDense(rows, p.Width(), nil)
	for j, name := range p.NumericColumns {
		col := f.Column(name)
		for i := 0; i < rows; i++ {
			v, err := feature.Float(col[i])
			if err != nil {
				return nil, fmt.Errorf("pipeline: column %q row %d: %w", name, i, err)
			}
			if p.Scales[j] != 0 {
				v = (v - p.Means[j]) / p.Scales[j]
			} else {
				v = 0
			}
			out.Set(i, j, v)
		}
	}

	base := len(p.NumericColumns)
	catCol := f.Column(p.Categorical)
	for i := 0; i < rows; i++ {
		s, ok := catCol[i].(string)
		if !ok {
			return nil, fmt.Errorf("pipeline: column %q row %d: not a string: %v", p.Categorical, i, catCol[i])
		}
		idx, ok := catIndex[s]
		if !ok {
			return nil, fmt.Errorf("pipeline: unknown category %q", s)
		}
		out.Set(i, base+idx, 1)
	}

	return out, nil
}
