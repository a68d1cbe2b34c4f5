package artifact

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// TreeNode is one node of a regression tree in flat-array form. Leaf nodes
// carry the predicted value; internal nodes split on Feature <= Threshold.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Leaf      bool
}

// RegressionTree is a single fitted CART regressor.
type RegressionTree struct {
	Nodes []TreeNode
}

func (t *RegressionTree) predictRow(row []float64) float64 {
	i := 0
	for !t.Nodes[i].Leaf {
		n := t.Nodes[i]
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

// RegressionForest is the serialized model artifact: an ensemble of
// regression trees whose predictions are averaged.
type RegressionForest struct {
	Trees       []RegressionTree
	NumFeatures int
}

// Predict returns one averaged prediction per row of X, in row order.
func (m *RegressionForest) Predict(X *mat.Dense) ([]float64, error) {
	if len(m.Trees) == 0 {
		return nil, errors.New("forest: no trees")
	}
	rows, cols := X.Dims()
	if cols != m.NumFeatures {
		return nil, fmt.Errorf("forest: got %d features, want %d", cols, m.NumFeatures)
	}

	out := make([]float64, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		var sum float64
		for ti := range m.Trees {
			sum += m.Trees[ti].predictRow(row)
		}
		out[i] = sum / float64(len(m.Trees))
	}
	return out, nil
}
