package artifact

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"housepredict/internal/feature"
)

// FitOptions configures forest fitting. Zero values fall back to defaults.
type FitOptions struct {
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64
}

func (o *FitOptions) applyDefaults() {
	if o.NumTrees == 0 {
		o.NumTrees = 25
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = 8
	}
	if o.MinSamplesSplit == 0 {
		o.MinSamplesSplit = 2
	}
}

// FitPipeline computes scaler statistics from a training frame. Categories
// are the fixed ocean_proximity domain, not the values seen in the data, so
// the one-hot layout is stable across training samples.
func FitPipeline(f *feature.Frame) (*Pipeline, error) {
	if f.Rows() == 0 {
		return nil, errors.New("fit: empty frame")
	}
	p := &Pipeline{
		NumericColumns: append([]string(nil), feature.NumericNames...),
		Categorical:    feature.CategoricalName,
		Categories:     append([]string(nil), feature.OceanProximityValues...),
		Means:          make([]float64, len(feature.NumericNames)),
		Scales:         make([]float64, len(feature.NumericNames)),
	}
	n := float64(f.Rows())
	for j, name := range p.NumericColumns {
		col := f.Column(name)
		if col == nil {
			return nil, fmt.Errorf("fit: missing column %q", name)
		}
		var sum float64
		vals := make([]float64, len(col))
		for i, raw := range col {
			v, err := feature.Float(raw)
			if err != nil {
				return nil, fmt.Errorf("fit: column %q row %d: %w", name, i, err)
			}
			vals[i] = v
			sum += v
		}
		mean := sum / n
		var ss float64
		for _, v := range vals {
			d := v - mean
			ss += d * d
		}
		p.Means[j] = mean
		p.Scales[j] = math.Sqrt(ss / n)
	}
	return p, nil
}

// FitForest trains a bootstrap-aggregated ensemble of regression trees.
// Fitting is deterministic for a fixed seed.
func FitForest(X *mat.Dense, y []float64, opts FitOptions) (*RegressionForest, error) {
	opts.applyDefaults()
	rows, cols := X.Dims()
	if rows == 0 {
		return nil, errors.New("fit: empty training matrix")
	}
	if len(y) != rows {
		return nil, fmt.Errorf("fit: X has %d rows, y has %d", rows, len(y))
	}

	rnd := rand.New(rand.NewSource(opts.Seed))
	forest := &RegressionForest{
		Trees:       make([]RegressionTree, opts.NumTrees),
		NumFeatures: cols,
	}
	for t := 0; t < opts.NumTrees; t++ {
		idx := make([]int, rows)
		for i := range idx {
			idx[i] = rnd.Intn(rows)
		}
		b := treeBuilder{X: X, y: y, opts: opts}
		b.build(idx, 0)
		forest.Trees[t] = RegressionTree{Nodes: b.nodes}
	}
	return forest, nil
}

type treeBuilder struct {
	X     *mat.Dense
	y     []float64
	opts  FitOptions
	nodes []TreeNode
}

// build appends the subtree over idx and returns its root node index.
func (b *treeBuilder) build(idx []int, depth int) int {
	mean := meanAt(b.y, idx)
	self := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{Leaf: true, Value: mean})

	if depth >= b.opts.MaxDepth || len(idx) < b.opts.MinSamplesSplit {
		return self
	}

	feat, threshold, ok := b.bestSplit(idx)
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if b.X.At(i, feat) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return self
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[self] = TreeNode{Feature: feat, Threshold: threshold, Left: l, Right: r}
	return self
}

// bestSplit searches every feature for the threshold that minimizes the
// summed squared error of the two children.
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	_, cols := b.X.Dims()
	bestSSE := math.Inf(1)
	bestFeat, bestThreshold := -1, 0.0

	order := make([]int, len(idx))
	for f := 0; f < cols; f++ {
		copy(order, idx)
		sort.Slice(order, func(a, c int) bool {
			return b.X.At(order[a], f) < b.X.At(order[c], f)
		})

		var totalSum, totalSq float64
		for _, i := range order {
			totalSum += b.y[i]
			totalSq += b.y[i] * b.y[i]
		}

		var leftSum, leftSq float64
		n := float64(len(order))
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			leftSum += b.y[i]
			leftSq += b.y[i] * b.y[i]

			v, next := b.X.At(i, f), b.X.At(order[k+1], f)
			if v == next {
				continue
			}
			nl := float64(k + 1)
			nr := n - nl
			sse := (leftSq - leftSum*leftSum/nl) +
				((totalSq - leftSq) - (totalSum-leftSum)*(totalSum-leftSum)/nr)
			if sse < bestSSE {
				bestSSE = sse
				bestFeat = f
				bestThreshold = (v + next) / 2
			}
		}
	}

	if bestFeat == -1 {
		return 0, 0, false
	}
	return bestFeat, bestThreshold, true
}

func meanAt(y []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}
