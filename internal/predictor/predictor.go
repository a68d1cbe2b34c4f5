// Package predictor exposes the validated prediction service: it owns a
// loaded model and preprocessing pipeline and turns caller input of several
// shapes into price predictions.
package predictor

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"housepredict/internal/artifact"
	comerrors "housepredict/internal/common/errors"
	"housepredict/internal/common/logger"
	"housepredict/internal/feature"
)

// Model produces one prediction per row of a prepared feature matrix.
type Model interface {
	Predict(X *mat.Dense) ([]float64, error)
}

// Transform converts a validated frame into a model-ready matrix.
type Transform interface {
	Transform(f *feature.Frame) (*mat.Dense, error)
}

// Predictor binds a model and a transform and validates every request
// against the feature schema before running them. Both slots stay unbound
// until Load succeeds; after that they are read-only, so concurrent Predict
// calls are safe as long as the artifacts themselves are.
type Predictor struct {
	model     Model
	transform Transform
	log       logger.Logger
}

func New(log logger.Logger) *Predictor {
	return &Predictor{log: log}
}

// Load deserializes both artifacts and binds them. Missing files fail fast
// with ArtifactNotFound before anything is decoded, and a failure on either
// artifact leaves both slots as they were.
func (p *Predictor) Load(modelPath, pipelinePath string) error {
	if _, err := os.Stat(modelPath); err != nil {
		return comerrors.NewArtifactNotFoundError(modelPath)
	}
	if _, err := os.Stat(pipelinePath); err != nil {
		return comerrors.NewArtifactNotFoundError(pipelinePath)
	}

	model, err := artifact.LoadModel(modelPath)
	if err != nil {
		return err
	}
	transform, err := artifact.LoadPipeline(pipelinePath)
	if err != nil {
		return err
	}

	p.model = model
	p.transform = transform
	p.log.Info("model and pipeline loaded", map[string]interface{}{
		"model":    modelPath,
		"pipeline": pipelinePath,
	})
	return nil
}

// Loaded reports whether both artifacts are bound.
func (p *Predictor) Loaded() bool {
	return p.model != nil && p.transform != nil
}

// Validate checks a frame against the feature schema: every required column
// must be present, and every ocean_proximity value must be in the allowed
// domain. Each error enumerates everything wrong, not just the first find.
// Numeric ranges are deliberately not checked. The frame is never mutated.
func (p *Predictor) Validate(f *feature.Frame) error {
	var missing []string
	for _, name := range feature.Names {
		if !f.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return comerrors.NewSchemaError(missing)
	}

	seen := make(map[string]bool)
	var invalid []string
	for _, v := range f.Column(feature.CategoricalName) {
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprintf("%v", v)
		}
		if !feature.IsValidOceanProximity(s) && !seen[s] {
			seen[s] = true
			invalid = append(invalid, s)
		}
	}
	if len(invalid) > 0 {
		return comerrors.NewDomainError(feature.CategoricalName, invalid, feature.OceanProximityValues)
	}
	return nil
}

// Predict normalizes the input to a frame, validates it, and runs the
// transform and model. Results come back in input row order, one per row.
// Transform and model errors propagate to the caller unchanged.
func (p *Predictor) Predict(in Input) ([]float64, error) {
	if !p.Loaded() {
		return nil, comerrors.NewModelNotLoadedError()
	}
	if in == nil {
		return nil, comerrors.NewShapeError(in)
	}

	f := in.frame()
	if f == nil {
		return nil, comerrors.NewShapeError(in)
	}

	if err := p.Validate(f); err != nil {
		return nil, err
	}

	X, err := p.transform.Transform(f)
	if err != nil {
		return nil, err
	}
	out, err := p.model.Predict(X)
	if err != nil {
		return nil, err
	}
	if len(out) != f.Rows() {
		return nil, fmt.Errorf("model returned %d predictions for %d rows", len(out), f.Rows())
	}
	return out, nil
}

// PredictSingle packs the named scalars into one record and unwraps the
// single result.
func (p *Predictor) PredictSingle(
	longitude, latitude, housingMedianAge, totalRooms,
	totalBedrooms, population, households, medianIncome float64,
	oceanProximity string,
) (float64, error) {
	rec := feature.Record{
		"longitude":          longitude,
		"latitude":           latitude,
		"housing_median_age": housingMedianAge,
		"total_rooms":        totalRooms,
		"total_bedrooms":     totalBedrooms,
		"population":         population,
		"households":         households,
		"median_income":      medianIncome,
		"ocean_proximity":    oceanProximity,
	}
	out, err := p.Predict(Single(rec))
	if err != nil {
		return 0, err
	}
	return out[0], nil
}
