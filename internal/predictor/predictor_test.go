package predictor

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housepredict/internal/artifact"
	comerrors "housepredict/internal/common/errors"
	"housepredict/internal/common/logger"
	"housepredict/internal/feature"
)

func bakeArtifacts(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "house_price_model.gob")
	pipelinePath := filepath.Join(dir, "preprocessing_pipeline.gob")
	err := artifact.BakeFixtures(modelPath, pipelinePath, artifact.FitOptions{
		NumTrees: 10,
		MaxDepth: 6,
		Seed:     7,
	})
	require.NoError(t, err)
	return modelPath, pipelinePath
}

func newLoadedPredictor(t *testing.T) *Predictor {
	t.Helper()
	modelPath, pipelinePath := bakeArtifacts(t)
	p := New(logger.NewTestLogger(t))
	require.NoError(t, p.Load(modelPath, pipelinePath))
	return p
}

func validRecord() feature.Record {
	return feature.Record{
		"longitude":          -122.23,
		"latitude":           37.88,
		"housing_median_age": 41.0,
		"total_rooms":        880.0,
		"total_bedrooms":     129.0,
		"population":         322.0,
		"households":         126.0,
		"median_income":      8.3252,
		"ocean_proximity":    "NEAR BAY",
	}
}

func inlandRecord() feature.Record {
	return feature.Record{
		"longitude":          -121.22,
		"latitude":           39.43,
		"housing_median_age": 7.0,
		"total_rooms":        1430.0,
		"total_bedrooms":     244.0,
		"population":         515.0,
		"households":         226.0,
		"median_income":      3.8462,
		"ocean_proximity":    "INLAND",
	}
}

// variedBatch builds n distinct valid records.
func variedBatch(n int) Batch {
	batch := make(Batch, n)
	for i := 0; i < n; i++ {
		rec := validRecord()
		rec["median_income"] = 2.0 + float64(i)*1.5
		rec["total_rooms"] = 500.0 + float64(i)*700
		if i%2 == 1 {
			rec["ocean_proximity"] = "INLAND"
		}
		batch[i] = rec
	}
	return batch
}

func TestPredict_OrderPreserved(t *testing.T) {
	p := newLoadedPredictor(t)

	for _, n := range []int{1, 2, 4} {
		batch := variedBatch(n)
		out, err := p.Predict(batch)
		require.NoError(t, err)
		require.Len(t, out, n)

		// A fixed permutation of the rows must permute the outputs the
		// same way, with no reordering or dropping.
		perm := make([]int, n)
		for i := range perm {
			perm[i] = (i + 1) % n
		}
		permuted := make(Batch, n)
		for i, j := range perm {
			permuted[i] = batch[j]
		}
		permOut, err := p.Predict(permuted)
		require.NoError(t, err)
		require.Len(t, permOut, n)
		for i, j := range perm {
			assert.Equal(t, out[j], permOut[i], "n=%d row %d", n, i)
		}
	}
}

func TestPredictSingle_MatchesBatch(t *testing.T) {
	p := newLoadedPredictor(t)
	rec := validRecord()

	single, err := p.PredictSingle(
		rec["longitude"].(float64), rec["latitude"].(float64),
		rec["housing_median_age"].(float64), rec["total_rooms"].(float64),
		rec["total_bedrooms"].(float64), rec["population"].(float64),
		rec["households"].(float64), rec["median_income"].(float64),
		rec["ocean_proximity"].(string),
	)
	require.NoError(t, err)

	batch, err := p.Predict(Batch{rec})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, batch[0], single)
}

func TestPredict_MissingFieldsEnumerated(t *testing.T) {
	p := newLoadedPredictor(t)
	rec := validRecord()
	delete(rec, "total_bedrooms")
	delete(rec, "population")

	_, err := p.Predict(Single(rec))
	require.Error(t, err)
	assert.Equal(t, comerrors.ErrCodeSchemaInvalid, comerrors.CodeOf(err))

	var se *comerrors.StandardError
	require.True(t, comerrors.AsStandard(err, &se))
	assert.Equal(t, []string{"population", "total_bedrooms"}, se.Fields)
	assert.Contains(t, se.Message, "total_bedrooms")
	assert.Contains(t, se.Message, "population")
}

func TestPredict_DomainRejection(t *testing.T) {
	p := newLoadedPredictor(t)
	rec := validRecord()
	rec["ocean_proximity"] = "MOUNTAIN"

	_, err := p.Predict(Single(rec))
	require.Error(t, err)
	assert.Equal(t, comerrors.ErrCodeDomainInvalid, comerrors.CodeOf(err))
	assert.Contains(t, err.Error(), "MOUNTAIN")

	var se *comerrors.StandardError
	require.True(t, comerrors.AsStandard(err, &se))
	for _, allowed := range feature.OceanProximityValues {
		assert.Contains(t, se.Message, allowed)
	}
}

func TestPredict_DomainRejectionEnumeratesAllOffenders(t *testing.T) {
	p := newLoadedPredictor(t)
	a := validRecord()
	a["ocean_proximity"] = "MOUNTAIN"
	b := validRecord()
	b["ocean_proximity"] = "DESERT"

	_, err := p.Predict(Batch{a, b})
	require.Error(t, err)
	var se *comerrors.StandardError
	require.True(t, comerrors.AsStandard(err, &se))
	assert.Equal(t, []string{"DESERT", "MOUNTAIN"}, se.Fields)
}

func TestPredict_NotLoadedGuard(t *testing.T) {
	p := New(logger.NewNoOpLogger())

	_, err := p.Predict(Single(validRecord()))
	require.Error(t, err)
	assert.Equal(t, comerrors.ErrCodeModelNotLoaded, comerrors.CodeOf(err))

	_, err = p.PredictSingle(-122.23, 37.88, 41, 880, 129, 322, 126, 8.3252, "NEAR BAY")
	require.Error(t, err)
	assert.Equal(t, comerrors.ErrCodeModelNotLoaded, comerrors.CodeOf(err))
}

func TestLoad_MissingArtifacts(t *testing.T) {
	modelPath, pipelinePath := bakeArtifacts(t)

	tests := []struct {
		name         string
		modelPath    string
		pipelinePath string
	}{
		{"missing model", filepath.Join(t.TempDir(), "nope.gob"), pipelinePath},
		{"missing pipeline", modelPath, filepath.Join(t.TempDir(), "nope.gob")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(logger.NewNoOpLogger())
			err := p.Load(tt.modelPath, tt.pipelinePath)
			require.Error(t, err)
			assert.Equal(t, comerrors.ErrCodeArtifactNotFound, comerrors.CodeOf(err))
			// Neither slot may be bound after a failed load.
			assert.False(t, p.Loaded())
		})
	}
}

func TestLoad_Rebind(t *testing.T) {
	p := newLoadedPredictor(t)
	require.True(t, p.Loaded())

	modelPath, pipelinePath := bakeArtifacts(t)
	require.NoError(t, p.Load(modelPath, pipelinePath))
	assert.True(t, p.Loaded())

	out, err := p.Predict(Single(validRecord()))
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestPredict_ConcreteScenario(t *testing.T) {
	p := newLoadedPredictor(t)

	out, err := p.Predict(Single(validRecord()))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.False(t, math.IsNaN(out[0]))
	assert.False(t, math.IsInf(out[0], 0))
	assert.Greater(t, out[0], 0.0)

	bad := validRecord()
	bad["ocean_proximity"] = "INVALID"
	_, err = p.Predict(Single(bad))
	require.Error(t, err)
	assert.Equal(t, comerrors.ErrCodeDomainInvalid, comerrors.CodeOf(err))

	batch, err := p.Predict(Batch{validRecord(), inlandRecord()})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	for i, v := range batch {
		assert.False(t, math.IsNaN(v), "row %d", i)
		assert.Greater(t, v, 0.0, "row %d", i)
	}
}

func TestPredict_Deterministic(t *testing.T) {
	p := newLoadedPredictor(t)
	first, err := p.Predict(Single(validRecord()))
	require.NoError(t, err)
	second, err := p.Predict(Single(validRecord()))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPredict_ExtraFieldsTolerated(t *testing.T) {
	p := newLoadedPredictor(t)
	rec := validRecord()
	rec["listing_id"] = "abc-123"

	out, err := p.Predict(Single(rec))
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestPredict_PermissiveNumericRanges(t *testing.T) {
	// Out-of-physical-range numerics pass validation untouched.
	p := newLoadedPredictor(t)
	rec := validRecord()
	rec["population"] = -50.0

	out, err := p.Predict(Single(rec))
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestCoerce_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		wantErr bool
	}{
		{"record map", map[string]interface{}{"a": 1.0}, false},
		{"feature record", validRecord(), false},
		{"record slice", []feature.Record{validRecord()}, false},
		{"generic slice of maps", []interface{}{map[string]interface{}{"a": 1.0}}, false},
		{"frame", feature.FrameFromRecord(validRecord()), false},
		{"scalar", 42, true},
		{"string", "not a record", true},
		{"slice of scalars", []interface{}{1.0, 2.0}, true},
		{"nil", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, comerrors.ErrCodeShapeInvalid, comerrors.CodeOf(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	p := newLoadedPredictor(t)
	f := feature.FrameFromRecord(validRecord())
	before := f.ColumnNames()

	require.NoError(t, p.Validate(f))
	assert.Equal(t, before, f.ColumnNames())
	assert.Equal(t, 1, f.Rows())
}
