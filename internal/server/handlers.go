package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	comerrors "housepredict/internal/common/errors"
	"housepredict/internal/common/metrics"
	"housepredict/internal/feature"
	"housepredict/internal/predictor"
)

type fieldSpec struct {
	Name    string
	Label   string
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

// fieldSpecs drives the demo form. Ranges and defaults match the published
// demo so the no-changes case reproduces the documented prediction.
var fieldSpecs = []fieldSpec{
	{Name: "longitude", Label: "Longitude", Min: -124.5, Max: -114.0, Step: 0.01, Default: -122.23},
	{Name: "latitude", Label: "Latitude", Min: 32.5, Max: 42.0, Step: 0.01, Default: 37.88},
	{Name: "housing_median_age", Label: "Housing Median Age", Min: 0, Max: 52, Step: 1, Default: 41},
	{Name: "total_rooms", Label: "Total Rooms", Min: 0, Max: 40000, Step: 10, Default: 880},
	{Name: "total_bedrooms", Label: "Total Bedrooms", Min: 0, Max: 6500, Step: 1, Default: 129},
	{Name: "population", Label: "Population", Min: 0, Max: 35000, Step: 1, Default: 322},
	{Name: "households", Label: "Households", Min: 0, Max: 6000, Step: 1, Default: 126},
	{Name: "median_income", Label: "Median Income (in $10,000s)", Min: 0, Max: 15, Step: 0.1, Default: 8.3252},
}

const defaultProximity = "NEAR BAY"

// The two pinned example rows shown under the form.
var exampleRecords = []struct {
	Label  string
	Record feature.Record
}{
	{
		Label: "Bay Area",
		Record: feature.Record{
			"longitude": -122.23, "latitude": 37.88, "housing_median_age": 41.0,
			"total_rooms": 880.0, "total_bedrooms": 129.0, "population": 322.0,
			"households": 126.0, "median_income": 8.3252, "ocean_proximity": "NEAR BAY",
		},
	},
	{
		Label: "Inland",
		Record: feature.Record{
			"longitude": -121.22, "latitude": 39.43, "housing_median_age": 7.0,
			"total_rooms": 1430.0, "total_bedrooms": 244.0, "population": 515.0,
			"households": 226.0, "median_income": 3.8462, "ocean_proximity": "INLAND",
		},
	},
}

type fieldView struct {
	fieldSpec
	Value float64
}

type exampleView struct {
	Label     string
	Proximity string
	Result    string
	Err       string
}

type indexView struct {
	Fields            []fieldView
	Proximities       []string
	SelectedProximity string
	Prediction        string
	PredictionErr     string
	Examples          []exampleView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	start := time.Now()
	defer func() {
		metrics.PredictionDuration.WithLabelValues("index").Observe(time.Since(start).Seconds())
	}()

	view := indexView{
		Proximities:       feature.OceanProximityValues,
		SelectedProximity: defaultProximity,
	}

	rec := feature.Record{}
	var parseErr string
	for _, fs := range fieldSpecs {
		value := fs.Default
		if raw := r.FormValue(fs.Name); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				parseErr = "invalid value for " + fs.Label
			} else {
				value = v
			}
		}
		rec[fs.Name] = value
		view.Fields = append(view.Fields, fieldView{fieldSpec: fs, Value: value})
	}
	if prox := r.FormValue(feature.CategoricalName); prox != "" {
		view.SelectedProximity = prox
	}
	rec[feature.CategoricalName] = view.SelectedProximity

	if parseErr != "" {
		view.PredictionErr = parseErr
	} else {
		out, err := s.pred.Predict(predictor.Single(rec))
		if err != nil {
			metrics.PredictionErrors.WithLabelValues("index", string(comerrors.CodeOf(err))).Inc()
			view.PredictionErr = err.Error()
		} else {
			metrics.PredictionsTotal.WithLabelValues("index").Inc()
			view.Prediction = FormatUSD(out[0])
			s.recordPrediction(r, rec, out[0])
		}
	}

	for _, ex := range exampleRecords {
		ev := exampleView{
			Label:     ex.Label,
			Proximity: ex.Record[feature.CategoricalName].(string),
		}
		out, err := s.pred.Predict(predictor.Single(ex.Record))
		if err != nil {
			ev.Err = err.Error()
		} else {
			ev.Result = FormatUSD(out[0])
		}
		view.Examples = append(view.Examples, ev)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, view); err != nil {
		s.log.WithError(err).Error("render index", nil)
	}
}

// recordSchemaJSON type-checks a prediction request record; presence of the
// required fields is the predictor's job, so nothing here is required.
const recordSchemaJSON = `{
	"type": "object",
	"properties": {
		"longitude": {"type": "number"},
		"latitude": {"type": "number"},
		"housing_median_age": {"type": "number"},
		"total_rooms": {"type": "number"},
		"total_bedrooms": {"type": "number"},
		"population": {"type": "number"},
		"households": {"type": "number"},
		"median_income": {"type": "number"},
		"ocean_proximity": {"type": "string"}
	},
	"additionalProperties": true
}`

var recordSchema = gojsonschema.NewStringLoader(recordSchemaJSON)

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
	Formatted   []string  `json:"formatted"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	defer func() {
		metrics.PredictionDuration.WithLabelValues("api").Observe(time.Since(start).Seconds())
	}()

	var raw interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, comerrors.NewRequestInvalidError("malformed JSON body: "+err.Error()))
		return
	}

	// Unwrap the {"records": [...]} batch envelope.
	if m, ok := raw.(map[string]interface{}); ok {
		if records, found := m["records"]; found {
			raw = records
		}
	}

	recs, shapeErr := recordsOf(raw)
	if shapeErr != nil {
		metrics.PredictionErrors.WithLabelValues("api", string(comerrors.CodeOf(shapeErr))).Inc()
		s.writeError(w, shapeErr)
		return
	}
	for _, rec := range recs {
		result, err := gojsonschema.Validate(recordSchema, gojsonschema.NewGoLoader(rec))
		if err != nil {
			s.writeError(w, comerrors.NewRequestInvalidError(err.Error()))
			return
		}
		if !result.Valid() {
			var msgs []string
			for _, desc := range result.Errors() {
				msgs = append(msgs, desc.String())
			}
			metrics.PredictionErrors.WithLabelValues("api", "REQUEST_INVALID").Inc()
			s.writeError(w, comerrors.NewRequestInvalidError(strings.Join(msgs, "; ")))
			return
		}
	}

	// Single-record requests go through the cache.
	if len(recs) == 1 && s.cache != nil {
		if v, ok := s.cache.Get(r.Context(), recs[0]); ok {
			s.respondPredictions(w, []float64{v})
			metrics.PredictionsTotal.WithLabelValues("api").Inc()
			return
		}
	}

	in, err := predictor.Coerce(raw)
	if err != nil {
		metrics.PredictionErrors.WithLabelValues("api", string(comerrors.CodeOf(err))).Inc()
		s.writeError(w, err)
		return
	}
	out, err := s.pred.Predict(in)
	if err != nil {
		metrics.PredictionErrors.WithLabelValues("api", string(comerrors.CodeOf(err))).Inc()
		s.writeError(w, err)
		return
	}
	metrics.PredictionsTotal.WithLabelValues("api").Inc()

	if len(recs) == 1 && s.cache != nil {
		if err := s.cache.Set(r.Context(), recs[0], out[0]); err != nil {
			s.log.WithError(err).Warn("cache prediction", nil)
		}
	}
	for i, rec := range recs {
		s.recordPrediction(r, rec, out[i])
	}

	s.respondPredictions(w, out)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"loaded": s.pred.Loaded(),
	}
	code := http.StatusOK
	if !s.pred.Loaded() {
		status["status"] = "unavailable"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

// recordsOf extracts the record list from decoded JSON for schema checking
// and caching. Shapes the predictor would reject are rejected here too.
func recordsOf(raw interface{}) ([]feature.Record, error) {
	switch x := raw.(type) {
	case map[string]interface{}:
		return []feature.Record{x}, nil
	case []interface{}:
		recs := make([]feature.Record, len(x))
		for i, el := range x {
			m, ok := el.(map[string]interface{})
			if !ok {
				return nil, comerrors.NewShapeError(el)
			}
			recs[i] = m
		}
		return recs, nil
	default:
		return nil, comerrors.NewShapeError(raw)
	}
}

func (s *Server) recordPrediction(r *http.Request, rec feature.Record, prediction float64) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(r.Context(), rec, prediction); err != nil {
		s.log.WithError(err).Warn("record prediction", nil)
	}
}

func (s *Server) respondPredictions(w http.ResponseWriter, out []float64) {
	resp := predictResponse{
		Predictions: out,
		Formatted:   make([]string, len(out)),
	}
	for i, v := range out {
		resp.Formatted[i] = FormatUSD(v)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch comerrors.CodeOf(err) {
	case comerrors.ErrCodeSchemaInvalid, comerrors.ErrCodeDomainInvalid,
		comerrors.ErrCodeShapeInvalid, comerrors.ErrCodeRequestInvalid:
		status = http.StatusBadRequest
	case comerrors.ErrCodeModelNotLoaded:
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	var se *comerrors.StandardError
	if ok := comerrors.AsStandard(err, &se); ok {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": se})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"message": err.Error()},
	})
}
