package predictor

import (
	comerrors "housepredict/internal/common/errors"
	"housepredict/internal/feature"
)

// Input is the discriminated set of shapes Predict accepts: a single
// record, a batch of records, or an already-tabular frame.
type Input interface {
	frame() *feature.Frame
}

// Single is a one-row prediction request.
type Single feature.Record

func (s Single) frame() *feature.Frame {
	return feature.FrameFromRecord(feature.Record(s))
}

// Batch is a multi-row prediction request in slice order.
type Batch []feature.Record

func (b Batch) frame() *feature.Frame {
	return feature.FrameFromRecords([]feature.Record(b))
}

// Table wraps an existing frame.
type Table struct {
	Frame *feature.Frame
}

func (t Table) frame() *feature.Frame {
	return t.Frame
}

// Coerce converts loosely typed input, such as decoded JSON, into an Input.
// Anything that is not a mapping, a slice of mappings, or a frame is
// rejected with a shape error.
func Coerce(v interface{}) (Input, error) {
	switch x := v.(type) {
	case Input:
		return x, nil
	case feature.Record:
		return Single(x), nil
	case map[string]interface{}:
		return Single(x), nil
	case []feature.Record:
		return Batch(x), nil
	case []map[string]interface{}:
		recs := make([]feature.Record, len(x))
		for i, m := range x {
			recs[i] = m
		}
		return Batch(recs), nil
	case []interface{}:
		recs := make([]feature.Record, len(x))
		for i, el := range x {
			m, ok := el.(map[string]interface{})
			if !ok {
				return nil, comerrors.NewShapeError(el)
			}
			recs[i] = m
		}
		return Batch(recs), nil
	case *feature.Frame:
		return Table{Frame: x}, nil
	default:
		return nil, comerrors.NewShapeError(v)
	}
}
