package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrame(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string][]interface{}
		wantErr  bool
		wantRows int
	}{
		{
			name: "equal columns",
			data: map[string][]interface{}{
				"a": {1.0, 2.0},
				"b": {"x", "y"},
			},
			wantRows: 2,
		},
		{
			name: "ragged columns",
			data: map[string][]interface{}{
				"a": {1.0, 2.0},
				"b": {"x"},
			},
			wantErr: true,
		},
		{
			name:     "empty",
			data:     map[string][]interface{}{},
			wantRows: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFrame(tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, f.Rows())
		})
	}
}

func TestNewFrame_CopiesInput(t *testing.T) {
	vals := []interface{}{1.0, 2.0}
	f, err := NewFrame(map[string][]interface{}{"a": vals})
	require.NoError(t, err)

	vals[0] = 99.0
	assert.Equal(t, 1.0, f.Column("a")[0])
}

func TestFrameFromRecords_UnionOfKeys(t *testing.T) {
	f := FrameFromRecords([]Record{
		{"a": 1.0, "b": "x"},
		{"a": 2.0, "c": true},
	})

	assert.Equal(t, 2, f.Rows())
	assert.Equal(t, []string{"a", "b", "c"}, f.ColumnNames())
	assert.Equal(t, []interface{}{1.0, 2.0}, f.Column("a"))
	// A record without a key contributes nil in that column.
	assert.Equal(t, []interface{}{"x", nil}, f.Column("b"))
	assert.Equal(t, []interface{}{nil, true}, f.Column("c"))
}

func TestFrameFromRecord(t *testing.T) {
	f := FrameFromRecord(Record{"a": 1.0})
	assert.Equal(t, 1, f.Rows())
	assert.True(t, f.HasColumn("a"))
	assert.False(t, f.HasColumn("b"))
	assert.Nil(t, f.Column("b"))
}

func TestFloat(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    float64
		wantErr bool
	}{
		{"float64", 1.5, 1.5, false},
		{"float32", float32(2.5), 2.5, false},
		{"int", 3, 3.0, false},
		{"int32", int32(4), 4.0, false},
		{"int64", int64(5), 5.0, false},
		{"nil", nil, 0, true},
		{"string is not parsed", "1.5", 0, true},
		{"bool", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Float(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsValidOceanProximity(t *testing.T) {
	for _, v := range OceanProximityValues {
		assert.True(t, IsValidOceanProximity(v), v)
	}
	assert.False(t, IsValidOceanProximity("MOUNTAIN"))
	assert.False(t, IsValidOceanProximity("near bay"))
	assert.False(t, IsValidOceanProximity(""))
}
