package artifact

import (
	"encoding/gob"
	"fmt"
	"os"

	comerrors "housepredict/internal/common/errors"
)

// LoadModel deserializes a forest artifact. A missing path is reported as
// ArtifactNotFound before any decoding is attempted.
func LoadModel(path string) (*RegressionForest, error) {
	var m RegressionForest
	if err := loadGob(path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadPipeline deserializes a preprocessing pipeline artifact.
func LoadPipeline(path string) (*Pipeline, error) {
	var p Pipeline
	if err := loadGob(path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveModel serializes a forest artifact to path.
func SaveModel(path string, m *RegressionForest) error {
	return saveGob(path, m)
}

// SavePipeline serializes a pipeline artifact to path.
func SavePipeline(path string, p *Pipeline) error {
	return saveGob(path, p)
}

func loadGob(path string, v interface{}) error {
	if _, err := os.Stat(path); err != nil {
		return comerrors.NewArtifactNotFoundError(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return nil
}

func saveGob(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create artifact %s: %w", path, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("encode artifact %s: %w", path, err)
	}
	return nil
}
