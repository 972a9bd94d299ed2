package model

import (
	"encoding/gob"
	"io"
	"os"

	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// SaveModel serializes v to filename using encoding/gob. v is typically a
// fitted regressor or a preprocessing artifact bundle; its concrete type
// must be gob-registered when saved through an interface value.
func SaveModel(v interface{}, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return wsErrors.NewModelError("SaveModel", "failed to create file", err)
	}
	defer func() { _ = f.Close() }()

	return SaveModelToWriter(v, f)
}

// SaveModelToWriter serializes v to w using encoding/gob.
func SaveModelToWriter(v interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return wsErrors.NewModelError("SaveModel", "gob encoding failed", err)
	}
	return nil
}

// LoadModel deserializes filename into v, which must be a pointer to the
// same concrete type that was saved. A missing file surfaces as an
// ArtifactMissingError so callers can degrade a single task instead of
// failing the whole process.
func LoadModel(v interface{}, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return wsErrors.NewArtifactMissingError("model", filename)
		}
		return wsErrors.NewModelError("LoadModel", "failed to open file", err)
	}
	defer func() { _ = f.Close() }()

	return LoadModelFromReader(v, f)
}

// LoadModelFromReader deserializes gob data from r into v.
func LoadModelFromReader(v interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(v); err != nil {
		return wsErrors.NewModelError("LoadModel", "gob decoding failed", err)
	}
	return nil
}
