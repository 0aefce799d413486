package model

import (
	"bytes"
	"encoding/gob"
	"os"

	"github.com/obesitylab/obego/pkg/errors"
)

// EncodeModel serializes a fitted model with gob. Only exported fields are
// encoded, so estimators keep their learned parameters exported.
func EncodeModel(model interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(model); err != nil {
		return nil, errors.Wrap(err, "encoding model")
	}
	return buf.Bytes(), nil
}

// SaveModel writes a fitted model to a file.
func SaveModel(model interface{}, filename string) error {
	data, err := EncodeModel(model)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing model to %s", filename)
	}
	return nil
}

// LoadModel reads a model previously written by SaveModel into model, which
// must be a pointer to the same concrete type.
func LoadModel(model interface{}, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "opening model file %s", filename)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(model); err != nil {
		return errors.Wrapf(err, "decoding model from %s", filename)
	}
	return nil
}
