package embedding

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Metadata describes a saved model artifact.
type Metadata struct {
	ID             string    `json:"id"`
	TrainedAt      time.Time `json:"trained_at"`
	SavedAt        time.Time `json:"saved_at,omitempty"`
	Users          int       `json:"users"`
	Recipes        int       `json:"recipes"`
	TrainSize      int       `json:"train_size"`
	ValidationSize int       `json:"validation_size"`
	TrainLoss      float64   `json:"train_loss"`
	ValidationLoss float64   `json:"validation_loss"`
	Checksum       string    `json:"checksum,omitempty"`
}

// Metadata summarizes the model without its weights.
func (m *Model) Metadata() Metadata {
	return Metadata{
		ID:             m.ID,
		TrainedAt:      m.TrainedAt,
		Users:          len(m.UserIndex),
		Recipes:        len(m.RecipeIndex),
		TrainSize:      m.TrainSize,
		ValidationSize: m.ValidationSize,
		TrainLoss:      m.TrainLoss,
		ValidationLoss: m.ValidationLoss,
	}
}

// artifact is the on-disk envelope: gzip(gob(artifact)).
type artifact struct {
	Metadata Metadata
	Data     []byte
}

// SaveArtifact writes the model to path atomically and returns the stored
// metadata, including the SHA-256 of the encoded weights.
func SaveArtifact(path string, m *Model) (Metadata, error) {
	var data bytes.Buffer
	if err := gob.NewEncoder(&data).Encode(m); err != nil {
		return Metadata{}, fmt.Errorf("encode model: %w", err)
	}
	sum := sha256.Sum256(data.Bytes())

	meta := m.Metadata()
	meta.SavedAt = time.Now()
	meta.Checksum = hex.EncodeToString(sum[:])

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Metadata{}, fmt.Errorf("create model dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".model-*.gob.gz")
	if err != nil {
		return Metadata{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	zw := gzip.NewWriter(tmp)
	if err := gob.NewEncoder(zw).Encode(artifact{Metadata: meta, Data: data.Bytes()}); err != nil {
		tmp.Close()
		return Metadata{}, fmt.Errorf("encode artifact: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return Metadata{}, fmt.Errorf("compress artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Metadata{}, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Metadata{}, fmt.Errorf("replace %s: %w", path, err)
	}
	return meta, nil
}

// LoadArtifact reads a model saved by SaveArtifact and verifies its checksum.
func LoadArtifact(path string) (*Model, Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Metadata{}, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("open artifact: %w", err)
	}
	defer zr.Close()

	var a artifact
	if err := gob.NewDecoder(zr).Decode(&a); err != nil {
		return nil, Metadata{}, fmt.Errorf("decode artifact: %w", err)
	}

	sum := sha256.Sum256(a.Data)
	if hex.EncodeToString(sum[:]) != a.Metadata.Checksum {
		return nil, Metadata{}, ErrChecksumMismatch
	}

	var m Model
	if err := gob.NewDecoder(bytes.NewReader(a.Data)).Decode(&m); err != nil {
		return nil, Metadata{}, fmt.Errorf("decode model: %w", err)
	}
	return &m, a.Metadata, nil
}
