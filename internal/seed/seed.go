// Package seed provides the fixed dataset the blog starts from, plus helpers
// to generate demo content. These helpers are intended for development and
// testing only.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"folio/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Dataset is the set of records a repository is initialized with.
// Posts are ordered newest first.
type Dataset struct {
	Categories []models.Category `yaml:"categories"`
	Profiles   []models.Profile  `yaml:"profiles"`
	Posts      []models.Post     `yaml:"posts"`
}

// Loader produces a Dataset. Repositories call it once during initialization.
type Loader func(ctx context.Context) (Dataset, error)

// Default returns the embedded dataset: three categories, one author and three
// posts, all in the Technology category.
func Default() Dataset {
	ds, err := Decode(bytes.NewReader(defaultFixtures))
	if err != nil {
		panic(fmt.Sprintf("seed: embedded fixtures are invalid: %v", err))
	}
	return ds
}

// Decode parses a YAML fixture document.
func Decode(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return Dataset{}, nil
		}
		return Dataset{}, fmt.Errorf("decode fixtures: %w", err)
	}
	for i := range ds.Posts {
		p := &ds.Posts[i]
		if p.ID == "" {
			return Dataset{}, fmt.Errorf("post %d: id is required", i)
		}
		if p.UpdatedAt.Before(p.CreatedAt) {
			p.UpdatedAt = p.CreatedAt
		}
	}
	return ds, nil
}

// DefaultLoader returns a Loader serving the embedded dataset.
func DefaultLoader() Loader {
	return func(_ context.Context) (Dataset, error) {
		return Default(), nil
	}
}

// FileLoader returns a Loader that reads fixtures from path on every call.
// An empty path falls back to the embedded dataset.
func FileLoader(path string) Loader {
	if path == "" {
		return DefaultLoader()
	}
	return func(_ context.Context) (Dataset, error) {
		f, err := os.Open(path)
		if err != nil {
			return Dataset{}, fmt.Errorf("open fixtures: %w", err)
		}
		defer f.Close()
		return Decode(f)
	}
}
