package checker

import (
	"context"
	"fmt"
	"os"

	"github.com/platinummonkey/apicheck/pkg/apimodel"
	"github.com/platinummonkey/apicheck/pkg/storage"
)

// ParseFunc turns snapshot text into a Model. name labels parse errors.
type ParseFunc func(ctx context.Context, name string, text []byte) (*apimodel.Model, error)

// Source supplies one side of a comparison.
type Source interface {
	// String describes the source in logs and errors.
	String() string
	// Load produces the Model, using parse for any snapshot text.
	Load(ctx context.Context, parse ParseFunc) (*apimodel.Model, error)
}

// TextSource is snapshot text held in memory, such as a request body.
type TextSource struct {
	Name string
	Text []byte
}

func (s TextSource) String() string {
	if s.Name == "" {
		return "<text>"
	}
	return s.Name
}

func (s TextSource) Load(ctx context.Context, parse ParseFunc) (*apimodel.Model, error) {
	return parse(ctx, s.Name, s.Text)
}

// FileSource is a snapshot file on disk.
type FileSource struct {
	Path string
}

func (s FileSource) String() string {
	return s.Path
}

func (s FileSource) Load(ctx context.Context, parse ParseFunc) (*apimodel.Model, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return parse(ctx, s.Path, data)
}

// StoreSource is the accepted baseline of a module in a baseline store.
type StoreSource struct {
	Store  storage.BaselineReader
	Module string
}

func (s StoreSource) String() string {
	return "baseline:" + s.Module
}

func (s StoreSource) Load(ctx context.Context, parse ParseFunc) (*apimodel.Model, error) {
	data, err := s.Store.Get(ctx, s.Module)
	if err != nil {
		return nil, err
	}
	return parse(ctx, s.String(), data)
}

// Extractor produces the current API surface in-process, without going
// through the snapshot text format.
type Extractor interface {
	ExtractCurrentModel(ctx context.Context) (*apimodel.Model, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context) (*apimodel.Model, error)

func (f ExtractorFunc) ExtractCurrentModel(ctx context.Context) (*apimodel.Model, error) {
	return f(ctx)
}

// ExtractorSource asks an Extractor for the Model.
type ExtractorSource struct {
	Name      string
	Extractor Extractor
}

func (s ExtractorSource) String() string {
	if s.Name == "" {
		return "<extracted>"
	}
	return s.Name
}

func (s ExtractorSource) Load(ctx context.Context, _ ParseFunc) (*apimodel.Model, error) {
	m, err := s.Extractor.ExtractCurrentModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract current API: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("extractor %s returned no model", s)
	}
	return m, nil
}
