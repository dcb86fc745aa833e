// Package ioreference loads reference data either from the embedded
// document or from a YAML file set in config.yaml.
package ioreference

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/gizisehat/gizi/internal/iofs"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/refdata"
)

type loader struct {
	path string
}

// New creates a ReferenceSource. Empty path means embedded data.
func New(path string) gizi.ReferenceSource {
	return &loader{path: path}
}

// Load reads, parses and validates the reference document.
func (l *loader) Load(ctx context.Context) (*refdata.Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.path == "" {
		slog.Debug("Using embedded reference data")
		return refdata.Default()
	}

	b, err := iofs.ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	doc, err := refdata.Parse(l.path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	res, err := refdata.Build(doc)
	if err != nil {
		return nil, err
	}
	slog.Info("Reference data loaded",
		"file", l.path,
		"tables", res.Standards.Len(),
		"foods", res.Catalog.Len(),
	)
	return res, nil
}
