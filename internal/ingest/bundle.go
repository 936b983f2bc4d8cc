package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/viewspace/internal/field"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// #region bundle
// Bundle is one ingestion payload from the data-generation side: field
// profiles, the subspace search output and the rendered candidates.
type Bundle struct {
	Name   string `json:"name" yaml:"name"`
	Fields struct {
		Origin  []field.Summary `json:"origin" yaml:"origin"`
		Grouped []field.Summary `json:"grouped" yaml:"grouped"`
	} `json:"fields" yaml:"fields"`
	Subspaces []viewspace.Subspace  `json:"subspaces" yaml:"subspaces"`
	Views     []viewspace.ViewSpace `json:"candidates" yaml:"candidates"`
}

// Label names the data source.
func (b *Bundle) Label() string {
	return b.Name
}

// Candidates returns the rendered candidates in ingestion order.
func (b *Bundle) Candidates() []viewspace.ViewSpace {
	return b.Views
}

// Catalog returns origin summaries followed by grouped summaries.
func (b *Bundle) Catalog() field.Catalog {
	return field.NewCatalog(b.Fields.Origin, b.Fields.Grouped)
}

// #endregion bundle

// #region load
// Load reads a bundle from a .json, .yaml or .yml file. A bundle without
// candidates gets one derived candidate per subspace.
func Load(path string) (*Bundle, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	bundle, err := Decode(bytes.NewReader(b), filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if bundle.Name == "" {
		bundle.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return bundle, nil
}

// Decode parses a bundle in the format named by ext (".json", ".yaml", ".yml").
func Decode(r io.Reader, ext string) (*Bundle, error) {
	var bundle Bundle
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.NewDecoder(r).Decode(&bundle); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&bundle); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported bundle format %q", ext)
	}

	if len(bundle.Views) == 0 && len(bundle.Subspaces) > 0 {
		bundle.Views = DeriveCandidates(bundle.Subspaces, bundle.Catalog())
	}
	return &bundle, nil
}

// #endregion load
