package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/datacrew/metadata"
	"gopkg.in/yaml.v3"
)

// Loader reads crew definitions from any afs URL.
type Loader struct {
	fs afs.Service
}

// NewLoader creates a loader
func NewLoader(fs afs.Service) *Loader {
	if fs == nil {
		fs = afs.New()
	}
	return &Loader{fs: fs}
}

// Load reads and validates definitions from URL, the embedded defaults when URL is empty.
func (l *Loader) Load(ctx context.Context, URL string) (*Definitions, error) {
	var data []byte
	var err error
	if strings.TrimSpace(URL) == "" {
		URL = metadata.DefaultCrew
		data, err = l.fs.DownloadWithURL(ctx, URL, &metadata.FS)
	} else {
		data, err = l.fs.DownloadWithURL(ctx, URL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load crew definitions from %s: %w", URL, err)
	}
	return Parse(data, URL)
}

// Parse decodes and validates YAML definitions; source is used in errors.
func Parse(data []byte, source string) (*Definitions, error) {
	result := &Definitions{}
	if err := yaml.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("failed to decode crew definitions %s: %w", source, err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crew definitions %s: %w", source, err)
	}
	return result, nil
}
