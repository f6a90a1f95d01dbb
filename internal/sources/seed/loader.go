// Package seed loads the starter data written for new accounts.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultFile []byte

// Loader reads the seed YAML, falling back to the embedded default
type Loader struct {
	filePath string
}

// NewLoader creates a loader; an empty path selects the embedded file
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the seed file
func (l *Loader) Load() (File, error) {
	data := defaultFile
	if l.filePath != "" {
		var err error
		if data, err = os.ReadFile(l.filePath); err != nil {
			return File{}, fmt.Errorf("failed to read seed file: %w", err)
		}
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to parse seed yaml: %w", err)
	}
	return f, nil
}
