package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/ratiobreaks/internal/store"
)

func ToYAML(cycles []store.Cycle, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create yaml file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(cycles)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}
