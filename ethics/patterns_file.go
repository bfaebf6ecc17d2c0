package ethics

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type patternsFile struct {
	Patterns []struct {
		Name     string `yaml:"name"`
		Category string `yaml:"category"`
		Re       string `yaml:"re"`
	} `yaml:"patterns"`
}

// LoadPatternsFile reads operator-supplied extra patterns from a YAML file.
func LoadPatternsFile(path string) ([]Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ethics patterns %s: %w", path, err)
	}
	var doc patternsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode ethics patterns %s: %w", path, err)
	}
	out := make([]Pattern, 0, len(doc.Patterns))
	for i, p := range doc.Patterns {
		if strings.TrimSpace(p.Re) == "" {
			return nil, fmt.Errorf("ethics patterns %s: entry %d has empty re", path, i)
		}
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = fmt.Sprintf("extra_%d", i)
		}
		category := strings.TrimSpace(p.Category)
		if category == "" {
			category = "custom"
		}
		out = append(out, Pattern{Name: name, Category: category, Re: p.Re})
	}
	return out, nil
}
