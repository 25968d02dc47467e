package crawl

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed crawl.yaml
var defaultCatalog []byte

// Stage is one pub on the crawl route.
type Stage struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Catalog is the fixed crawl route and punishment wheel. It is static
// configuration, never persisted.
type Catalog struct {
	StagePoints int      `yaml:"stage_points"`
	Stages      []Stage  `yaml:"stages"`
	Punishments []string `yaml:"punishments"`
}

// LoadCatalog parses the embedded catalog, or the file at path when given.
func LoadCatalog(path string) (*Catalog, error) {
	raw := defaultCatalog
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
	}

	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Stages) == 0 {
		return fmt.Errorf("at least one stage is required")
	}
	if len(c.Punishments) == 0 {
		return fmt.Errorf("at least one punishment is required")
	}
	if c.StagePoints <= 0 {
		return fmt.Errorf("stage_points must be positive")
	}
	seen := make(map[string]bool, len(c.Stages))
	for _, s := range c.Stages {
		if s.ID == "" {
			return fmt.Errorf("stage id must not be empty")
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate stage id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// TotalStages returns N, the terminal stage index.
func (c *Catalog) TotalStages() int {
	return len(c.Stages)
}
