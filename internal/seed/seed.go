// Package seed loads canned problem/solution pairs from YAML.
package seed

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"supportdesk/internal/models"
)

type file struct {
	Solutions []models.Solution `yaml:"solutions"`
}

// LoadSolutions decodes a document of the form
//
//	solutions:
//	  - problem: ...
//	    solution: ...
//	    category: ...
//
// Entries missing a problem or a solution are rejected.
func LoadSolutions(r io.Reader) ([]models.Solution, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return []models.Solution{}, nil
		}
		return nil, fmt.Errorf("decode solutions: %w", err)
	}

	out := make([]models.Solution, 0, len(f.Solutions))
	for i, s := range f.Solutions {
		s.Problem = strings.TrimSpace(s.Problem)
		s.Solution = strings.TrimSpace(s.Solution)
		s.Category = strings.TrimSpace(s.Category)
		if s.Problem == "" || s.Solution == "" {
			return nil, fmt.Errorf("solution #%d: problem and solution are required", i+1)
		}
		out = append(out, s)
	}
	return out, nil
}
