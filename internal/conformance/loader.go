// Package conformance loads the Molang conformance suite and runs its cases
// through the toolchain.
//
// The suite is a directory of groups. Each group is a YAML file listing cases:
//
//	cases:
//	  - id: precedence-1
//	    source: "1 + 2 * 3"
//	    tree: "(program (expr (binary + (number 1) (binary * (number 2) (number 3)))))"
//	    format: "1 + 2 * 3"
//	  - id: missing-operand
//	    source: "1 +"
//	    syntax: [S0203]
//
// Every case is parsed. Syntax codes must match exactly; an absent list means
// the source must parse cleanly. tree and format are compared when present,
// and semantic, when present, lists the expected checker codes.
package conformance

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TestCase is a single conformance case.
type TestCase struct {
	ID       string    `yaml:"id"`
	Source   string    `yaml:"source"`
	Tree     string    `yaml:"tree,omitempty"`
	Format   *string   `yaml:"format,omitempty"`
	Syntax   []string  `yaml:"syntax,omitempty"`
	Panicked bool      `yaml:"panicked,omitempty"`
	Semantic *[]string `yaml:"semantic,omitempty"`
	Strict   bool      `yaml:"strict,omitempty"`
	Target   string    `yaml:"target,omitempty"`
}

// TestGroup holds the cases of one group file.
type TestGroup struct {
	Name  string
	Path  string
	Cases []*TestCase
}

// TestSuite is the complete suite.
type TestSuite struct {
	Groups []*TestGroup
	Total  int
}

// LoadTestGroup loads the cases of a single group file.
func LoadTestGroup(path string) (*TestGroup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open group: %w", err)
	}
	defer f.Close()

	var doc struct {
		Cases []*TestCase `yaml:"cases"`
	}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse group %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	seen := make(map[string]bool, len(doc.Cases))
	for i, c := range doc.Cases {
		if c.ID == "" {
			c.ID = fmt.Sprintf("%s-%d", name, i+1)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("group %s: duplicate case id %q", name, c.ID)
		}
		seen[c.ID] = true
	}

	return &TestGroup{Name: name, Path: path, Cases: doc.Cases}, nil
}

// LoadSuite loads every group file in the groups directory of suiteDir.
func LoadSuite(suiteDir string) (*TestSuite, error) {
	groupsPath := filepath.Join(suiteDir, "groups")

	entries, err := os.ReadDir(groupsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read groups directory: %w", err)
	}

	suite := &TestSuite{}
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		group, err := LoadTestGroup(filepath.Join(groupsPath, entry.Name()))
		if err != nil {
			return nil, err
		}
		suite.Groups = append(suite.Groups, group)
		suite.Total += len(group.Cases)
	}

	// Sort by group name for consistent output
	sort.Slice(suite.Groups, func(i, j int) bool {
		return suite.Groups[i].Name < suite.Groups[j].Name
	})
	return suite, nil
}
