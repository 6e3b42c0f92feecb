package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/watchset/internal/ir"
)

// Scenario is one YAML test case.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Config is a CUE file or directory, relative to the scenario file.
	Config string `yaml:"config,omitempty"`

	// Registry is an inline definition used when Config is empty.
	Registry map[string]any `yaml:"registry,omitempty"`

	// Session fixes the journal session id. Defaults to "scenario-<name>".
	Session string `yaml:"session,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is an operation plus an optional expectation about its outcome.
type Step struct {
	ir.Op  `yaml:",inline"`
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect checks a single step. Members applies to get and get_until; Error
// is the code the step must fail with.
type Expect struct {
	Members []string `yaml:"members,omitempty"`
	Error   string   `yaml:"error,omitempty"`
}

// Assertion checks final state after all steps ran.
type Assertion struct {
	Type string `yaml:"type"`

	// final_state
	List    string   `yaml:"list,omitempty"`
	Until   bool     `yaml:"until,omitempty"`
	Pos     int64    `yaml:"pos,omitempty"`
	Members []string `yaml:"members,omitempty"`

	// current_sn
	SN int64 `yaml:"sn,omitempty"`

	// journal_count
	Count int `yaml:"count,omitempty"`
}

// Assertion types.
const (
	AssertFinalState    = "final_state"
	AssertCurrentSN     = "current_sn"
	AssertJournalCount  = "journal_count"
	AssertReplayMatches = "replay_matches"
)

// LoadScenario reads a scenario file, resolving its config path against the
// file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads a scenario file, resolving a relative config
// path against basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) && basePath != "" {
		scenario.Config = filepath.Join(basePath, scenario.Config)
	}
	if scenario.Config != "" {
		if _, err := os.Stat(scenario.Config); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: config not found: %s", scenario.Config)
		}
	}
	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML. Unknown fields are
// rejected so that typos fail loudly.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// SessionID is the journal session the scenario runs under.
func (s *Scenario) SessionID() string {
	if s.Session != "" {
		return s.Session
	}
	return "scenario-" + s.Name
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	switch {
	case s.Config == "" && s.Registry == nil:
		return fmt.Errorf("one of config or registry is required")
	case s.Config != "" && s.Registry != nil:
		return fmt.Errorf("config and registry are mutually exclusive")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Kind == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if step.Expect == nil {
			continue
		}
		if step.Expect.Members != nil && step.Expect.Error != "" {
			return fmt.Errorf("steps[%d].expect: members and error are mutually exclusive", i)
		}
		if step.Expect.Members != nil && !step.IsQuery() {
			return fmt.Errorf("steps[%d].expect: members only apply to get and get_until", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFinalState:
		if a.List == "" {
			return fmt.Errorf("assertions[%d]: list is required for final_state", index)
		}
		if a.Members == nil {
			return fmt.Errorf("assertions[%d]: members is required for final_state", index)
		}
		if a.Pos > 0 {
			return fmt.Errorf("assertions[%d]: pos must be <= 0", index)
		}
	case AssertJournalCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertCurrentSN, AssertReplayMatches:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
