package harness

import "github.com/roach88/watchset/internal/registry"

// TraceEvent records one executed step.
type TraceEvent struct {
	Step    int      `json:"step"`
	Op      string   `json:"op"`
	List    string   `json:"list,omitempty"`
	SN      int64    `json:"sn"`
	Seq     int64    `json:"seq,omitempty"`
	Members []string `json:"members,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`

	// Dump is the text rendering of the final registry state.
	Dump string `json:"dump"`

	Snapshot registry.Snapshot[string] `json:"snapshot"`
}

func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
