package scenario

// Result statuses.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
	StatusError  = "error"
)

// Result is the outcome of one scenario file.
type Result struct {
	Path        string            `json:"path"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status"` // passed, failed, error
	DurationMs  int64             `json:"duration_ms"`
	Assertions  []AssertionResult `json:"assertions"`
	Error       string            `json:"error,omitempty"`
}

// AssertionResult is the outcome of a single expectation.
type AssertionResult struct {
	Type     string `json:"type"`          // file, no_file, content, no_content, json_content, composed, error
	Key      string `json:"key,omitempty"` // file path or namespace
	Expected string `json:"expected,omitempty"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message"`
}

// Summary aggregates results across scenarios.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Errors int `json:"errors"`
}

// Report is the top-level output of a scenario run.
type Report struct {
	Scenarios []Result `json:"scenarios"`
	Summary   Summary  `json:"summary"`
}

// OK reports whether every scenario passed.
func (r *Report) OK() bool {
	return r.Summary.Failed == 0 && r.Summary.Errors == 0
}

func (r *Report) add(res Result) {
	r.Scenarios = append(r.Scenarios, res)
	r.Summary.Total++
	switch res.Status {
	case StatusPassed:
		r.Summary.Passed++
	case StatusFailed:
		r.Summary.Failed++
	default:
		r.Summary.Errors++
	}
}
