package probe

// Status classifies the outcome of one conformance check.
type Status string

const (
	// StatusPass means the check succeeded.
	StatusPass Status = "pass"
	// StatusFail means the server violated the spec.
	StatusFail Status = "fail"
	// StatusWarn flags a known deviation that does not fail the run.
	StatusWarn Status = "warn"
	// StatusSkip means the check was not applicable or not reachable.
	StatusSkip Status = "skip"
	// StatusError means the check could not complete, usually a transport
	// failure.
	StatusError Status = "error"
)

// Result is a single conformance check outcome.
type Result struct {
	// Name identifies the check, e.g. "POST /Users".
	Name string `json:"name"`
	// Status is the outcome.
	Status Status `json:"status"`
	// Message carries detail about the outcome.
	Message string `json:"message,omitempty"`
	// Details is extended detail included only in JSON output.
	Details string `json:"details,omitempty"`
	// Phase groups results in output, e.g. "Phase 2 — User CRUD
	// Lifecycle".
	Phase string `json:"phase,omitempty"`
}

// Summary counts results by status.
type Summary struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Warnings int `json:"warnings"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// Summarize tallies a result list.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}

	for _, r := range results {
		switch r.Status {
		case StatusPass:
			s.Passed++
		case StatusFail:
			s.Failed++
		case StatusWarn:
			s.Warnings++
		case StatusSkip:
			s.Skipped++
		case StatusError:
			s.Errors++
		}
	}

	return s
}

// HasFailures reports whether any result is a failure or an error.
// Warnings and skips do not count.
func HasFailures(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusFail || r.Status == StatusError {
			return true
		}
	}

	return false
}
