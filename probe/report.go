package probe

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Issue is one entry of the prioritized fix summary derived from
// failures.
type Issue struct {
	Priority      string `json:"priority"`
	Title         string `json:"title"`
	Rationale     string `json:"rationale"`
	Fix           string `json:"fix"`
	AffectedTests int    `json:"affected_tests"`
}

// knownIssue matches failures either by a substring of the result
// message or, when MessageSubstring is empty, by a phase prefix.
type knownIssue struct {
	priority         string
	title            string
	messageSubstring string
	phasePrefix      string
	rationale        string
	fix              string
}

var knownIssues = []knownIssue{
	{
		priority:         "P1",
		title:            "Wrong Content-Type on SCIM responses",
		messageSubstring: "Content-Type should be application/scim+json",
		rationale: "Compliant clients inspect Content-Type before parsing so every response is " +
			"rejected regardless of whether the body is otherwise correct.",
		fix: "Set Content-Type: application/scim+json on all responses served from /scim/v2/",
	},
	{
		priority:    "P2",
		title:       "Discovery endpoints not implemented",
		phasePrefix: "Phase 1",
		rationale: "Enterprise IdPs query these endpoints before provisioning to learn server " +
			"capabilities; without them clients must hardcode assumptions or fail outright " +
			"before sending a single user or group.",
		fix: "Implement GET /ServiceProviderConfig, /Schemas, and /ResourceTypes",
	},
	{
		priority:         "P3",
		title:            "Missing meta timestamps on resource responses",
		messageSubstring: "meta.created",
		rationale: "Without meta.lastModified, incremental sync is impossible and clients must " +
			"full-scan every cycle or risk missing updates; meta.created is required for " +
			"audit trails in regulated environments.",
		fix: "Include meta.created and meta.lastModified in all resource representations",
	},
	{
		priority:         "P4",
		title:            "Missing Location header on 201 Created",
		messageSubstring: "Location header should be present",
		rationale: "Clients that treat a missing Location as a failed create will silently discard " +
			"every newly provisioned user or group with no error surfaced to the operator.",
		fix: "Return Location: <base>/<resource>/<id> in all create (POST) responses",
	},
	{
		priority:         "P5",
		title:            "Missing status field in error response bodies",
		messageSubstring: "missing required attribute 'status'",
		rationale: "Low impact in practice since the HTTP status code carries the same information, " +
			"but programmatic error parsers that expect this field will fail or fall back " +
			"to less specific handling.",
		fix: `Include "status": "<http_code>" in all SCIM error response JSON bodies`,
	},
}

// FixSummary derives a prioritized list of distinct issues from the
// failures in results. Failures matching no known pattern are rolled
// into a final catch-all entry.
func FixSummary(results []Result) []Issue {
	var failures []*Result

	for i := range results {
		if results[i].Status == StatusFail || results[i].Status == StatusError {
			failures = append(failures, &results[i])
		}
	}

	var issues []Issue

	matched := make(map[*Result]bool)

	for _, known := range knownIssues {
		var affected []*Result

		for _, r := range failures {
			if known.messageSubstring != "" {
				if strings.Contains(strings.ToLower(r.Message), strings.ToLower(known.messageSubstring)) {
					affected = append(affected, r)
				}
			} else if known.phasePrefix != "" && strings.HasPrefix(r.Phase, known.phasePrefix) {
				affected = append(affected, r)
			}
		}

		if len(affected) == 0 {
			continue
		}

		for _, r := range affected {
			matched[r] = true
		}

		issues = append(issues, Issue{
			Priority:      known.priority,
			Title:         known.title,
			Rationale:     known.rationale,
			Fix:           known.fix,
			AffectedTests: len(affected),
		})
	}

	unmatched := 0

	for _, r := range failures {
		if !matched[r] {
			unmatched++
		}
	}

	if unmatched > 0 {
		issues = append(issues, Issue{
			Priority:      "?",
			Title:         fmt.Sprintf("%d failure(s) not matched to a known root cause", unmatched),
			Rationale:     "These failures did not match any known issue pattern and require individual investigation.",
			Fix:           "Review the individual test output above for specific error messages.",
			AffectedTests: unmatched,
		})
	}

	return issues
}

// Report renders probe results to a writer in terminal or JSON form.
type Report struct {
	Results   []Result
	Mode      string
	Version   string
	Timestamp string
}

// WriteJSON renders the machine-readable report.
func (rep Report) WriteJSON(w io.Writer) error {
	issues := FixSummary(rep.Results)
	if issues == nil {
		issues = []Issue{}
	}

	out := struct {
		Version   string   `json:"scim_sanity_version"`
		Mode      string   `json:"mode"`
		Timestamp string   `json:"timestamp"`
		Summary   Summary  `json:"summary"`
		Issues    []Issue  `json:"issues"`
		Results   []Result `json:"results"`
	}{
		Version:   rep.Version,
		Mode:      rep.Mode,
		Timestamp: rep.Timestamp,
		Summary:   Summarize(rep.Results),
		Issues:    issues,
		Results:   rep.Results,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

// printer wraps fatih/color with per-writer color detection: escape
// codes are emitted only when the writer is a terminal.
type printer struct {
	w     io.Writer
	bold  *color.Color
	red   *color.Color
	faint *color.Color
}

func newPrinter(w io.Writer) *printer {
	p := &printer{
		w:     w,
		bold:  color.New(color.Bold),
		red:   color.New(color.FgRed),
		faint: color.New(color.Faint),
	}

	colored := false
	if f, ok := w.(*os.File); ok {
		colored = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	for _, c := range []*color.Color{p.bold, p.red, p.faint} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

func (p *printer) plainf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

var statusStyles = map[Status]struct {
	label string
	style func(p *printer) *color.Color
}{
	StatusPass:  {"PASS", func(p *printer) *color.Color { return p.bold }},
	StatusFail:  {"FAIL", func(p *printer) *color.Color { return p.red }},
	StatusWarn:  {"WARN", func(p *printer) *color.Color { return p.faint }},
	StatusSkip:  {"SKIP", func(p *printer) *color.Color { return p.faint }},
	StatusError: {"ERR ", func(p *printer) *color.Color { return p.red }},
}

// WriteTerminal renders the human-readable report grouped by phase, with
// a summary footer, a fix summary when failures are present, and a
// verdict line.
func (rep Report) WriteTerminal(w io.Writer) {
	p := newPrinter(w)
	sum := Summarize(rep.Results)

	p.plainf("\n")
	p.bold.Fprintln(p.w, "SCIM Server Conformance Probe")
	p.faint.Fprintln(p.w, strings.Repeat("=", 50))

	meta := []string{}
	if rep.Version != "" {
		meta = append(meta, "scim-sanity "+rep.Version)
	}

	meta = append(meta, "mode: "+rep.Mode)
	if rep.Timestamp != "" {
		meta = append(meta, rep.Timestamp)
	}

	p.faint.Fprintln(p.w, "  "+strings.Join(meta, "  |  "))

	currentPhase := ""

	for _, r := range rep.Results {
		if r.Phase != "" && r.Phase != currentPhase {
			currentPhase = r.Phase

			p.plainf("\n")
			p.bold.Fprintf(p.w, "  %s\n", currentPhase)
			p.faint.Fprintln(p.w, "  "+strings.Repeat("-", 40))
		}

		style, ok := statusStyles[r.Status]
		if !ok {
			style.label = "??? "
			style.style = func(p *printer) *color.Color { return p.faint }
		}

		p.plainf("  [%s] %s\n", style.style(p).Sprint(style.label), r.Name)

		if r.Message != "" {
			p.plainf("         %s\n", p.faint.Sprint(wrapIssueList(r.Message)))
		}
	}

	p.plainf("\n")
	p.faint.Fprintln(p.w, strings.Repeat("=", 50))

	parts := []string{}
	if sum.Passed > 0 {
		parts = append(parts, p.bold.Sprintf("%d passed", sum.Passed))
	}

	if sum.Failed > 0 {
		parts = append(parts, p.red.Sprintf("%d failed", sum.Failed))
	}

	if sum.Errors > 0 {
		parts = append(parts, p.red.Sprintf("%d errors", sum.Errors))
	}

	if sum.Warnings > 0 {
		parts = append(parts, p.faint.Sprintf("%d warnings", sum.Warnings))
	}

	if sum.Skipped > 0 {
		parts = append(parts, p.faint.Sprintf("%d skipped", sum.Skipped))
	}

	parts = append(parts, fmt.Sprintf("%d total", sum.Total))
	p.plainf("  %s\n", strings.Join(parts, ", "))

	issues := FixSummary(rep.Results)
	if len(issues) > 0 {
		p.plainf("\n")
		p.bold.Fprintln(p.w, "  Fix Summary")
		p.faint.Fprintln(p.w, "  "+strings.Repeat("-", 40))

		for _, issue := range issues {
			label := "tests"
			if issue.AffectedTests == 1 {
				label = "test"
			}

			p.plainf("  [%s] Trouble: %s %s\n",
				p.red.Sprint(issue.Priority), issue.Title,
				p.faint.Sprintf("(%d %s affected)", issue.AffectedTests, label))
			p.plainf("       Fix: %s\n", p.faint.Sprint(issue.Fix))
			p.plainf("       Rationale: %s\n", p.faint.Sprint(issue.Rationale))
		}
	}

	p.plainf("\n")
	p.faint.Fprintln(p.w, "  "+strings.Repeat("-", 40))

	switch {
	case sum.Failed == 0 && sum.Errors == 0:
		p.bold.Fprintln(p.w, "  Result: All tests passed.")
	case len(issues) > 0:
		known := 0
		first := ""

		for _, issue := range issues {
			if issue.Priority != "?" {
				known++
				if first == "" {
					first = issue.Priority
				}
			}
		}

		label := "root causes"
		if known == 1 {
			label = "root cause"
		}

		resolve := ""
		if first != "" {
			resolve = fmt.Sprintf(" Resolve %s first.", first)
		}

		p.faint.Fprintf(p.w, "  Result: %d %s account for the failures.%s\n", known, label, resolve)
	default:
		p.faint.Fprintf(p.w, "  Result: %d failure(s) — review individual test output for details.\n",
			sum.Failed+sum.Errors)
	}

	p.plainf("\n")
}

// wrapIssueList inserts line breaks between semicolon-delimited issues
// so long finding lists stay readable in a terminal.
func wrapIssueList(message string) string {
	return strings.ReplaceAll(message, "; ", ";\n         ")
}
