// Package probe runs a conformance test sequence against a live SCIM
// server. A [Runner] connects to the server, walks seven phases of
// checks from discovery through error handling, cleans up every
// resource it created, and reports the results in terminal or JSON
// form.
//
// The probe has side effects by design: it creates, modifies, and
// deletes real resources on the target. Three mechanisms keep it safe
// on production servers: the run refuses to start until the caller
// accepts side effects, every generated value carries the
// scim-sanity-test- prefix, and the rapid lifecycle phase is capped at
// [MaxRapidAgents] creations.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/scimtools/scim-sanity/factory"
	"github.com/scimtools/scim-sanity/response"
	"github.com/scimtools/scim-sanity/scimclient"
	"github.com/scimtools/scim-sanity/version"
)

// trackedResource records a created resource for cleanup.
type trackedResource struct {
	endpoint string
	id       string
}

// Runner executes the probe sequence against one server.
type Runner struct {
	baseURL           string
	client            *scimclient.Client
	validator         *response.Validator
	out               io.Writer
	skipCleanup       bool
	jsonOutput        bool
	resourceFilter    string
	acceptSideEffects bool
	rapidAgentCount   int
	sleep             func(time.Duration)

	results []Result
	created []trackedResource
}

// Run executes all probe phases and writes the report. It returns 0
// when every check passed (warnings and skips are fine) and 1 when any
// check failed or errored, or when side effects were not accepted.
func (r *Runner) Run(ctx context.Context) int {
	if !r.acceptSideEffects {
		r.writeSideEffectWarning()

		return 1
	}

	mode := "strict"
	if !r.validator.Strict {
		mode = "compat"
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	r.discovery(ctx)

	supported := r.discoverSupportedResources(ctx)

	requested := supported
	if r.resourceFilter != "" {
		requested = map[string]bool{r.resourceFilter: true}
	}

	r.userLifecycle(ctx, requested)
	r.groupLifecycle(ctx, requested)
	r.agentLifecycle(ctx, requested, supported)
	r.agenticApplicationLifecycle(ctx, requested, supported)
	r.agentRapidLifecycle(ctx, requested, supported)
	r.search(ctx)
	r.errorHandling(ctx)

	if !r.skipCleanup && len(r.created) > 0 {
		r.cleanup(ctx)
	}

	report := Report{
		Results:   r.results,
		Mode:      mode,
		Version:   version.Version,
		Timestamp: timestamp,
	}

	if r.jsonOutput {
		if err := report.WriteJSON(r.out); err != nil {
			slog.Error("write report", "error", err)
		}
	} else {
		report.WriteTerminal(r.out)
	}

	if HasFailures(r.results) {
		return 1
	}

	return 0
}

// Results returns the accumulated check outcomes of the last run.
func (r *Runner) Results() []Result {
	return r.results
}

func (r *Runner) add(result Result) {
	slog.Debug("probe check",
		"phase", result.Phase,
		"name", result.Name,
		"status", result.Status,
		"message", result.Message)

	r.results = append(r.results, result)
}

// writeSideEffectWarning explains the consent requirement and how to
// proceed. The probe never touches the server before consent.
func (r *Runner) writeSideEffectWarning() {
	resources := r.resourceFilter
	if resources == "" {
		resources = "User, Group, Agent, AgenticApplication"
	}

	if r.jsonOutput {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")

		_ = enc.Encode(map[string]string{
			"error": "Side-effect consent required",
			"message": fmt.Sprintf(
				"The probe will create, modify, and delete test resources (%s) on %s. "+
					"All test resources use the prefix '%s'. "+
					"Pass --i-accept-side-effects to proceed.",
				resources, r.baseURL, factory.TestPrefix),
		})

		return
	}

	fmt.Fprintf(r.out,
		"\n  The probe will create, modify, and delete test resources\n"+
			"  (%s) on:\n\n"+
			"    %s\n\n"+
			"  All test resources use the prefix '%s'.\n"+
			"  Pass --i-accept-side-effects to proceed.\n\n",
		resources, r.baseURL, factory.TestPrefix)
}

// cleanup deletes tracked resources in reverse creation order so that
// dependent resources go before the resources they reference.
func (r *Runner) cleanup(ctx context.Context) {
	const phase = "Cleanup"

	for i := len(r.created) - 1; i >= 0; i-- {
		res := r.created[i]
		name := fmt.Sprintf("DELETE %s/%s", res.endpoint, res.id)

		resp, err := r.client.Delete(ctx, res.endpoint+"/"+res.id)
		if err != nil {
			r.add(Result{Name: name, Status: StatusError, Message: err.Error(), Phase: phase})

			continue
		}

		if resp.StatusCode == http.StatusNoContent {
			r.add(Result{Name: name, Status: StatusPass, Phase: phase})
		} else {
			r.add(Result{
				Name:    name,
				Status:  StatusFail,
				Message: fmt.Sprintf("Expected 204, got %d", resp.StatusCode),
				Phase:   phase,
			})
		}
	}
}

// untrack removes a resource from the cleanup list after a successful
// in-test delete, avoiding a double-delete during cleanup.
func (r *Runner) untrack(id string) {
	kept := r.created[:0]

	for _, res := range r.created {
		if res.id != id {
			kept = append(kept, res)
		}
	}

	r.created = kept
}
