package probe_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scimtools/scim-sanity/factory"
	"github.com/scimtools/scim-sanity/probe"
	"github.com/scimtools/scim-sanity/scimclient"
	"github.com/scimtools/scim-sanity/scimtest"
)

// newRunner builds a probe runner against srv with side effects
// accepted, reporting into the returned buffer.
func newRunner(t *testing.T, srv *scimtest.Server, mutate func(*probe.Config), opts ...probe.RunnerOption) (*probe.Runner, *bytes.Buffer) {
	t.Helper()

	cfg := probe.NewConfig()
	cfg.AcceptSideEffects = true
	cfg.Timeout = 5

	if mutate != nil {
		mutate(cfg)
	}

	var buf bytes.Buffer

	opts = append([]probe.RunnerOption{
		probe.WithOutput(&buf),
		probe.WithRapidAgentCount(2),
		probe.WithSleep(func(time.Duration) {}),
	}, opts...)

	runner, err := cfg.NewRunner(srv.BaseURL(), opts...)
	require.NoError(t, err)

	return runner, &buf
}

func startServer(t *testing.T, cfg scimtest.Config) *scimtest.Server {
	t.Helper()

	srv, err := scimtest.Start(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	return srv
}

func failureMessages(results []probe.Result) []string {
	var messages []string

	for _, r := range results {
		if r.Status == probe.StatusFail || r.Status == probe.StatusError {
			messages = append(messages, r.Message)
		}
	}

	return messages
}

func TestRunAgainstConformantServer(t *testing.T) {
	t.Parallel()

	srv := startServer(t, scimtest.Config{})
	runner, buf := newRunner(t, srv, nil)

	code := runner.Run(context.Background())

	assert.Equal(t, 0, code, "failures: %v", failureMessages(runner.Results()))
	assert.Contains(t, buf.String(), "Result: All tests passed.")

	// Every resource the probe created must be gone again.
	assert.Equal(t, 0, srv.Count("Users"))
	assert.Equal(t, 0, srv.Count("Groups"))
	assert.Equal(t, 0, srv.Count("Agents"))
	assert.Equal(t, 0, srv.Count("AgenticApplications"))
}

func TestRunDetectsMissingMeta(t *testing.T) {
	t.Parallel()

	srv := startServer(t, scimtest.Config{MissingMeta: true})
	runner, _ := newRunner(t, srv, nil)

	code := runner.Run(context.Background())

	assert.Equal(t, 1, code)

	var mentionsMeta bool

	for _, message := range failureMessages(runner.Results()) {
		if strings.Contains(message, "meta") {
			mentionsMeta = true
		}
	}

	assert.True(t, mentionsMeta, "expected a failure mentioning meta")
}

func TestContentTypeModeSensitivity(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		compat   bool
		wantCode int
	}{
		"strict mode fails on application/json": {compat: false, wantCode: 1},
		"compat mode downgrades to warnings":    {compat: true, wantCode: 0},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			srv := startServer(t, scimtest.Config{ContentTypeJSON: true})
			runner, _ := newRunner(t, srv, func(c *probe.Config) {
				c.Compat = tc.compat
			})

			code := runner.Run(context.Background())

			assert.Equal(t, tc.wantCode, code,
				"failures: %v", failureMessages(runner.Results()))

			if tc.compat {
				sum := probe.Summarize(runner.Results())
				assert.Positive(t, sum.Warnings)
			}
		})
	}
}

func TestRunSurvivesThrottling(t *testing.T) {
	t.Parallel()

	srv := startServer(t, scimtest.Config{ThrottleCount: 2})

	client, err := scimclient.New(scimclient.Config{
		BaseURL: srv.BaseURL(),
		Timeout: 5 * time.Second,
	}, scimclient.WithSleep(func(time.Duration) {}))
	require.NoError(t, err)

	runner, _ := newRunner(t, srv, nil, probe.WithClient(client))

	code := runner.Run(context.Background())

	assert.Equal(t, 0, code, "failures: %v", failureMessages(runner.Results()))
}

func TestRunRequiresSideEffectConsent(t *testing.T) {
	t.Parallel()

	srv := startServer(t, scimtest.Config{})
	runner, buf := newRunner(t, srv, func(c *probe.Config) {
		c.AcceptSideEffects = false
	})

	code := runner.Run(context.Background())

	assert.Equal(t, 1, code)
	assert.Empty(t, runner.Results())
	assert.Contains(t, buf.String(), factory.TestPrefix)
	assert.Contains(t, buf.String(), "--i-accept-side-effects")

	// Consent is checked before any request is made.
	assert.Equal(t, 0, srv.RequestCount())
}

func TestRunConsentRefusalAsJSON(t *testing.T) {
	t.Parallel()

	srv := startServer(t, scimtest.Config{})
	runner, buf := newRunner(t, srv, func(c *probe.Config) {
		c.AcceptSideEffects = false
		c.JSONOutput = true
	})

	code := runner.Run(context.Background())

	assert.Equal(t, 1, code)

	var doc map[string]string

	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Side-effect consent required", doc["error"])
	assert.Contains(t, doc["message"], srv.BaseURL())
}

func TestRunJSONOutput(t *testing.T) {
	t.Parallel()

	srv := startServer(t, scimtest.Config{})
	runner, buf := newRunner(t, srv, func(c *probe.Config) {
		c.JSONOutput = true
	})

	code := runner.Run(context.Background())
	require.Equal(t, 0, code, "failures: %v", failureMessages(runner.Results()))

	var doc struct {
		Version string        `json:"scim_sanity_version"`
		Mode    string        `json:"mode"`
		Summary probe.Summary `json:"summary"`
		Issues  []probe.Issue `json:"issues"`
	}

	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "strict", doc.Mode)
	assert.Zero(t, doc.Summary.Failed)
	assert.Zero(t, doc.Summary.Errors)
	assert.Empty(t, doc.Issues)
	assert.Positive(t, doc.Summary.Passed)
}

func TestRunResourceFilter(t *testing.T) {
	t.Parallel()

	srv := startServer(t, scimtest.Config{})
	runner, _ := newRunner(t, srv, func(c *probe.Config) {
		c.Resource = "User"
	})

	code := runner.Run(context.Background())
	assert.Equal(t, 0, code, "failures: %v", failureMessages(runner.Results()))

	skipped := make(map[string]string)

	for _, r := range runner.Results() {
		if r.Status == probe.StatusSkip {
			skipped[r.Name] = r.Message
		}
	}

	assert.Equal(t, "Group not in scope", skipped["Group CRUD Lifecycle"])
	assert.Equal(t, "Agent not in scope", skipped["Agent CRUD Lifecycle"])
	assert.Equal(t, "AgenticApplication not in scope", skipped["AgenticApplication CRUD Lifecycle"])

	// Only users are created when the filter narrows the run.
	assert.Equal(t, 0, srv.Count("Groups"))
}

func TestRunSkipsUnsupportedAgentTypes(t *testing.T) {
	t.Parallel()

	srv := startServer(t, scimtest.Config{
		SupportedResources: []string{"User", "Group"},
	})
	runner, _ := newRunner(t, srv, nil)

	code := runner.Run(context.Background())
	assert.Equal(t, 0, code, "failures: %v", failureMessages(runner.Results()))

	var agentSkips []string

	for _, r := range runner.Results() {
		if r.Status == probe.StatusSkip && strings.Contains(r.Name, "Agent") {
			agentSkips = append(agentSkips, r.Message)
		}
	}

	assert.Contains(t, agentSkips, "Agent not supported by server")
	assert.Contains(t, agentSkips, "AgenticApplication not supported by server")
}

func TestRunWarnsOnRejectedFilters(t *testing.T) {
	t.Parallel()

	srv := startServer(t, scimtest.Config{RejectFilters: true})
	runner, _ := newRunner(t, srv, nil)

	code := runner.Run(context.Background())
	assert.Equal(t, 0, code, "failures: %v", failureMessages(runner.Results()))

	var found bool

	for _, r := range runner.Results() {
		if r.Status == probe.StatusWarn &&
			strings.Contains(r.Message, "rejected filter with 400") {
			found = true
		}
	}

	assert.True(t, found, "expected a partial filter support warning")
}

func TestRunFixSummaryForMissingMetaFields(t *testing.T) {
	t.Parallel()

	srv := startServer(t, scimtest.Config{MissingMetaFields: true})
	runner, buf := newRunner(t, srv, nil)

	code := runner.Run(context.Background())

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "Missing meta timestamps on resource responses")
}

func TestRunnerCapsRapidAgentCount(t *testing.T) {
	t.Parallel()

	srv := startServer(t, scimtest.Config{})
	runner, _ := newRunner(t, srv, nil, probe.WithRapidAgentCount(1000))

	code := runner.Run(context.Background())
	assert.Equal(t, 0, code, "failures: %v", failureMessages(runner.Results()))

	var rapidResult *probe.Result

	for i, r := range runner.Results() {
		if strings.HasPrefix(r.Name, "Rapid create/delete") {
			rapidResult = &runner.Results()[i]
		}
	}

	require.NotNil(t, rapidResult)
	assert.Equal(t, "Rapid create/delete 10 agents", rapidResult.Name)
}
