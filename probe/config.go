package probe

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scimtools/scim-sanity/response"
	"github.com/scimtools/scim-sanity/scimclient"
)

// MaxRapidAgents caps the rapid lifecycle test to prevent runaway
// resource creation on production servers.
const MaxRapidAgents = 10

// Flags holds CLI flag names for probe configuration, allowing callers
// to customize flag names while keeping sensible defaults.
type Flags struct {
	Token             string
	Username          string
	Password          string
	TLSNoVerify       string
	CABundle          string
	Proxy             string
	SkipCleanup       string
	JSONOutput        string
	Resource          string
	Strict            string
	Compat            string
	Timeout           string
	AcceptSideEffects string
}

// Config holds CLI flag values for probe configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewRunner] to create a [Runner].
type Config struct {
	Flags             Flags
	Token             string
	Username          string
	Password          string
	TLSNoVerify       bool
	CABundle          string
	Proxy             string
	SkipCleanup       bool
	JSONOutput        bool
	Resource          string
	Strict            bool
	Compat            bool
	Timeout           int
	AcceptSideEffects bool
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		Token:             "token",
		Username:          "username",
		Password:          "password",
		TLSNoVerify:       "tls-no-verify",
		CABundle:          "ca-bundle",
		Proxy:             "proxy",
		SkipCleanup:       "skip-cleanup",
		JSONOutput:        "json-output",
		Resource:          "resource",
		Strict:            "strict",
		Compat:            "compat",
		Timeout:           "timeout",
		AcceptSideEffects: "i-accept-side-effects",
	}

	return &Config{Flags: f, Strict: true}
}

// RegisterFlags adds probe flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Token, c.Flags.Token, "",
		"bearer token for authentication")
	flags.StringVar(&c.Username, c.Flags.Username, "",
		"username for HTTP basic authentication")
	flags.StringVar(&c.Password, c.Flags.Password, "",
		"password for HTTP basic authentication")
	flags.BoolVar(&c.TLSNoVerify, c.Flags.TLSNoVerify, false,
		"skip TLS certificate verification")
	flags.StringVar(&c.CABundle, c.Flags.CABundle, "",
		"path to a CA bundle file for TLS certificate verification")
	flags.StringVar(&c.Proxy, c.Flags.Proxy, "",
		"HTTP/HTTPS proxy URL")
	flags.BoolVar(&c.SkipCleanup, c.Flags.SkipCleanup, false,
		"leave test resources on the server")
	flags.BoolVar(&c.JSONOutput, c.Flags.JSONOutput, false,
		"output results as JSON instead of terminal text")
	flags.StringVar(&c.Resource, c.Flags.Resource, "",
		"probe only a specific resource type (User, Group, Agent, AgenticApplication)")
	flags.BoolVar(&c.Strict, c.Flags.Strict, true,
		"strict mode: treat known real-world deviations as failures")
	flags.BoolVar(&c.Compat, c.Flags.Compat, false,
		"compat mode: downgrade known real-world deviations to warnings (overrides --strict)")
	flags.IntVar(&c.Timeout, c.Flags.Timeout, 30,
		"per-request timeout in seconds")
	flags.BoolVar(&c.AcceptSideEffects, c.Flags.AcceptSideEffects, false,
		"acknowledge that the probe creates, modifies, and deletes resources on the target server")
}

// RegisterCompletions registers shell completions for probe flags on
// cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Resource,
		cobra.FixedCompletions(
			[]string{"User", "Group", "Agent", "AgenticApplication"},
			cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Resource, err)
	}

	return nil
}

// NewRunner creates a [Runner] targeting baseURL using this [Config].
func (c *Config) NewRunner(baseURL string, opts ...RunnerOption) (*Runner, error) {
	client, err := scimclient.New(scimclient.Config{
		BaseURL:     baseURL,
		Token:       c.Token,
		Username:    c.Username,
		Password:    c.Password,
		TLSNoVerify: c.TLSNoVerify,
		CABundle:    c.CABundle,
		Proxy:       c.Proxy,
		Timeout:     time.Duration(c.Timeout) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	r := &Runner{
		baseURL:           baseURL,
		client:            client,
		validator:         &response.Validator{Strict: c.Strict && !c.Compat},
		out:               os.Stdout,
		skipCleanup:       c.SkipCleanup,
		jsonOutput:        c.JSONOutput,
		resourceFilter:    c.Resource,
		acceptSideEffects: c.AcceptSideEffects,
		rapidAgentCount:   MaxRapidAgents,
		sleep:             time.Sleep,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.rapidAgentCount > MaxRapidAgents {
		r.rapidAgentCount = MaxRapidAgents
	}

	return r, nil
}

// RunnerOption configures a [Runner].
type RunnerOption func(*Runner)

// WithOutput redirects report output, which goes to stdout by default.
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.out = w
	}
}

// WithClient replaces the SCIM client, mainly to inject retry timing in
// tests.
func WithClient(client *scimclient.Client) RunnerOption {
	return func(r *Runner) {
		r.client = client
	}
}

// WithRapidAgentCount sets how many agents the rapid lifecycle phase
// creates. Values above [MaxRapidAgents] are capped.
func WithRapidAgentCount(n int) RunnerOption {
	return func(r *Runner) {
		r.rapidAgentCount = n
	}
}

// WithSleep replaces the sleep used before retrying a POST that
// returned 500.
func WithSleep(sleep func(time.Duration)) RunnerOption {
	return func(r *Runner) {
		r.sleep = sleep
	}
}
