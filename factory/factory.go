// Package factory generates valid SCIM payloads for probing. Every
// generated value carries the scim-sanity-test- prefix and a random hex
// suffix, so probe resources are easy to spot on a live server and never
// collide with real data.
package factory

import (
	"strings"

	"github.com/google/uuid"

	"github.com/scimtools/scim-sanity/schema"
)

// TestPrefix marks every generated value for namespace isolation.
const TestPrefix = "scim-sanity-test-"

// Op is a single PATCH operation.
type Op struct {
	Op    string `json:"op"`
	Path  string `json:"path,omitempty"`
	Value any    `json:"value,omitempty"`
}

// suffix returns an 8-character hex string for unique test values.
func suffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// User generates a minimal valid User payload with a unique userName.
// It includes name, displayName, active, and emails to exercise common
// server-side attribute handling during the CRUD lifecycle.
func User() map[string]any {
	sfx := suffix()
	email := TestPrefix + sfx + "@example.com"

	return map[string]any{
		"schemas":  []string{schema.URNUser},
		"userName": email,
		"name": map[string]any{
			"givenName":  "SCIMSanity",
			"familyName": "Test-" + sfx,
		},
		"displayName": "SCIM Sanity Test User " + sfx,
		"active":      true,
		"emails": []any{
			map[string]any{
				"value":   email,
				"type":    "work",
				"primary": true,
			},
		},
	}
}

// Group generates a minimal valid Group payload with a unique
// displayName. members may be nil.
func Group(members []any) map[string]any {
	payload := map[string]any{
		"schemas":     []string{schema.URNGroup},
		"displayName": TestPrefix + "group-" + suffix(),
	}

	if len(members) > 0 {
		payload["members"] = members
	}

	return payload
}

// Agent generates a minimal valid Agent payload per
// draft-abbey-scim-agent-extension-00.
func Agent() map[string]any {
	sfx := suffix()

	return map[string]any{
		"schemas":     []string{schema.URNAgent},
		"name":        TestPrefix + "agent-" + sfx,
		"displayName": "SCIM Sanity Test Agent " + sfx,
		"active":      true,
	}
}

// AgenticApplication generates a minimal valid AgenticApplication
// payload.
func AgenticApplication() map[string]any {
	sfx := suffix()

	return map[string]any{
		"schemas":     []string{schema.URNAgenticApplication},
		"name":        TestPrefix + "app-" + sfx,
		"displayName": "SCIM Sanity Test App " + sfx,
		"active":      true,
	}
}

// ForResourceType generates a payload for the named resource type, or
// nil for an unknown type.
func ForResourceType(resourceType string) map[string]any {
	switch resourceType {
	case "User":
		return User()
	case "Group":
		return Group(nil)
	case "Agent":
		return Agent()
	case "AgenticApplication":
		return AgenticApplication()
	default:
		return nil
	}
}

// Patch wraps operations in a PatchOp message.
func Patch(operations ...Op) map[string]any {
	ops := make([]any, 0, len(operations))

	for _, op := range operations {
		m := map[string]any{"op": op.Op}
		if op.Path != "" {
			m["path"] = op.Path
		}

		if op.Value != nil {
			m["value"] = op.Value
		}

		ops = append(ops, m)
	}

	return map[string]any{
		"schemas":    []string{schema.URNPatchOp},
		"Operations": ops,
	}
}

// UpdateDisplayName returns a shallow copy of a payload with displayName
// changed. The original is not mutated; it is reused for PUT testing.
func UpdateDisplayName(original map[string]any, name string) map[string]any {
	updated := make(map[string]any, len(original)+1)
	for k, v := range original {
		updated[k] = v
	}

	updated["displayName"] = name

	return updated
}
