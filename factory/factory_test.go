package factory_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scimtools/scim-sanity/factory"
	"github.com/scimtools/scim-sanity/validate"
)

func TestGeneratedResourcesAreValid(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		make      func() map[string]any
		prefixOf  string
		wantValue string
	}{
		"user": {
			make:     factory.User,
			prefixOf: "userName",
		},
		"group": {
			make:     func() map[string]any { return factory.Group(nil) },
			prefixOf: "displayName",
		},
		"group with members": {
			make: func() map[string]any {
				return factory.Group([]any{
					map[string]any{"value": "2819c223", "display": "Test User"},
				})
			},
			prefixOf: "displayName",
		},
		"agent": {
			make:     factory.Agent,
			prefixOf: "name",
		},
		"agentic application": {
			make:     factory.AgenticApplication,
			prefixOf: "name",
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			payload := tc.make()

			ok, errs := validate.Full(payload)
			require.True(t, ok, "generated payload must validate: %v", errs)

			value, _ := payload[tc.prefixOf].(string)
			assert.True(t, strings.HasPrefix(value, factory.TestPrefix),
				"%s %q must carry the test prefix", tc.prefixOf, value)
		})
	}
}

func TestGeneratedValuesAreUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		u := factory.User()

		name, _ := u["userName"].(string)
		require.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate userName %q", name)
		seen[name] = true
	}
}

func TestForResourceType(t *testing.T) {
	t.Parallel()

	for _, rt := range []string{"User", "Group", "Agent", "AgenticApplication"} {
		payload := factory.ForResourceType(rt)
		require.NotNil(t, payload, rt)

		ok, errs := validate.Full(payload)
		assert.True(t, ok, "%s: %v", rt, errs)
	}

	assert.Nil(t, factory.ForResourceType("Robot"))
}

func TestPatch(t *testing.T) {
	t.Parallel()

	payload := factory.Patch(
		factory.Op{Op: "replace", Path: "active", Value: false},
		factory.Op{Op: "remove", Path: "members"},
	)

	ok, errs := validate.Patch(payload)
	require.True(t, ok, "%v", errs)

	ops, isList := payload["Operations"].([]any)
	require.True(t, isList)
	require.Len(t, ops, 2)

	first, isMap := ops[0].(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, "replace", first["op"])
	assert.Equal(t, "active", first["path"])
	assert.Equal(t, false, first["value"])

	second, isMap := ops[1].(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, "remove", second["op"])
	assert.NotContains(t, second, "value")
}

func TestUpdateDisplayNameDoesNotMutate(t *testing.T) {
	t.Parallel()

	original := factory.User()
	before, _ := original["displayName"].(string)

	updated := factory.UpdateDisplayName(original, "Renamed")

	assert.Equal(t, "Renamed", updated["displayName"])
	assert.Equal(t, before, original["displayName"])

	ok, errs := validate.Full(updated)
	assert.True(t, ok, "%v", errs)
}
