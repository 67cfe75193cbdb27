package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scimtools/scim-sanity/schema"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		urn      string
		found    bool
		wantName string
	}{
		"user": {
			urn:      schema.URNUser,
			found:    true,
			wantName: "User",
		},
		"group": {
			urn:      schema.URNGroup,
			found:    true,
			wantName: "Group",
		},
		"enterprise user extension": {
			urn:      schema.URNEnterpriseUser,
			found:    true,
			wantName: "EnterpriseUser",
		},
		"agent": {
			urn:      schema.URNAgent,
			found:    true,
			wantName: "Agent",
		},
		"agentic application": {
			urn:      schema.URNAgenticApplication,
			found:    true,
			wantName: "AgenticApplication",
		},
		"patch op message": {
			urn:      schema.URNPatchOp,
			found:    true,
			wantName: "PatchOp",
		},
		"list response message": {
			urn:      schema.URNListResponse,
			found:    true,
			wantName: "ListResponse",
		},
		"error message": {
			urn:      schema.URNError,
			found:    true,
			wantName: "Error",
		},
		"service provider config": {
			urn:      schema.URNServiceProviderConfig,
			found:    true,
			wantName: "ServiceProviderConfig",
		},
		"resource type": {
			urn:      schema.URNResourceType,
			found:    true,
			wantName: "ResourceType",
		},
		"unknown urn": {
			urn:   "urn:ietf:params:scim:schemas:core:2.0:Robot",
			found: false,
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s, ok := schema.Lookup(tc.urn)
			assert.Equal(t, tc.found, ok)

			if tc.found {
				require.NotNil(t, s)
				assert.Equal(t, tc.wantName, s.Name)
				assert.Equal(t, tc.urn, s.URN)
			}
		})
	}
}

func TestLookupAttribute(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		urn   string
		path  string
		found bool
		check func(t *testing.T, a *schema.Attribute)
	}{
		"top level userName": {
			urn: schema.URNUser, path: "userName", found: true,
			check: func(t *testing.T, a *schema.Attribute) {
				t.Helper()
				assert.True(t, a.Required)
				assert.Equal(t, schema.UniquenessServer, a.Uniqueness)
			},
		},
		"nested meta.created": {
			urn: schema.URNUser, path: "meta.created", found: true,
			check: func(t *testing.T, a *schema.Attribute) {
				t.Helper()
				assert.Equal(t, schema.TypeDateTime, a.Type)
				assert.True(t, a.ReadOnly())
			},
		},
		"password is writeOnly and never returned": {
			urn: schema.URNUser, path: "password", found: true,
			check: func(t *testing.T, a *schema.Attribute) {
				t.Helper()
				assert.Equal(t, schema.MutabilityWriteOnly, a.Mutability)
				assert.Equal(t, schema.ReturnedNever, a.Returned)
				assert.True(t, a.NeverReturned())
			},
		},
		"group members value": {
			urn: schema.URNGroup, path: "members.value", found: true,
		},
		"agent keeps draft typo": {
			urn: schema.URNAgent, path: "protocols.specifiationUrl", found: true,
		},
		"missing attribute": {
			urn: schema.URNUser, path: "shoeSize", found: false,
		},
		"descend into scalar": {
			urn: schema.URNUser, path: "userName.value", found: false,
		},
		"unknown schema": {
			urn: "urn:example:nope", path: "userName", found: false,
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			a, ok := schema.LookupAttribute(tc.urn, tc.path)
			require.Equal(t, tc.found, ok)

			if tc.found {
				require.NotNil(t, a)

				if tc.check != nil {
					tc.check(t, a)
				}
			}
		})
	}
}

func TestEveryResourceCarriesIDAndMeta(t *testing.T) {
	t.Parallel()

	for _, urn := range []string{
		schema.URNUser,
		schema.URNGroup,
		schema.URNAgent,
		schema.URNAgenticApplication,
	} {
		s, ok := schema.Lookup(urn)
		require.True(t, ok)

		id := s.Attribute("id")
		require.NotNil(t, id, "%s must define id", urn)
		assert.True(t, id.ReadOnly())
		assert.Equal(t, schema.ReturnedAlways, id.Returned)

		meta := s.Attribute("meta")
		require.NotNil(t, meta, "%s must define meta", urn)
		assert.True(t, meta.ReadOnly())

		for _, sub := range []string{"resourceType", "created", "lastModified", "location", "version"} {
			_, ok := schema.LookupAttribute(urn, "meta."+sub)
			assert.True(t, ok, "%s must define meta.%s", urn, sub)
		}
	}
}

func TestAttributeNamesUniqueWithinGroups(t *testing.T) {
	t.Parallel()

	var checkGroup func(t *testing.T, urn string, attrs []schema.Attribute, where string)

	checkGroup = func(t *testing.T, urn string, attrs []schema.Attribute, where string) {
		t.Helper()

		seen := make(map[string]bool, len(attrs))

		for _, a := range attrs {
			assert.False(t, seen[a.Name], "%s: duplicate attribute %q in %s", urn, a.Name, where)
			seen[a.Name] = true

			if len(a.SubAttributes) > 0 {
				checkGroup(t, urn, a.SubAttributes, where+"."+a.Name)
			}
		}
	}

	for _, urn := range []string{
		schema.URNUser, schema.URNGroup, schema.URNEnterpriseUser,
		schema.URNAgent, schema.URNAgenticApplication,
		schema.URNPatchOp, schema.URNListResponse, schema.URNError,
		schema.URNServiceProviderConfig, schema.URNResourceType,
	} {
		s, ok := schema.Lookup(urn)
		require.True(t, ok)
		checkGroup(t, urn, s.Attributes, "top level")
	}
}

func TestIsExtensionURN(t *testing.T) {
	t.Parallel()

	assert.True(t, schema.IsExtensionURN(schema.URNEnterpriseUser))
	assert.False(t, schema.IsExtensionURN(schema.URNUser))
	assert.False(t, schema.IsExtensionURN(schema.URNAgent))
}
