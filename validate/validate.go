// Package validate checks outbound SCIM 2.0 payloads against the schema
// registry before they are submitted to a server.
//
// Two entry points cover the two document kinds: [Full] for complete
// resources (POST/PUT bodies) and [Patch] for PatchOp messages. Both
// return the accumulated findings in traversal order; they never return a
// Go error. [FullBytes] and [PatchBytes] decode JSON first and report
// malformed input as a finding.
//
// Validation is structural: required attributes, array-versus-object shape
// of complex values, readOnly attributes set by the client, and null
// values (which SCIM clears via PATCH remove, not null assignment).
// Attribute value types are not checked.
package validate

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/scimtools/scim-sanity/schema"
)

// Error is a single payload validation finding.
//
// Path is the dotted attribute path when the finding concerns a specific
// attribute; Line is a 1-based input line when the payload was decoded
// from text with line tracking, and 0 otherwise.
type Error struct {
	Message string
	Path    string
	Line    int
}

func (e Error) String() string {
	s := e.Message
	if e.Path != "" {
		s += " at " + e.Path
	}

	if e.Line > 0 {
		s += fmt.Sprintf(" (line %d)", e.Line)
	}

	return s
}

// coreResourceURNs are the base resource types a full payload must declare
// exactly one of.
var coreResourceURNs = []string{
	schema.URNUser,
	schema.URNGroup,
	schema.URNAgent,
	schema.URNAgenticApplication,
}

// FullBytes decodes data as JSON and validates it as a full SCIM resource.
func FullBytes(data []byte) (bool, []Error) {
	doc, err := decode(data)
	if err != nil {
		return false, []Error{{Message: "Invalid JSON: " + err.Error()}}
	}

	return Full(doc)
}

// PatchBytes decodes data as JSON and validates it as a PatchOp message.
func PatchBytes(data []byte) (bool, []Error) {
	doc, err := decode(data)
	if err != nil {
		return false, []Error{{Message: "Invalid JSON: " + err.Error()}}
	}

	return Patch(doc)
}

func decode(data []byte) (map[string]any, error) {
	var doc map[string]any

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Full validates a complete SCIM resource document (POST/PUT direction).
// It returns true iff no findings were produced.
func Full(doc map[string]any) (bool, []Error) {
	v := &validator{}
	v.full(doc)

	return len(v.errors) == 0, v.errors
}

// Patch validates a SCIM PatchOp document.
func Patch(doc map[string]any) (bool, []Error) {
	v := &validator{}
	v.patch(doc)

	return len(v.errors) == 0, v.errors
}

// validator accumulates findings during a single top-down traversal. It is
// created per call and holds no cross-call state.
type validator struct {
	errors []Error
}

func (v *validator) addf(path string, format string, args ...any) {
	v.errors = append(v.errors, Error{Message: fmt.Sprintf(format, args...), Path: path})
}

func (v *validator) full(doc map[string]any) {
	schemas, ok := schemasList(doc)
	if !ok {
		v.addf("", "Missing required field: 'schemas'")

		return
	}

	if len(schemas) == 0 {
		v.addf("", "'schemas' must be a non-empty array")

		return
	}

	var coreURNs []string

	for _, urn := range coreResourceURNs {
		if slices.Contains(schemas, urn) {
			coreURNs = append(coreURNs, urn)
		}
	}

	switch len(coreURNs) {
	case 1:
	case 0:
		v.addf("", "Invalid schema URN. Must include '%s', '%s', '%s', or '%s'",
			schema.URNUser, schema.URNGroup, schema.URNAgent, schema.URNAgenticApplication)

		return
	default:
		v.addf("", "Invalid schema URN: multiple core resource types declared (%s)",
			strings.Join(coreURNs, ", "))

		return
	}

	for _, urn := range schemas {
		s, ok := schema.Lookup(urn)
		if !ok {
			v.addf("", "Unknown schema URN: %s", urn)

			continue
		}

		v.schemaAttributes(doc, urn, s)
	}

	switch coreURNs[0] {
	case schema.URNUser:
		if _, ok := doc["userName"]; !ok {
			v.addf("", "User resource missing required attribute: 'userName'")
		}
	case schema.URNGroup:
		if _, ok := doc["displayName"]; !ok {
			v.addf("", "Group resource missing required attribute: 'displayName'")
		}
	case schema.URNAgent:
		v.requireNonEmptyName(doc, "Agent")
	case schema.URNAgenticApplication:
		v.requireNonEmptyName(doc, "AgenticApplication")
	}

	v.checkReadOnly(doc, schemas)
	v.checkNulls(doc)
}

// requireNonEmptyName enforces the agent draft's rule that name is required
// and must be non-empty: the empty string is a distinct finding from absence.
func (v *validator) requireNonEmptyName(doc map[string]any, resource string) {
	val, ok := doc["name"]
	if !ok {
		v.addf("", "%s resource missing required attribute: 'name'", resource)

		return
	}

	if s, isStr := val.(string); isStr && s == "" {
		v.addf("", "%s resource 'name' attribute must be non-empty", resource)
	}
}

// schemaAttributes checks required attributes and the shape of complex
// values for one declared schema. Extension schemas keep their attributes
// under a nested object keyed by the URN.
func (v *validator) schemaAttributes(doc map[string]any, urn string, s *schema.Schema) {
	data := doc
	isExtension := schema.IsExtensionURN(urn)

	if isExtension {
		nested, ok := doc[urn]
		if !ok {
			nested = map[string]any{}
		}

		m, isMap := nested.(map[string]any)
		if !isMap {
			v.addf(urn, "Extension schema '%s' must be an object", urn)

			return
		}

		data = m
	}

	for _, attr := range s.Attributes {
		path := attr.Name
		if isExtension {
			path = urn + "." + attr.Name
		}

		val, present := data[attr.Name]

		if attr.Required && !present {
			v.addf(path, "Missing required attribute: '%s' (schema: %s)", attr.Name, urn)
		}

		if !present || attr.Type != schema.TypeComplex {
			continue
		}

		if attr.MultiValued {
			items, isList := val.([]any)
			if !isList {
				v.addf(path, "Attribute '%s' must be an array (multiValued)", attr.Name)

				continue
			}

			for i, item := range items {
				v.complexValue(item, attr, fmt.Sprintf("%s[%d]", path, i))
			}
		} else {
			v.complexValue(val, attr, path)
		}
	}
}

// complexValue checks required sub-attributes of one complex value.
// Non-object values are left to the type-checking the validator does not do.
func (v *validator) complexValue(val any, attr schema.Attribute, path string) {
	m, ok := val.(map[string]any)
	if !ok {
		return
	}

	for _, sub := range attr.SubAttributes {
		if !sub.Required {
			continue
		}

		if _, present := m[sub.Name]; !present {
			v.addf(path+"."+sub.Name, "Missing required sub-attribute: '%s' in '%s'", sub.Name, path)
		}
	}
}

// checkReadOnly flags top-level readOnly attributes supplied by the client,
// notably id and meta. Nested paths like meta.created are not flagged here.
func (v *validator) checkReadOnly(doc map[string]any, schemas []string) {
	for _, urn := range schemas {
		s, ok := schema.Lookup(urn)
		if !ok {
			continue
		}

		data := doc
		isExtension := schema.IsExtensionURN(urn)

		if isExtension {
			m, isMap := doc[urn].(map[string]any)
			if !isMap {
				continue
			}

			data = m
		}

		for _, attr := range s.Attributes {
			if !attr.ReadOnly() {
				continue
			}

			if _, present := data[attr.Name]; present {
				path := attr.Name
				if isExtension {
					path = urn + "." + attr.Name
				}

				v.addf(path, "Immutable attribute '%s' should not be set by client (mutability: readOnly)", attr.Name)
			}
		}
	}
}

// checkNulls flags explicit JSON nulls: SCIM clears attributes with a
// PATCH remove operation, not by assigning null.
func (v *validator) checkNulls(doc map[string]any) {
	for key, val := range doc {
		if val == nil {
			v.addf(key, "Attribute '%s' has null value. Use PATCH 'remove' operation to clear attributes instead", key)
		}
	}
}

func (v *validator) patch(doc map[string]any) {
	schemas, ok := schemasList(doc)
	if !ok {
		v.addf("", "Missing required field: 'schemas'")

		return
	}

	if !slices.Contains(schemas, schema.URNPatchOp) {
		v.addf("", "PATCH operation must include schema: '%s'", schema.URNPatchOp)
	}

	rawOps, ok := doc["Operations"]
	if !ok {
		v.addf("", "Missing required field: 'Operations'")

		return
	}

	ops, isList := rawOps.([]any)
	if !isList {
		v.addf("", "'Operations' must be an array")

		return
	}

	if len(ops) == 0 {
		v.addf("", "'Operations' array cannot be empty")

		return
	}

	seenPaths := make(map[string]bool)

	for i, rawOp := range ops {
		op, isMap := rawOp.(map[string]any)
		if !isMap {
			v.addf("", "Operation %d must be an object", i)

			continue
		}

		verb, _ := op["op"].(string)
		if verb == "" {
			v.addf("", "Operation %d: missing required field 'op'", i)

			continue
		}

		if verb != "add" && verb != "remove" && verb != "replace" {
			v.addf("", "Operation %d: invalid 'op' value '%s'. Must be one of: add, remove, replace", i, verb)
		}

		// Duplicate detection is raw string equality; filter expressions
		// inside a path are opaque text.
		if path, ok := op["path"].(string); ok && path != "" {
			if seenPaths[path] {
				v.addf("", "Operation %d: duplicate path '%s' in PATCH operations", i, path)
			}

			seenPaths[path] = true
		}

		switch verb {
		case "remove":
			if _, ok := op["path"]; !ok {
				v.addf("", "Operation %d: 'remove' operation requires 'path'", i)
			}
		case "add", "replace":
			if _, ok := op["value"]; !ok {
				v.addf("", "Operation %d: '%s' operation requires 'value'", i, verb)
			}
		}
	}
}

func schemasList(doc map[string]any) ([]string, bool) {
	raw, ok := doc["schemas"]
	if !ok {
		return nil, false
	}

	// JSON decoding yields []any, while documents built in code often
	// carry []string directly. Accept both.
	switch items := raw.(type) {
	case []string:
		return items, true
	case []any:
		urns := make([]string, 0, len(items))

		for _, item := range items {
			if s, ok := item.(string); ok {
				urns = append(urns, s)
			}
		}

		return urns, true
	default:
		return nil, true
	}
}
