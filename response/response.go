// Package response checks SCIM 2.0 server responses for RFC 7643/7644
// conformance. It is the inverse of package validate: where validate
// guards what a client sends, this package inspects what a server sends
// back, which must include id and meta, must omit writeOnly attributes
// like password, and must use the right status codes, Content-Type, and
// ETag headers.
//
// A [Validator] runs in one of two modes. In strict mode every deviation
// is a [Fail]. In compat mode a fixed set of deviations common in
// deployed servers, such as Content-Type application/json or a DELETE
// 204 carrying a body, is downgraded to [Warn] and does not affect the
// validity verdict.
package response

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/scimtools/scim-sanity/schema"
)

// Severity classifies a finding.
type Severity string

const (
	// Fail marks a spec violation that fails validation.
	Fail Severity = "fail"
	// Warn marks a known real-world deviation tolerated in compat mode.
	Warn Severity = "warn"
)

// Finding is a single conformance issue found in a server response.
type Finding struct {
	Message  string
	Path     string
	Severity Severity
}

func (f Finding) String() string {
	s := f.Message
	if f.Severity == Warn {
		s = "[WARN] " + s
	}

	if f.Path != "" {
		s += " at " + f.Path
	}

	return s
}

// Validator checks server responses. The zero value validates in compat
// mode; set Strict for strict mode.
type Validator struct {
	// Strict promotes every known real-world deviation to Fail severity.
	Strict bool
}

// sev returns the severity for a check. Checks flagged compatLenient are
// the known real-world deviations that compat mode downgrades to Warn.
func (v *Validator) sev(compatLenient bool) Severity {
	if compatLenient && !v.Strict {
		return Warn
	}

	return Fail
}

// valid reports whether the findings pass validation. Warn findings do
// not count against validity.
func valid(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity != Warn {
			return false
		}
	}

	return true
}

// Resource validates a response carrying a single SCIM resource.
//
// data is the decoded body, or nil when the body was empty or not JSON.
// resourceType, when non-empty, is checked against meta.resourceType.
func (v *Validator) Resource(data map[string]any, expectedStatus, actualStatus int, headers http.Header, resourceType string) (bool, []Finding) {
	var findings []Finding

	if actualStatus != expectedStatus {
		findings = append(findings, Finding{
			Message: fmt.Sprintf("Expected HTTP %d, got %d (RFC 7644 §3.3)", expectedStatus, actualStatus),
		})

		// On an error status the missing id/meta/schemas that follow are
		// consequences of the error, not independent findings.
		if actualStatus >= 400 {
			return valid(findings), findings
		}
	}

	if data == nil {
		if expectedStatus != 204 {
			findings = append(findings, Finding{Message: "Response body is empty"})
		}

		return valid(findings), findings
	}

	findings = append(findings, v.contentType(headers)...)

	schemas, ok := stringList(data["schemas"])
	if !ok || len(schemas) == 0 {
		findings = append(findings, Finding{Message: "Response missing 'schemas' array (RFC 7643 §3)"})

		return false, findings
	}

	if _, ok := data["id"]; !ok {
		findings = append(findings, Finding{
			Message: "Server response missing required attribute 'id' (RFC 7643 §3.1)",
		})
	}

	meta, hasMeta := data["meta"]
	if !hasMeta || meta == nil {
		findings = append(findings, Finding{
			Message: "Server response missing required attribute 'meta' (RFC 7643 §3.1)",
		})
	}

	metaMap, _ := meta.(map[string]any)
	if metaMap != nil {
		for _, field := range []string{"resourceType", "created", "lastModified"} {
			if _, ok := metaMap[field]; !ok {
				findings = append(findings, Finding{
					Message: fmt.Sprintf("meta.%s must be present in server response (RFC 7643 §3.1)", field),
					Path:    "meta." + field,
				})
			}
		}

		if version, ok := metaMap["version"]; ok && version != nil {
			if _, isStr := version.(string); !isStr {
				findings = append(findings, Finding{
					Message: fmt.Sprintf("meta.version must be a string, got %T (RFC 7643 §3.1)", version),
					Path:    "meta.version",
				})
			}
		}

		// ETag header and meta.version should agree when both are present
		// (RFC 7644 §3.14). Comparison strips quotes only; a W/ prefix on
		// one side is a mismatch.
		etag := headers.Get("ETag")
		version, _ := metaMap["version"].(string)

		if etag != "" && version != "" && strings.Trim(etag, `"`) != strings.Trim(version, `"`) {
			findings = append(findings, Finding{
				Message:  fmt.Sprintf("ETag header '%s' does not match meta.version '%s' (RFC 7644 §3.14)", etag, version),
				Severity: v.sev(true),
			})
		}

		if actualStatus == http.StatusCreated {
			locHeader := headers.Get("Location")
			metaLoc, _ := metaMap["location"].(string)

			switch {
			case locHeader != "" && metaLoc != "" && locHeader != metaLoc:
				findings = append(findings, Finding{
					Message:  fmt.Sprintf("Location header '%s' does not match meta.location '%s' (RFC 7644 §3.3)", locHeader, metaLoc),
					Severity: v.sev(true),
				})
			case locHeader == "":
				findings = append(findings, Finding{
					Message:  "Location header should be present on 201 Created (RFC 7644 §3.3)",
					Severity: v.sev(true),
				})
			}
		}
	}

	findings = append(findings, checkWriteOnly(data, schemas)...)

	if resourceType != "" && metaMap != nil {
		if rt, _ := metaMap["resourceType"].(string); rt != "" && rt != resourceType {
			findings = append(findings, Finding{
				Message: fmt.Sprintf("meta.resourceType '%s' does not match expected '%s'", rt, resourceType),
				Path:    "meta.resourceType",
			})
		}
	}

	return valid(findings), findings
}

// List validates a ListResponse envelope (RFC 7644 §3.4.2).
func (v *Validator) List(data map[string]any, actualStatus int, headers http.Header) (bool, []Finding) {
	var findings []Finding

	if actualStatus != http.StatusOK {
		findings = append(findings, Finding{
			Message: fmt.Sprintf("Expected HTTP 200 for list, got %d (RFC 7644 §3.4.2)", actualStatus),
		})
	}

	if data == nil {
		findings = append(findings, Finding{Message: "Response body is empty"})

		return false, findings
	}

	findings = append(findings, v.contentType(headers)...)

	schemas, _ := stringList(data["schemas"])
	if !slices.Contains(schemas, schema.URNListResponse) {
		findings = append(findings, Finding{
			Message: fmt.Sprintf("ListResponse must include schema '%s' (RFC 7644 §3.4.2)", schema.URNListResponse),
		})
	}

	total, hasTotal := data["totalResults"]
	if !hasTotal {
		findings = append(findings, Finding{
			Message: "ListResponse missing required attribute 'totalResults' (RFC 7644 §3.4.2)",
		})
	} else if !isJSONInteger(total) {
		findings = append(findings, Finding{
			Message:  fmt.Sprintf("totalResults must be an integer, got %T (RFC 7644 §3.4.2)", total),
			Severity: v.sev(true),
		})
	}

	if resources, ok := data["Resources"]; ok {
		if _, isList := resources.([]any); !isList {
			findings = append(findings, Finding{Message: "'Resources' must be an array"})
		}
	}

	for _, field := range []string{"startIndex", "itemsPerPage"} {
		if val, ok := data[field]; ok && !isJSONInteger(val) {
			findings = append(findings, Finding{
				Message:  fmt.Sprintf("'%s' must be an integer", field),
				Severity: v.sev(true),
			})
		}
	}

	return valid(findings), findings
}

// Error validates a SCIM error response body (RFC 7644 §3.12).
func (v *Validator) Error(data map[string]any, expectedStatus, actualStatus int) (bool, []Finding) {
	var findings []Finding

	if actualStatus != expectedStatus {
		findings = append(findings, Finding{
			Message: fmt.Sprintf("Expected HTTP %d, got %d (RFC 7644 §3.12)", expectedStatus, actualStatus),
		})
	}

	if data == nil {
		// Some servers return empty bodies on errors.
		findings = append(findings, Finding{
			Message:  "Error response body is empty (RFC 7644 §3.12)",
			Severity: v.sev(true),
		})

		return valid(findings), findings
	}

	schemas, _ := stringList(data["schemas"])
	if !slices.Contains(schemas, schema.URNError) {
		findings = append(findings, Finding{
			Message:  fmt.Sprintf("Error response must include schema '%s' (RFC 7644 §3.12)", schema.URNError),
			Severity: v.sev(true),
		})
	}

	if _, ok := data["status"]; !ok {
		findings = append(findings, Finding{
			Message:  "Error response missing required attribute 'status' (RFC 7644 §3.12)",
			Severity: v.sev(true),
		})
	}

	return valid(findings), findings
}

// Delete validates a DELETE response, which should be 204 with no body
// (RFC 7644 §3.6).
func (v *Validator) Delete(actualStatus int, body string) (bool, []Finding) {
	var findings []Finding

	if actualStatus != http.StatusNoContent {
		findings = append(findings, Finding{
			Message: fmt.Sprintf("Expected HTTP 204 for DELETE, got %d (RFC 7644 §3.6)", actualStatus),
		})
	}

	if strings.TrimSpace(body) != "" {
		findings = append(findings, Finding{
			Message:  "DELETE 204 response should have no body (RFC 7644 §3.6)",
			Severity: v.sev(true),
		})
	}

	return valid(findings), findings
}

// contentType checks the Content-Type header. application/scim+json is
// correct; application/json is the lenient deviation; anything else is a
// hard failure.
func (v *Validator) contentType(headers http.Header) []Finding {
	ct := headers.Get("Content-Type")
	if ct == "" {
		return nil
	}

	switch {
	case strings.Contains(ct, schema.ContentType):
		return nil
	case strings.Contains(ct, "application/json"):
		return []Finding{{
			Message:  fmt.Sprintf("Content-Type should be application/scim+json, got '%s' (RFC 7644 §8.1)", ct),
			Severity: v.sev(true),
		}}
	default:
		return []Finding{{
			Message: fmt.Sprintf("Content-Type should be application/scim+json, got '%s' (RFC 7644 §8.1)", ct),
		}}
	}
}

// checkWriteOnly flags attributes with returned:never or writeOnly
// mutability that appear in a response (RFC 7643 §7).
func checkWriteOnly(data map[string]any, schemas []string) []Finding {
	var findings []Finding

	for _, urn := range schemas {
		s, ok := schema.Lookup(urn)
		if !ok {
			continue
		}

		checkData := data

		if schema.IsExtensionURN(urn) {
			m, isMap := data[urn].(map[string]any)
			if !isMap {
				continue
			}

			checkData = m
		}

		for _, attr := range s.Attributes {
			if !attr.NeverReturned() {
				continue
			}

			if _, present := checkData[attr.Name]; present {
				findings = append(findings, Finding{
					Message: fmt.Sprintf("writeOnly attribute '%s' must not appear in server response (RFC 7643 §7)", attr.Name),
					Path:    attr.Name,
				})
			}
		}
	}

	return findings
}

// isJSONInteger reports whether a decoded JSON number carries an integral
// value. encoding/json decodes all numbers to float64, so 2.0 counts but
// 2.5 does not.
func isJSONInteger(val any) bool {
	switch n := val.(type) {
	case float64:
		return n == float64(int64(n))
	case int, int64:
		return true
	default:
		return false
	}
}

func stringList(raw any) ([]string, bool) {
	items, ok := raw.([]any)
	if !ok {
		return nil, false
	}

	out := make([]string, 0, len(items))

	for _, item := range items {
		if s, isStr := item.(string); isStr {
			out = append(out, s)
		}
	}

	return out, true
}
