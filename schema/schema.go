// Package schema holds the static SCIM 2.0 schema registry used by both
// validation directions.
//
// The registry covers the core User and Group schemas and the enterprise
// User extension from RFC 7643, the Agent and AgenticApplication schemas
// from draft-abbey-scim-agent-extension-00, and the SCIM API message
// schemas (PatchOp, ListResponse, Error, ServiceProviderConfig,
// ResourceType) from RFC 7644. Definitions are process-constant and
// read-only after package initialization, so lookups are safe for
// concurrent use.
package schema

import "strings"

// Schema URNs registered by this package.
const (
	URNUser                  = "urn:ietf:params:scim:schemas:core:2.0:User"
	URNGroup                 = "urn:ietf:params:scim:schemas:core:2.0:Group"
	URNEnterpriseUser        = "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User"
	URNAgent                 = "urn:ietf:params:scim:schemas:core:2.0:Agent"
	URNAgenticApplication    = "urn:ietf:params:scim:schemas:core:2.0:AgenticApplication"
	URNPatchOp               = "urn:ietf:params:scim:api:messages:2.0:PatchOp"
	URNListResponse          = "urn:ietf:params:scim:api:messages:2.0:ListResponse"
	URNError                 = "urn:ietf:params:scim:api:messages:2.0:Error"
	URNServiceProviderConfig = "urn:ietf:params:scim:schemas:core:2.0:ServiceProviderConfig"
	URNResourceType          = "urn:ietf:params:scim:schemas:core:2.0:ResourceType"
)

// ContentType is the SCIM media type required by RFC 7644 Section 8.1.
const ContentType = "application/scim+json"

// extensionPrefix marks URNs whose attributes live under a nested object
// keyed by the URN itself rather than at the top level of the resource.
const extensionPrefix = "urn:ietf:params:scim:schemas:extension:"

// Type is a SCIM attribute data type (RFC 7643 Section 2.3).
type Type string

const (
	TypeString    Type = "string"
	TypeBoolean   Type = "boolean"
	TypeInteger   Type = "integer"
	TypeDecimal   Type = "decimal"
	TypeBinary    Type = "binary"
	TypeDateTime  Type = "dateTime"
	TypeReference Type = "reference"
	TypeComplex   Type = "complex"
)

// Mutability describes who may write an attribute (RFC 7643 Section 7).
// The zero value means the RFC default, readWrite.
type Mutability string

const (
	MutabilityReadOnly  Mutability = "readOnly"
	MutabilityReadWrite Mutability = "readWrite"
	MutabilityImmutable Mutability = "immutable"
	MutabilityWriteOnly Mutability = "writeOnly"
)

// Returned describes when a server includes an attribute in responses
// (RFC 7643 Section 7). The zero value means the RFC default, "default".
type Returned string

const (
	ReturnedAlways  Returned = "always"
	ReturnedNever   Returned = "never"
	ReturnedDefault Returned = "default"
	ReturnedRequest Returned = "request"
)

// Uniqueness describes the uniqueness scope of an attribute value
// (RFC 7643 Section 7). The zero value means none.
type Uniqueness string

const (
	UniquenessNone   Uniqueness = "none"
	UniquenessServer Uniqueness = "server"
	UniquenessGlobal Uniqueness = "global"
)

// Attribute is a single SCIM attribute definition. Complex attributes
// carry their sub-attribute definitions in SubAttributes; all other types
// leave it nil. Zero values of Mutability, Returned, and Uniqueness stand
// for the RFC defaults (readWrite, default, none).
type Attribute struct {
	Name          string
	Type          Type
	Required      bool
	MultiValued   bool
	CaseExact     bool
	Mutability    Mutability
	Returned      Returned
	Uniqueness    Uniqueness
	SubAttributes []Attribute
}

// ReadOnly reports whether the attribute may only be written by the server.
func (a Attribute) ReadOnly() bool {
	return a.Mutability == MutabilityReadOnly
}

// NeverReturned reports whether the attribute must be absent from every
// server response, either because it is declared returned:never or because
// it is writeOnly (which implies returned:never in practice).
func (a Attribute) NeverReturned() bool {
	return a.Returned == ReturnedNever || a.Mutability == MutabilityWriteOnly
}

// Schema is one registered SCIM schema definition.
type Schema struct {
	URN         string
	Name        string
	Description string
	Attributes  []Attribute
}

// Attribute returns the definition of the named top-level attribute,
// or nil when the schema does not define it.
func (s *Schema) Attribute(name string) *Attribute {
	return findAttribute(s.Attributes, name)
}

var registry = map[string]*Schema{
	URNUser:                  &userSchema,
	URNGroup:                 &groupSchema,
	URNEnterpriseUser:        &enterpriseUserSchema,
	URNAgent:                 &agentSchema,
	URNAgenticApplication:    &agenticApplicationSchema,
	URNPatchOp:               &patchOpSchema,
	URNListResponse:          &listResponseSchema,
	URNError:                 &errorSchema,
	URNServiceProviderConfig: &serviceProviderConfigSchema,
	URNResourceType:          &resourceTypeSchema,
}

// Lookup returns the schema registered for the given URN.
func Lookup(urn string) (*Schema, bool) {
	s, ok := registry[urn]

	return s, ok
}

// LookupAttribute resolves a dot-separated attribute path within the schema
// registered for urn, descending through SubAttributes segment by segment.
// It returns false on any miss: unknown URN, unknown segment, or a path
// that descends into a non-complex attribute.
func LookupAttribute(urn, path string) (*Attribute, bool) {
	s, ok := Lookup(urn)
	if !ok {
		return nil, false
	}

	attrs := s.Attributes

	var found *Attribute

	for _, part := range strings.Split(path, ".") {
		found = findAttribute(attrs, part)
		if found == nil {
			return nil, false
		}

		attrs = found.SubAttributes
	}

	return found, true
}

// IsExtensionURN reports whether the URN names an extension schema, whose
// attributes appear under a nested object keyed by the URN itself.
func IsExtensionURN(urn string) bool {
	return strings.HasPrefix(urn, extensionPrefix)
}

func findAttribute(attrs []Attribute, name string) *Attribute {
	for i := range attrs {
		if attrs[i].Name == name {
			return &attrs[i]
		}
	}

	return nil
}
