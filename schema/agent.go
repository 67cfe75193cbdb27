package schema

// Agent and AgenticApplication schemas from the IETF draft "SCIM Agents and
// Agentic Applications Extension" (draft-abbey-scim-agent-extension-00).
//
// Agents model AI workloads with their own identifiers and privileges,
// independent of runtime environment; AgenticApplications are the
// applications that host or provide access to agents. Only the name
// attribute is required on either type, and it must be non-empty because
// it doubles as the authentication identifier.

// multiValuedEntitlement is the value/display/type/primary sub-attribute
// group the draft reuses for entitlements, roles, and certificates.
func multiValuedEntitlement(valueType Type) []Attribute {
	return []Attribute{
		{Name: "value", Type: valueType},
		{Name: "display", Type: TypeString},
		{Name: "type", Type: TypeString},
		{Name: "primary", Type: TypeBoolean},
	}
}

// readOnlyRefGroup is the value/$ref/display group for server-managed
// references (owners, applications, parent).
func readOnlyRefGroup() []Attribute {
	return []Attribute{
		{Name: "value", Type: TypeString, Mutability: MutabilityReadOnly},
		{Name: "$ref", Type: TypeReference, Mutability: MutabilityReadOnly},
		{Name: "display", Type: TypeString, Mutability: MutabilityReadOnly},
	}
}

var agentSchema = Schema{
	URN:         URNAgent,
	Name:        "Agent",
	Description: "An AI agent",
	Attributes: []Attribute{
		{Name: "name", Type: TypeString, Required: true, Uniqueness: UniquenessServer},
		{Name: "displayName", Type: TypeString},
		{Name: "agentType", Type: TypeString},
		{Name: "active", Type: TypeBoolean},
		{Name: "description", Type: TypeString},
		{Name: "subject", Type: TypeString, Mutability: MutabilityReadOnly},
		{Name: "groups", Type: TypeComplex, MultiValued: true, Mutability: MutabilityReadOnly,
			SubAttributes: valueRefDisplayType(MutabilityReadOnly)},
		{Name: "entitlements", Type: TypeComplex, MultiValued: true,
			SubAttributes: multiValuedEntitlement(TypeString)},
		{Name: "roles", Type: TypeComplex, MultiValued: true,
			SubAttributes: multiValuedEntitlement(TypeString)},
		{Name: "x509Certificates", Type: TypeComplex, MultiValued: true,
			SubAttributes: multiValuedEntitlement(TypeBinary)},
		{Name: "applications", Type: TypeComplex, MultiValued: true, Mutability: MutabilityReadOnly,
			SubAttributes: readOnlyRefGroup()},
		{Name: "owners", Type: TypeComplex, MultiValued: true, Mutability: MutabilityReadOnly,
			SubAttributes: readOnlyRefGroup()},
		{Name: "protocols", Type: TypeComplex, MultiValued: true, Mutability: MutabilityReadOnly,
			SubAttributes: []Attribute{
				{Name: "type", Type: TypeString, Mutability: MutabilityReadOnly},
				// The draft spells the attribute "specifiationUrl"; keep the
				// typo until the draft is amended.
				{Name: "specifiationUrl", Type: TypeString, Mutability: MutabilityReadOnly},
			}},
		{Name: "parent", Type: TypeComplex, Mutability: MutabilityReadOnly,
			SubAttributes: readOnlyRefGroup()},
		idAttribute(),
		externalIDAttribute(),
		metaAttribute(),
	},
}

var agenticApplicationSchema = Schema{
	URN:         URNAgenticApplication,
	Name:        "AgenticApplication",
	Description: "An agentic application",
	Attributes: []Attribute{
		{Name: "name", Type: TypeString, Required: true, Uniqueness: UniquenessServer},
		{Name: "displayName", Type: TypeString},
		{Name: "description", Type: TypeString},
		{Name: "active", Type: TypeBoolean},
		idAttribute(),
		externalIDAttribute(),
		metaAttribute(),
	},
}
