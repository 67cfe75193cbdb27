package schema

// SCIM API message schemas (RFC 7644 Section 3). These are registered so
// that validators and tests can resolve message attributes through the
// same lookup path as resource attributes.

var patchOpSchema = Schema{
	URN:         URNPatchOp,
	Name:        "PatchOp",
	Description: "Patch Operation",
	Attributes: []Attribute{
		{Name: "Operations", Type: TypeComplex, MultiValued: true, Required: true,
			SubAttributes: []Attribute{
				{Name: "op", Type: TypeString, Required: true},
				{Name: "path", Type: TypeString},
				{Name: "value", Type: TypeString},
			}},
	},
}

var listResponseSchema = Schema{
	URN:         URNListResponse,
	Name:        "ListResponse",
	Description: "List Response",
	Attributes: []Attribute{
		{Name: "totalResults", Type: TypeInteger, Required: true},
		{Name: "startIndex", Type: TypeInteger},
		{Name: "itemsPerPage", Type: TypeInteger},
		{Name: "Resources", Type: TypeComplex, MultiValued: true},
	},
}

var errorSchema = Schema{
	URN:         URNError,
	Name:        "Error",
	Description: "SCIM Error Response",
	Attributes: []Attribute{
		{Name: "status", Type: TypeString, Required: true},
		{Name: "scimType", Type: TypeString},
		{Name: "detail", Type: TypeString},
	},
}

var serviceProviderConfigSchema = Schema{
	URN:         URNServiceProviderConfig,
	Name:        "ServiceProviderConfig",
	Description: "Service Provider Configuration",
	Attributes: []Attribute{
		{Name: "documentationUri", Type: TypeReference},
		{Name: "patch", Type: TypeComplex, Required: true, Mutability: MutabilityReadOnly,
			SubAttributes: []Attribute{
				{Name: "supported", Type: TypeBoolean, Required: true, Mutability: MutabilityReadOnly},
			}},
		{Name: "bulk", Type: TypeComplex, Required: true, Mutability: MutabilityReadOnly,
			SubAttributes: []Attribute{
				{Name: "supported", Type: TypeBoolean, Required: true, Mutability: MutabilityReadOnly},
				{Name: "maxOperations", Type: TypeInteger, Mutability: MutabilityReadOnly},
				{Name: "maxPayloadSize", Type: TypeInteger, Mutability: MutabilityReadOnly},
			}},
		{Name: "filter", Type: TypeComplex, Required: true, Mutability: MutabilityReadOnly,
			SubAttributes: []Attribute{
				{Name: "supported", Type: TypeBoolean, Required: true, Mutability: MutabilityReadOnly},
				{Name: "maxResults", Type: TypeInteger, Mutability: MutabilityReadOnly},
			}},
		{Name: "changePassword", Type: TypeComplex, Required: true, Mutability: MutabilityReadOnly,
			SubAttributes: []Attribute{
				{Name: "supported", Type: TypeBoolean, Required: true, Mutability: MutabilityReadOnly},
			}},
		{Name: "sort", Type: TypeComplex, Required: true, Mutability: MutabilityReadOnly,
			SubAttributes: []Attribute{
				{Name: "supported", Type: TypeBoolean, Required: true, Mutability: MutabilityReadOnly},
			}},
		{Name: "etag", Type: TypeComplex, Mutability: MutabilityReadOnly,
			SubAttributes: []Attribute{
				{Name: "supported", Type: TypeBoolean, Required: true, Mutability: MutabilityReadOnly},
			}},
		{Name: "authenticationSchemes", Type: TypeComplex, MultiValued: true, Mutability: MutabilityReadOnly,
			SubAttributes: []Attribute{
				{Name: "type", Type: TypeString, Required: true, Mutability: MutabilityReadOnly},
				{Name: "name", Type: TypeString, Required: true, Mutability: MutabilityReadOnly},
				{Name: "description", Type: TypeString, Mutability: MutabilityReadOnly},
			}},
	},
}

var resourceTypeSchema = Schema{
	URN:         URNResourceType,
	Name:        "ResourceType",
	Description: "Resource Type",
	Attributes: []Attribute{
		{Name: "name", Type: TypeString, Required: true, Mutability: MutabilityReadOnly},
		{Name: "description", Type: TypeString, Mutability: MutabilityReadOnly},
		{Name: "endpoint", Type: TypeReference, Required: true, Mutability: MutabilityReadOnly},
		{Name: "schema", Type: TypeReference, Required: true, Mutability: MutabilityReadOnly},
		{Name: "schemaExtensions", Type: TypeComplex, MultiValued: true, Mutability: MutabilityReadOnly,
			SubAttributes: []Attribute{
				{Name: "schema", Type: TypeReference, Required: true, Mutability: MutabilityReadOnly},
				{Name: "required", Type: TypeBoolean, Required: true, Mutability: MutabilityReadOnly},
			}},
	},
}
