package schema

// metaAttribute is the server-managed meta complex attribute shared by
// every resource schema (RFC 7643 Section 3.1).
func metaAttribute() Attribute {
	return Attribute{
		Name: "meta", Type: TypeComplex, Mutability: MutabilityReadOnly,
		SubAttributes: []Attribute{
			{Name: "resourceType", Type: TypeString, Mutability: MutabilityReadOnly},
			{Name: "created", Type: TypeDateTime, Mutability: MutabilityReadOnly},
			{Name: "lastModified", Type: TypeDateTime, Mutability: MutabilityReadOnly},
			{Name: "location", Type: TypeReference, Mutability: MutabilityReadOnly},
			{Name: "version", Type: TypeString, Mutability: MutabilityReadOnly},
		},
	}
}

// idAttribute is the server-assigned identifier (RFC 7643 Section 3.1).
func idAttribute() Attribute {
	return Attribute{Name: "id", Type: TypeString, Mutability: MutabilityReadOnly, Returned: ReturnedAlways}
}

func externalIDAttribute() Attribute {
	return Attribute{Name: "externalId", Type: TypeString, Uniqueness: UniquenessNone}
}

// valueRefDisplayType is the canonical sub-attribute set of multi-valued
// reference groups such as User.groups and Group.members.
func valueRefDisplayType(mut Mutability) []Attribute {
	return []Attribute{
		{Name: "value", Type: TypeString, Mutability: mut},
		{Name: "$ref", Type: TypeReference, Mutability: MutabilityReadOnly},
		{Name: "type", Type: TypeString, Mutability: mut},
		{Name: "display", Type: TypeString, Mutability: mut},
	}
}

// Core User schema (RFC 7643 Section 4.1).
var userSchema = Schema{
	URN:         URNUser,
	Name:        "User",
	Description: "User Account",
	Attributes: []Attribute{
		{Name: "userName", Type: TypeString, Required: true, Uniqueness: UniquenessServer},
		{Name: "name", Type: TypeComplex, SubAttributes: []Attribute{
			{Name: "formatted", Type: TypeString},
			{Name: "familyName", Type: TypeString},
			{Name: "givenName", Type: TypeString},
			{Name: "middleName", Type: TypeString},
			{Name: "honorificPrefix", Type: TypeString},
			{Name: "honorificSuffix", Type: TypeString},
		}},
		{Name: "displayName", Type: TypeString},
		{Name: "nickName", Type: TypeString},
		{Name: "profileUrl", Type: TypeReference},
		{Name: "title", Type: TypeString},
		{Name: "userType", Type: TypeString},
		{Name: "preferredLanguage", Type: TypeString},
		{Name: "locale", Type: TypeString},
		{Name: "timezone", Type: TypeString},
		{Name: "active", Type: TypeBoolean},
		{Name: "password", Type: TypeString, Mutability: MutabilityWriteOnly, Returned: ReturnedNever},
		{Name: "emails", Type: TypeComplex, MultiValued: true, SubAttributes: []Attribute{
			{Name: "value", Type: TypeString},
			{Name: "display", Type: TypeString},
			{Name: "type", Type: TypeString},
			{Name: "primary", Type: TypeBoolean},
		}},
		{Name: "phoneNumbers", Type: TypeComplex, MultiValued: true, SubAttributes: []Attribute{
			{Name: "value", Type: TypeString},
			{Name: "display", Type: TypeString},
			{Name: "type", Type: TypeString},
			{Name: "primary", Type: TypeBoolean},
		}},
		{Name: "ims", Type: TypeComplex, MultiValued: true},
		{Name: "photos", Type: TypeComplex, MultiValued: true},
		{Name: "addresses", Type: TypeComplex, MultiValued: true, SubAttributes: []Attribute{
			{Name: "formatted", Type: TypeString},
			{Name: "streetAddress", Type: TypeString},
			{Name: "locality", Type: TypeString},
			{Name: "region", Type: TypeString},
			{Name: "postalCode", Type: TypeString},
			{Name: "country", Type: TypeString},
			{Name: "type", Type: TypeString},
			{Name: "primary", Type: TypeBoolean},
		}},
		{Name: "groups", Type: TypeComplex, MultiValued: true, Mutability: MutabilityReadOnly},
		{Name: "entitlements", Type: TypeComplex, MultiValued: true},
		{Name: "roles", Type: TypeComplex, MultiValued: true},
		{Name: "x509Certificates", Type: TypeComplex, MultiValued: true},
		idAttribute(),
		externalIDAttribute(),
		metaAttribute(),
	},
}

// Core Group schema (RFC 7643 Section 4.2).
var groupSchema = Schema{
	URN:         URNGroup,
	Name:        "Group",
	Description: "Group",
	Attributes: []Attribute{
		{Name: "displayName", Type: TypeString, Required: true},
		{Name: "members", Type: TypeComplex, MultiValued: true,
			SubAttributes: valueRefDisplayType(MutabilityReadWrite)},
		idAttribute(),
		externalIDAttribute(),
		metaAttribute(),
	},
}

// Enterprise User extension schema (RFC 7643 Section 4.3).
var enterpriseUserSchema = Schema{
	URN:         URNEnterpriseUser,
	Name:        "EnterpriseUser",
	Description: "Enterprise User",
	Attributes: []Attribute{
		{Name: "employeeNumber", Type: TypeString},
		{Name: "costCenter", Type: TypeString},
		{Name: "organization", Type: TypeString},
		{Name: "division", Type: TypeString},
		{Name: "department", Type: TypeString},
		{Name: "manager", Type: TypeComplex, SubAttributes: []Attribute{
			{Name: "value", Type: TypeString},
			{Name: "$ref", Type: TypeReference, Mutability: MutabilityReadOnly},
			{Name: "displayName", Type: TypeString},
		}},
	},
}
