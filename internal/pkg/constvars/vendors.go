package constvars

const (
	VendorCerner = "cerner"
	VendorEpic   = "epic"
)

const (
	AuthTypeSystem   = "SYSTEM"
	AuthTypeProvider = "PROVIDER"
)

const (
	OAuthGrantClientCredentials = "client_credentials"
	OAuthClientAssertionType    = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
)

const (
	// Fallback token lifetime when the vendor omits expires_in.
	DefaultTokenLifetimeMinutes = 45
	// Tokens are refreshed this long before their reported expiry.
	TokenRefreshSkewSeconds = 60
)

const (
	// Binary payloads shorter than this are treated as corrupted or
	// placeholder data, never as valid document content.
	MinimumBinaryPayloadLength = 10
)

const (
	ExportStatusSuccess = "success"
	ExportStatusFailed  = "failed"

	DuplicateCheckDuplicate = "duplicate"
	DuplicateCheckNew       = "new"
)

const (
	PatientMappingFound   = "found"
	PatientMappingCreated = "created"
	PatientMappingFailed  = "failed"
)
