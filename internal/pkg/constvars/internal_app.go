package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY = ContextKey("request_id")
	CONTEXT_TENANT_ID_KEY  = ContextKey("tenant_id")
	CONTEXT_API_KEY_AUTH   = ContextKey("api_key_auth")
)

const (
	ResponseUnknown = "unknown"
)
