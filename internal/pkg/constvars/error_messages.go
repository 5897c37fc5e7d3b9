package constvars

// Client-facing messages. Kept deliberately vague for anything internal.
const (
	ErrClientCannotProcessRequest          = "We cannot process your request right now"
	ErrClientSomethingWrongWithApplication = "Something went wrong with the application"
	ErrClientNotAuthorized                 = "You are not authorized to perform this action"
	ErrClientTenantNotConfigured           = "This organization is not configured for document synchronization"
	ErrClientVendorUnavailable             = "The clinical record system is temporarily unavailable"
	ErrClientDocumentNotFound              = "No matching clinical document was found"
)

// Developer-facing messages, logged and attached to CustomError.DevMessage.
const (
	ErrDevValidationFailed  = "Request validation failed"
	ErrDevCannotMarshalJSON = "Cannot marshal JSON"
	ErrDevCannotParseJSON   = "Cannot parse JSON"
	ErrDevCreateHTTPRequest = "Failed to create HTTP request"
	ErrDevSendHTTPRequest   = "Failed to send HTTP request"
	ErrDevDecodeResponse    = "Failed to decode %s response body"
	ErrDevInvalidInput      = "Invalid input"
	ErrDevURLParamMissing   = "URL parameter %s is missing"

	ErrDevTenantConfigMissing     = "No sync configuration found for tenant %s"
	ErrDevTenantConfigIncomplete  = "Sync configuration for tenant %s is missing required field %s"
	ErrDevVendorNotSupported      = "EHR vendor %s is not supported"
	ErrDevVendorAuthFailed        = "Authentication against vendor %s failed"
	ErrDevVendorAuthNotConfigured = "Vendor %s has no %s app credentials configured"
	ErrDevVendorRequestRejected   = "Vendor %s rejected the %s request"

	ErrDevTargetCreateResource = "Failed to create %s in target store"
	ErrDevTargetReadResource   = "Failed to read %s from target store"
	ErrDevTargetUpdateResource = "Failed to update %s in target store"
	ErrDevTargetDeleteResource = "Failed to delete %s from target store"
	ErrDevTargetSearchResource = "Failed to search %s in target store"
	ErrDevTargetSubmitBundle   = "Failed to submit batch bundle to target store"

	ErrDevBinaryCorrupted    = "Binary payload for document %s is corrupted or placeholder data"
	ErrDevBinaryDecodeFailed = "Failed to decode binary content for document %s"

	ErrDevMongoFindDocument   = "Failed to find document in MongoDB"
	ErrDevMongoUpdateDocument = "Failed to update document in MongoDB"

	ErrDevRedisGetData    = "Failed to get data from Redis"
	ErrDevRedisSetData    = "Failed to set data in Redis"
	ErrDevRedisDeleteData = "Failed to delete data from Redis"

	ErrDevRabbitMQPublish = "Failed to publish message to queue %s"

	ErrDevMinioCreateObject = "Failed to store object in bucket %s"

	ErrDevInvalidAPIKey = "Invalid administrative API key"
)
