package constvars

const (
	LoggingRequestIDKey   = "request_id"
	LoggingTenantIDKey    = "tenant_id"
	LoggingVendorKey      = "vendor"
	LoggingPatientIDKey   = "patient_id"
	LoggingDocumentIDKey  = "document_id"
	LoggingEncounterIDKey = "encounter_id"
	LoggingResourceKey    = "resource_type"
	LoggingResourceIDKey  = "resource_id"
	LoggingStepKey        = "step"
	LoggingStepsKey       = "steps"
	LoggingTagKey         = "correlation_tag"
	LoggingQueueKey       = "queue"
	LoggingBucketKey      = "bucket"
	LoggingObjectKey      = "object"
	LoggingAuthTypeKey    = "auth_type"
	LoggingStatusCodeKey  = "status_code"
	LoggingCountKey       = "count"
)
