package constvars

const (
	LoggingRequestIDKey    = "request_id"
	LoggingOperationKey    = "operation"
	LoggingDurationKey     = "duration"
	LoggingSuccessKey      = "success"
	LoggingMethodKey       = "method"
	LoggingEndpointKey     = "endpoint"
	LoggingRemoteAddrKey   = "remote_addr"
	LoggingUserAgentKey    = "user_agent"
	LoggingQueryKey        = "query"
	LoggingStatusCodeKey   = "status_code"
	LoggingSessionDataKey  = "session_data"
	LoggingReportIDKey     = "report_id"
	LoggingEncounterIDKey  = "encounter_id"
	LoggingBundleEntryKey  = "bundle_entry"
	LoggingLocalIDKey      = "local_id"
	LoggingErrorCodeKey    = "error_code"
	LoggingErrorMessageKey = "error_message"
)
