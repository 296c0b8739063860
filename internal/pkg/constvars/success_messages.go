package constvars

const (
	// Generic messages
	ResponseUnknown = "unknown"
	ResponseSuccess = "success"
	ResponseError   = "error"

	// Report messages
	ReportIngestedSuccess      = "report ingested successfully"
	ReportGetSuccess           = "get report successfully"
	ReportResultsGetSuccess    = "get report results successfully"
	ReportIngestionsGetSuccess = "get ingestion records successfully"
)
