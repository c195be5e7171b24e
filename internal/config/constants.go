package config

// Application constants for the ingestion gateway.
const (
	// Application Info
	AppName    = "Enterprise Data Ingestion Gateway"
	AppVersion = "1.2.0"

	// ScanEngineVersion is recorded on every audit event so blocked
	// uploads can be traced back to the signature set that blocked them.
	ScanEngineVersion = "ingest-scan-engine/1.2.0"

	// Security Policy Defaults
	DefaultMaxUploadSize      = 200 * 1024 * 1024 // 200 MiB
	DefaultHeaderPrefixSize   = 1024              // bytes inspected for magic numbers
	DefaultScanChunkSize      = 2 * 1024 * 1024   // deep-scan chunk size
	DefaultHeuristicPrefix    = 64 * 1024         // bytes fed to the heuristic scorer
	DefaultHeuristicThreshold = 0.75

	// Heuristic weights (see inspection.Policy). Empirically tuned;
	// kept configurable but these are the compatibility defaults.
	DefaultWeightSpecialChars = 0.35
	DefaultWeightBase64Runs   = 0.25
	DefaultWeightSQLKeywords  = 0.20
	DefaultWeightScriptTokens = 0.20

	// Processing Defaults
	DefaultTaxRate       = 0.18
	MonetaryDecimals     = 2
	ProcessedFilePrefix  = "processed_"
	ProvenanceColumnName = "Source_File"

	// Workspace Layout (relative to the workspace root)
	DefaultIncomingDir  = "incoming"
	DefaultStagingDir   = "staging"
	DefaultProcessedDir = "processed"
	DefaultExportDir    = "exports"
	DefaultLogsDir      = "logs"

	// Export Artifacts
	MergedDatasetName = "merged_dataset.csv"
	MergedArchiveName = "merged_dataset.zip"
	AuditLogName      = "audit_log.jsonl"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
