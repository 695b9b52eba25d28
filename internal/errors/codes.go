package errors

type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeConfigValidation Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigReadError  Code = "CONFIG_READ_ERROR"
	CodeConfigParseError Code = "CONFIG_PARSE_ERROR"

	// Configuration store client
	CodeStoreReadError    Code = "STORE_READ_ERROR"
	CodeStoreParseError   Code = "STORE_PARSE_ERROR"
	CodeStoreWriteError   Code = "STORE_WRITE_ERROR"
	CodeSnapshotNotFound  Code = "SNAPSHOT_NOT_FOUND"
	CodeIntegrityViolated Code = "INTEGRITY_VIOLATION"

	// Compliance check service
	CodeComplianceAPIError  Code = "COMPLIANCE_API_ERROR"
	CodeComplianceAuthError Code = "COMPLIANCE_AUTH_ERROR"
	CodeArtifactNotFound    Code = "ARTIFACT_NOT_FOUND"

	// Validation orchestration
	CodeValidationInFlight Code = "VALIDATION_IN_FLIGHT"
	CodeValidationTimeout  Code = "VALIDATION_TIMEOUT"
	CodeValidationError    Code = "VALIDATION_ERROR"
)

func (c Code) String() string {
	return string(c)
}
