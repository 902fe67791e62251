package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes are prefixed by module: COMMON (cross-cutting), SCR (screening core),
// MOL (molecule toolkit boundary), SRCH (search service).
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Sentinel codes used by chain-inspection helpers.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeValidation         ErrorCode = "COMMON_007"
	ErrCodeSerialization      ErrorCode = "COMMON_008"
	ErrCodeDatabaseError      ErrorCode = "COMMON_009"
	ErrCodeCacheError         ErrorCode = "COMMON_010"
	ErrCodeNotImplemented     ErrorCode = "COMMON_011"
)

// Screening core error codes
const (
	// ErrCodeCorruptRecord marks a binary record too short to carry its
	// 8-byte fingerprint prefix.
	ErrCodeCorruptRecord ErrorCode = "SCR_001"

	// ErrCodeUnparsablePayload marks a record whose payload the toolkit
	// could not deserialize back into a molecule.
	ErrCodeUnparsablePayload ErrorCode = "SCR_002"

	// ErrCodeFragmentLibraryBuild marks a failure to compile the fragment
	// pattern catalog at encoder construction.  Fatal at startup.
	ErrCodeFragmentLibraryBuild ErrorCode = "SCR_003"

	// ErrCodeEncodeFailed marks a fingerprint computation failure for an
	// otherwise valid molecule.
	ErrCodeEncodeFailed ErrorCode = "SCR_004"

	// ErrCodeMatchOracleFailed marks a failure inside the injected
	// isomorphism oracle during comparison.
	ErrCodeMatchOracleFailed ErrorCode = "SCR_005"

	// ErrCodeCanonicalFormFailed marks a canonical serialization failure.
	ErrCodeCanonicalFormFailed ErrorCode = "SCR_006"
)

// Molecule toolkit boundary error codes
const (
	ErrCodeInvalidSMILES           ErrorCode = "MOL_001"
	ErrCodeMoleculeParseFailed     ErrorCode = "MOL_002"
	ErrCodeMoleculeSerializeFailed ErrorCode = "MOL_003"
	ErrCodeMoleculeNotFound        ErrorCode = "MOL_004"
	ErrCodeMoleculeAlreadyExists   ErrorCode = "MOL_005"
)

// Search service error codes
const (
	ErrCodeSubstructureSearchFailed ErrorCode = "SRCH_001"
	ErrCodeExactSearchFailed        ErrorCode = "SRCH_002"
	ErrCodeCandidateScanFailed      ErrorCode = "SRCH_003"
	ErrCodeIngestFailed             ErrorCode = "SRCH_004"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeCorruptRecord:        http.StatusBadRequest,
	ErrCodeUnparsablePayload:    http.StatusUnprocessableEntity,
	ErrCodeFragmentLibraryBuild: http.StatusInternalServerError,
	ErrCodeEncodeFailed:         http.StatusInternalServerError,
	ErrCodeMatchOracleFailed:    http.StatusInternalServerError,
	ErrCodeCanonicalFormFailed:  http.StatusInternalServerError,

	ErrCodeInvalidSMILES:           http.StatusBadRequest,
	ErrCodeMoleculeParseFailed:     http.StatusBadRequest,
	ErrCodeMoleculeSerializeFailed: http.StatusInternalServerError,
	ErrCodeMoleculeNotFound:        http.StatusNotFound,
	ErrCodeMoleculeAlreadyExists:   http.StatusConflict,

	ErrCodeSubstructureSearchFailed: http.StatusInternalServerError,
	ErrCodeExactSearchFailed:        http.StatusInternalServerError,
	ErrCodeCandidateScanFailed:      http.StatusInternalServerError,
	ErrCodeIngestFailed:             http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTimeout:            "request timeout",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeCorruptRecord:        "corrupt record: shorter than fingerprint prefix",
	ErrCodeUnparsablePayload:    "record payload could not be deserialized",
	ErrCodeFragmentLibraryBuild: "fragment library compilation failed",
	ErrCodeEncodeFailed:         "fingerprint encoding failed",
	ErrCodeMatchOracleFailed:    "substructure match oracle failed",
	ErrCodeCanonicalFormFailed:  "canonical form computation failed",

	ErrCodeInvalidSMILES:           "invalid SMILES",
	ErrCodeMoleculeParseFailed:     "failed to parse molecule",
	ErrCodeMoleculeSerializeFailed: "failed to serialize molecule",
	ErrCodeMoleculeNotFound:        "molecule not found",
	ErrCodeMoleculeAlreadyExists:   "molecule already exists",

	ErrCodeSubstructureSearchFailed: "substructure search failed",
	ErrCodeExactSearchFailed:        "exact match search failed",
	ErrCodeCandidateScanFailed:      "candidate scan failed",
	ErrCodeIngestFailed:             "molecule ingest failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
