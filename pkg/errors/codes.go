package errors

// ErrorCode is a string representation of a specific error condition.
// Codes are "<MODULE>_<NNN>".
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal      ErrorCode = "COMMON_001"
	ErrCodeBadRequest    ErrorCode = "COMMON_002"
	ErrCodeNotFound      ErrorCode = "COMMON_005"
	ErrCodeTimeout       ErrorCode = "COMMON_009"
	ErrCodeValidation    ErrorCode = "COMMON_010"
	ErrCodeSerialization ErrorCode = "COMMON_011"
	ErrCodeDatabaseError ErrorCode = "COMMON_012"
	ErrCodeCacheError    ErrorCode = "COMMON_013"
	ErrCodeStorageError  ErrorCode = "COMMON_014"
	ErrCodeCanceled      ErrorCode = "COMMON_017"
)

// Configuration error codes.
const (
	ErrCodeConfigInvalid    ErrorCode = "CFG_001"
	ErrCodeReferenceInvalid ErrorCode = "CFG_002"
	ErrCodeWeightsInvalid   ErrorCode = "CFG_003"
	ErrCodeProfileUnknown   ErrorCode = "CFG_004"
)

// Dataset error codes.
const (
	ErrCodeDatasetRead        ErrorCode = "DAT_001"
	ErrCodeDatasetParse       ErrorCode = "DAT_002"
	ErrCodeDatasetUnsupported ErrorCode = "DAT_003"
	ErrCodeUnknownYear        ErrorCode = "DAT_004"
)

// Forecast error codes.
const (
	ErrCodeSeatsInvalid     ErrorCode = "FCT_001"
	ErrCodeCoalitionInvalid ErrorCode = "FCT_002"
	ErrCodeForecastFailed   ErrorCode = "FCT_003"
)

// Short aliases used at call sites.
const (
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeTimeout      = ErrCodeTimeout
	CodeCanceled     = ErrCodeCanceled

	CodeDatabaseError = ErrCodeDatabaseError
	CodeCacheError    = ErrCodeCacheError
	CodeStorageError  = ErrCodeStorageError

	CodeInvalidConfig    = ErrCodeConfigInvalid
	CodeReferenceInvalid = ErrCodeReferenceInvalid
	CodeWeightsInvalid   = ErrCodeWeightsInvalid
	CodeProfileUnknown   = ErrCodeProfileUnknown

	CodeDatasetRead        = ErrCodeDatasetRead
	CodeDatasetParse       = ErrCodeDatasetParse
	CodeDatasetUnsupported = ErrCodeDatasetUnsupported
	CodeUnknownYear        = ErrCodeUnknownYear

	CodeSeatsInvalid     = ErrCodeSeatsInvalid
	CodeCoalitionInvalid = ErrCodeCoalitionInvalid
	CodeForecastFailed   = ErrCodeForecastFailed
)

// Process exit codes returned by the CLI, following sysexits(3).
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 64
	ExitDataErr     = 65
	ExitNoInput     = 66
	ExitUnavailable = 69
	ExitSoftware    = 70
	ExitTempFail    = 75
	ExitConfig      = 78
)

// ErrorCodeExitStatus maps codes to CLI exit statuses.
var ErrorCodeExitStatus = map[ErrorCode]int{
	CodeOK:                    ExitOK,
	ErrCodeInternal:           ExitSoftware,
	ErrCodeBadRequest:         ExitUsage,
	ErrCodeNotFound:           ExitNoInput,
	ErrCodeTimeout:            ExitTempFail,
	ErrCodeValidation:         ExitDataErr,
	ErrCodeSerialization:      ExitSoftware,
	ErrCodeDatabaseError:      ExitUnavailable,
	ErrCodeCacheError:         ExitUnavailable,
	ErrCodeStorageError:       ExitUnavailable,
	ErrCodeCanceled:           ExitTempFail,
	ErrCodeConfigInvalid:      ExitConfig,
	ErrCodeReferenceInvalid:   ExitConfig,
	ErrCodeWeightsInvalid:     ExitConfig,
	ErrCodeProfileUnknown:     ExitConfig,
	ErrCodeDatasetRead:        ExitNoInput,
	ErrCodeDatasetParse:       ExitDataErr,
	ErrCodeDatasetUnsupported: ExitDataErr,
	ErrCodeUnknownYear:        ExitNoInput,
	ErrCodeSeatsInvalid:       ExitUsage,
	ErrCodeCoalitionInvalid:   ExitUsage,
	ErrCodeForecastFailed:     ExitSoftware,
}

// ErrorCodeMessage maps codes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "not found",
	ErrCodeTimeout:            "operation timed out",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeCanceled:           "operation canceled",
	ErrCodeConfigInvalid:      "invalid configuration",
	ErrCodeReferenceInvalid:   "invalid reference data",
	ErrCodeWeightsInvalid:     "invalid scoring weights",
	ErrCodeProfileUnknown:     "unknown reference profile",
	ErrCodeDatasetRead:        "failed to read dataset",
	ErrCodeDatasetParse:       "failed to parse dataset",
	ErrCodeDatasetUnsupported: "unsupported dataset layout",
	ErrCodeUnknownYear:        "year not present in dataset",
	ErrCodeSeatsInvalid:       "invalid seat distribution",
	ErrCodeCoalitionInvalid:   "invalid coalition",
	ErrCodeForecastFailed:     "forecast failed",
}

// ExitStatusForCode returns the process exit status for code.
func ExitStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeExitStatus[code]; ok {
		return status
	}
	return ExitFailure
}

// DefaultMessageForCode returns the default message for code.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsUserError reports whether code is caused by operator input rather than
// by the environment or a bug.
func IsUserError(code ErrorCode) bool {
	switch ExitStatusForCode(code) {
	case ExitUsage, ExitDataErr, ExitNoInput, ExitConfig:
		return true
	}
	return false
}

//Personal.AI order the ending
