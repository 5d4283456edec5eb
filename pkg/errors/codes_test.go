package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var allCodes = []ErrorCode{
	ErrCodeInternal, ErrCodeBadRequest, ErrCodeNotFound, ErrCodeTimeout,
	ErrCodeValidation, ErrCodeSerialization, ErrCodeDatabaseError, ErrCodeCacheError,
	ErrCodeStorageError, ErrCodeCanceled,
	ErrCodeConfigInvalid, ErrCodeReferenceInvalid, ErrCodeWeightsInvalid, ErrCodeProfileUnknown,
	ErrCodeDatasetRead, ErrCodeDatasetParse, ErrCodeDatasetUnsupported, ErrCodeUnknownYear,
	ErrCodeSeatsInvalid, ErrCodeCoalitionInvalid, ErrCodeForecastFailed,
}

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "DAT_004", ErrCodeUnknownYear.String())
}

func TestExitStatusForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{CodeOK, ExitOK},
		{ErrCodeInternal, ExitSoftware},
		{ErrCodeBadRequest, ExitUsage},
		{ErrCodeDatasetParse, ExitDataErr},
		{ErrCodeUnknownYear, ExitNoInput},
		{ErrCodeWeightsInvalid, ExitConfig},
		{ErrCodeDatabaseError, ExitUnavailable},
		{ErrorCode("UNKNOWN"), ExitFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExitStatusForCode(tt.code), string(tt.code))
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "year not present in dataset", DefaultMessageForCode(ErrCodeUnknownYear))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("NOPE")))
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(ErrCodeSeatsInvalid))
	assert.True(t, IsUserError(ErrCodeConfigInvalid))
	assert.False(t, IsUserError(ErrCodeInternal))
	assert.False(t, IsUserError(ErrCodeCacheError))
}

func TestErrorCodeFormat_Convention(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for _, code := range allCodes {
		assert.Regexp(t, re, string(code))
	}
}

func TestErrorCodeMappings_Completeness(t *testing.T) {
	for _, code := range allCodes {
		_, hasStatus := ErrorCodeExitStatus[code]
		_, hasMessage := ErrorCodeMessage[code]
		assert.True(t, hasStatus, "missing exit status for %s", code)
		assert.True(t, hasMessage, "missing message for %s", code)
	}
}

//Personal.AI order the ending
