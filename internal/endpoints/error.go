package endpoints

import (
	"errors"
	"net/http"

	"qa-metrics/internal/domain"
	"qa-metrics/internal/ingest"
)

const (
	API_SUCCESS      = iota + 303000 // 303000
	API_FAILURE                      // 303001 - Generic API failure
	API_UNAUTHORIZED                 // 303002 - Reserved, no endpoint authenticates
)

const (
	INVALID_INPUT        = iota + 101 // 101 - Batch payload is not an array
	INVALID_REQUEST_BODY              // 102 - Error parsing request body
	NOT_FOUND                         // 103 - Referenced question does not exist
	MISSING_FIELD                     // 104 - Required field absent or empty
)

var (
	ErrInvalidRequestBody = errors.New("invalid request body format")
	ErrMissingRegion      = errors.New("region is required")
	ErrMissingTitle       = errors.New("title is required")
	ErrMissingAnswer      = errors.New("answer is required")
)

// Client-facing wording for errors whose text differs from err.Error().
var publicMessages = map[error]string{
	ingest.ErrInvalidInput: "Invalid request: 'logs' should be an array.",
	ErrMissingRegion:       "Region is required.",
	domain.ErrNotFound:     "Question not found",
}

func GetErrorCode(err error) int {
	if err == nil {
		return API_SUCCESS
	}

	switch {
	case errors.Is(err, ingest.ErrInvalidInput):
		return INVALID_INPUT
	case errors.Is(err, ErrInvalidRequestBody):
		return INVALID_REQUEST_BODY
	case errors.Is(err, domain.ErrNotFound):
		return NOT_FOUND
	case errors.Is(err, ErrMissingRegion),
		errors.Is(err, ErrMissingTitle),
		errors.Is(err, ErrMissingAnswer):
		return MISSING_FIELD
	default:
		return API_FAILURE
	}
}

// GetStatusCode picks the HTTP status for err.
func GetStatusCode(err error) int {
	switch GetErrorCode(err) {
	case API_SUCCESS:
		return http.StatusOK
	case INVALID_INPUT, INVALID_REQUEST_BODY, MISSING_FIELD:
		return http.StatusBadRequest
	case NOT_FOUND:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	for target, msg := range publicMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return err.Error()
}
