package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/handicap-tracker/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeInvalidPlayerName     = "INVALID_PLAYER_NAME"
	CodeDuplicatePlayerName   = "DUPLICATE_PLAYER_NAME"
	CodePlayerNotFound        = "PLAYER_NOT_FOUND"
	CodeGameNotFound          = "GAME_NOT_FOUND"
	CodeScoreNotFound         = "SCORE_NOT_FOUND"
	CodeAlreadyInGame         = "ALREADY_IN_GAME"
	CodeEmptyGame             = "EMPTY_GAME"
	CodeNoScoresMatched       = "NO_SCORES_MATCHED"
	CodeMalformedExtraction   = "MALFORMED_EXTRACTION"
	CodeExtractionUnavailable = "EXTRACTION_UNAVAILABLE"
	CodeExtractionFailed      = "EXTRACTION_FAILED"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrScoreNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeScoreNotFound, "Player has no score in this game"}}
	case errors.Is(err, model.ErrAlreadyInGame):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInGame, "Player already has a score in this game"}}
	case errors.Is(err, model.ErrInvalidPlayerName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPlayerName, "Player name must contain at least one letter or digit"}}
	case errors.Is(err, model.ErrDuplicatePlayerName):
		return &httpError{http.StatusConflict, APIError{CodeDuplicatePlayerName, "A player with this name already exists"}}
	case errors.Is(err, model.ErrEmptyGame):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyGame, "Either payload or scores is required"}}
	case errors.Is(err, model.ErrNoScoresMatched):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeNoScoresMatched, "No valid scores were detected"}}

	// The parse error says which fields were wrong, so pass it through
	case errors.Is(err, model.ErrMalformedExtraction):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeMalformedExtraction, err.Error()}}

	// Map extraction model errors
	case errors.Is(err, model.ErrExtractionUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeExtractionUnavailable, "Screenshot analysis is not configured"}}
	case errors.Is(err, model.ErrExtractionFailed):
		return &httpError{http.StatusBadGateway, APIError{CodeExtractionFailed, "Screenshot analysis failed"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
