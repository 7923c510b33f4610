package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound      = errors.New("player not found")
	ErrInvalidPlayerName   = errors.New("player name must contain at least one letter or digit")
	ErrDuplicatePlayerName = errors.New("a player with this name already exists")

	// Game errors
	ErrGameNotFound    = errors.New("game not found")
	ErrNoScoresMatched = errors.New("no valid scores were detected")
	ErrEmptyGame       = errors.New("a game needs an extraction payload or scores")
	ErrScoreNotFound   = errors.New("player has no score in this game")
	ErrAlreadyInGame   = errors.New("player already has a score in this game")

	// Extraction errors
	ErrMalformedExtraction   = errors.New("malformed extraction payload")
	ErrExtractionUnavailable = errors.New("extraction model is not configured")
	ErrExtractionFailed      = errors.New("extraction model request failed")
)
