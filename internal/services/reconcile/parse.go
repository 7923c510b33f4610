package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mcoot/handicap-tracker/internal/model"
)

// MalformedExtractionError is returned when a payload is not the expected shape at all.
// It matches model.ErrMalformedExtraction with errors.Is.
type MalformedExtractionError struct {
	Reason string
	Err    error
}

func (e *MalformedExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", model.ErrMalformedExtraction, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", model.ErrMalformedExtraction, e.Reason)
}

func (e *MalformedExtractionError) Unwrap() []error {
	if e.Err != nil {
		return []error{model.ErrMalformedExtraction, e.Err}
	}
	return []error{model.ErrMalformedExtraction}
}

func malformed(reason string, err error) error {
	return &MalformedExtractionError{Reason: reason, Err: err}
}

// Keys of the wrapped payload shape
const (
	keyScores      = "scores"
	keyGameMode    = "gameMode"
	keyWinningTeam = "winningTeam"
)

// rawEntry mirrors one stat object. Fields stay raw so that absent, null,
// numeric and numeric-string values can all be told apart.
type rawEntry struct {
	Kills   json.RawMessage `json:"kills"`
	Deaths  json.RawMessage `json:"deaths"`
	Assists json.RawMessage `json:"assists"`
	Score   json.RawMessage `json:"score"`
	Team    json.RawMessage `json:"team"`
}

// ParseExtraction decodes an extraction model response.
//
// Both the flat shape {name: stats} and the wrapped shape
// {"scores": {name: stats}, "gameMode": ..., "winningTeam": ...} are accepted,
// optionally inside a markdown code fence. Anything else fails with a
// *MalformedExtractionError and no entries.
func ParseExtraction(data []byte) (*model.Extraction, error) {
	body := stripCodeFence(data)
	if len(body) == 0 {
		return nil, malformed("empty payload", nil)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, malformed("payload is not a JSON object", err)
	}
	if top == nil {
		return nil, malformed("payload is null", nil)
	}

	extraction := &model.Extraction{
		Entries: make(map[string]*model.RawExtractionEntry),
	}

	// Metadata may sit next to "scores", or next to the entries in the flat shape
	if raw, ok := top[keyGameMode]; ok {
		var mode string
		if err := json.Unmarshal(raw, &mode); err == nil {
			extraction.GameMode = strings.TrimSpace(mode)
		}
	}
	if raw, ok := top[keyWinningTeam]; ok {
		extraction.WinningTeam = parseNumber(raw)
	}

	entries := top
	if raw, ok := top[keyScores]; ok {
		var scores map[string]json.RawMessage
		if err := json.Unmarshal(raw, &scores); err != nil || scores == nil {
			return nil, malformed(`"scores" is not a JSON object`, err)
		}
		entries = scores
	} else {
		delete(entries, keyGameMode)
		delete(entries, keyWinningTeam)
	}

	for name, raw := range entries {
		entry, err := parseEntry(raw)
		if err != nil {
			return nil, malformed(fmt.Sprintf("entry %q is not a stat object", name), err)
		}
		extraction.Entries[name] = entry
	}

	return extraction, nil
}

func parseEntry(raw json.RawMessage) (*model.RawExtractionEntry, error) {
	if isNull(raw) {
		return nil, nil
	}

	var re rawEntry
	if err := json.Unmarshal(raw, &re); err != nil {
		return nil, err
	}
	return &model.RawExtractionEntry{
		Kills:   parseNumber(re.Kills),
		Deaths:  parseNumber(re.Deaths),
		Assists: parseNumber(re.Assists),
		Score:   parseNumber(re.Score),
		Team:    parseNumber(re.Team),
	}, nil
}

// parseNumber reads a JSON number or numeric string, truncating fractions.
// Magnitudes beyond model.MaxStatValue are clamped to it. NaN, infinities
// and anything non-numeric are treated as absent.
func parseNumber(raw json.RawMessage) *int {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return nil
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	f = math.Max(math.Min(math.Trunc(f), model.MaxStatValue), -model.MaxStatValue)
	n := int(f)
	return &n
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// stripCodeFence removes a surrounding ```json ... ``` block if present
func stripCodeFence(data []byte) []byte {
	body := bytes.TrimSpace(data)
	if !bytes.HasPrefix(body, []byte("```")) {
		return body
	}

	// Drop the opening fence line, including any language tag
	if idx := bytes.IndexByte(body, '\n'); idx >= 0 {
		body = body[idx+1:]
	} else {
		body = bytes.TrimPrefix(bytes.TrimPrefix(body, []byte("```")), []byte("json"))
	}
	body = bytes.TrimSpace(body)
	body = bytes.TrimSuffix(body, []byte("```"))
	return bytes.TrimSpace(body)
}
