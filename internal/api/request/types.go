package request

import (
	"encoding/json"
	"errors"
)

// CreatePlayerRequest is the request body for adding a player
type CreatePlayerRequest struct {
	Name string `json:"name"`
}

// UpdatePlayerRequest is the request body for renaming or (de)selecting a player.
// Absent fields are left unchanged.
type UpdatePlayerRequest struct {
	Name       *string `json:"name,omitempty"`
	IsSelected *bool   `json:"is_selected,omitempty"`
}

// SelectAllRequest is the request body for selecting or deselecting everyone.
// An empty body selects everyone.
type SelectAllRequest struct {
	Selected *bool `json:"selected,omitempty"`
}

// Payload is the extraction model's answer. It may be sent either as the
// JSON object itself or as a string holding the raw model output.
type Payload json.RawMessage

// UnmarshalJSON implements json.Unmarshaler
func (p *Payload) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*p = Payload(raw)
		return nil
	}
	if string(data) == "null" {
		*p = nil
		return nil
	}
	*p = append((*p)[0:0], data...)
	return nil
}

// MarshalJSON implements json.Marshaler. Valid JSON is sent as-is and
// anything else (such as fenced model output) as a string.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	if json.Valid(p) {
		return []byte(p), nil
	}
	return json.Marshal(string(p))
}

// Bytes returns the payload text
func (p Payload) Bytes() []byte {
	return []byte(p)
}

// ReconcileRequest is the request body for a reconciliation dry run
type ReconcileRequest struct {
	Payload     Payload `json:"payload"`
	WinningTeam *int    `json:"winning_team,omitempty"`
}

// ScoreRequest is one hand-entered score
type ScoreRequest struct {
	PlayerID string `json:"player_id"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
	Assists  int    `json:"assists"`
	Score    int    `json:"score"`
	Team     *int   `json:"team,omitempty"`
}

// UpdateScoreRequest is a partial edit of one recorded score. Omitted fields
// keep their current value.
type UpdateScoreRequest struct {
	Kills   *int `json:"kills,omitempty"`
	Deaths  *int `json:"deaths,omitempty"`
	Assists *int `json:"assists,omitempty"`
	Score   *int `json:"score,omitempty"`
	Team    *int `json:"team,omitempty"`
}

// Validate checks that at least one field is being changed
func (r UpdateScoreRequest) Validate() error {
	if r.Kills == nil && r.Deaths == nil && r.Assists == nil && r.Score == nil && r.Team == nil {
		return errors.New("nothing to update")
	}
	return nil
}

// RecordGameRequest is the request body for recording a game
type RecordGameRequest struct {
	Payload       Payload        `json:"payload,omitempty"`
	Scores        []ScoreRequest `json:"scores,omitempty"`
	GameMode      string         `json:"game_mode,omitempty"`
	WinningTeam   *int           `json:"winning_team,omitempty"`
	Map           string         `json:"map,omitempty"`
	ScreenshotURL string         `json:"screenshot_url,omitempty"`
}

// Validate checks that something was sent to record
func (r RecordGameRequest) Validate() error {
	if len(r.Payload) == 0 && len(r.Scores) == 0 {
		return errors.New("payload or scores is required")
	}
	for _, sc := range r.Scores {
		if sc.PlayerID == "" {
			return errors.New("every score needs a player_id")
		}
	}
	return nil
}

// AnalyzeRequest is the request body for analyzing a screenshot
type AnalyzeRequest struct {
	ImageURL    string `json:"image_url"`
	Map         string `json:"map,omitempty"`
	WinningTeam *int   `json:"winning_team,omitempty"`
}
