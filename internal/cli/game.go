package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/handicap-tracker/internal/api/request"
	"github.com/mcoot/handicap-tracker/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game recording commands",
	}

	cmd.AddCommand(newGameRecordCmd())
	cmd.AddCommand(newGameAnalyzeCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameDeleteCmd())
	cmd.AddCommand(newGameEditCmd())
	cmd.AddCommand(newGameAddPlayerCmd())
	cmd.AddCommand(newGameRecalculateCmd())

	return cmd
}

func gamePath(id string) string {
	return "/api/v1/games/" + url.PathEscape(id)
}

// readPayload reads an extraction payload from a file, or stdin for "-"
func readPayload(cmd *cobra.Command, file string) (request.Payload, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return request.Payload(data), nil
}

// teamFlag returns the --winning-team value, or nil when it was not given
func teamFlag(cmd *cobra.Command, value int) *int {
	return changedInt(cmd, "winning-team", value)
}

func newGameRecordCmd() *cobra.Command {
	var (
		file, mode, mapName, screenshot string
		winningTeam                     int
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a game from an extraction payload",
		Long: `Record a game from the JSON an extraction model produced for a scoreboard.

Names are matched against the roster, and every matched player's
totals and handicap are updated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, file)
			if err != nil {
				return err
			}

			req := request.RecordGameRequest{
				Payload:       payload,
				GameMode:      mode,
				WinningTeam:   teamFlag(cmd, winningTeam),
				Map:           mapName,
				ScreenshotURL: screenshot,
			}
			var result response.RecordResult

			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Payload file, or - for stdin (required)")
	cmd.Flags().StringVar(&mode, "mode", "", "Game mode, overriding the payload")
	cmd.Flags().IntVar(&winningTeam, "winning-team", 0, "Winning team, overriding the payload")
	cmd.Flags().StringVar(&mapName, "map", "", "Map name")
	cmd.Flags().StringVar(&screenshot, "screenshot", "", "Screenshot URL to keep with the game")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newGameAnalyzeCmd() *cobra.Command {
	var (
		mapName     string
		winningTeam int
	)

	cmd := &cobra.Command{
		Use:   "analyze <image-url>",
		Short: "Read a scoreboard screenshot and record the game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.AnalyzeRequest{
				ImageURL:    args[0],
				Map:         mapName,
				WinningTeam: teamFlag(cmd, winningTeam),
			}
			var result response.RecordResult

			if err := client.Post("/api/v1/games/analyze", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mapName, "map", "", "Map name")
	cmd.Flags().IntVar(&winningTeam, "winning-team", 0, "Winning team, overriding the screenshot")

	return cmd
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded games, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameList

			if err := client.Get("/api/v1/games", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a recorded game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game

			if err := client.Get(gamePath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a game and roll back its totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.DeleteGameResponse

			if err := client.Delete(gamePath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(response.PlayerList{Players: result.Players})
			return nil
		},
	}
}

// changedInt returns the named flag's value, or nil when it was not given
func changedInt(cmd *cobra.Command, name string, value int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func newGameEditCmd() *cobra.Command {
	var kills, deaths, assists, score, team int

	cmd := &cobra.Command{
		Use:   "edit <game-id> <player-id>",
		Short: "Correct one player's score in a recorded game",
		Long: `Correct one player's score in a recorded game.

Only the flags given are changed. The player's totals and handicap are
re-derived from their full game history.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.UpdateScoreRequest{
				Kills:   changedInt(cmd, "kills", kills),
				Deaths:  changedInt(cmd, "deaths", deaths),
				Assists: changedInt(cmd, "assists", assists),
				Score:   changedInt(cmd, "score", score),
				Team:    changedInt(cmd, "team", team),
			}
			if err := req.Validate(); err != nil {
				return err
			}
			var result response.GameUpdate

			path := gamePath(args[0]) + "/scores/" + url.PathEscape(args[1])
			if err := client.Patch(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&kills, "kills", 0, "Kills")
	cmd.Flags().IntVar(&deaths, "deaths", 0, "Deaths")
	cmd.Flags().IntVar(&assists, "assists", 0, "Assists")
	cmd.Flags().IntVar(&score, "score", 0, "Score")
	cmd.Flags().IntVar(&team, "team", 0, "Team")

	return cmd
}

func newGameAddPlayerCmd() *cobra.Command {
	var kills, deaths, assists, score, team int

	cmd := &cobra.Command{
		Use:   "add-player <game-id> <player-id>",
		Short: "Add a roster player missing from a recorded game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.ScoreRequest{
				PlayerID: args[1],
				Kills:    kills,
				Deaths:   deaths,
				Assists:  assists,
				Score:    score,
				Team:     changedInt(cmd, "team", team),
			}
			var result response.GameUpdate

			if err := client.Post(gamePath(args[0])+"/scores", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&kills, "kills", 0, "Kills")
	cmd.Flags().IntVar(&deaths, "deaths", 0, "Deaths")
	cmd.Flags().IntVar(&assists, "assists", 0, "Assists")
	cmd.Flags().IntVar(&score, "score", 0, "Score")
	cmd.Flags().IntVar(&team, "team", 0, "Team")

	return cmd
}

func newGameRecalculateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalculate",
		Short: "Rebuild every player's totals from recorded games",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.PlayerList

			if err := client.Post("/api/v1/games/recalculate", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
