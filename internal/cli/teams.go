package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/handicap-tracker/internal/api/request"
	"github.com/mcoot/handicap-tracker/internal/api/response"
)

func newTeamsCmd() *cobra.Command {
	var shuffle int

	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Balance the selected players into two teams",
		Long: `Balance the selected players into two teams of near-equal handicap.

Each --shuffle value gives a different but repeatable split among
players with equal handicaps.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Teams

			if err := client.Get(fmt.Sprintf("/api/v1/teams?shuffle=%d", shuffle), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&shuffle, "shuffle", 0, "Shuffle key")

	return cmd
}

func newReconcileCmd() *cobra.Command {
	var (
		file        string
		winningTeam int
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Match an extraction payload against the roster without recording it",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, file)
			if err != nil {
				return err
			}

			req := request.ReconcileRequest{
				Payload:     payload,
				WinningTeam: teamFlag(cmd, winningTeam),
			}
			var result response.Reconciliation

			if err := client.Post("/api/v1/reconcile", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Payload file, or - for stdin (required)")
	cmd.Flags().IntVar(&winningTeam, "winning-team", 0, "Winning team, overriding the payload")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newHandicapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "handicap <kills> <deaths> <assists>",
		Short: "Calculate the handicap for a set of totals",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var counts [3]int
			for i, arg := range args {
				n, err := strconv.Atoi(arg)
				if err != nil || n < 0 {
					return fmt.Errorf("%q is not a non-negative integer", arg)
				}
				counts[i] = n
			}

			var result response.Handicap
			path := fmt.Sprintf("/api/v1/handicap?kills=%d&deaths=%d&assists=%d", counts[0], counts[1], counts[2])
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Player analytics",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "players",
		Short: "Per-player averages and win rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.PlayerStatsList

			if err := client.Get("/api/v1/stats/players", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	})

	var (
		minGames int
		metric   string
		minValue float64
	)
	connections := &cobra.Command{
		Use:   "connections",
		Short: "How pairs of players do on the same team",
		Long: `How pairs of players do on the same team.

Pairs can be filtered on a metric: games_played, win_rate (a percentage)
or avg_kda. Only pairs whose metric is at least --min are shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("min_games", strconv.Itoa(minGames))
			if metric != "" {
				query.Set("metric", metric)
			}
			if cmd.Flags().Changed("min") {
				query.Set("min", strconv.FormatFloat(minValue, 'f', -1, 64))
			}
			var result response.ConnectionList

			if err := client.Get("/api/v1/stats/connections?"+query.Encode(), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
	connections.Flags().IntVar(&minGames, "min-games", 1, "Only show pairs with at least this many games together")
	connections.Flags().StringVar(&metric, "metric", "", "Metric to filter on: games_played, win_rate or avg_kda")
	connections.Flags().Float64Var(&minValue, "min", 0, "Minimum value of --metric")
	cmd.AddCommand(connections)

	return cmd
}
