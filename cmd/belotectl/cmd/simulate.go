package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/bot"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// simulationLine is one game of a simulate run, printed as a JSON line with --json.
type simulationLine struct {
	GameID    string   `json:"game_id"`
	Seed      int64    `json:"seed"`
	Rounds    int      `json:"rounds"`
	Restarts  int      `json:"restarts"`
	Decisions int      `json:"decisions"`
	Team0     int      `json:"team0"`
	Team1     int      `json:"team1"`
	Contracts []string `json:"contracts"`
}

func newSimulateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play bot-only games and report the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd, v)
			if err != nil {
				return err
			}
			cfg, err := gameConfig(v)
			if err != nil {
				return err
			}

			games := v.GetInt(keySimulateGames)
			rounds := v.GetInt(keySimulateRounds)
			if games < 1 || rounds < 1 {
				return fmt.Errorf("games and rounds must be positive")
			}
			level := bot.LevelForDifficulty(v.GetString(keySimulateLevel))
			seed := v.GetInt64(keySimulateSeed)
			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)

			for i := 0; i < games; i++ {
				agents, err := bot.NewTable(level)
				if err != nil {
					return err
				}
				gameSeed := seed + int64(i)
				res, err := bot.RunSelfPlay(fmt.Sprintf("sim-%d", i+1), gameSeed, rounds, agents, app.OptionsFromConfig(cfg)...)
				if err != nil {
					return fmt.Errorf("game %d (seed %d): %w", i+1, gameSeed, err)
				}
				logger.Debug("game %s finished after %d decisions", res.GameID, res.Decisions)

				line := simulationLine{
					GameID:    res.GameID,
					Seed:      gameSeed,
					Rounds:    res.Rounds,
					Restarts:  res.Restarts,
					Decisions: res.Decisions,
					Team0:     res.Score.Team0,
					Team1:     res.Score.Team1,
				}
				for _, c := range res.Contracts {
					line.Contracts = append(line.Contracts, c.String())
				}

				if v.GetBool(keySimulateJSON) {
					if err := enc.Encode(line); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "%s seed=%d rounds=%d restarts=%d score=%d-%d contracts=%s\n",
					line.GameID, line.Seed, line.Rounds, line.Restarts, line.Team0, line.Team1, strings.Join(line.Contracts, ","))
			}
			return nil
		},
	}
	cmd.Flags().Int(keySimulateGames, 1, "number of games")
	cmd.Flags().Int(keySimulateRounds, 1, "rounds per game")
	cmd.Flags().Int64(keySimulateSeed, 1, "seed of the first game; game i uses seed+i")
	cmd.Flags().String(keySimulateLevel, "medium", "bot difficulty: easy or medium")
	cmd.Flags().Bool(keySimulateJSON, false, "print one JSON object per game")
	return cmd
}
