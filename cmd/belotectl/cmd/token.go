package cmd

import (
	"fmt"
	"time"

	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/ports/ws"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTokenCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or inspect seat tokens",
	}
	cmd.AddCommand(newTokenIssueCmd(v), newTokenVerifyCmd(v))
	return cmd
}

func tokenService(v *viper.Viper) (*app.SeatTokenService, error) {
	secret := v.GetString(keySeatSecret)
	if secret == "" {
		return nil, fmt.Errorf("--%s (or %s_SEAT_TOKEN_SECRET) is required", keySeatSecret, EnvPrefix)
	}
	cfg, err := gameConfig(v)
	if err != nil {
		return nil, err
	}
	return app.NewSeatTokenService(secret, ws.TokenIssuer, cfg.SeatTokenTTL()), nil
}

func newTokenIssueCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a seat token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokens, err := tokenService(v)
			if err != nil {
				return err
			}
			token, err := tokens.GenerateToken(v.GetString(keyTokenPlayer), v.GetString(keyTokenGame), v.GetInt(keyTokenSeat))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String(keyTokenPlayer, "", "player id")
	cmd.Flags().String(keyTokenGame, "", "game id")
	cmd.Flags().Int(keyTokenSeat, 0, "seat index")
	return cmd
}

func newTokenVerifyCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "verify TOKEN",
		Short: "Check a seat token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := tokenService(v)
			if err != nil {
				return err
			}
			claims, err := tokens.ParseToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "player=%s game=%s seat=%d expires=%s\n",
				claims.PlayerID, claims.GameID, claims.Seat, claims.ExpiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
}
