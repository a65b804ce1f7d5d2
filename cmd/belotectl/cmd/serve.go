package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/ports"
	"github.com/jimmmmothy/Belote-Enterprise/internal/ports/ws"
	"github.com/jimmmmothy/Belote-Enterprise/internal/table"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the standalone WebSocket game server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd, v)
			if err != nil {
				return err
			}
			cfg, err := gameConfig(v)
			if err != nil {
				return err
			}

			var tokens *app.SeatTokenService
			if secret := v.GetString(keySeatSecret); secret != "" {
				tokens = app.NewSeatTokenService(secret, ws.TokenIssuer, cfg.SeatTokenTTL())
			} else {
				logger.Warn("no seat token secret set, seated players can rejoin without a token")
			}

			server := ws.NewServer(logger, tokens,
				table.WithHistory(logHistory{logger: logger}),
				table.WithGameOptions(func(string) []app.Option { return app.OptionsFromConfig(cfg) }),
			)
			defer server.Close()

			httpServer := &http.Server{
				Addr:              v.GetString(keyServeAddr),
				Handler:           server.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				logger.Info("listening on %s (ws endpoint: /ws)", httpServer.Addr)
				errc <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String(keyServeAddr, ":8080", "listen address")
	return cmd
}

// logHistory writes finished rounds to the log; the standalone server keeps
// no storage.
type logHistory struct {
	logger runtime.Logger
}

func (h logHistory) RecordRound(_ context.Context, r ports.RoundRecord) error {
	h.logger.WithFields(map[string]interface{}{
		"game":     r.GameID,
		"round":    r.Round,
		"contract": r.Contract,
		"bidder":   r.BidderID,
	}).Info("round finished %d-%d (total %d-%d)", r.Team0, r.Team1, r.Total[0], r.Total[1])
	return nil
}
