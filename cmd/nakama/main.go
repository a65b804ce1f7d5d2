package main

import (
	"context"
	"database/sql"

	"github.com/jimmmmothy/Belote-Enterprise/internal/ports/nakama"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule proxies Nakama initialization to the nakama adapter package.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	return nakama.InitModule(ctx, logger, db, nk, initializer)
}

// main is unused: the package is loaded by Nakama as a plugin
// (-buildmode=plugin). It exists so `go build ./...` can link the package.
func main() {}
