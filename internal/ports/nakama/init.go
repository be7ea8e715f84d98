package nakama

import (
	"context"
	"database/sql"

	"concentration/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcStartRound, rpcStartRound); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcListCategories, rpcListCategories); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcSaveCategory, rpcSaveCategory)
}

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("Could not load game config, using defaults: %v", err)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameConcentration, NewMatch); err != nil {
		return err
	}

	logger.Info("Concentration Go module loaded.")
	return nil
}
