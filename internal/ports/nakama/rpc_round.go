package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/heroiclabs/nakama-common/runtime"
)

var validate = validator.New()

// StartRoundRequest is the optional payload of the start_round RPC.
type StartRoundRequest struct {
	Category  string `json:"category,omitempty" validate:"omitempty,max=64"`
	Groups    int    `json:"groups,omitempty" validate:"omitempty,gte=1,lte=64"`
	GroupSize int    `json:"group_size,omitempty" validate:"omitempty,gte=2,lte=8"`
}

// StartRoundResponse is the payload returned to clients after a match was created.
type StartRoundResponse struct {
	MatchID string `json:"match_id"`
}

// matchCreator is the subset of runtime.NakamaModule start_round needs.
type matchCreator interface {
	MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error)
}

func rpcStartRound(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return startRound(ctx, logger, nk, payload)
}

func startRound(ctx context.Context, logger runtime.Logger, nk matchCreator, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("no user in context", codeInvalidArgument)
	}

	var req StartRoundRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid start_round payload", codeInvalidArgument)
		}
	}
	if err := validate.Struct(&req); err != nil {
		return "", runtime.NewError(err.Error(), codeInvalidArgument)
	}

	params := map[string]interface{}{"owner": userID}
	if req.Category != "" {
		params["category"] = req.Category
	}
	if req.Groups > 0 {
		params["groups"] = req.Groups
	}
	if req.GroupSize > 0 {
		params["group_size"] = req.GroupSize
	}

	// The round itself is dealt in MatchJoin once the owner connects.
	matchID, err := nk.MatchCreate(ctx, MatchNameConcentration, params)
	if err != nil {
		logger.Error("RpcStartRound [User:%s]: Failed to create match: %v", userID, err)
		return "", runtime.NewError("failed to create match", codeInternal)
	}
	logger.Info("RpcStartRound [User:%s]: Created match %s", userID, matchID)

	b, _ := json.Marshal(StartRoundResponse{MatchID: matchID})
	return string(b), nil
}
