package nakama

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"concentration/internal/app"
	"concentration/internal/bot"
	"concentration/internal/catalog"
	"concentration/internal/config"
	"concentration/internal/domain"
	"concentration/internal/ports"
	"concentration/internal/schedule"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	MatchLabelKey_Owner = "owner" // Key for the owner's user id in the match label

	gameConfigPath = "data/game_config.json"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	OwnerID    string              `json:"owner_id"` // The only user allowed to join
	Presence   runtime.Presence    `json:"-"`        // Owner presence while connected
	Tick       int64               `json:"tick"`     // Current tick of the match loop
	Config     *config.GameConfig  `json:"-"`        // Loaded game settings
	Catalog    *catalog.Catalog    `json:"-"`        // Built-in categories
	Categories *catalog.Catalog    `json:"-"`        // Built-in plus the owner's saved categories
	Initial    domain.RoundConfig  `json:"-"`        // Round requested at match creation
	Queue      *schedule.Queue     `json:"-"`        // Virtual clock advanced once per tick
	Session    *app.Session        `json:"-"`        // Nil until the owner joins
	Store      ports.CategoryStore `json:"-"`        // Where the owner's categories are saved

	AutoPlayEnabled   bool       `json:"autoplay_enabled"`    // Whether the agent plays for the owner
	AutoPlayMinDelay  int        `json:"autoplay_min_delay"`  // Min ticks between agent clicks
	AutoPlayMaxDelay  int        `json:"autoplay_max_delay"`  // Max ticks between agent clicks
	AutoPlayWaitUntil int64      `json:"autoplay_wait_until"` // Tick when the agent should act
	Agent             *bot.Agent `json:"-"`

	rng *rand.Rand
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{store: NewNakamaCategoryStore(nk)}, nil
}

type matchHandler struct {
	store ports.CategoryStore
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("MatchInit: Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()

	cat, err := catalog.LoadShared(cfg.CatalogPath, cfg.AssetRoot)
	if err != nil {
		logger.Error("MatchInit: Failed to load catalog %s: %v", cfg.CatalogPath, err)
		return nil, 0, ""
	}

	state := newMatchState(cfg, cat, mh.store, rand.New(rand.NewSource(time.Now().UnixNano())))
	state.OwnerID, _ = params["owner"].(string)
	state.Initial = roundFromParams(cfg.DefaultRound(), params)

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	applyAutoPlayEnv(state, env)

	label, err := mh.label(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	logger.Info("MatchInit: Match for owner %s with %+v at %d ticks/s.", state.OwnerID, state.Initial, cfg.TickRate)
	return state, cfg.TickRate, label
}

func newMatchState(cfg *config.GameConfig, cat *catalog.Catalog, store ports.CategoryStore, rng *rand.Rand) *MatchState {
	return &MatchState{
		Config:           cfg,
		Catalog:          cat,
		Categories:       cat,
		Initial:          cfg.DefaultRound(),
		Queue:            schedule.NewQueue(),
		Store:            store,
		AutoPlayEnabled:  cfg.AutoPlayEnabled,
		AutoPlayMinDelay: cfg.AutoPlayMinDelayTicks,
		AutoPlayMaxDelay: cfg.AutoPlayMaxDelayTicks,
		rng:              rng,
	}
}

// roundFromParams overlays match creation params on the default round.
func roundFromParams(round domain.RoundConfig, params map[string]interface{}) domain.RoundConfig {
	if v, ok := params["category"].(string); ok && v != "" {
		round.Category = v
	}
	if v, ok := paramInt(params["groups"]); ok {
		round.GroupCount = v
	}
	if v, ok := paramInt(params["group_size"]); ok {
		round.GroupSize = v
	}
	return round
}

// paramInt accepts the numeric types params arrive as from Go and JSON callers.
func paramInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, n > 0
	case int64:
		return int(n), n > 0
	case float64:
		return int(n), n > 0
	default:
		return 0, false
	}
}

// applyAutoPlayEnv reads runtime env overrides for the autoplay agent.
func applyAutoPlayEnv(state *MatchState, env map[string]string) {
	if val, ok := env["concentration_autoplay_enabled"]; ok {
		state.AutoPlayEnabled = val == "true"
	}
	if val, ok := env["concentration_autoplay_min_delay_ticks"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= 0 {
			state.AutoPlayMinDelay = i
		}
	}
	if val, ok := env["concentration_autoplay_max_delay_ticks"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= 0 {
			state.AutoPlayMaxDelay = i
		}
	}
	if state.AutoPlayMaxDelay < state.AutoPlayMinDelay {
		state.AutoPlayMaxDelay = state.AutoPlayMinDelay
	}
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if matchState.Presence != nil {
		return state, false, "match_full"
	}
	if matchState.OwnerID != "" && presence.GetUserId() != matchState.OwnerID {
		logger.Warn("MatchJoinAttempt: User %s rejected, match belongs to %s.", presence.GetUserId(), matchState.OwnerID)
		return state, false, "match_full"
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		if matchState.Presence != nil {
			logger.Warn("MatchJoin: User %s joined but the match already has a player.", p.GetUserId())
			continue
		}
		matchState.Presence = p
		if matchState.OwnerID == "" {
			matchState.OwnerID = p.GetUserId()
		}
	}
	if matchState.Presence == nil {
		return matchState
	}

	if matchState.Session == nil {
		mh.startSession(ctx, matchState, dispatcher, logger)
	}
	if matchState.AutoPlayEnabled && matchState.Agent == nil {
		mh.enableAutoPlay(matchState, logger, "")
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.sendSnapshot(matchState, dispatcher, logger)

	return matchState
}

// startSession builds the owner's catalog view and deals the first round.
func (mh *matchHandler) startSession(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	mh.refreshCategories(ctx, state, logger)

	state.Session = app.NewSession(state.Categories, state.Queue, state.rng, state.Config.Timing())
	events, err := state.Session.Start(state.Initial)
	if err != nil {
		logger.Warn("MatchJoin: Cannot start %+v, falling back to defaults: %v", state.Initial, err)
		mh.sendError(state, dispatcher, logger, errorCode(err), err.Error())
		events, err = state.Session.Start(state.Config.DefaultRound())
		if err != nil {
			logger.Error("MatchJoin: Failed to start default round: %v", err)
			return
		}
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
}

// refreshCategories rereads the owner's saved categories so ones added
// through save_category after the match started become selectable.
// On a store error the previous view is kept.
func (mh *matchHandler) refreshCategories(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if state.Store == nil {
		return
	}
	custom, err := state.Store.ListCategories(ctx, state.OwnerID)
	if err != nil {
		logger.Warn("refreshCategories: Failed to load categories for %s: %v", state.OwnerID, err)
		return
	}
	state.Categories = state.Catalog.With(custom...)
	if state.Session != nil {
		state.Session.SetSource(state.Categories)
	}
	logger.Debug("refreshCategories: Loaded %d custom categories for %s.", len(custom), state.OwnerID)
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		if matchState.Presence != nil && p.GetUserId() == matchState.Presence.GetUserId() {
			matchState.Presence = nil
		}
	}

	if matchState.Presence == nil {
		if matchState.Session != nil {
			matchState.Session.Close()
		}
		logger.Info("MatchLeave: Owner %s left, terminating match.", matchState.OwnerID)
		return nil
	}

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	// Handle incoming messages
	for _, msg := range messages {
		if matchState.Presence == nil || msg.GetUserId() != matchState.Presence.GetUserId() {
			logger.Warn("MatchLoop: Ignoring message from non-player %s", msg.GetUserId())
			continue
		}
		switch msg.GetOpCode() {
		case OpSelectCard:
			mh.handleSelectCard(matchState, dispatcher, logger, msg)
		case OpConfigure:
			mh.handleConfigure(ctx, matchState, dispatcher, logger, msg)
		case OpAutoPlay:
			mh.handleAutoPlay(matchState, dispatcher, logger, msg)
		case OpRestart:
			mh.handleRestart(matchState, dispatcher, logger)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
			mh.sendError(matchState, dispatcher, logger, ErrCodeBadRequest, "unknown opcode "+strconv.FormatInt(msg.GetOpCode(), 10))
		}
	}

	// Deferred conceal and win transitions
	if matchState.Session != nil {
		matchState.Queue.Advance(matchState.Config.TickDuration())
		mh.broadcastEvents(matchState, dispatcher, logger, matchState.Session.Drain())
	}

	if matchState.AutoPlayEnabled {
		mh.processAutoPlay(matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) handleSelectCard(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Session == nil {
		mh.sendError(state, dispatcher, logger, ErrCodeNoRound, app.ErrNoRound.Error())
		return
	}
	position, err := decodeSelectCard(msg.GetData())
	if err != nil {
		logger.Warn("handleSelectCard: Invalid request from %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, err.Error())
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, state.Session.Select(position))
}

func (mh *matchHandler) handleConfigure(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	req, err := decodeConfigure(msg.GetData())
	if err != nil {
		logger.Warn("handleConfigure: Invalid request from %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, err.Error())
		return
	}
	if req.Groups != nil && *req.Groups > state.Config.MaxGroups {
		mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, "too many groups: max "+strconv.Itoa(state.Config.MaxGroups))
		return
	}
	if req.Cards != nil && req.Groups != nil {
		mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, "cards and groups are exclusive")
		return
	}
	if state.Session == nil {
		mh.sendError(state, dispatcher, logger, ErrCodeNoRound, app.ErrNoRound.Error())
		return
	}
	if req.Category != nil && !state.Categories.Has(*req.Category) {
		mh.refreshCategories(ctx, state, logger)
	}

	events, err := applyConfigure(state.Session, req, state.Config.MaxGroups)
	if err != nil {
		logger.Warn("handleConfigure: Reconfigure for %s failed, keeping current round: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, errorCode(err), err.Error())
		return
	}
	state.AutoPlayWaitUntil = 0
	mh.broadcastEvents(state, dispatcher, logger, events)
	mh.updateLabel(state, dispatcher, logger)
}

// applyConfigure routes single-field requests to the matching control and
// combined ones to a fresh Start. A card count is converted to groups of
// the requested or current size.
func applyConfigure(s *app.Session, req configureRequest, maxGroups int) ([]app.Event, error) {
	if req.Cards != nil {
		cfg := s.Config()
		if req.GroupSize != nil {
			cfg.GroupSize = *req.GroupSize
		}
		if req.Category != nil {
			cfg.Category = *req.Category
		}
		cfg, err := domain.ConfigFromDeckSize(*req.Cards, cfg.GroupSize, cfg.Category)
		if err != nil {
			return nil, err
		}
		if cfg.GroupCount > maxGroups {
			return nil, fmt.Errorf("too many groups: max %d", maxGroups)
		}
		return s.Start(cfg)
	}

	switch {
	case req.GroupSize == nil && req.Groups == nil && req.Category == nil:
		return s.Restart()
	case req.GroupSize == nil && req.Groups == nil:
		return s.SetCategory(*req.Category)
	case req.GroupSize == nil && req.Category == nil:
		return s.SetPairs(*req.Groups)
	case req.Groups == nil && req.Category == nil:
		return s.SetGroupSize(*req.GroupSize)
	}
	cfg := s.Config()
	if req.GroupSize != nil {
		cfg.GroupSize = *req.GroupSize
	}
	if req.Groups != nil {
		cfg.GroupCount = *req.Groups
	}
	if req.Category != nil {
		cfg.Category = *req.Category
	}
	return s.Start(cfg)
}

func (mh *matchHandler) handleRestart(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Session == nil {
		mh.sendError(state, dispatcher, logger, ErrCodeNoRound, app.ErrNoRound.Error())
		return
	}
	events, err := state.Session.Restart()
	if err != nil {
		logger.Error("handleRestart: Failed to restart: %v", err)
		mh.sendError(state, dispatcher, logger, errorCode(err), err.Error())
		return
	}
	state.AutoPlayWaitUntil = 0
	mh.broadcastEvents(state, dispatcher, logger, events)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleAutoPlay(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	req, err := decodeAutoPlay(msg.GetData())
	if err != nil {
		logger.Warn("handleAutoPlay: Invalid request from %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, err.Error())
		return
	}
	if !req.Enabled {
		state.AutoPlayEnabled = false
		state.AutoPlayWaitUntil = 0
		state.Agent = nil
		logger.Debug("handleAutoPlay: Autoplay disabled for %s.", msg.GetUserId())
		return
	}
	if err := mh.enableAutoPlay(state, logger, bot.Level(req.Level)); err != nil {
		mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, err.Error())
	}
}

func (mh *matchHandler) enableAutoPlay(state *MatchState, logger runtime.Logger, level bot.Level) error {
	agent, err := bot.NewAgent(level, state.rng)
	if err != nil {
		logger.Warn("enableAutoPlay: %v", err)
		return err
	}
	state.Agent = agent
	state.AutoPlayEnabled = true
	state.AutoPlayWaitUntil = 0
	logger.Info("enableAutoPlay: Agent (%s) playing for %s.", agent.Level, state.OwnerID)
	return nil
}

func (mh *matchHandler) processAutoPlay(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Agent == nil || state.Session == nil {
		return
	}
	board, err := state.Session.Board()
	if err != nil || board.Phase != domain.PhaseActive || board.InputLocked {
		// Not the agent's turn, reset wait if it was set
		state.AutoPlayWaitUntil = 0
		return
	}

	if state.AutoPlayWaitUntil == 0 {
		delay := state.AutoPlayMinDelay
		if spread := state.AutoPlayMaxDelay - state.AutoPlayMinDelay; spread > 0 {
			delay += state.rng.Intn(spread + 1)
		}
		state.AutoPlayWaitUntil = state.Tick + int64(delay)
		logger.Debug("processAutoPlay: Agent will act at tick %d (current %d)", state.AutoPlayWaitUntil, state.Tick)
	}
	if state.Tick < state.AutoPlayWaitUntil {
		return
	}
	state.AutoPlayWaitUntil = 0

	move, err := state.Agent.Play(board)
	if err != nil {
		logger.Error("processAutoPlay: Agent failed to calculate move: %v", err)
		return
	}
	if move.Idle {
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, state.Session.Select(move.Position))
}

// broadcastEvents handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		if state.Agent != nil {
			state.Agent.OnGameEvent(ev)
		}

		opCode, msg, err := eventToStruct(ev)
		if err != nil {
			logger.Warn("Event: %v", err)
			continue
		}
		bytes, err := encodeStruct(msg)
		if err != nil {
			logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
			continue
		}
		dispatcher.BroadcastMessage(opCode, bytes, nil, nil, true)

		switch p := ev.Payload.(type) {
		case app.RoundStartedPayload:
			logger.Debug("Event: round_started (round=%s, category=%s, deck=%d)", p.RoundID, p.Category, p.DeckSize)
		case app.RoundCompletedPayload:
			logger.Info("Event: round_completed (round=%s, clicks=%d, efficiency=%d%%)", p.Result.RoundID, p.Result.TotalClicks, p.Result.Efficiency)
			mh.updateLabel(state, dispatcher, logger)
		}
	}
}

// sendSnapshot sends the full board to the player.
func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Session == nil || state.Presence == nil {
		return
	}
	board, err := state.Session.Board()
	if err != nil {
		return
	}
	msg, err := boardToStruct(board)
	if err != nil {
		logger.Error("Failed to build board snapshot: %v", err)
		return
	}
	bytes, err := encodeStruct(msg)
	if err != nil {
		logger.Error("Failed to marshal board snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpBoardSnapshot, bytes, []runtime.Presence{state.Presence}, nil, true)
}

// sendError sends an error message to the player.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, code int, message string) {
	if state.Presence == nil {
		logger.Warn("Cannot send error %d: no player connected", code)
		return
	}
	msg, err := errorToStruct(code, message)
	if err != nil {
		logger.Error("Failed to build error message: %v", err)
		return
	}
	bytes, err := encodeStruct(msg)
	if err != nil {
		logger.Error("Failed to marshal error message: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{state.Presence}, nil, true)
}

// errorCode maps session errors to OpError codes.
func errorCode(err error) int {
	switch {
	case errors.Is(err, catalog.ErrUnknownCategory):
		return ErrCodeNotFound
	case errors.Is(err, app.ErrNoRound):
		return ErrCodeNoRound
	default:
		return ErrCodeBadRequest
	}
}

func (mh *matchHandler) label(state *MatchState) (string, error) {
	phase := "waiting"
	round := state.Initial
	if state.Session != nil && state.Session.Round() != nil {
		phase = string(state.Session.Round().Phase())
		round = state.Session.Config()
	}
	open := 0
	if state.Presence == nil {
		open = 1
	}
	label, err := structpb.NewStruct(map[string]interface{}{
		"game":              "concentration",
		MatchLabelKey_Owner: state.OwnerID,
		"open":              open,
		"phase":             phase,
		"category":          round.Category,
		"groups":            round.GroupCount,
	})
	if err != nil {
		return "", err
	}
	b, err := encodeStruct(label)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := mh.label(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	if matchState, ok := state.(*MatchState); ok && matchState.Session != nil {
		matchState.Session.Close()
	}
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

// MatchSignal answers "board" with a protojson board snapshot.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok || data != "board" || matchState.Session == nil {
		return state, ""
	}
	board, err := matchState.Session.Board()
	if err != nil {
		return state, ""
	}
	msg, err := boardToStruct(board)
	if err != nil {
		logger.Error("MatchSignal: Failed to build board: %v", err)
		return state, ""
	}
	bytes, err := encodeStruct(msg)
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal board: %v", err)
		return state, ""
	}
	return state, string(bytes)
}
