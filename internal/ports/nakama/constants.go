package nakama

const (
	// RpcStartRound creates a match for the caller and returns its id.
	RpcStartRound = "start_round"
	// RpcListCategories returns the built-in and the caller's own categories.
	RpcListCategories = "list_categories"
	// RpcSaveCategory stores a category for the caller.
	RpcSaveCategory = "save_category"

	// MatchNameConcentration is the authoritative match handler name registered with Nakama.
	MatchNameConcentration = "concentration_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpSelectCard int64 = 1
	OpConfigure  int64 = 2
	OpAutoPlay   int64 = 3
	OpRestart    int64 = 4

	// Server -> Client events
	OpRoundStarted   int64 = 101
	OpCardRevealed   int64 = 102
	OpCardConcealed  int64 = 103
	OpCardReplayed   int64 = 104
	OpGroupLocked    int64 = 105
	OpWinStarted     int64 = 106
	OpRoundCompleted int64 = 107
	OpBoardSnapshot  int64 = 108
	OpError          int64 = 110
)

// Error codes carried by OpError messages.
const (
	ErrCodeBadRequest = 400
	ErrCodeNotFound   = 404
	ErrCodeNoRound    = 409
)

// gRPC status codes used for RPC errors.
const (
	codeInvalidArgument = 3
	codeInternal        = 13
)
