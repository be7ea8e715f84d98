package nakama

import (
	"errors"
	"fmt"
	"math"

	"concentration/internal/app"
	"concentration/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var errBadPayload = errors.New("bad payload")

// eventOpCodes maps app events to their server op codes.
var eventOpCodes = map[app.EventKind]int64{
	app.EventRoundStarted:   OpRoundStarted,
	app.EventCardRevealed:   OpCardRevealed,
	app.EventCardConcealed:  OpCardConcealed,
	app.EventCardReplayed:   OpCardReplayed,
	app.EventGroupLocked:    OpGroupLocked,
	app.EventWinStarted:     OpWinStarted,
	app.EventRoundCompleted: OpRoundCompleted,
}

// eventToStruct converts an app event into its op code and wire message.
func eventToStruct(ev app.Event) (int64, *structpb.Struct, error) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}

	var fields map[string]interface{}
	switch p := ev.Payload.(type) {
	case app.RoundStartedPayload:
		fields = map[string]interface{}{
			"round_id":    p.RoundID,
			"category":    p.Category,
			"group_size":  p.GroupSize,
			"group_count": p.GroupCount,
			"deck_size":   p.DeckSize,
		}
	case app.CardPayload:
		fields = map[string]interface{}{
			"round_id":      p.RoundID,
			"position":      p.Position,
			"reveal_clicks": p.RevealClicks,
		}
		if p.Content.Kind != "" {
			fields["content"] = contentFields(p.Content)
			fields["pair_key"] = p.PairKey
		}
	case app.GroupLockedPayload:
		fields = map[string]interface{}{
			"round_id":  p.RoundID,
			"pair_key":  p.PairKey,
			"positions": intList(p.Positions),
		}
	case app.WinStartedPayload:
		fields = map[string]interface{}{"round_id": p.RoundID}
	case app.RoundCompletedPayload:
		fields = map[string]interface{}{
			"round_id":     p.Result.RoundID,
			"deck_size":    p.Result.DeckSize,
			"total_clicks": p.Result.TotalClicks,
			"efficiency":   p.Result.Efficiency,
		}
	default:
		return 0, nil, fmt.Errorf("unexpected payload %T for %q", ev.Payload, ev.Kind)
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return 0, nil, err
	}
	return opCode, s, nil
}

// boardToStruct converts a board snapshot. Hidden cards carry no content.
func boardToStruct(b domain.Board) (*structpb.Struct, error) {
	cards := make([]interface{}, len(b.Cards))
	for i, c := range b.Cards {
		card := map[string]interface{}{
			"position":      c.Position,
			"face":          c.Face.String(),
			"locked":        c.Locked,
			"reveal_clicks": c.RevealClicks,
		}
		if c.Content != nil {
			card["content"] = contentFields(*c.Content)
			card["pair_key"] = c.PairKey
		}
		cards[i] = card
	}
	return structpb.NewStruct(map[string]interface{}{
		"round_id":       b.RoundID,
		"phase":          string(b.Phase),
		"group_size":     b.GroupSize,
		"group_count":    b.GroupCount,
		"matched_groups": b.MatchedGroups,
		"total_clicks":   b.TotalClicks,
		"input_locked":   b.InputLocked,
		"open":           intList(b.Open),
		"cards":          cards,
	})
}

func errorToStruct(code int, message string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

func contentFields(c domain.Content) map[string]interface{} {
	return map[string]interface{}{
		"kind": string(c.Kind),
		"ref":  c.Ref,
	}
}

func intList(in []int) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func encodeStruct(s *structpb.Struct) ([]byte, error) {
	return protojson.Marshal(s)
}

// decodeStruct parses a protojson Struct. An empty message decodes to an
// empty Struct.
func decodeStruct(data []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if len(data) == 0 {
		return s, nil
	}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return s, nil
}

// intField reads an integral number field. ok is false when the field is absent.
func intField(s *structpb.Struct, name string) (int, bool, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, false, nil
	}
	n, isNum := v.GetKind().(*structpb.Value_NumberValue)
	if !isNum || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, false, fmt.Errorf("%w: %s must be an integer", errBadPayload, name)
	}
	return int(n.NumberValue), true, nil
}

func stringField(s *structpb.Struct, name string) (string, bool, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", false, nil
	}
	str, isStr := v.GetKind().(*structpb.Value_StringValue)
	if !isStr {
		return "", false, fmt.Errorf("%w: %s must be a string", errBadPayload, name)
	}
	return str.StringValue, true, nil
}

func boolField(s *structpb.Struct, name string) (bool, bool, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return false, false, nil
	}
	b, isBool := v.GetKind().(*structpb.Value_BoolValue)
	if !isBool {
		return false, false, fmt.Errorf("%w: %s must be a boolean", errBadPayload, name)
	}
	return b.BoolValue, true, nil
}

// configureRequest holds the optional fields of a configure message.
type configureRequest struct {
	GroupSize *int
	Groups    *int
	Cards     *int // Board size; exclusive with Groups
	Category  *string
}

func decodeConfigure(data []byte) (configureRequest, error) {
	var req configureRequest
	s, err := decodeStruct(data)
	if err != nil {
		return req, err
	}
	if v, ok, err := intField(s, "group_size"); err != nil {
		return req, err
	} else if ok {
		req.GroupSize = &v
	}
	if v, ok, err := intField(s, "groups"); err != nil {
		return req, err
	} else if ok {
		req.Groups = &v
	}
	if v, ok, err := intField(s, "cards"); err != nil {
		return req, err
	} else if ok {
		req.Cards = &v
	}
	if v, ok, err := stringField(s, "category"); err != nil {
		return req, err
	} else if ok {
		req.Category = &v
	}
	return req, nil
}

func decodeSelectCard(data []byte) (int, error) {
	s, err := decodeStruct(data)
	if err != nil {
		return 0, err
	}
	pos, ok, err := intField(s, "position")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: position is required", errBadPayload)
	}
	return pos, nil
}

// autoPlayRequest toggles the autoplay agent.
type autoPlayRequest struct {
	Enabled bool
	Level   string
}

func decodeAutoPlay(data []byte) (autoPlayRequest, error) {
	var req autoPlayRequest
	s, err := decodeStruct(data)
	if err != nil {
		return req, err
	}
	if req.Enabled, _, err = boolField(s, "enabled"); err != nil {
		return req, err
	}
	if req.Level, _, err = stringField(s, "level"); err != nil {
		return req, err
	}
	return req, nil
}
