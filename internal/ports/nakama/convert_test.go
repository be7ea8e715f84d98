package nakama

import (
	"errors"
	"testing"

	"concentration/internal/app"
	"concentration/internal/domain"
)

func TestEventToStruct(t *testing.T) {
	tests := []struct {
		name   string
		ev     app.Event
		opCode int64
		has    []string
		hidden []string
	}{
		{
			name:   "revealed card carries content",
			ev:     app.Event{Kind: app.EventCardRevealed, Payload: app.CardPayload{RoundID: "r", Position: 3, Content: domain.ImageContent("owl.png"), PairKey: 1, RevealClicks: 2}},
			opCode: OpCardRevealed,
			has:    []string{"round_id", "position", "content", "pair_key", "reveal_clicks"},
		},
		{
			name:   "concealed card hides content",
			ev:     app.Event{Kind: app.EventCardConcealed, Payload: app.CardPayload{RoundID: "r", Position: 3, PairKey: -1}},
			opCode: OpCardConcealed,
			has:    []string{"round_id", "position"},
			hidden: []string{"content", "pair_key"},
		},
		{
			name:   "group locked",
			ev:     app.Event{Kind: app.EventGroupLocked, Payload: app.GroupLockedPayload{RoundID: "r", PairKey: 2, Positions: []int{0, 5}}},
			opCode: OpGroupLocked,
			has:    []string{"positions", "pair_key"},
		},
		{
			name:   "round completed",
			ev:     app.Event{Kind: app.EventRoundCompleted, Payload: app.RoundCompletedPayload{Result: domain.Result{RoundID: "r", DeckSize: 4, TotalClicks: 4, Efficiency: 100}}},
			opCode: OpRoundCompleted,
			has:    []string{"efficiency", "total_clicks", "deck_size"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opCode, s, err := eventToStruct(tt.ev)
			if err != nil {
				t.Fatalf("eventToStruct error: %v", err)
			}
			if opCode != tt.opCode {
				t.Fatalf("opCode = %d, want %d", opCode, tt.opCode)
			}
			for _, f := range tt.has {
				if _, ok := s.Fields[f]; !ok {
					t.Errorf("missing field %q in %v", f, s)
				}
			}
			for _, f := range tt.hidden {
				if _, ok := s.Fields[f]; ok {
					t.Errorf("unexpected field %q in %v", f, s)
				}
			}
		})
	}

	if _, _, err := eventToStruct(app.Event{Kind: "bogus"}); err == nil {
		t.Fatalf("unknown kind accepted")
	}
}

func TestDecodeConfigure(t *testing.T) {
	req, err := decodeConfigure([]byte(`{"groups": 4, "category": "colors"}`))
	if err != nil {
		t.Fatalf("decodeConfigure error: %v", err)
	}
	if req.Groups == nil || *req.Groups != 4 || req.Category == nil || *req.Category != "colors" || req.GroupSize != nil {
		t.Fatalf("req = %+v", req)
	}

	cards, err := decodeConfigure([]byte(`{"cards": 12, "group_size": 3}`))
	if err != nil || cards.Cards == nil || *cards.Cards != 12 || cards.GroupSize == nil || cards.Groups != nil {
		t.Fatalf("cards = %+v, %v", cards, err)
	}

	empty, err := decodeConfigure(nil)
	if err != nil || empty.Groups != nil || empty.GroupSize != nil || empty.Category != nil {
		t.Fatalf("empty = %+v, %v", empty, err)
	}

	for _, body := range []string{`{"groups": 2.5}`, `{"groups": "4"}`, `{"category": 7}`, `{"cards": 1.5}`, `[1]`} {
		if _, err := decodeConfigure([]byte(body)); !errors.Is(err, errBadPayload) {
			t.Errorf("decodeConfigure(%s) err = %v, want errBadPayload", body, err)
		}
	}
}

func TestDecodeSelectAndAutoPlay(t *testing.T) {
	if pos, err := decodeSelectCard([]byte(`{"position": 7}`)); err != nil || pos != 7 {
		t.Fatalf("decodeSelectCard = %d, %v", pos, err)
	}
	req, err := decodeAutoPlay([]byte(`{"enabled": true, "level": "forgetful"}`))
	if err != nil || !req.Enabled || req.Level != "forgetful" {
		t.Fatalf("decodeAutoPlay = %+v, %v", req, err)
	}
	if _, err := decodeAutoPlay([]byte(`{"enabled": "yes"}`)); !errors.Is(err, errBadPayload) {
		t.Fatalf("decodeAutoPlay err = %v, want errBadPayload", err)
	}
}
