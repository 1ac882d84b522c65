package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestActionLog_JSONRoundTrip(t *testing.T) {
	created := time.Date(2026, 5, 2, 21, 30, 15, 123456789, time.UTC)
	log := ActionLog{
		LifeChange{
			ID:          "a1",
			CreatedAt:   created,
			Value:       -5,
			From:        "p1",
			To:          []string{"p2", "p3"},
			CommanderID: "cmd1",
		},
		LifeChange{
			ID:        "a2",
			CreatedAt: created.Add(time.Minute),
			Value:     -2,
			To:        []string{"p2"},
			Poison:    true,
		},
		TurnChange{ID: "a3", CreatedAt: created.Add(2 * time.Minute), From: "", To: "p1"},
		MonarchChange{ID: "a4", CreatedAt: created.Add(3 * time.Minute), From: "u1", To: "u2"},
		TurnChange{ID: "a5", CreatedAt: created.Add(4 * time.Minute), From: "p1", To: ""},
	}

	data, err := json.Marshal(log)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded ActionLog
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(decoded) != len(log) {
		t.Fatalf("len = %d, want %d", len(decoded), len(log))
	}
	for i := range log {
		if log[i].ActionType() != decoded[i].ActionType() {
			t.Fatalf("action %d type = %s, want %s", i, decoded[i].ActionType(), log[i].ActionType())
		}
		if !log[i].ActionTime().Equal(decoded[i].ActionTime()) {
			t.Fatalf("action %d time = %v, want %v", i, decoded[i].ActionTime(), log[i].ActionTime())
		}
	}

	first, ok := decoded[0].(LifeChange)
	if !ok {
		t.Fatalf("decoded[0] is %T, want LifeChange", decoded[0])
	}
	if first.Value != -5 || first.CommanderID != "cmd1" || len(first.To) != 2 {
		t.Fatalf("decoded[0] = %+v, want original fields", first)
	}

	poison, ok := decoded[1].(LifeChange)
	if !ok || !poison.Poison {
		t.Fatalf("decoded[1] = %+v, want poison life change", decoded[1])
	}

	ending, ok := decoded[4].(TurnChange)
	if !ok || ending.To != "" || ending.From != "p1" {
		t.Fatalf("decoded[4] = %+v, want terminating turn-change", decoded[4])
	}
}

func TestActionLog_TimestampsSerializeAsISO8601(t *testing.T) {
	log := ActionLog{TurnChange{
		ID:        "a1",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		To:        "p1",
	}}
	data, err := json.Marshal(log)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `"createdAt":"2026-01-02T03:04:05Z"`
	if !strings.Contains(string(data), want) {
		t.Fatalf("payload %s does not contain %s", data, want)
	}
}

func TestActionLog_TurnTargetsSerializeUnderTo(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	log := ActionLog{
		TurnChange{ID: "a1", CreatedAt: created, From: "p1", To: "p2"},
		MonarchChange{ID: "a2", CreatedAt: created, From: "u1", To: "u2"},
		TurnChange{ID: "a3", CreatedAt: created, From: "p2"},
	}
	data, err := json.Marshal(log)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	payload := string(data)

	for _, want := range []string{`"to":"p2"`, `"to":"u2"`} {
		if !strings.Contains(payload, want) {
			t.Fatalf("payload %s does not contain %s", payload, want)
		}
	}
	if strings.Contains(payload, `"target"`) {
		t.Fatalf("payload %s carries a target key", payload)
	}
	// Terminating turn-change has no to at all.
	if strings.Count(payload, `"to"`) != 2 {
		t.Fatalf("payload %s should carry exactly two to keys", payload)
	}

	var decoded ActionLog
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tc := decoded[0].(TurnChange); tc.To != "p2" {
		t.Fatalf("decoded to = %q, want p2", tc.To)
	}
	if tc := decoded[2].(TurnChange); tc.To != "" {
		t.Fatalf("terminating to = %q, want empty", tc.To)
	}
}

func TestActionLog_NullTargetDecodesAsEmpty(t *testing.T) {
	payload := `[{"type":"turn-change","id":"a1","createdAt":"2026-01-02T03:04:05Z","from":"p1","to":null}]`
	var decoded ActionLog
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tc := decoded[0].(TurnChange); tc.To != "" {
		t.Fatalf("to = %q, want empty for null", tc.To)
	}
}

func TestActionLog_RejectsUnknownType(t *testing.T) {
	payload := `[{"type":"time-walk","id":"a1","createdAt":"2026-01-02T03:04:05Z"}]`
	var decoded ActionLog
	if err := json.Unmarshal([]byte(payload), &decoded); err == nil {
		t.Fatal("expected error for unknown action type")
	}
}

func TestGame_JSONRoundTripDerivesIdentically(t *testing.T) {
	game := testGame(2, 40,
		turnAt(1, "", "A"),
		lifeAt(2, -7, "B"),
		turnAt(3, "A", "B"),
	)

	data, err := json.Marshal(game)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Game
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got, want := CurrentLife(decoded, "B"), CurrentLife(game, "B"); got != want {
		t.Fatalf("CurrentLife after round trip = %d, want %d", got, want)
	}
	if got, want := CurrentRound(decoded), CurrentRound(game); got != want {
		t.Fatalf("CurrentRound after round trip = %d, want %d", got, want)
	}
	if got, want := CurrentActivePlayer(decoded), CurrentActivePlayer(game); got != want {
		t.Fatalf("CurrentActivePlayer after round trip = %q, want %q", got, want)
	}
	for i := range game.Actions {
		if !game.Actions[i].ActionTime().Equal(decoded.Actions[i].ActionTime()) {
			t.Fatalf("action %d timestamp drifted across round trip", i)
		}
	}
}
