package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionType tags the variants of the action union.
type ActionType string

const (
	TypeLifeChange    ActionType = "life-change"
	TypeTurnChange    ActionType = "turn-change"
	TypeMonarchChange ActionType = "monarch-change"
)

// Action is one immutable, timestamped entry in a game's append-only log.
// The concrete variants are LifeChange, TurnChange and MonarchChange;
// every fold over a log must switch exhaustively on the three.
type Action interface {
	ActionID() string
	ActionTime() time.Time
	ActionType() ActionType
}

// LifeChange applies Value to every player listed in To. Negative is
// damage, positive is a heal. When Poison is set, Value is a
// poison-counter delta instead and never touches life. CommanderID is set
// only when the damage is attributed to commander combat.
type LifeChange struct {
	ID          string
	CreatedAt   time.Time
	Value       int
	From        string
	To          []string
	CommanderID string
	Poison      bool
}

func (a LifeChange) ActionID() string       { return a.ID }
func (a LifeChange) ActionTime() time.Time  { return a.CreatedAt }
func (a LifeChange) ActionType() ActionType { return TypeLifeChange }

// Targets reports whether the change applies to the given player.
func (a LifeChange) Targets(playerID string) bool {
	for _, id := range a.To {
		if id == playerID {
			return true
		}
	}
	return false
}

// TurnChange hands the turn from one player to another. An empty From
// marks the game's opening turn; an empty To marks game end.
type TurnChange struct {
	ID        string
	CreatedAt time.Time
	From      string
	To        string
}

func (a TurnChange) ActionID() string       { return a.ID }
func (a TurnChange) ActionTime() time.Time  { return a.CreatedAt }
func (a TurnChange) ActionType() ActionType { return TypeTurnChange }

// MonarchChange moves the monarch between users. An empty To means the
// monarchy is vacant.
type MonarchChange struct {
	ID        string
	CreatedAt time.Time
	From      string
	To        string
}

func (a MonarchChange) ActionID() string       { return a.ID }
func (a MonarchChange) ActionTime() time.Time  { return a.CreatedAt }
func (a MonarchChange) ActionType() ActionType { return TypeMonarchChange }

// ActionLog is the ordered action history of a game. Array order is
// chronological order; entries are only ever appended, or removed one at
// a time.
type ActionLog []Action

// actionEnvelope is the wire shape shared by all three variants. Dates
// travel as ISO-8601 strings and revive through time.Time's JSON codec.
// To is raw because its shape differs per variant: a target array for a
// life-change, a single id for a turn- or monarch-change.
type actionEnvelope struct {
	Type        ActionType      `json:"type"`
	ID          string          `json:"id"`
	CreatedAt   time.Time       `json:"createdAt"`
	Value       int             `json:"value,omitempty"`
	From        string          `json:"from,omitempty"`
	To          json.RawMessage `json:"to,omitempty"`
	CommanderID string          `json:"commanderId,omitempty"`
	Poison      bool            `json:"poison,omitempty"`
}

func (l ActionLog) MarshalJSON() ([]byte, error) {
	envelopes := make([]actionEnvelope, len(l))
	for i, act := range l {
		switch a := act.(type) {
		case LifeChange:
			env := actionEnvelope{
				Type:        TypeLifeChange,
				ID:          a.ID,
				CreatedAt:   a.CreatedAt,
				Value:       a.Value,
				From:        a.From,
				CommanderID: a.CommanderID,
				Poison:      a.Poison,
			}
			if len(a.To) > 0 {
				to, err := json.Marshal(a.To)
				if err != nil {
					return nil, err
				}
				env.To = to
			}
			envelopes[i] = env
		case TurnChange:
			env := actionEnvelope{
				Type:      TypeTurnChange,
				ID:        a.ID,
				CreatedAt: a.CreatedAt,
				From:      a.From,
			}
			if a.To != "" {
				to, err := json.Marshal(a.To)
				if err != nil {
					return nil, err
				}
				env.To = to
			}
			envelopes[i] = env
		case MonarchChange:
			env := actionEnvelope{
				Type:      TypeMonarchChange,
				ID:        a.ID,
				CreatedAt: a.CreatedAt,
				From:      a.From,
			}
			if a.To != "" {
				to, err := json.Marshal(a.To)
				if err != nil {
					return nil, err
				}
				env.To = to
			}
			envelopes[i] = env
		default:
			return nil, fmt.Errorf("unknown action variant %T", act)
		}
	}
	return json.Marshal(envelopes)
}

func (l *ActionLog) UnmarshalJSON(data []byte) error {
	var envelopes []actionEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return err
	}
	actions := make(ActionLog, 0, len(envelopes))
	for _, env := range envelopes {
		switch env.Type {
		case TypeLifeChange:
			var to []string
			if len(env.To) > 0 {
				if err := json.Unmarshal(env.To, &to); err != nil {
					return fmt.Errorf("life-change %s: %w", env.ID, err)
				}
			}
			actions = append(actions, LifeChange{
				ID:          env.ID,
				CreatedAt:   env.CreatedAt,
				Value:       env.Value,
				From:        env.From,
				To:          to,
				CommanderID: env.CommanderID,
				Poison:      env.Poison,
			})
		case TypeTurnChange:
			to, err := decodeSingleTarget(env)
			if err != nil {
				return err
			}
			actions = append(actions, TurnChange{
				ID:        env.ID,
				CreatedAt: env.CreatedAt,
				From:      env.From,
				To:        to,
			})
		case TypeMonarchChange:
			to, err := decodeSingleTarget(env)
			if err != nil {
				return err
			}
			actions = append(actions, MonarchChange{
				ID:        env.ID,
				CreatedAt: env.CreatedAt,
				From:      env.From,
				To:        to,
			})
		default:
			return fmt.Errorf("unknown action type %q", env.Type)
		}
	}
	*l = actions
	return nil
}

// decodeSingleTarget reads the string form of to. Absent or null means
// empty: an opening turn has no from, a terminating one no to.
func decodeSingleTarget(env actionEnvelope) (string, error) {
	if len(env.To) == 0 || string(env.To) == "null" {
		return "", nil
	}
	var to string
	if err := json.Unmarshal(env.To, &to); err != nil {
		return "", fmt.Errorf("%s %s: %w", env.Type, env.ID, err)
	}
	return to, nil
}
