package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// Event types carried in the envelope. gameState, newShot and ballResult are
// the public wire surface; join, leave and shot only ever travel inside the
// process (session endpoints and chat providers dispatching into the game
// loop).
const (
	EventGameState  = "gameState"
	EventNewShot    = "newShot"
	EventBallResult = "ballResult"
	EventPing       = "ping"
	EventPong       = "pong"

	EventJoin  = "join"
	EventLeave = "leave"
	EventShot  = "shot"
)

// Envelope wraps every message on the sync channel.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

var (
	ErrEmptyEnvelopeType = errors.New("empty envelope type")
	ErrEmptyMessage      = errors.New("empty message")
	ErrEmptyPayload      = errors.New("empty payload")
)

// Encode marshals a payload into an envelope of the given type.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, ErrEmptyEnvelopeType
	}
	var raw json.RawMessage
	if payload != nil {
		pb, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", t, err)
		}
		raw = pb
	}
	return json.Marshal(Envelope{T: t, P: raw})
}

// DecodeEnvelope parses the outer envelope without touching the payload.
func DecodeEnvelope(data []byte) (Envelope, error) {
	if len(data) == 0 {
		return Envelope{}, ErrEmptyMessage
	}
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, err
	}
	if e.T == "" {
		return Envelope{}, ErrEmptyEnvelopeType
	}
	return e, nil
}

// DecodePayload unmarshals the envelope payload into T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("%w for type %q", ErrEmptyPayload, env.T)
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}

// Result is the terminal classification of a shot.
type Result string

const (
	ResultSave Result = "save"
	ResultGoal Result = "goal"
)

// StatusIncoming is the only status the server ever assigns; the outcome is
// resolved client-side and reported back.
const StatusIncoming = "incoming"

var cellPattern = regexp.MustCompile(`^[A-E][1-5]$`)

// ValidCell reports whether cell names one of the 25 goal grid cells A1..E5.
func ValidCell(cell string) bool {
	return cellPattern.MatchString(cell)
}

// Shot is one chat-triggered projectile. The server creates it, never
// mutates it afterwards, and removes it when a client reports its outcome.
type Shot struct {
	ID        string `json:"id"`
	Target    string `json:"target"`
	Shooter   string `json:"shooter"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	Status    string `json:"status"`
}

func (s Shot) Validate() error {
	if s.ID == "" {
		return errors.New("shot: missing id")
	}
	if !ValidCell(s.Target) {
		return fmt.Errorf("shot: invalid target %q", s.Target)
	}
	if s.Shooter == "" {
		return errors.New("shot: missing shooter")
	}
	return nil
}

// Score is the shared save/goal tally.
type Score struct {
	Saves int `json:"saves"`
	Goals int `json:"goals"`
}

// GameStatePayload is the full authoritative state, broadcast after every
// mutation and sent to each client on connect.
type GameStatePayload struct {
	Score       Score          `json:"score"`
	ActiveBalls []Shot         `json:"activeBalls"`
	TopShooters map[string]int `json:"topShooters"`
}

// BallResultPayload reports a resolved shot back to the registry.
type BallResultPayload struct {
	BallID string `json:"ballId"`
	Result Result `json:"result"`
}

func (p BallResultPayload) Validate() error {
	if p.BallID == "" {
		return errors.New("ballResult: missing ballId")
	}
	if p.Result != ResultSave && p.Result != ResultGoal {
		return fmt.Errorf("ballResult: invalid result %q", p.Result)
	}
	return nil
}

// ShotCommandPayload is a parsed chat intent on its way into the game loop.
type ShotCommandPayload struct {
	Shooter string `json:"shooter"`
	Target  string `json:"target"`
}

func (p ShotCommandPayload) Validate() error {
	if p.Shooter == "" {
		return errors.New("shot: missing shooter")
	}
	if !ValidCell(p.Target) {
		return fmt.Errorf("shot: invalid target %q", p.Target)
	}
	return nil
}

// EncodeJoinEvent builds the internal join notification for a session.
func EncodeJoinEvent() []byte {
	data, _ := Encode(EventJoin, nil)
	return data
}

// EncodeLeaveEvent builds the internal leave notification for a session.
// Used by the endpoint teardown path to get the session out of the room.
func EncodeLeaveEvent() []byte {
	data, _ := Encode(EventLeave, nil)
	return data
}

// EncodePingEvent builds the liveness probe sent by the heartbeat service.
func EncodePingEvent() []byte {
	data, _ := Encode(EventPing, nil)
	return data
}
