// Package match talks to the external match service: it fetches the
// configuration of a fresh match and reports its winner.
package match

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// ID is an opaque identifier assigned by the match service. The service may
// send ids as JSON strings or numbers; an ID remembers which and encodes back
// to the same JSON kind, so a reported id is the value that was fetched.
type ID struct {
	text    string
	numeric bool
}

// NewID returns an id that encodes as a JSON string.
func NewID(s string) ID {
	return ID{text: s}
}

// NumericID returns an id that encodes as the JSON number n.
func NumericID(n json.Number) ID {
	return ID{text: n.String(), numeric: true}
}

func (id ID) String() string {
	return id.text
}

func (id ID) IsZero() bool {
	return id.text == ""
}

// Numeric reports whether the id travels as a JSON number.
func (id ID) Numeric() bool {
	return id.numeric
}

func (id ID) MarshalJSON() ([]byte, error) {
	switch {
	case id.IsZero():
		return []byte("null"), nil
	case id.numeric:
		return []byte(id.text), nil
	default:
		return json.Marshal(id.text)
	}
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NewID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = NumericID(n)
	return nil
}

// IDValue exposes an ID's text to validator tags such as required. Register
// it with validator.RegisterCustomTypeFunc for ID.
func IDValue(field reflect.Value) any {
	if id, ok := field.Interface().(ID); ok {
		return id.text
	}
	return nil
}

// PlayerInfo is a player as listed by the match service.
type PlayerInfo struct {
	ID        ID     `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	AvatarURL string `json:"imageUrl" validate:"required"`
}

// Config is the configuration of one match. Player order is the turn order.
type Config struct {
	MatchID    ID           `json:"matchId" validate:"required"`
	ScoreToWin int          `json:"scoreToWin" validate:"gt=0"`
	Players    []PlayerInfo `json:"players" validate:"required,min=1,unique=ID,dive"`
}

// Ack is the service's confirmation that a winner was durably recorded.
type Ack struct {
	MatchID    ID
	WinnerID   ID
	ReceivedAt time.Time
}

type reportRequest struct {
	MatchID  ID `json:"matchId"`
	WinnerID ID `json:"winnerId"`
}

type reportResponse struct {
	Success *bool  `json:"success"`
	Error   string `json:"error,omitempty"`
}
