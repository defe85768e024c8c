package gcgcode

import (
	"database/sql"
	"database/sql/driver"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Compile-time interface checks for Deck
var (
	_ driver.Valuer = Deck{}
	_ sql.Scanner   = (*Deck)(nil)
	_ driver.Valuer = NullDeck{}
	_ sql.Scanner   = (*NullDeck)(nil)

	_ json.Marshaler           = NullDeck{}
	_ json.Unmarshaler         = (*NullDeck)(nil)
	_ encoding.TextMarshaler   = NullDeck{}
	_ encoding.TextUnmarshaler = (*NullDeck)(nil)
)

const (
	// CharacterCardCount is the number of ordered character cards in a deck.
	CharacterCardCount = 3
	// ActionCardCount is the total number of action card units in a deck.
	ActionCardCount = 30
)

// Undefined marks a card that could not be decoded. Existing share links
// rely on this exact string, so it is part of the wire contract.
const Undefined = "undefined"

// Deck validation errors.
var (
	ErrCharacterCount = errors.New("gcgcode: deck must have exactly 3 character cards")
	ErrDeckSize       = errors.New("gcgcode: action cards must total 30")
	ErrCardCount      = errors.New("gcgcode: action card count must be between 1 and 30")
)

// Deck is three ordered character cards plus thirty action card units.
type Deck struct {
	CharacterCards []string       `json:"characterCards" yaml:"characterCards"`
	ActionCards    map[string]int `json:"actionCards" yaml:"actionCards"`
}

// UnknownDeck returns the deck produced when a share code cannot be decoded.
func UnknownDeck() Deck {
	return Deck{
		CharacterCards: []string{Undefined, Undefined, Undefined},
		ActionCards:    map[string]int{Undefined: ActionCardCount},
	}
}

// IsUnknown reports whether d is the deck returned for an undecodable code.
func (d Deck) IsUnknown() bool {
	return d.Equal(UnknownDeck())
}

// Size returns the number of action card units.
func (d Deck) Size() int {
	n := 0
	for _, c := range d.ActionCards {
		n += c
	}
	return n
}

// Validate checks the shape of the deck. It does not look at the catalog.
func (d Deck) Validate() error {
	if len(d.CharacterCards) != CharacterCardCount {
		return fmt.Errorf("%w: got %d", ErrCharacterCount, len(d.CharacterCards))
	}
	for card, c := range d.ActionCards {
		if c <= 0 || c > ActionCardCount {
			return fmt.Errorf("%w: %q has %d", ErrCardCount, card, c)
		}
	}
	// Each count is at most 30, so the sum cannot overflow.
	if n := d.Size(); n != ActionCardCount {
		return fmt.Errorf("%w: got %d", ErrDeckSize, n)
	}
	return nil
}

// Equal reports whether both decks have the same characters in the same
// order and the same action card counts.
func (d Deck) Equal(o Deck) bool {
	return slices.Equal(d.CharacterCards, o.CharacterCards) && maps.Equal(d.ActionCards, o.ActionCards)
}

// Value implements driver.Valuer, storing the deck as JSON text so it can
// be bound to json and jsonb columns.
func (d Deck) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("gcgcode: marshal deck: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON columns.
func (d *Deck) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		return errors.New("gcgcode: cannot scan NULL into Deck")
	default:
		return fmt.Errorf("gcgcode: cannot scan %T", src)
	}
	var out Deck
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("gcgcode: invalid deck JSON: %w", err)
	}
	*d = out
	return nil
}

// NullDeck can be used with the standard sql package to represent a
// Deck value that can be NULL in the database.
type NullDeck struct {
	Deck  Deck
	Valid bool
}

// Value implements the driver.Valuer interface.
func (n NullDeck) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Deck.Value()
}

// Scan implements the sql.Scanner interface.
func (n *NullDeck) Scan(src interface{}) error {
	if src == nil {
		n.Deck, n.Valid = Deck{}, false
		return nil
	}
	err := n.Deck.Scan(src)
	n.Valid = err == nil
	return err
}

var nullJSON = []byte("null")

// MarshalJSON marshals the NullDeck as null or the nested Deck.
func (n NullDeck) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return nullJSON, nil
	}
	return json.Marshal(n.Deck)
}

// UnmarshalJSON unmarshals a NullDeck.
func (n *NullDeck) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		n.Deck, n.Valid = Deck{}, false
		return nil
	}
	var d Deck
	if err := json.Unmarshal(b, &d); err != nil {
		n.Deck, n.Valid = Deck{}, false
		return fmt.Errorf("gcgcode: invalid deck JSON: %w", err)
	}
	n.Deck, n.Valid = d, true
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (n NullDeck) MarshalText() ([]byte, error) {
	if !n.Valid {
		return nil, nil
	}
	return json.Marshal(n.Deck)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *NullDeck) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		n.Deck, n.Valid = Deck{}, false
		return nil
	}
	return n.UnmarshalJSON(b)
}
