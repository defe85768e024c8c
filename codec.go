package gcgcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
)

// MaxEncodingID is the largest value that fits in a 12-bit slot.
const MaxEncodingID = 1<<12 - 1

var (
	// ErrNoValidMask is returned when every mask yields a blocked code.
	ErrNoValidMask = errors.New("gcgcode: unable to generate a valid share code")
	// ErrUnknownCard is wrapped by *UnknownCardError.
	ErrUnknownCard = errors.New("gcgcode: unknown card")
	// ErrEncodingIDRange is returned for encoding ids outside 0..MaxEncodingID.
	ErrEncodingIDRange = errors.New("gcgcode: encoding id out of range")
	// ErrNilCatalog is returned by Encode and Decode when no catalog is given.
	ErrNilCatalog = errors.New("gcgcode: nil catalog")
)

// UnknownCardError reports a card missing from the lookup table. On
// encode Card is set and Position is -1; on decode EncodingID and
// Position are set.
type UnknownCardError struct {
	Card       string
	EncodingID int
	Position   int
}

func (e *UnknownCardError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("gcgcode: unknown card %q", e.Card)
	}
	return fmt.Sprintf("gcgcode: unknown encoding id %d at position %d", e.EncodingID, e.Position)
}

func (e *UnknownCardError) Unwrap() error {
	return ErrUnknownCard
}

// Codec encodes decks into share codes and back. A Codec is immutable
// and safe for concurrent use.
type Codec struct {
	blockWords []blockWord
}

// DefaultCodec uses DefaultBlockWords. It backs the package-level functions.
var DefaultCodec = MustCodec(NewCodec(DefaultBlockWords...))

// NewCodec returns a codec that rejects codes containing any of blockWords.
func NewCodec(blockWords ...string) (*Codec, error) {
	c := &Codec{blockWords: make([]blockWord, 0, len(blockWords))}
	for _, w := range blockWords {
		bw, err := compileBlockWord(w)
		if err != nil {
			return nil, err
		}
		c.blockWords = append(c.blockWords, bw)
	}
	return c, nil
}

// MustCodec panics if err is not nil
func MustCodec(c *Codec, err error) *Codec {
	if err != nil {
		panic(err)
	}
	return c
}

// Encode returns the share code for deck using catalog ids.
// A nil catalog returns ErrNilCatalog.
func (c *Codec) Encode(deck Deck, catalog *Catalog) (string, error) {
	if catalog == nil {
		return "", ErrNilCatalog
	}
	return c.encode(deck, catalog.EncodingID)
}

// Decode parses a share code using catalog ids. See DecodeDeck.
// A nil catalog returns ErrNilCatalog.
func (c *Codec) Decode(code string, catalog *Catalog) (Deck, error) {
	if catalog == nil {
		return Deck{}, ErrNilCatalog
	}
	return c.decode(code, catalog.Card)
}

// EncodeDeck returns the share code for the given cards.
func (c *Codec) EncodeDeck(characterCards []string, actionCards map[string]int, encodingIDByCard map[string]int) (string, error) {
	deck := Deck{CharacterCards: characterCards, ActionCards: actionCards}
	return c.encode(deck, func(card string) (int, bool) {
		id, ok := encodingIDByCard[card]
		return id, ok
	})
}

// DecodeDeck parses a share code.
//
// A code that is not valid base64 or does not decode to CodeByteLen bytes
// yields UnknownDeck and a nil error. Encoding ids missing from
// cardByEncodingID are reported as Undefined in the deck and as
// *UnknownCardError values joined into the returned error.
func (c *Codec) DecodeDeck(code string, cardByEncodingID map[int]string) (Deck, error) {
	return c.decode(code, func(id int) (string, bool) {
		card, ok := cardByEncodingID[id]
		return card, ok
	})
}

func (c *Codec) encode(deck Deck, lookup func(string) (int, bool)) (string, error) {
	values, err := flatten(deck, lookup)
	if err != nil {
		return "", err
	}
	packed := pack(values)
	for m := 0; m < 256; m++ {
		wire := Mask(m).Apply(packed)
		code := base64.StdEncoding.EncodeToString(wire[:])
		if _, blocked := c.Blocked(code); !blocked {
			return code, nil
		}
	}
	return "", ErrNoValidMask
}

func (c *Codec) decode(code string, lookup func(int) (string, bool)) (Deck, error) {
	raw, err := base64.StdEncoding.DecodeString(code)
	if err != nil || len(raw) != CodeByteLen {
		return UnknownDeck(), nil
	}
	m := Mask(raw[CodeByteLen-1])
	values := unpack(m.Remove(raw[:CodeByteLen-1]))

	deck := Deck{
		CharacterCards: make([]string, 0, CharacterCardCount),
		ActionCards:    make(map[string]int),
	}
	var errs []error
	for i, v := range values[:valueCount-1] {
		card, ok := lookup(int(v))
		if !ok {
			card = Undefined
			errs = append(errs, &UnknownCardError{EncodingID: int(v), Position: i})
		}
		if i < CharacterCardCount {
			deck.CharacterCards = append(deck.CharacterCards, card)
		} else {
			deck.ActionCards[card]++
		}
	}
	return deck, errors.Join(errs...)
}

// flatten lists character ids in order, then action card ids ascending,
// each repeated by its count, then the zero terminator.
func flatten(deck Deck, lookup func(string) (int, bool)) ([valueCount]uint16, error) {
	var values [valueCount]uint16
	if err := deck.Validate(); err != nil {
		return values, err
	}
	resolve := func(card string) (uint16, error) {
		id, ok := lookup(card)
		if !ok {
			return 0, &UnknownCardError{Card: card, Position: -1}
		}
		if id < 0 || id > MaxEncodingID {
			return 0, fmt.Errorf("%w: %q has %d", ErrEncodingIDRange, card, id)
		}
		return uint16(id), nil
	}

	for i, card := range deck.CharacterCards {
		id, err := resolve(card)
		if err != nil {
			return values, err
		}
		values[i] = id
	}

	type unit struct {
		id    uint16
		count int
	}
	units := make([]unit, 0, len(deck.ActionCards))
	for card, count := range deck.ActionCards {
		id, err := resolve(card)
		if err != nil {
			return values, err
		}
		units = append(units, unit{id: id, count: count})
	}
	slices.SortFunc(units, func(a, b unit) int { return int(a.id) - int(b.id) })

	pos := CharacterCardCount
	for _, u := range units {
		for range u.count {
			if pos >= valueCount-1 {
				return values, fmt.Errorf("%w: more than %d action cards", ErrDeckSize, ActionCardCount)
			}
			values[pos] = u.id
			pos++
		}
	}
	return values, nil
}

// Encode returns the share code for deck using DefaultCodec.
func Encode(deck Deck, catalog *Catalog) (string, error) {
	return DefaultCodec.Encode(deck, catalog)
}

// Decode parses a share code using DefaultCodec.
func Decode(code string, catalog *Catalog) (Deck, error) {
	return DefaultCodec.Decode(code, catalog)
}

// EncodeDeck encodes with DefaultCodec.
func EncodeDeck(characterCards []string, actionCards map[string]int, encodingIDByCard map[string]int) (string, error) {
	return DefaultCodec.EncodeDeck(characterCards, actionCards, encodingIDByCard)
}

// DecodeDeck decodes with DefaultCodec.
func DecodeDeck(code string, cardByEncodingID map[int]string) (Deck, error) {
	return DefaultCodec.DecodeDeck(code, cardByEncodingID)
}
