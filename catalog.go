package gcgcode

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrDuplicateCard is returned when a card id, share id or encoding id repeats.
var ErrDuplicateCard = errors.New("gcgcode: duplicate card in catalog")

// Card is a catalog entry. ShareID orders cards for encoding; cards with
// ShareID 0 cannot be shared.
type Card struct {
	ID      string `json:"id" yaml:"id"`
	ShareID int    `json:"shareId" yaml:"shareId"`
}

// Catalog maps card ids to encoding ids and back.
type Catalog struct {
	byCard map[string]int
	byID   map[int]string
}

// NewCatalog assigns encoding ids 1..n to cards in ascending ShareID order,
// skipping cards with ShareID 0.
func NewCatalog(cards []Card) (*Catalog, error) {
	shareable := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.ShareID != 0 {
			shareable = append(shareable, c)
		}
	}
	slices.SortStableFunc(shareable, func(a, b Card) int { return cmp.Compare(a.ShareID, b.ShareID) })

	byCard := make(map[string]int, len(shareable))
	for i, c := range shareable {
		if i > 0 && shareable[i-1].ShareID == c.ShareID {
			return nil, fmt.Errorf("%w: share id %d used by %q and %q", ErrDuplicateCard, c.ShareID, shareable[i-1].ID, c.ID)
		}
		byCard[c.ID] = i + 1
	}
	if len(byCard) != len(shareable) {
		return nil, fmt.Errorf("%w: repeated card id", ErrDuplicateCard)
	}
	return NewCatalogFromMap(byCard)
}

// NewCatalogFromMap builds a catalog from an existing card id to encoding
// id table.
func NewCatalogFromMap(encodingIDByCard map[string]int) (*Catalog, error) {
	c := &Catalog{
		byCard: make(map[string]int, len(encodingIDByCard)),
		byID:   make(map[int]string, len(encodingIDByCard)),
	}
	for card, id := range encodingIDByCard {
		if id < 0 || id > MaxEncodingID {
			return nil, fmt.Errorf("%w: %q has %d", ErrEncodingIDRange, card, id)
		}
		if other, ok := c.byID[id]; ok {
			return nil, fmt.Errorf("%w: encoding id %d used by %q and %q", ErrDuplicateCard, id, other, card)
		}
		c.byCard[card] = id
		c.byID[id] = card
	}
	return c, nil
}

// LoadCatalogJSON reads a JSON array of cards.
func LoadCatalogJSON(r io.Reader) (*Catalog, error) {
	var cards []Card
	if err := json.NewDecoder(r).Decode(&cards); err != nil {
		return nil, fmt.Errorf("gcgcode: parse catalog JSON: %w", err)
	}
	return NewCatalog(cards)
}

// LoadCatalogYAML reads a YAML list of cards.
func LoadCatalogYAML(r io.Reader) (*Catalog, error) {
	var cards []Card
	if err := yaml.NewDecoder(r).Decode(&cards); err != nil {
		return nil, fmt.Errorf("gcgcode: parse catalog YAML: %w", err)
	}
	return NewCatalog(cards)
}

// Len returns the number of shareable cards.
func (c *Catalog) Len() int {
	return len(c.byCard)
}

// EncodingID returns the encoding id assigned to card.
func (c *Catalog) EncodingID(card string) (int, bool) {
	id, ok := c.byCard[card]
	return id, ok
}

// Card returns the card id for an encoding id.
func (c *Catalog) Card(encodingID int) (string, bool) {
	card, ok := c.byID[encodingID]
	return card, ok
}

// EncodingIDs returns a copy of the card id to encoding id table.
func (c *Catalog) EncodingIDs() map[string]int {
	out := make(map[string]int, len(c.byCard))
	for k, v := range c.byCard {
		out[k] = v
	}
	return out
}

// Cards returns a copy of the encoding id to card id table.
func (c *Catalog) Cards() map[int]string {
	out := make(map[int]string, len(c.byID))
	for k, v := range c.byID {
		out[k] = v
	}
	return out
}

// LoadCatalogFile reads a catalog from path, as YAML when the extension is
// .yaml or .yml and as JSON otherwise.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gcgcode: open catalog: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadCatalogYAML(f)
	default:
		return LoadCatalogJSON(f)
	}
}
