package httpapi

// DeckRequest is the JSON body accepted by POST /api/decks.
type DeckRequest struct {
	CharacterCards []string       `json:"characterCards"`
	ActionCards    map[string]int `json:"actionCards"`
}

// DeckResponse is the JSON shape returned by GET /api/decks.
type DeckResponse struct {
	Code           string         `json:"code"`
	CharacterCards []string       `json:"characterCards"`
	ActionCards    map[string]int `json:"actionCards"`
	Unknown        bool           `json:"unknown"`
}

type CodeResponse struct {
	Code string `json:"code"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
