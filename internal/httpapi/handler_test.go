package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gcgcode "github.com/dvaJi/genshin-builds-sub003"
	"github.com/dvaJi/genshin-builds-sub003/internal/httpapi"
)

type memStore struct {
	decks map[string]gcgcode.Deck
	codec *gcgcode.Codec
	cat   *gcgcode.Catalog
}

func (m *memStore) SaveDeck(_ context.Context, d gcgcode.Deck) (string, error) {
	code, err := m.codec.Encode(d, m.cat)
	if err != nil {
		return "", err
	}
	m.decks[code] = d
	return code, nil
}

func (m *memStore) LoadDeck(_ context.Context, code string) (gcgcode.Deck, error) {
	d, ok := m.decks[code]
	if !ok {
		return gcgcode.Deck{}, io.EOF
	}
	return d, nil
}

func testCatalog(t *testing.T) *gcgcode.Catalog {
	t.Helper()
	c, err := gcgcode.NewCatalog([]gcgcode.Card{
		{ID: "keqing", ShareID: 1101},
		{ID: "fischl", ShareID: 1301},
		{ID: "collei", ShareID: 1701},
		{ID: "paimon", ShareID: 3101},
		{ID: "strategize", ShareID: 3301},
	})
	require.NoError(t, err)
	return c
}

const deckJSON = `{"characterCards":["keqing","fischl","collei"],"actionCards":{"paimon":2,"strategize":28}}`

func newServer(t *testing.T, catalog *gcgcode.Catalog, store httpapi.DeckStore) *echo.Echo {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := echo.New()
	e.Use(httpapi.RequestIDMiddleware())
	e.Use(httpapi.LoggingMiddleware(logger))
	httpapi.NewHandler(gcgcode.DefaultCodec, catalog, store, logger).Register(e)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createDeck(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := do(e, http.MethodPost, "/api/decks", deckJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp httpapi.CodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Code)
	return resp.Code
}

func TestHealthz(t *testing.T) {
	e := newServer(t, testCatalog(t), nil)
	rec := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestCreateThenGet(t *testing.T) {
	e := newServer(t, testCatalog(t), nil)
	code := createDeck(t, e)

	for _, target := range []string{
		"/api/decks/" + url.PathEscape(code),
		"/api/decks?code=" + url.QueryEscape(code),
	} {
		rec := do(e, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code, target)

		var resp httpapi.DeckResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, code, resp.Code)
		assert.Equal(t, []string{"keqing", "fischl", "collei"}, resp.CharacterCards)
		assert.Equal(t, map[string]int{"paimon": 2, "strategize": 28}, resp.ActionCards)
		assert.False(t, resp.Unknown)
	}
}

func TestGetUnknownDeck(t *testing.T) {
	e := newServer(t, testCatalog(t), nil)
	rec := do(e, http.MethodGet, "/api/decks/AA", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpapi.DeckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Unknown)
	assert.Equal(t, []string{"undefined", "undefined", "undefined"}, resp.CharacterCards)
	assert.Equal(t, map[string]int{"undefined": 30}, resp.ActionCards)
}

func TestGetMissingCode(t *testing.T) {
	e := newServer(t, testCatalog(t), nil)
	rec := do(e, http.MethodGet, "/api/decks", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateInvalidDeck(t *testing.T) {
	e := newServer(t, testCatalog(t), nil)

	rec := do(e, http.MethodPost, "/api/decks", `{"characterCards":["keqing"],"actionCards":{"paimon":30}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/api/decks", `{"characterCards":["keqing","fischl","nahida"],"actionCards":{"paimon":30}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Counts that wrap around to 30 when summed.
	rec = do(e, http.MethodPost, "/api/decks",
		`{"characterCards":["keqing","fischl","collei"],"actionCards":{"paimon":9223372036854775807,"strategize":9223372036854775807,"keqing":32}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/api/decks", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAfterCatalogChange(t *testing.T) {
	old := testCatalog(t)
	store := &memStore{decks: map[string]gcgcode.Deck{}, codec: gcgcode.DefaultCodec, cat: old}
	code := createDeck(t, newServer(t, old, store))

	// The new catalog no longer has collei; encoding ids 1..4 stay put.
	shrunk, err := gcgcode.NewCatalogFromMap(map[string]int{"keqing": 1, "fischl": 2, "paimon": 4, "strategize": 5})
	require.NoError(t, err)

	t.Run("WithoutStore", func(t *testing.T) {
		rec := do(newServer(t, shrunk, nil), http.MethodGet, "/api/decks/"+url.PathEscape(code), "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
	t.Run("WithStore", func(t *testing.T) {
		rec := do(newServer(t, shrunk, store), http.MethodGet, "/api/decks/"+url.PathEscape(code), "")
		require.Equal(t, http.StatusOK, rec.Code)
		var resp httpapi.DeckResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "collei", resp.CharacterCards[2])
	})
}
