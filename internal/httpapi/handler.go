package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	gcgcode "github.com/dvaJi/genshin-builds-sub003"
)

// DeckStore keeps shared decks so they survive catalog changes.
type DeckStore interface {
	SaveDeck(ctx context.Context, deck gcgcode.Deck) (string, error)
	LoadDeck(ctx context.Context, code string) (gcgcode.Deck, error)
}

// Handler serves the deck share code endpoints.
type Handler struct {
	codec   *gcgcode.Codec
	catalog *gcgcode.Catalog
	store   DeckStore
	logger  *slog.Logger
}

// NewHandler serves decks with codec and catalog. store may be nil.
func NewHandler(codec *gcgcode.Codec, catalog *gcgcode.Catalog, store DeckStore, logger *slog.Logger) *Handler {
	return &Handler{codec: codec, catalog: catalog, store: store, logger: logger}
}

// Register mounts the handler routes on e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	e.GET("/api/decks", h.GetDeck)
	e.GET("/api/decks/*", h.GetDeck)
	e.POST("/api/decks", h.CreateDeck)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// GetDeck decodes a share code taken from the path or the code query
// parameter. Codes of the wrong length decode to the unknown deck.
func (h *Handler) GetDeck(c echo.Context) error {
	code, err := shareCode(c)
	if err != nil || code == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or malformed share code"})
	}

	deck, err := h.codec.Decode(code, h.catalog)
	if errors.Is(err, gcgcode.ErrUnknownCard) && h.store != nil {
		stored, serr := h.store.LoadDeck(c.Request().Context(), code)
		if serr == nil {
			return c.JSON(http.StatusOK, toResponse(code, stored))
		}
		h.logger.Debug("stored deck lookup failed", "code", code, "error", serr)
	}
	if err != nil {
		return mapError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toResponse(code, deck))
}

// CreateDeck encodes the posted deck, saving it when a store is set.
func (h *Handler) CreateDeck(c echo.Context) error {
	var req DeckRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid deck JSON"})
	}
	deck := gcgcode.Deck{CharacterCards: req.CharacterCards, ActionCards: req.ActionCards}

	var code string
	var err error
	if h.store != nil {
		code, err = h.store.SaveDeck(c.Request().Context(), deck)
	} else {
		code, err = h.codec.Encode(deck, h.catalog)
	}
	if err != nil {
		return mapError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, CodeResponse{Code: code})
}

// shareCode reads the code from the wildcard path segment, falling back to
// the query string. A '+' turned into a space by query decoding is restored.
func shareCode(c echo.Context) (string, error) {
	if raw := c.Param("*"); raw != "" {
		return url.PathUnescape(raw)
	}
	return strings.ReplaceAll(c.QueryParam("code"), " ", "+"), nil
}

func toResponse(code string, d gcgcode.Deck) DeckResponse {
	return DeckResponse{
		Code:           code,
		CharacterCards: d.CharacterCards,
		ActionCards:    d.ActionCards,
		Unknown:        d.IsUnknown(),
	}
}

func mapError(c echo.Context, logger *slog.Logger, err error) error {
	requestID, _ := c.Get("request_id").(string)

	switch {
	case errors.Is(err, gcgcode.ErrUnknownCard):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, gcgcode.ErrCharacterCount),
		errors.Is(err, gcgcode.ErrDeckSize),
		errors.Is(err, gcgcode.ErrCardCount),
		errors.Is(err, gcgcode.ErrEncodingIDRange):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, gcgcode.ErrNoValidMask):
		logger.Error("share code generation failed", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("internal error", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
