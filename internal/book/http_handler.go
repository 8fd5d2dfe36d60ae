package book

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"bookshelf/internal/httpx"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var validate = validator.New()

type HTTPHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewHTTPHandler(service *Service, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

// Register mounts the collection routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.Handle("/books", httpx.MethodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(h.List),
		http.MethodPost: http.HandlerFunc(h.Create),
	}))
	mux.Handle("/books/{id}", httpx.MethodMux(map[string]http.Handler{
		http.MethodPatch:  http.HandlerFunc(h.UpdateRating),
		http.MethodDelete: http.HandlerFunc(h.Delete),
	}))
}

type listResponse struct {
	Books      []Book `json:"books"`
	Success    bool   `json:"success"`
	TotalBooks int    `json:"total_books"`
}

type updateResponse struct {
	Success bool `json:"success"`
}

type deleteResponse struct {
	Books      []Book `json:"books"`
	Deleted    int64  `json:"deleted"`
	Success    bool   `json:"success"`
	TotalBooks int    `json:"total_books"`
}

type createResponse struct {
	Books      []Book `json:"books"`
	Created    int64  `json:"created"`
	Success    bool   `json:"success"`
	TotalBooks int    `json:"total_books"`
}

type createBookRequest struct {
	Title  *string             `json:"title" validate:"required"`
	Author *string             `json:"author" validate:"required"`
	Rating jsoniter.RawMessage `json:"rating" validate:"required"`
}

var errEmptyBody = errors.New("empty request body")

// parseRating accepts a JSON integer, an integral float or a string holding
// an integer, the same inputs an integer column would coerce.
func parseRating(raw []byte) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errors.New("rating must not be null")
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := httpx.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("rating: %w", err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("rating %q is not an integer", s)
		}
		return n, nil
	}

	if n, err := strconv.Atoi(text); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("rating %s is not an integer", text)
	}
	return int(f), nil
}

// pageParam reads ?page=, defaulting to 1 when it is absent or not an integer.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return page
}

// idParam reads the {id} path segment, which must be all digits.
func idParam(r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, ErrUnprocessable):
		status = http.StatusUnprocessableEntity
	}

	level := slog.LevelWarn
	if status == http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "book request failed",
		"op", op,
		"status", status,
		"request_id", httpx.RequestIDFrom(r),
		"error", err,
	)
	httpx.JSONError(w, status)
}

// List handles GET /books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.List(r.Context(), pageParam(r))
	if err != nil {
		h.writeError(w, r, "list", err)
		return
	}

	httpx.JSONSuccess(w, listResponse{
		Books:      res.Books,
		Success:    true,
		TotalBooks: res.TotalBooks,
	})
}

// UpdateRating handles PATCH /books/{id}
func (h *HTTPHandler) UpdateRating(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.NotFound(w, r)
		return
	}

	if err := h.service.UpdateRating(r.Context(), id, decodeRatingUpdate(r.Body)); err != nil {
		h.writeError(w, r, "update_rating", err)
		return
	}

	httpx.JSONSuccess(w, updateResponse{Success: true})
}

func decodeRatingUpdate(body io.Reader) RatingUpdate {
	data, err := io.ReadAll(body)
	if err != nil {
		return RatingUpdate{Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return RatingUpdate{Err: errEmptyBody}
	}

	var fields map[string]jsoniter.RawMessage
	if err := httpx.Unmarshal(data, &fields); err != nil {
		return RatingUpdate{Err: err}
	}
	if fields == nil {
		return RatingUpdate{Err: errors.New("body is not a JSON object")}
	}

	raw, ok := fields["rating"]
	if !ok {
		return RatingUpdate{}
	}
	rating, err := parseRating(raw)
	if err != nil {
		return RatingUpdate{Err: err}
	}
	return RatingUpdate{Rating: &rating}
}

// Delete handles DELETE /books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.NotFound(w, r)
		return
	}

	res, err := h.service.Delete(r.Context(), id, pageParam(r))
	if err != nil {
		h.writeError(w, r, "delete", err)
		return
	}

	httpx.JSONSuccess(w, deleteResponse{
		Books:      res.Books,
		Deleted:    res.Deleted,
		Success:    true,
		TotalBooks: res.TotalBooks,
	})
}

// Create handles POST /books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	nb, err := decodeNewBook(r.Body)
	if err != nil {
		h.writeError(w, r, "create", fmt.Errorf("%w: %v", ErrUnprocessable, err))
		return
	}

	res, err := h.service.Create(r.Context(), nb)
	if err != nil {
		h.writeError(w, r, "create", err)
		return
	}

	httpx.JSONSuccess(w, createResponse{
		Books:      res.Books,
		Created:    res.Created,
		Success:    true,
		TotalBooks: res.TotalBooks,
	})
}

func decodeNewBook(body io.Reader) (NewBook, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return NewBook{}, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return NewBook{}, errEmptyBody
	}

	var req createBookRequest
	if err := httpx.Unmarshal(data, &req); err != nil {
		return NewBook{}, err
	}
	if err := validate.Struct(req); err != nil {
		return NewBook{}, err
	}
	rating, err := parseRating(req.Rating)
	if err != nil {
		return NewBook{}, err
	}

	return NewBook{
		Title:  *req.Title,
		Author: *req.Author,
		Rating: rating,
	}, nil
}
