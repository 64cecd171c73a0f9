package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/pinyin-picturebook/internal/api/shared"
	"github.com/phrazzld/pinyin-picturebook/internal/session"
)

// SessionHandler exposes reading sessions over HTTP.
type SessionHandler struct {
	sessions *session.Manager
	hub      *StreamHub
}

// NewSessionHandler creates a SessionHandler. A nil hub disables the
// WebSocket stream route.
func NewSessionHandler(sessions *session.Manager, hub *StreamHub) *SessionHandler {
	return &SessionHandler{sessions: sessions, hub: hub}
}

// Routes registers the session endpoints on r.
func (h *SessionHandler) Routes(r chi.Router) {
	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.CloseSession)
		r.Post("/story", h.CreateStory)
		r.Post("/book", h.OpenBook)
		r.Post("/navigate", h.Navigate)
		r.Post("/pages/{page}/image", h.RegenerateImage)
		r.Post("/game/start", h.StartGame)
		r.Post("/game/answer", h.Answer)
		r.Post("/game/replay", h.PlayAgain)
		r.Post("/game/exit", h.ExitGame)
		r.Post("/reset", h.Reset)
		if h.hub != nil {
			r.Get("/stream", h.Stream)
		}
	})
}

// CreateSession opens a new session in the input phase.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	c := h.sessions.Create()
	w.Header().Set("Location", "/api/sessions/"+c.ID().String())
	shared.RespondWithJSON(w, r, http.StatusCreated, c.Snapshot())
}

// GetSession returns the current snapshot.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, c.Snapshot())
}

// CloseSession closes the session and releases its work.
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := h.sessions.Close(id); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateStory starts generating a book. Generation continues in the
// background, so the response is 202 with the processing snapshot.
func (h *SessionHandler) CreateStory(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req CreateStoryRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	snap, err := c.CreateStory(r.Context(), req.Text)
	respond(w, r, http.StatusAccepted, snap, err)
}

// OpenBook loads an archived book into the session.
func (h *SessionHandler) OpenBook(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req OpenBookRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	snap, err := c.OpenBook(r.Context(), req.BookID)
	respond(w, r, http.StatusOK, snap, err)
}

// Navigate moves between pages.
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req NavigateRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	snap, err := c.Navigate(r.Context(), *req.Delta)
	respond(w, r, http.StatusOK, snap, err)
}

// RegenerateImage requests a fresh illustration for one page.
func (h *SessionHandler) RegenerateImage(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	page, err := getPathInt(r, "page")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	snap, err := c.RegenerateImage(r.Context(), page)
	respond(w, r, http.StatusAccepted, snap, err)
}

// StartGame opens the quiz.
func (h *SessionHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*session.Controller).StartGame)
}

// Answer submits a quiz answer.
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req AnswerRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	snap, err := c.Answer(r.Context(), req.Option)
	respond(w, r, http.StatusOK, snap, err)
}

// PlayAgain restarts a finished quiz.
func (h *SessionHandler) PlayAgain(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*session.Controller).PlayAgain)
}

// ExitGame returns from the quiz to the book.
func (h *SessionHandler) ExitGame(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*session.Controller).ExitGame)
}

// Reset returns the session to the input phase. It serves both "try again"
// after an error and "home" while reading.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*session.Controller).Reset)
}

// Stream upgrades to a WebSocket that receives the current snapshot and
// then every session event until the session or the connection closes.
func (h *SessionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.hub.Serve(w, r, c)
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return nil, false
	}
	c, err := h.sessions.Get(id)
	if err != nil {
		HandleAPIError(w, r, err)
		return nil, false
	}
	return c, true
}

// act runs a body-less session action.
func (h *SessionHandler) act(
	w http.ResponseWriter,
	r *http.Request,
	action func(*session.Controller, context.Context) (session.Snapshot, error),
) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	snap, err := action(c, r.Context())
	respond(w, r, http.StatusOK, snap, err)
}

func respond(w http.ResponseWriter, r *http.Request, status int, snap session.Snapshot, err error) {
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, status, snap)
}
