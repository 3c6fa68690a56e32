package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlog/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthHandler serves login and register.
type AuthHandler struct {
	store  *Store
	tokens *TokenIssuer
	logger *log.Logger
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	if err := h.store.CheckUser(creds.Username, creds.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	h.respondToken(w, creds.Username)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	if err := h.store.CreateUser(creds.Username, creds.Password); err != nil {
		if errors.Is(err, ErrUserExists) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("register failed", "err", err)
		writeError(w, http.StatusInternalServerError, "register failed")
		return
	}
	h.logger.Info("user registered", "username", creds.Username)
	h.respondToken(w, creds.Username)
}

func (h *AuthHandler) respondToken(w http.ResponseWriter, username string) {
	token, err := h.tokens.Issue(username)
	if err != nil {
		h.logger.Error("token issue failed", "err", err)
		writeError(w, http.StatusInternalServerError, "token issue failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return creds, false
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return creds, false
	}
	return creds, true
}

// GenreHandler serves the read-only genre list.
type GenreHandler struct {
	store *Store
}

func (h *GenreHandler) Routes() []string {
	return []string{"GET /api/genres"}
}

func (h *GenreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Genres())
}

// ItemHandler serves the CRUD endpoints of one kind.
type ItemHandler struct {
	kind  models.Kind
	store *Store
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	sort, err := models.ParseSort(params.Get("sort"))
	if err != nil {
		sort = models.SortAsc
	}
	q := models.ListQuery{Genre: params.Get("genre"), Title: params.Get("title"), Sort: sort}
	writeJSON(w, http.StatusOK, h.store.List(UserFrom(r.Context()), h.kind, q))
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	it, err := h.store.Get(h.kind, id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p models.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	it, err := h.store.Create(UserFrom(r.Context()), h.kind, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p models.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	it, err := h.store.Update(UserFrom(r.Context()), h.kind, id, p)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusOK, it)
	}
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(UserFrom(r.Context()), h.kind, id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
