package http

import (
	"net/http"
	"strconv"
	"time"

	commonhttp "github.com/Soodgit/ai-code-documenter/internal/common/http"
	"github.com/Soodgit/ai-code-documenter/internal/common/jwtverify"
	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
	"github.com/Soodgit/ai-code-documenter/internal/snippet/domain"
	"github.com/Soodgit/ai-code-documenter/internal/snippet/service"
)

type createSnippetRequest struct {
	Title         string `json:"title"         validate:"required,max=200"`
	Language      string `json:"language"      validate:"required,max=40"`
	Code          string `json:"code"          validate:"required"`
	Documentation string `json:"documentation"`
}

type updateSnippetRequest struct {
	Title         *string `json:"title"`
	Language      *string `json:"language"`
	Code          *string `json:"code"`
	Documentation *string `json:"documentation"`
}

type snippetResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Language      string    `json:"language"`
	Code          string    `json:"code"`
	Documentation string    `json:"documentation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type snippetListResponse struct {
	Snippets []snippetResponse `json:"snippets"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type Handler struct {
	snippets *service.SnippetService
	errors   *commonhttp.ErrorHandler
	log      *logger.Logger
}

func NewHandler(
	snippets *service.SnippetService,
	log *logger.Logger,
	authenticate func(http.Handler) http.Handler,
) http.Handler {
	h := &Handler{
		snippets: snippets,
		errors:   commonhttp.NewErrorHandler(log),
		log:      log,
	}

	timeout := commonhttp.WithTimeout(5 * time.Second)

	mux := http.NewServeMux()
	mux.Handle("/api/snippets", authenticate(timeout(h.collection)))
	mux.Handle("/api/snippets/", authenticate(timeout(h.item)))
	return mux
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) item(w http.ResponseWriter, r *http.Request) {
	id, ok := commonhttp.ExtractIDFromPath(r.URL.Path, "/api/snippets/")
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid path", nil, "")
		return
	}
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid snippet id", nil, "")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, domain.SnippetID(id))
	case http.MethodPut:
		h.update(w, r, domain.SnippetID(id))
	case http.MethodDelete:
		h.delete(w, r, domain.SnippetID(id))
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req createSnippetRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("snippet create failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	snippet, err := h.snippets.Create(r.Context(), service.CreateInput{
		UserID:        claims.UserID,
		Title:         req.Title,
		Language:      req.Language,
		Code:          req.Code,
		Documentation: req.Documentation,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toSnippetResponse(snippet))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")

	snippets, err := h.snippets.List(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	resp := snippetListResponse{Snippets: make([]snippetResponse, 0, len(snippets))}
	for _, snippet := range snippets {
		resp.Snippets = append(resp.Snippets, toSnippetResponse(snippet))
	}

	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, id domain.SnippetID) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	snippet, err := h.snippets.Get(r.Context(), id, claims.UserID)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toSnippetResponse(snippet))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id domain.SnippetID) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req updateSnippetRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("snippet update failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	snippet, err := h.snippets.Update(r.Context(), id, claims.UserID, service.UpdateInput{
		Title:         req.Title,
		Language:      req.Language,
		Code:          req.Code,
		Documentation: req.Documentation,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toSnippetResponse(snippet))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, id domain.SnippetID) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	if err := h.snippets.Delete(r.Context(), id, claims.UserID); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func requireClaims(w http.ResponseWriter, r *http.Request) (jwtverify.Claims, bool) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing or invalid authorization", nil, "")
		return jwtverify.Claims{}, false
	}
	return claims, true
}

func queryInt(r *http.Request, name string) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func toSnippetResponse(snippet domain.Snippet) snippetResponse {
	return snippetResponse{
		ID:            string(snippet.ID),
		Title:         snippet.Title,
		Language:      snippet.Language,
		Code:          snippet.Code,
		Documentation: snippet.Documentation,
		CreatedAt:     snippet.CreatedAt,
		UpdatedAt:     snippet.UpdatedAt,
	}
}
