package http

import (
	"net/http"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
	commonhttp "github.com/Soodgit/ai-code-documenter/internal/common/http"
	"github.com/Soodgit/ai-code-documenter/internal/common/jwtverify"
	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
	"github.com/Soodgit/ai-code-documenter/internal/docs/service"
)

type generateRequest struct {
	Language string `json:"language" validate:"required,max=40"`
	Code     string `json:"code"     validate:"required"`
	Title    string `json:"title"`
}

type generateResponse struct {
	Markdown string `json:"markdown"`
	Source   string `json:"source"`
}

type Handler struct {
	docs         *service.DocsService
	errors       *commonhttp.ErrorHandler
	accessSecret []byte
	upgrader     gorillaWS.Upgrader
	log          *logger.Logger
}

func NewHandler(
	docs *service.DocsService,
	accessSecret string,
	log *logger.Logger,
	authenticate func(http.Handler) http.Handler,
) http.Handler {
	h := &Handler{
		docs:         docs,
		errors:       commonhttp.NewErrorHandler(log),
		accessSecret: []byte(accessSecret),
		upgrader: gorillaWS.Upgrader{
			ReadBufferSize:  constants.WebSocketReadBufferSize,
			WriteBufferSize: constants.WebSocketWriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				host := r.Host
				if host == "" {
					host = r.URL.Host
				}
				return origin == "http://"+host || origin == "https://"+host
			},
		},
		log: log,
	}

	post := commonhttp.RequireMethod(http.MethodPost)
	timeout := commonhttp.WithTimeout(30 * time.Second)

	mux := http.NewServeMux()
	mux.Handle("/api/docs/generate", authenticate(post(timeout(h.generate))))
	mux.HandleFunc("/api/docs/stream", h.stream)
	return mux
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing or invalid authorization", nil, "")
		return
	}

	var req generateRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("docs generate failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	result, err := h.docs.Generate(r.Context(), service.GenerateRequest{
		Language: req.Language,
		Code:     req.Code,
		Title:    req.Title,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.log.WithFields(r.Context(), logger.Fields{
		"user_id": claims.UserID,
		"source":  result.Source,
		"action":  "docs_generate_success",
	}).Info("docs generate success")

	commonhttp.WriteJSON(w, http.StatusOK, generateResponse{
		Markdown: result.Markdown,
		Source:   result.Source,
	})
}
