package http

import (
	"net/http"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
	commonerrors "github.com/Soodgit/ai-code-documenter/internal/common/errors"
	commonhttp "github.com/Soodgit/ai-code-documenter/internal/common/http"
	"github.com/Soodgit/ai-code-documenter/internal/common/jwtverify"
	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
	"github.com/Soodgit/ai-code-documenter/internal/docs/service"
	"github.com/Soodgit/ai-code-documenter/internal/observability/metrics"
)

type streamRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Title    string `json:"title"`
}

type streamEvent struct {
	Stage    string `json:"stage"`
	Markdown string `json:"markdown,omitempty"`
	Source   string `json:"source,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

// stream serves one generation over a websocket, reporting progress stages
// as they happen. Browsers cannot set headers on websocket dials, so the
// access token arrives as a query parameter instead.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing or invalid authorization", nil, "")
		return
	}

	claims, err := jwtverify.ParseToken(tokenString, h.accessSecret)
	if err != nil {
		h.log.WithFields(ctx, logger.Fields{
			"action": "docs_stream_auth_failed",
		}).Warnf("docs stream auth failed: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "invalid token", nil, "")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithFields(ctx, logger.Fields{
			"action": "docs_stream_upgrade_failed",
		}).Errorf("docs stream upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	metrics.DocsStreamConnectionsActive.Inc()
	defer metrics.DocsStreamConnectionsActive.Dec()

	conn.SetReadLimit(constants.DocsStreamMaxMsgSize)
	conn.SetReadDeadline(time.Now().Add(constants.DocsStreamPongWait))

	var req streamRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.log.WithFields(ctx, logger.Fields{
			"user_id": claims.UserID,
			"action":  "docs_stream_bad_request",
		}).Warnf("docs stream invalid request: %v", err)
		h.writeEvent(conn, streamEvent{Stage: "error", Code: "INVALID_JSON", Message: "invalid request"})
		return
	}

	if !h.writeEvent(conn, streamEvent{Stage: "accepted"}) {
		return
	}
	if !h.writeEvent(conn, streamEvent{Stage: "generating"}) {
		return
	}

	result, err := h.docs.Generate(ctx, service.GenerateRequest{
		Language: req.Language,
		Code:     req.Code,
		Title:    req.Title,
	})
	if err != nil {
		code, message := streamErrorShape(err)
		h.writeEvent(conn, streamEvent{Stage: "error", Code: code, Message: message})
		return
	}

	h.log.WithFields(ctx, logger.Fields{
		"user_id": claims.UserID,
		"source":  result.Source,
		"action":  "docs_stream_success",
	}).Info("docs stream success")

	h.writeEvent(conn, streamEvent{Stage: "done", Markdown: result.Markdown, Source: result.Source})
	conn.SetWriteDeadline(time.Now().Add(constants.DocsStreamWriteWait))
	conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
}

func (h *Handler) writeEvent(conn *gorillaWS.Conn, event streamEvent) bool {
	conn.SetWriteDeadline(time.Now().Add(constants.DocsStreamWriteWait))
	if err := conn.WriteJSON(event); err != nil {
		h.log.Warnf("docs stream write failed stage=%s: %v", event.Stage, err)
		return false
	}
	return true
}

func streamErrorShape(err error) (string, string) {
	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		return domainErr.Code(), domainErr.Message()
	}
	return commonhttp.CodeInternalError, "failed to generate documentation"
}
