package http

import (
	"errors"
	"net/http"
	"time"

	authdomain "github.com/Soodgit/ai-code-documenter/internal/auth/domain"
	"github.com/Soodgit/ai-code-documenter/internal/auth/service"
	commonhttp "github.com/Soodgit/ai-code-documenter/internal/common/http"
	"github.com/Soodgit/ai-code-documenter/internal/common/jwtverify"
	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// CookieConfig controls how the refresh cookie is written. Cross-site mode
// is for browser frontends served from another origin and requires HTTPS.
type CookieConfig struct {
	Name      string
	CrossSite bool
}

type Handler struct {
	auth    *service.AuthService
	errors  *commonhttp.ErrorHandler
	log     *logger.Logger
	cookies CookieConfig
}

func NewHandler(
	auth *service.AuthService,
	log *logger.Logger,
	cookies CookieConfig,
	authenticate func(http.Handler) http.Handler,
) http.Handler {
	h := &Handler{
		auth:    auth,
		errors:  commonhttp.NewErrorHandler(log),
		log:     log,
		cookies: cookies,
	}

	post := commonhttp.RequireMethod(http.MethodPost)
	timeout := commonhttp.WithTimeout(5 * time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", post(timeout(h.register)))
	mux.HandleFunc("/auth/login", post(timeout(h.login)))
	mux.HandleFunc("/auth/refresh", post(timeout(h.refresh)))
	mux.HandleFunc("/auth/logout", post(timeout(h.logout)))
	mux.HandleFunc("/auth/forgot-password", post(timeout(h.forgotPassword)))
	mux.HandleFunc("/auth/reset-password", post(timeout(h.resetPassword)))
	mux.Handle("/auth/me", authenticate(timeout(h.me)))
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("register failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken, result.RefreshExpiresAt)
	commonhttp.WriteJSON(w, http.StatusCreated, authResponse{
		Token: result.AccessToken,
		User:  toUserResponse(result.User),
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("login failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken, result.RefreshExpiresAt)
	commonhttp.WriteJSON(w, http.StatusOK, authResponse{
		Token: result.AccessToken,
		User:  toUserResponse(result.User),
	})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := h.refreshTokenFromRequest(r)
	if refreshToken == "" {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingRefreshToken, "missing refresh token", nil, "")
		return
	}

	result, err := h.auth.Refresh(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) || errors.Is(err, service.ErrRefreshTokenExpired) {
			h.clearRefreshCookie(w)
		}
		h.errors.HandleError(w, r, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken, result.RefreshExpiresAt)
	commonhttp.WriteJSON(w, http.StatusOK, tokenResponse{Token: result.AccessToken})
}

// logout always answers 200. A missing or invalid token means there is no
// session to end, which is the state the caller asked for.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if refreshToken := h.refreshTokenFromRequest(r); refreshToken != "" {
		if err := h.auth.Logout(r.Context(), refreshToken); err != nil {
			h.log.Errorf("logout revoke failed: %v", err)
		}
	}

	h.clearRefreshCookie(w)
	commonhttp.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("forgot password failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("reset password failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing or invalid authorization", nil, "")
		return
	}

	user, err := h.auth.GetUser(r.Context(), authdomain.UserID(claims.UserID))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, struct {
		User userResponse `json:"user"`
	}{User: toUserResponse(user)})
}

// refreshTokenFromRequest reads the refresh token from the httpOnly cookie
// only, never from a header or body.
func (h *Handler) refreshTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(h.cookies.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	if token == "" {
		return
	}
	http.SetCookie(w, h.refreshCookie(token, expiresAt, int(time.Until(expiresAt).Seconds())))
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, h.refreshCookie("", time.Unix(0, 0), -1))
}

func (h *Handler) refreshCookie(value string, expiresAt time.Time, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     h.cookies.Name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if h.cookies.CrossSite {
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Secure = true
	}

	return cookie
}

func toUserResponse(user authdomain.User) userResponse {
	return userResponse{
		ID:        string(user.ID),
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
