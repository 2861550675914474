package constants

import "time"

const (
	UsernameMinLength  = 3
	UsernameMaxLength  = 32
	PasswordMinLength  = 8
	PasswordMaxLength  = 72
	EmailMaxLength     = 254
	TokenSecretMinLen  = 32
	ResetTokenSize     = 32

	TitleMaxLength        = 200
	LanguageMaxLength     = 40
	MaxCodeSizeBytes      = 100 * 1024
	MaxSnippetsPageLimit  = 100
	DefaultSnippetsLimit  = 20
	DefaultMaxRequestSize = 1 << 20

	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	ResetTokenTTL          = 1 * time.Hour

	RefreshCookieName = "rt"

	DBPoolMetricsInterval = 30 * time.Second
	DBQueryTimeout        = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "8080"
	DefaultRequestTimeout = 30 * time.Second

	DefaultCircuitBreakerThreshold = 5
	DefaultCircuitBreakerTimeout   = 20 * time.Second
	DefaultCircuitBreakerReset     = 30 * time.Second

	DefaultDocsCacheTTL    = 24 * time.Hour
	DefaultProviderTimeout = 20 * time.Second

	DefaultRefreshCallTimeout = 10 * time.Second

	TokenCleanupInterval = 1 * time.Hour

	RateLimitCleanupInterval = 5 * time.Minute

	RateLimitLoginRequestsPerSecond    = 1
	RateLimitLoginBurst                = 5
	RateLimitRegisterRequestsPerSecond = 0.5
	RateLimitRegisterBurst             = 3
	RateLimitRefreshRequestsPerSecond  = 2
	RateLimitRefreshBurst              = 10
	RateLimitLogoutRequestsPerSecond   = 2
	RateLimitLogoutBurst               = 10
	RateLimitResetRequestsPerSecond    = 0.2
	RateLimitResetBurst                = 3
	RateLimitGeneralRequestsPerSecond  = 20
	RateLimitGeneralBurst              = 40

	DocsStreamWriteWait   = 10 * time.Second
	DocsStreamPongWait    = 60 * time.Second
	DocsStreamPingPeriod  = 54 * time.Second
	DocsStreamMaxMsgSize  = 256 * 1024
	DocsStreamSendBufSize = 16

	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
