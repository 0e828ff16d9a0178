package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/klu-crt/portal/internal/portal/service"
	"github.com/klu-crt/portal/internal/portal/store"
	"github.com/klu-crt/portal/pkg/httpx"
	"github.com/klu-crt/portal/pkg/jwtx"
	"github.com/klu-crt/portal/pkg/slogx"

	_ "github.com/klu-crt/portal/api/portal" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keyManager   *jwtx.KeyManager
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService *service.AuthService
	UserService *service.UserService

	// SecureCookies adds the Secure attribute to the auth cookies; set
	// everywhere outside local development.
	SecureCookies bool

	// DevAuthBypass registers the /api/auth/dev-login route. The app layer
	// refuses to set this in production.
	DevAuthBypass bool

	// Pages is the server-rendered/static page surface mounted at "/",
	// wrapped by the route guard. Optional; nil leaves "/" unrouted.
	Pages http.Handler
}

func NewRouter(
	keyManager *jwtx.KeyManager,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	allowedOrigins []string,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keyManager:   keyManager,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		c.Handler,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()
	r.registerPages()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			KLU Portal Authentication API
//	@version		0.1.0
//	@description	Authentication and session service for the university administration portal.
//	@description
//	@description				Login is two-step: password first, then a 6-digit code emailed to the account address. Access tokens are EdDSA-signed JWTs verifiable via the JWKS endpoint; refresh tokens are opaque and single-use.
//
//	@contact.name				KLU CRT Team
//	@contact.url				https://github.com/klu-crt/portal
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token (refresh token for the refresh endpoint). Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit by IP (password guessing)
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /verify-otp - strict rate limit by IP (code guessing; the
	// per-challenge attempt budget is enforced in the service)
	verifyHandler := &VerifyOTPHandler{AuthService: r.AuthService, SecureCookies: r.SecureCookies}
	r.Mux.Handle("POST /api/auth/verify-otp",
		httpx.Chain(verifyHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /resend-otp - strict rate limit by IP on top of the per-challenge cooldown
	resendHandler := &ResendOTPHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /api/auth/resend-otp",
		httpx.Chain(resendHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh-token - moderate rate limit (every client refreshes periodically)
	refreshHandler := &RefreshHandler{AuthService: r.AuthService, SecureCookies: r.SecureCookies}
	r.Mux.Handle("POST /api/auth/refresh-token",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /logout - moderate rate limit
	logoutHandler := &LogoutHandler{
		AuthService:   r.AuthService,
		Verifier:      r.verifier,
		SecureCookies: r.SecureCookies,
	}
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /forgot-password - strict rate limit by IP (sends email)
	forgotHandler := &ForgotPasswordHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /api/auth/forgot-password",
		httpx.Chain(forgotHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	if r.DevAuthBypass {
		devHandler := &DevLoginHandler{AuthService: r.AuthService, SecureCookies: r.SecureCookies}
		r.Mux.Handle("POST /api/auth/dev-login",
			httpx.Chain(devHandler,
				httpx.RateLimitByIP(httpx.LenientLimit),
			),
		)
		r.logger.Warn("dev auth bypass route registered")
	}
}

func (r *Router) registerUsers() {
	// GET /userinfo - authenticated, lenient rate limit by user
	userinfoHandler := &UserInfoHandler{UserService: r.UserService}
	r.Mux.Handle("GET /api/userinfo",
		httpx.Chain(userinfoHandler,
			httpx.AuthnMiddleware(r.verifier), // verify JWT (iss/aud/exp)
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// PUT /users/password - authenticated, strict rate limit by user
	passwordHandler := &ChangePasswordHandler{AuthService: r.AuthService, SecureCookies: r.SecureCookies}
	r.Mux.Handle("PUT /api/users/password",
		httpx.Chain(passwordHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// GET /jwks.json - public endpoint with high limit
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keyManager),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keyManager.KeySet()),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerPages() {
	if r.Pages == nil {
		return
	}

	guard := &RouteGuard{Verifier: r.verifier}
	r.Mux.Handle("/", httpx.Chain(r.Pages, guard.Middleware()))
}
