package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rithlabs/rith/internal/rith/service"
	"github.com/rithlabs/rith/internal/rith/store"
	"github.com/rithlabs/rith/pkg/httpx"
	"github.com/rithlabs/rith/pkg/slogx"

	_ "github.com/rithlabs/rith/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TokenService     *service.TokenService
	GrantService     *service.GrantService
	ClientService    *service.ClientService
	UserService      *service.UserService
	SessionService   *service.SessionService
	MFAService       *service.MFAService
	BootstrapService *service.BootstrapService
	Gate             *service.Gate
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerClients()
	r.registerMFA()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
//
//	@title			Rith Authentication Service API
//	@version		1.0.0
//	@description	OAuth2 authorization-code and access-token lifecycle with
//	@description	role-based request authorization.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Opaque access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{Sessions: r.SessionService}
	r.Mux.Handle("POST /v1/auth/remote/login",
		httpx.Chain(login,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "email"),
		),
	)

	authorize := &AuthorizeHandler{
		Sessions: r.SessionService,
		Clients:  r.ClientService,
		Grants:   r.GrantService,
	}
	r.Mux.Handle("GET /v1/auth/authorize",
		httpx.Chain(http.HandlerFunc(authorize.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/authorize",
		httpx.Chain(http.HandlerFunc(authorize.HandlePost),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	token := &TokenHandler{Tokens: r.TokenService}
	r.Mux.Handle("GET /v1/auth/token",
		httpx.Chain(token,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	logout := &LogoutHandler{Tokens: r.TokenService, Gate: r.Gate}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logout,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerClients() {
	h := &ClientHandler{Sessions: r.SessionService, Clients: r.ClientService}

	r.Mux.Handle("POST /v1/auth/client",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/auth/client",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/auth/client/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{Sessions: r.SessionService, MFA: r.MFAService}

	r.Mux.Handle("POST /v1/auth/mfa/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/mfa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UserHandler{Gate: r.Gate, Users: r.UserService}

	limited := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(httpx.LenientLimit))
	}

	r.Mux.Handle("GET /v1/data/user/me", limited(h.HandleMe))
	r.Mux.Handle("GET /v1/data/user", limited(h.HandleList))
	r.Mux.Handle("POST /v1/data/user", limited(h.HandleCreate))
	r.Mux.Handle("GET /v1/data/user/{id}", limited(h.HandleGet))
	r.Mux.Handle("PATCH /v1/data/user/{id}", limited(h.HandleUpdate))
	r.Mux.Handle("DELETE /v1/data/user/{id}", limited(h.HandleDelete))
}

func (r *Router) registerSystem() {
	bootstrap := &BootstrapHandler{Bootstrap: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(bootstrap,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /livez", LivezHandler(r.buildVersion, r.startTime))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
}
