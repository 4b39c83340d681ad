package adapthttp

import (
	"net/http"

	"steplog/internal/app"

	"github.com/rs/zerolog"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	steps   *app.StepsService
	reports *app.ReportService
	authSvc *app.AuthService

	oidcConfig *OIDCConfig
	webDir     string
	logger     zerolog.Logger

	// disableAuth short-circuits the auth middleware with a fixed test
	// user; only handler tests set it.
	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(ss *app.StepsService, rs *app.ReportService, as *app.AuthService, oidcConfig *OIDCConfig, webDir string, logger zerolog.Logger) *Server {
	if oidcConfig == nil {
		oidcConfig = &OIDCConfig{}
	}
	return &Server{
		steps:      ss,
		reports:    rs,
		authSvc:    as,
		oidcConfig: oidcConfig,
		webDir:     webDir,
		logger:     logger,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/config", s.handleConfig)

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/register", s.handleRegister)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	private := http.NewServeMux()
	private.HandleFunc("/steps", s.handleSteps)
	private.HandleFunc("/steps/calendar", s.handleCalendar)
	private.HandleFunc("/steps/chart", s.handleChart)
	private.HandleFunc("/steps/", s.handleStepByID)
	private.HandleFunc("/profile", s.handleProfile)
	private.HandleFunc("/profile/password", s.handlePassword)
	api.Handle("/", s.authMiddleware(private))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
