// Package httpapi exposes the server's HTTP and WebSocket surface: account
// endpoints, vault and source management, the audit trail and the realtime
// events endpoint. Every vault route re-resolves the caller's role before
// touching data.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/synscript/synscript/internal/logging"
	"github.com/synscript/synscript/internal/server/config"
	"github.com/synscript/synscript/internal/server/ratelimit"
	"github.com/synscript/synscript/internal/server/rbac"
	"github.com/synscript/synscript/internal/server/realtime"
	"github.com/synscript/synscript/internal/server/services"
)

type Server struct {
	cfg         *config.Config
	logger      logging.Logger
	users       *services.UserService
	vaults      *services.VaultService
	members     *services.MemberService
	sources     *services.SourceService
	annotations *services.AnnotationService
	comments    *services.CommentService
	audit       *services.AuditService
	resolver    *rbac.Resolver
	hub         *realtime.Hub
	presence    *realtime.Presence
	limiter     ratelimit.Limiter
}

func NewServer(
	cfg *config.Config,
	logger logging.Logger,
	users *services.UserService,
	vaults *services.VaultService,
	members *services.MemberService,
	sources *services.SourceService,
	annotations *services.AnnotationService,
	comments *services.CommentService,
	audit *services.AuditService,
	resolver *rbac.Resolver,
	hub *realtime.Hub,
	presence *realtime.Presence,
	limiter ratelimit.Limiter,
) *Server {
	return &Server{
		cfg:         cfg,
		logger:      logger.With("module", "httpapi"),
		users:       users,
		vaults:      vaults,
		members:     members,
		sources:     sources,
		annotations: annotations,
		comments:    comments,
		audit:       audit,
		resolver:    resolver,
		hub:         hub,
		presence:    presence,
		limiter:     limiter,
	}
}

// Router builds the full route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.rateLimitMiddleware)

	r.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)

	authed.HandleFunc("/vaults", s.handleVaultList).Methods(http.MethodGet)
	authed.HandleFunc("/vaults", s.handleVaultCreate).Methods(http.MethodPost)
	authed.HandleFunc("/vaults/{vaultID}", s.handleVaultGet).Methods(http.MethodGet)
	authed.HandleFunc("/vaults/{vaultID}", s.handleVaultUpdate).Methods(http.MethodPatch)
	authed.HandleFunc("/vaults/{vaultID}", s.handleVaultDelete).Methods(http.MethodDelete)

	authed.HandleFunc("/vaults/{vaultID}/invites", s.handleMemberInvite).Methods(http.MethodPost)
	authed.HandleFunc("/vaults/{vaultID}/members/{userID}/role", s.handleMemberRole).Methods(http.MethodPost)
	authed.HandleFunc("/vaults/{vaultID}/members/{userID}", s.handleMemberRemove).Methods(http.MethodDelete)

	authed.HandleFunc("/vaults/{vaultID}/sources", s.handleSourceList).Methods(http.MethodGet)
	authed.HandleFunc("/vaults/{vaultID}/sources", s.handleSourceCreate).Methods(http.MethodPost)
	authed.HandleFunc("/vaults/{vaultID}/sources:bulk-delete", s.handleSourceBulkDelete).Methods(http.MethodPost)
	authed.HandleFunc("/vaults/{vaultID}/sources/{sourceID}", s.handleSourceUpdate).Methods(http.MethodPatch)
	authed.HandleFunc("/vaults/{vaultID}/sources/{sourceID}", s.handleSourceDelete).Methods(http.MethodDelete)
	authed.HandleFunc("/vaults/{vaultID}/sources/{sourceID}/upload-url", s.handleSourceUploadURL).Methods(http.MethodPost)
	authed.HandleFunc("/vaults/{vaultID}/sources/{sourceID}/file", s.handleSourceAttachFile).Methods(http.MethodPost)
	authed.HandleFunc("/vaults/{vaultID}/sources/{sourceID}/file", s.handleSourceFileURL).Methods(http.MethodGet)

	authed.HandleFunc("/vaults/{vaultID}/sources/{sourceID}/annotations", s.handleAnnotationList).Methods(http.MethodGet)
	authed.HandleFunc("/vaults/{vaultID}/sources/{sourceID}/annotations", s.handleAnnotationCreate).Methods(http.MethodPost)
	authed.HandleFunc("/vaults/{vaultID}/sources/{sourceID}/thread", s.handleCommentThread).Methods(http.MethodPost)
	authed.HandleFunc("/vaults/{vaultID}/threads/{threadID}/comments", s.handleCommentList).Methods(http.MethodGet)
	authed.HandleFunc("/vaults/{vaultID}/threads/{threadID}/comments", s.handleCommentCreate).Methods(http.MethodPost)

	authed.HandleFunc("/vaults/{vaultID}/audit-logs", s.handleAuditList).Methods(http.MethodGet)

	authed.HandleFunc("/vaults/{vaultID}/events", s.handleEvents).Methods(http.MethodGet)

	return r
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}
