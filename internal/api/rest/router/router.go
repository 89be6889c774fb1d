package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orgdesk/orgdesk-server/internal/api/rest/cookies"
	"github.com/orgdesk/orgdesk-server/internal/api/rest/handler"
	"github.com/orgdesk/orgdesk-server/internal/api/rest/middleware"
	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
)

// Pinger reports backing-store health for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router wires services into the HTTP route tree.
type Router struct {
	sessions     handler.SessionService
	profiles     handler.ProfileService
	orgs         handler.OrganizationService
	invitations  handler.InvitationService
	audit        handler.AuditService
	tokenManager model.TokenManager
	clock        model.Clock
	db           Pinger
	cookies      *cookies.Manager
	accessTTL    time.Duration
	refreshTTL   time.Duration
	production   bool
	logger       *logger.Logger
}

// Config carries everything the route tree needs.
type Config struct {
	Sessions     handler.SessionService
	Profiles     handler.ProfileService
	Orgs         handler.OrganizationService
	Invitations  handler.InvitationService
	Audit        handler.AuditService
	TokenManager model.TokenManager
	Clock        model.Clock
	DB           Pinger
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	Production   bool
	Logger       *logger.Logger
}

func New(cfg Config) *Router {
	return &Router{
		sessions:     cfg.Sessions,
		profiles:     cfg.Profiles,
		orgs:         cfg.Orgs,
		invitations:  cfg.Invitations,
		audit:        cfg.Audit,
		tokenManager: cfg.TokenManager,
		clock:        cfg.Clock,
		db:           cfg.DB,
		cookies:      cookies.NewManager(cfg.Production),
		accessTTL:    cfg.AccessTTL,
		refreshTTL:   cfg.RefreshTTL,
		production:   cfg.Production,
		logger:       cfg.Logger,
	}
}

// Register builds the gin engine with all routes and middleware.
func (r *Router) Register() *gin.Engine {
	if r.production {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.NewSecurityHeaders(r.production).Handle)
	engine.Use(middleware.NewLogging(r.logger).Handle)

	engine.GET("/healthz", r.healthz)

	authHandler := handler.NewAuth(r.sessions, r.cookies, r.accessTTL, r.refreshTTL, r.logger)
	userHandler := handler.NewUser(r.profiles, r.logger)
	orgHandler := handler.NewOrganization(r.orgs, r.logger)
	invitationHandler := handler.NewInvitation(r.invitations, r.clock, r.logger)
	auditHandler := handler.NewAudit(r.audit, r.logger)

	api := engine.Group("/api")

	// Session establishment does not require an identity.
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	authenticate := middleware.NewAuthenticate(r.tokenManager, r.logger)

	// Membership is the weakest valid role, so the gate only rejects
	// tokens whose role claim is outside the closed enumeration.
	authed := api.Group("")
	authed.Use(authenticate.Handle, middleware.RequireRole(model.RoleMember))

	authed.POST("/auth/logout-all", authHandler.LogoutAll)

	users := authed.Group("/users")
	users.GET("/me", userHandler.Me)
	users.PATCH("/me", userHandler.UpdateMe)
	users.PUT("/me/password", authHandler.ChangePassword)
	users.PUT("/me/avatar", userHandler.UploadAvatar)
	users.GET("/me/avatar", userHandler.DownloadAvatar)

	orgs := authed.Group("/orgs")
	orgs.POST("", orgHandler.Create)
	orgs.GET("", orgHandler.List)
	orgs.GET("/:orgID", orgHandler.Get)
	orgs.PATCH("/:orgID", orgHandler.Update)
	orgs.DELETE("/:orgID", orgHandler.Delete)
	orgs.GET("/:orgID/members", orgHandler.ListMembers)
	orgs.PATCH("/:orgID/members/:userID", orgHandler.ChangeMemberRole)
	orgs.DELETE("/:orgID/members/:userID", orgHandler.RemoveMember)
	orgs.POST("/:orgID/invitations", invitationHandler.Create)
	orgs.GET("/:orgID/invitations", invitationHandler.List)
	orgs.DELETE("/:orgID/invitations/:invitationID", invitationHandler.Revoke)
	orgs.GET("/:orgID/audit", auditHandler.List)

	authed.POST("/invitations/accept", invitationHandler.Accept)

	return engine
}

func (r *Router) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := r.db.Ping(ctx); err != nil {
		r.logger.Error("Healthz: database unreachable", "error", err.Error())
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
