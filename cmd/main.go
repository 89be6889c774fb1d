package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/orgdesk/orgdesk-server/internal/api/rest/router"
	restServer "github.com/orgdesk/orgdesk-server/internal/api/rest/server"
	"github.com/orgdesk/orgdesk-server/internal/config"
	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
	"github.com/orgdesk/orgdesk-server/internal/repository/postgres"
	"github.com/orgdesk/orgdesk-server/internal/security"
	"github.com/orgdesk/orgdesk-server/internal/server"
	"github.com/orgdesk/orgdesk-server/internal/service"
	storage "github.com/orgdesk/orgdesk-server/internal/storage/minio"
	"github.com/orgdesk/orgdesk-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const janitorInterval = time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	orgRepo := postgres.NewOrganizationRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	clock := model.RealClock{}
	tokenManager := token.NewJWT(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL, clock)
	limiter := security.NewLoginLimiter(cfg.Auth.MaxFailures, cfg.Auth.LockoutWindow, clock)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	auditService := service.NewAudit(auditRepo, membershipRepo, logger)
	sessionService := service.NewSession(userRepo, refreshTokenRepo, tokenManager, limiter, auditService, clock, logger, service.SessionConfig{
		RefreshSecret: cfg.Auth.RefreshSecret,
		RefreshTTL:    cfg.Auth.RefreshTTL,
		BcryptCost:    cfg.Auth.BcryptCost,
	})
	profileService := service.NewProfile(userRepo, storageClient, logger)
	orgService := service.NewOrganization(orgRepo, membershipRepo, userRepo, auditService, logger)
	invitationService := service.NewInvitation(invitationRepo, membershipRepo, userRepo, auditService, clock, logger, func(raw string) []byte {
		mac := hmac.New(sha256.New, []byte(cfg.Auth.RefreshSecret))
		mac.Write([]byte(raw))
		return mac.Sum(nil)
	})
	janitor := service.NewJanitor(refreshTokenRepo, invitationRepo, clock, logger, janitorInterval)

	r := router.New(router.Config{
		Sessions:     sessionService,
		Profiles:     profileService,
		Orgs:         orgService,
		Invitations:  invitationService,
		Audit:        auditService,
		TokenManager: tokenManager,
		Clock:        clock,
		DB:           db,
		AccessTTL:    cfg.Auth.AccessTTL,
		RefreshTTL:   cfg.Auth.RefreshTTL,
		Production:   cfg.HTTP.Production(),
		Logger:       logger,
	})
	httpServer := restServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	go janitor.Run(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
