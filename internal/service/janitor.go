package service

import (
	"context"
	"time"

	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
)

// Janitor periodically purges expired refresh tokens and invitations.
// It is pure garbage collection: revoked/expired flags are checked at
// verification time, so nothing is ever wrong if a sweep is late or
// skipped.
type Janitor struct {
	tokens      model.RefreshTokenStore
	invitations model.InvitationStore
	clock       model.Clock
	logger      *logger.Logger
	interval    time.Duration
}

func NewJanitor(
	tokens model.RefreshTokenStore,
	invitations model.InvitationStore,
	clock model.Clock,
	logger *logger.Logger,
	interval time.Duration,
) *Janitor {
	return &Janitor{
		tokens:      tokens,
		invitations: invitations,
		clock:       clock,
		logger:      logger,
		interval:    interval,
	}
}

// Run sweeps on a ticker until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	now := j.clock.Now()

	tokens, err := j.tokens.DeleteExpired(ctx, now)
	if err != nil {
		j.logger.Error("Janitor: failed to purge refresh tokens", "error", err.Error())
	}
	invitations, err := j.invitations.DeleteExpired(ctx, now)
	if err != nil {
		j.logger.Error("Janitor: failed to purge invitations", "error", err.Error())
	}

	if tokens > 0 || invitations > 0 {
		j.logger.Info("Janitor: purged expired records",
			"refresh_tokens", tokens,
			"invitations", invitations)
	}
}
