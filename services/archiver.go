package services

import (
	"context"
	"time"

	"github.com/rizqiaditya/stories/utils"
)

// Archiver periodically moves expired stories out of the visible listing.
type Archiver struct {
	svc      StoryService
	interval time.Duration
	// OnArchived runs after a sweep that changed at least one story.
	OnArchived func(n int64)
}

// NewArchiver creates an Archiver; a non-positive interval defaults to one minute.
func NewArchiver(svc StoryService, interval time.Duration) *Archiver {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Archiver{svc: svc, interval: interval}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (a *Archiver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		a.Sweep(ctx, time.Now())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep archives stories expired at now and returns how many changed.
func (a *Archiver) Sweep(ctx context.Context, now time.Time) int64 {
	n, err := a.svc.ArchiveExpired(ctx, now)
	if err != nil {
		if ctx.Err() == nil {
			utils.Sugar.Errorf("story archiver sweep failed: %v", err)
		}
		return 0
	}
	if n > 0 {
		utils.Sugar.Infof("story archiver archived %d stories", n)
		if a.OnArchived != nil {
			a.OnArchived(n)
		}
	}
	return n
}
