package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	auction "educoin-engine/internal/auctionService"
	"educoin-engine/utils"
)

const sweepTimeout = 30 * time.Second

// Sweeper periodically settles auctions whose deadline has passed.
// Expiry is already enforced on every read and bid path; the sweeper
// guarantees escrow is returned even for auctions nobody touches.
type Sweeper struct {
	cron    *cron.Cron
	service *auction.AuctionService
}

func NewSweeper(service *auction.AuctionService) *Sweeper {
	return &Sweeper{
		cron:    cron.New(),
		service: service,
	}
}

// Start registers the sweep job and starts the scheduler
func (s *Sweeper) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, s.sweep)
	if err != nil {
		return err
	}
	s.cron.Start()
	utils.Info("expiry sweeper started", map[string]any{"schedule": schedule})
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	utils.Info("expiry sweeper stopped", nil)
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	settled, err := s.service.SweepExpired(ctx)
	if err != nil {
		utils.Error("expiry sweep failed", map[string]any{"error": err.Error()})
		return
	}
	if len(settled) > 0 {
		utils.Info("expiry sweep settled auctions", map[string]any{"count": len(settled)})
	}
}
