package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine-level counters. Registered once on the default registry and
// exposed through /metrics.
var (
	BidsPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "educoin_bids_placed_total",
		Help: "Bid attempts by outcome (accepted, bid_too_low, insufficient_funds, auction_closed, error).",
	}, []string{"result"})

	AuctionsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "educoin_auctions_closed_total",
		Help: "Auctions closed by reason.",
	}, []string{"reason"})

	CoinsGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "educoin_coins_granted_total",
		Help: "Coins credited to wallets by teacher grants.",
	})

	SettlementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "educoin_settlement_duration_seconds",
		Help:    "Wall time of auction settlement runs.",
		Buckets: prometheus.DefBuckets,
	})

	ConflictRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "educoin_conflict_retries_total",
		Help: "Internal retries after losing an atomic race.",
	})
)
