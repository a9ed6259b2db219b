package helpers

// Request/Response DTOs
type CreateAuctionRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	GroupID       string `json:"group_id"`
	StartingPrice int64  `json:"starting_price" binding:"gte=0"`
	EndsAt        string `json:"ends_at" binding:"required"`
}

type PlaceBidRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type GrantCoinsRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Note   string `json:"note"`
}

type RolloverRequest struct {
	Period string `json:"period" binding:"required"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	StudentID string `json:"student_id"`
	Amount    int64  `json:"amount"`
	PlacedAt  string `json:"placed_at"`
}

type WalletResponse struct {
	Balance   int64 `json:"balance"`
	Locked    int64 `json:"locked"`
	Available int64 `json:"available"`
}

type AuctionResponse struct {
	AuctionID     string        `json:"auction_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	CreatorID     string        `json:"creator_id"`
	GroupID       string        `json:"group_id"`
	Period        string        `json:"period"`
	StartingPrice int64         `json:"starting_price"`
	EndsAt        string        `json:"ends_at"`
	State         string        `json:"state"`
	CloseReason   string        `json:"close_reason,omitempty"`
	Bids          []BidResponse `json:"bids,omitempty"`
	WinningBid    *BidResponse  `json:"winning_bid,omitempty"`
	CreatedAt     string        `json:"created_at"`
}

type SettlementResponse struct {
	AuctionID string `json:"auction_id"`
	Reason    string `json:"reason"`
	Winner    string `json:"winner,omitempty"`
	Amount    int64  `json:"amount,omitempty"`
	Released  int    `json:"released"`
	ClosedAt  string `json:"closed_at"`
}
