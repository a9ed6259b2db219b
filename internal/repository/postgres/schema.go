package postgres

// Schema applied at startup. Kept as idempotent statements so repeated
// boots are safe without an external migration tool.
const schema = `
CREATE TABLE IF NOT EXISTS periods (
	name       TEXT PRIMARY KEY,
	active     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS wallets (
	id         UUID PRIMARY KEY,
	student_id TEXT NOT NULL,
	period     TEXT NOT NULL,
	balance    BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
	locked     BIGINT NOT NULL DEFAULT 0 CHECK (locked >= 0),
	corrupt    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (student_id, period)
);

CREATE TABLE IF NOT EXISTS auctions (
	id             UUID PRIMARY KEY,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	creator_id     TEXT NOT NULL,
	group_id       TEXT NOT NULL DEFAULT '',
	period         TEXT NOT NULL,
	starting_price BIGINT NOT NULL DEFAULT 0,
	ends_at        TIMESTAMPTZ NOT NULL,
	state          TEXT NOT NULL DEFAULT 'open',
	close_reason   TEXT NOT NULL DEFAULT '',
	winning_bid_id UUID,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS bids (
	id         UUID PRIMARY KEY,
	auction_id UUID NOT NULL REFERENCES auctions(id),
	student_id TEXT NOT NULL,
	amount     BIGINT NOT NULL CHECK (amount > 0),
	placed_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (auction_id, student_id)
);

CREATE TABLE IF NOT EXISTS coin_transactions (
	id         UUID PRIMARY KEY,
	wallet_id  UUID NOT NULL REFERENCES wallets(id),
	kind       TEXT NOT NULL,
	amount     BIGINT NOT NULL,
	auction_id UUID,
	note       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_bids_auction ON bids (auction_id, amount DESC, placed_at ASC);
CREATE INDEX IF NOT EXISTS idx_tx_wallet ON coin_transactions (wallet_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_tx_wallet_auction ON coin_transactions (wallet_id, auction_id);
CREATE INDEX IF NOT EXISTS idx_auctions_due ON auctions (state, ends_at);
`
