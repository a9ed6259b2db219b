package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"educoin-engine/internal/educoinerrors"
	model "educoin-engine/internal/models"
	"educoin-engine/internal/repository"
	"educoin-engine/utils"
)

var _ repository.Store = (*Postgres)(nil)

// Postgres is the durable implementation of repository.Store. Every
// operation is one database transaction; wallet and auction rows are
// taken FOR UPDATE so the (balance, locked) pair and the auction state
// are never written against a stale read.
type Postgres struct {
	pool         *pgxpool.Pool
	minIncrement int64
}

// NewPostgres creates the store on an existing connection pool
func NewPostgres(pool *pgxpool.Pool, minIncrement int64) *Postgres {
	if minIncrement < 1 {
		minIncrement = 1
	}
	return &Postgres{pool: pool, minIncrement: minIncrement}
}

// NewPool connects a pgx pool and verifies the database is reachable
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// EnsureSchema applies the schema and seeds the active period when the
// database has none yet.
func (p *Postgres) EnsureSchema(ctx context.Context, seedPeriod string) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO periods(name, active)
		SELECT $1, TRUE
		WHERE NOT EXISTS (SELECT 1 FROM periods WHERE active)`, seedPeriod)
	if err != nil {
		return fmt.Errorf("seed active period: %w", err)
	}
	return nil
}

// wrapErr maps driver-level failures onto the engine taxonomy.
// Serialization and deadlock aborts, and unique-key races, surface as
// retryable conflicts.
func wrapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return fmt.Errorf("%v: %w", err, educoinerrors.ErrConflict)
		}
	}
	return err
}

func nullableAuction(auctionID string) any {
	if auctionID == "" {
		return nil
	}
	return auctionID
}

// insertTx appends one ledger row inside the caller's transaction
func insertTx(ctx context.Context, tx pgx.Tx, walletID string, kind model.TransactionKind, amount int64, auctionID, note string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO coin_transactions(id, wallet_id, kind, amount, auction_id, note)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		utils.GenerateID(), walletID, string(kind), amount, nullableAuction(auctionID), note)
	return err
}

// walletForUpdate locks and returns the wallet row, creating it at
// zero on first access.
func walletForUpdate(ctx context.Context, tx pgx.Tx, studentID, period string) (model.Wallet, error) {
	var w model.Wallet
	err := tx.QueryRow(ctx, `
		SELECT id, student_id, period, balance, locked, corrupt, created_at
		FROM wallets WHERE student_id=$1 AND period=$2 FOR UPDATE`,
		studentID, period).Scan(&w.WalletID, &w.StudentID, &w.Period, &w.Balance, &w.Locked, &w.Corrupt, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		w = model.Wallet{WalletID: utils.GenerateID(), StudentID: studentID, Period: period}
		err = tx.QueryRow(ctx, `
			INSERT INTO wallets(id, student_id, period) VALUES ($1, $2, $3)
			RETURNING created_at`, w.WalletID, studentID, period).Scan(&w.CreatedAt)
	}
	if err != nil {
		return model.Wallet{}, wrapErr(err)
	}
	return w, nil
}

// guardWallet enforces the 0 <= locked <= balance invariant; a
// violation flags the row corrupt and halts writes to it.
func guardWallet(ctx context.Context, tx pgx.Tx, w model.Wallet) error {
	if w.Corrupt {
		return fmt.Errorf("wallet %s: %w", w.WalletID, educoinerrors.ErrWalletCorrupt)
	}
	if w.Locked < 0 || w.Locked > w.Balance {
		if _, err := tx.Exec(ctx, `UPDATE wallets SET corrupt=TRUE WHERE id=$1`, w.WalletID); err != nil {
			return wrapErr(err)
		}
		utils.Error("wallet invariant violated, halting writes", map[string]any{
			"wallet_id": w.WalletID,
			"balance":   w.Balance,
			"locked":    w.Locked,
		})
		return fmt.Errorf("wallet %s: %w", w.WalletID, educoinerrors.ErrWalletCorrupt)
	}
	return nil
}

// GetOrCreateWallet returns the student's wallet for the period
func (p *Postgres) GetOrCreateWallet(ctx context.Context, studentID, period string) (model.Wallet, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return model.Wallet{}, wrapErr(err)
	}
	defer tx.Rollback(ctx)

	w, err := walletForUpdate(ctx, tx, studentID, period)
	if err != nil {
		return model.Wallet{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Wallet{}, wrapErr(err)
	}
	return w, nil
}

// GrantCoins credits a teacher coin award and records it on the ledger
// in the same transaction.
func (p *Postgres) GrantCoins(ctx context.Context, studentID, period string, amount int64, note string) (model.Wallet, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return model.Wallet{}, wrapErr(err)
	}
	defer tx.Rollback(ctx)

	w, err := walletForUpdate(ctx, tx, studentID, period)
	if err != nil {
		return model.Wallet{}, err
	}
	if err := guardWallet(ctx, tx, w); err != nil {
		tx.Commit(ctx) // keep the corrupt flag
		return model.Wallet{}, err
	}
	w.Balance += amount
	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance=$1 WHERE id=$2`, w.Balance, w.WalletID); err != nil {
		return model.Wallet{}, wrapErr(err)
	}
	if err := insertTx(ctx, tx, w.WalletID, model.TxGrant, amount, "", note); err != nil {
		return model.Wallet{}, wrapErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Wallet{}, wrapErr(err)
	}
	return w, nil
}

// WalletHistory returns the wallet's ledger entries, newest first
func (p *Postgres) WalletHistory(ctx context.Context, studentID, period string) ([]model.Transaction, error) {
	var walletID string
	err := p.pool.QueryRow(ctx, `SELECT id FROM wallets WHERE student_id=$1 AND period=$2`,
		studentID, period).Scan(&walletID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("wallet for student %s in period %s: %w", studentID, period, educoinerrors.ErrWalletNotFound)
	}
	if err != nil {
		return nil, wrapErr(err)
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, wallet_id, kind, amount, COALESCE(auction_id::text, ''), note, created_at
		FROM coin_transactions WHERE wallet_id=$1 ORDER BY created_at DESC, id DESC`, walletID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var kind string
		if err := rows.Scan(&t.TxID, &t.WalletID, &kind, &t.Amount, &t.AuctionID, &t.Note, &t.CreatedAt); err != nil {
			return nil, wrapErr(err)
		}
		t.Kind = model.TransactionKind(kind)
		out = append(out, t)
	}
	return out, rows.Err()
}

// SumTransactions sums ledger entries of one kind for a wallet
func (p *Postgres) SumTransactions(ctx context.Context, walletID string, kind model.TransactionKind) (int64, error) {
	var sum int64
	err := p.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM coin_transactions
		WHERE wallet_id=$1 AND ($2 = '' OR kind=$2)`, walletID, string(kind)).Scan(&sum)
	if err != nil {
		return 0, wrapErr(err)
	}
	return sum, nil
}

func scanAuction(row pgx.Row) (model.Auction, error) {
	var a model.Auction
	var state, reason, winning string
	err := row.Scan(&a.AuctionID, &a.Title, &a.Description, &a.CreatorID, &a.GroupID, &a.Period,
		&a.StartingPrice, &a.EndsAt, &state, &reason, &winning, &a.CreatedAt)
	if err != nil {
		return model.Auction{}, err
	}
	a.State = model.AuctionState(state)
	a.CloseReason = model.CloseReason(reason)
	a.WinningBidID = winning
	return a, nil
}

const auctionColumns = `id, title, description, creator_id, group_id, period, starting_price,
	ends_at, state, close_reason, COALESCE(winning_bid_id::text, ''), created_at`

// CreateAuction stores a new open auction
func (p *Postgres) CreateAuction(ctx context.Context, a model.Auction) (model.Auction, error) {
	a.AuctionID = utils.GenerateID()
	a.State = model.AuctionOpen
	a.CloseReason = model.CloseReasonNone
	err := p.pool.QueryRow(ctx, `
		INSERT INTO auctions(id, title, description, creator_id, group_id, period, starting_price, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		a.AuctionID, a.Title, a.Description, a.CreatorID, a.GroupID, a.Period, a.StartingPrice, a.EndsAt,
	).Scan(&a.CreatedAt)
	if err != nil {
		return model.Auction{}, wrapErr(err)
	}
	return a, nil
}

func auctionBids(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, auctionID string) ([]model.Bid, error) {
	rows, err := q.Query(ctx, `
		SELECT id, auction_id, student_id, amount, placed_at
		FROM bids WHERE auction_id=$1
		ORDER BY amount DESC, placed_at ASC, id ASC`, auctionID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.BidID, &b.AuctionID, &b.StudentID, &b.Amount, &b.PlacedAt); err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetAuction returns the auction and its bids ordered highest-first.
// A due auction is expired and settled as part of the read.
func (p *Postgres) GetAuction(ctx context.Context, auctionID string) (model.Auction, []model.Bid, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return model.Auction{}, nil, wrapErr(err)
	}
	defer tx.Rollback(ctx)

	a, err := scanAuction(tx.QueryRow(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id=$1 FOR UPDATE`, auctionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Auction{}, nil, fmt.Errorf("auction %s: %w", auctionID, educoinerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, nil, wrapErr(err)
	}

	if a.State == model.AuctionOpen && !a.EndsAt.After(time.Now()) {
		if _, err := settleTx(ctx, tx, &a, model.CloseReasonExpired); err != nil {
			return model.Auction{}, nil, err
		}
	}

	bids, err := auctionBids(ctx, tx, auctionID)
	if err != nil {
		return model.Auction{}, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Auction{}, nil, wrapErr(err)
	}
	return a, bids, nil
}

// ListAuctions returns auctions, newest first, optionally filtered by
// period. Due auctions are expired first so the listing never shows a
// stale open state.
func (p *Postgres) ListAuctions(ctx context.Context, period string) ([]model.Auction, error) {
	if _, err := p.ExpireDueAuctions(ctx); err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, `
		SELECT `+auctionColumns+` FROM auctions
		WHERE $1 = '' OR period = $1
		ORDER BY created_at DESC`, period)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []model.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// PlaceBid records or raises a student's live bid in one transaction:
// auction row locked, legality checked, the wallet's lock delta and
// the bid upsert committed together with their ledger rows.
func (p *Postgres) PlaceBid(ctx context.Context, auctionID, studentID string, amount int64) (model.Bid, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return model.Bid{}, wrapErr(err)
	}
	defer tx.Rollback(ctx)

	a, err := scanAuction(tx.QueryRow(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id=$1 FOR UPDATE`, auctionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("auction %s: %w", auctionID, educoinerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Bid{}, wrapErr(err)
	}

	if a.State == model.AuctionOpen && !a.EndsAt.After(time.Now()) {
		// Deadline passed: this observation performs the close, then
		// the bid is rejected against the now-terminal state.
		if _, err := settleTx(ctx, tx, &a, model.CloseReasonExpired); err != nil {
			return model.Bid{}, err
		}
		if err := tx.Commit(ctx); err != nil {
			return model.Bid{}, wrapErr(err)
		}
		return model.Bid{}, fmt.Errorf("auction %s: %w", auctionID, educoinerrors.ErrAuctionClosed)
	}
	if a.State != model.AuctionOpen {
		return model.Bid{}, fmt.Errorf("auction %s: %w", auctionID, educoinerrors.ErrAuctionClosed)
	}

	floor := a.StartingPrice
	var highest *int64
	if err := tx.QueryRow(ctx, `SELECT MAX(amount) FROM bids WHERE auction_id=$1`, auctionID).Scan(&highest); err != nil {
		return model.Bid{}, wrapErr(err)
	}
	if highest != nil && *highest > floor {
		floor = *highest
	}
	if amount < floor+p.minIncrement {
		return model.Bid{}, fmt.Errorf("minimum bid is %d, got %d: %w", floor+p.minIncrement, amount, educoinerrors.ErrBidTooLow)
	}

	w, err := walletForUpdate(ctx, tx, studentID, a.Period)
	if err != nil {
		return model.Bid{}, err
	}
	if err := guardWallet(ctx, tx, w); err != nil {
		tx.Commit(ctx) // keep the corrupt flag
		return model.Bid{}, err
	}

	var bid model.Bid
	err = tx.QueryRow(ctx, `
		SELECT id, auction_id, student_id, amount, placed_at
		FROM bids WHERE auction_id=$1 AND student_id=$2 FOR UPDATE`,
		auctionID, studentID).Scan(&bid.BidID, &bid.AuctionID, &bid.StudentID, &bid.Amount, &bid.PlacedAt)
	switch {
	case err == nil:
		// Raise: only the net delta is drawn from the available balance.
		if amount > w.Balance-w.Locked+bid.Amount {
			return model.Bid{}, fmt.Errorf("need %d more, available %d: %w",
				amount-bid.Amount, w.Balance-w.Locked, educoinerrors.ErrInsufficientFunds)
		}
		if _, err := tx.Exec(ctx, `UPDATE wallets SET locked = locked - $1 + $2 WHERE id=$3`,
			bid.Amount, amount, w.WalletID); err != nil {
			return model.Bid{}, wrapErr(err)
		}
		if err := insertTx(ctx, tx, w.WalletID, model.TxRelease, bid.Amount, auctionID, ""); err != nil {
			return model.Bid{}, wrapErr(err)
		}
		if err := insertTx(ctx, tx, w.WalletID, model.TxLock, amount, auctionID, ""); err != nil {
			return model.Bid{}, wrapErr(err)
		}
		if _, err := tx.Exec(ctx, `UPDATE bids SET amount=$1 WHERE id=$2`, amount, bid.BidID); err != nil {
			return model.Bid{}, wrapErr(err)
		}
		bid.Amount = amount
	case errors.Is(err, pgx.ErrNoRows):
		if amount > w.Balance-w.Locked {
			return model.Bid{}, fmt.Errorf("need %d, available %d: %w",
				amount, w.Balance-w.Locked, educoinerrors.ErrInsufficientFunds)
		}
		if _, err := tx.Exec(ctx, `UPDATE wallets SET locked = locked + $1 WHERE id=$2`,
			amount, w.WalletID); err != nil {
			return model.Bid{}, wrapErr(err)
		}
		if err := insertTx(ctx, tx, w.WalletID, model.TxLock, amount, auctionID, ""); err != nil {
			return model.Bid{}, wrapErr(err)
		}
		bid = model.Bid{BidID: utils.GenerateID(), AuctionID: auctionID, StudentID: studentID, Amount: amount}
		if err := tx.QueryRow(ctx, `
			INSERT INTO bids(id, auction_id, student_id, amount) VALUES ($1, $2, $3, $4)
			RETURNING placed_at`, bid.BidID, auctionID, studentID, amount).Scan(&bid.PlacedAt); err != nil {
			return model.Bid{}, wrapErr(err)
		}
	default:
		return model.Bid{}, wrapErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Bid{}, wrapErr(err)
	}
	return bid, nil
}

// settleTx runs the close transition and settlement inside the
// caller's transaction. The compare-and-set on the state column is the
// exactly-once guard; the wallet steps are keyed off the ledger so a
// replay after a partial commit skips what already happened.
func settleTx(ctx context.Context, tx pgx.Tx, a *model.Auction, reason model.CloseReason) (model.Settlement, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE auctions SET state=$1, close_reason=$2
		WHERE id=$3 AND state=$4`,
		string(model.AuctionClosed), string(reason), a.AuctionID, string(model.AuctionOpen))
	if err != nil {
		return model.Settlement{}, wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return model.Settlement{}, fmt.Errorf("auction %s: %w", a.AuctionID, educoinerrors.ErrAuctionClosed)
	}
	a.State = model.AuctionClosed
	a.CloseReason = reason

	settlement := model.Settlement{AuctionID: a.AuctionID, Reason: reason, ClosedAt: time.Now().UTC()}

	bids, err := auctionBids(ctx, tx, a.AuctionID)
	if err != nil {
		return model.Settlement{}, err
	}
	if len(bids) == 0 {
		return settlement, nil
	}

	winner := bids[0]
	settlement.Winner = &winner
	a.WinningBidID = winner.BidID
	if _, err := tx.Exec(ctx, `UPDATE auctions SET winning_bid_id=$1 WHERE id=$2`,
		winner.BidID, a.AuctionID); err != nil {
		return model.Settlement{}, wrapErr(err)
	}

	w, err := walletForUpdate(ctx, tx, winner.StudentID, a.Period)
	if err != nil {
		return model.Settlement{}, err
	}
	var spent bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM coin_transactions
		WHERE wallet_id=$1 AND auction_id=$2 AND kind=$3)`,
		w.WalletID, a.AuctionID, string(model.TxSpend)).Scan(&spent); err != nil {
		return model.Settlement{}, wrapErr(err)
	}
	if !spent {
		if winner.Amount > w.Locked {
			utils.Error("settlement could not debit winner", map[string]any{
				"auction_id": a.AuctionID,
				"wallet_id":  w.WalletID,
				"amount":     winner.Amount,
				"locked":     w.Locked,
			})
		} else {
			if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = balance - $1, locked = locked - $1 WHERE id=$2`,
				winner.Amount, w.WalletID); err != nil {
				return model.Settlement{}, wrapErr(err)
			}
			if err := insertTx(ctx, tx, w.WalletID, model.TxSpend, winner.Amount, a.AuctionID, ""); err != nil {
				return model.Settlement{}, wrapErr(err)
			}
		}
	}

	for _, b := range bids[1:] {
		lw, err := walletForUpdate(ctx, tx, b.StudentID, a.Period)
		if err != nil {
			return model.Settlement{}, err
		}
		var outstanding int64
		if err := tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(CASE WHEN kind=$3 THEN amount ELSE -amount END), 0)
			FROM coin_transactions
			WHERE wallet_id=$1 AND auction_id=$2 AND kind IN ($3, $4, $5)`,
			lw.WalletID, a.AuctionID,
			string(model.TxLock), string(model.TxRelease), string(model.TxSpend)).Scan(&outstanding); err != nil {
			return model.Settlement{}, wrapErr(err)
		}
		if outstanding <= 0 {
			continue
		}
		if outstanding > lw.Locked {
			outstanding = lw.Locked
		}
		if _, err := tx.Exec(ctx, `UPDATE wallets SET locked = locked - $1 WHERE id=$2`,
			outstanding, lw.WalletID); err != nil {
			return model.Settlement{}, wrapErr(err)
		}
		if err := insertTx(ctx, tx, lw.WalletID, model.TxRelease, outstanding, a.AuctionID, ""); err != nil {
			return model.Settlement{}, wrapErr(err)
		}
		settlement.Released++
	}
	return settlement, nil
}

// CloseAuction applies the terminal transition; past-deadline closes
// record the expired reason.
func (p *Postgres) CloseAuction(ctx context.Context, auctionID string) (model.Settlement, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return model.Settlement{}, wrapErr(err)
	}
	defer tx.Rollback(ctx)

	a, err := scanAuction(tx.QueryRow(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id=$1 FOR UPDATE`, auctionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Settlement{}, fmt.Errorf("auction %s: %w", auctionID, educoinerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Settlement{}, wrapErr(err)
	}
	if a.State != model.AuctionOpen {
		return model.Settlement{}, fmt.Errorf("auction %s: %w", auctionID, educoinerrors.ErrAuctionClosed)
	}

	reason := model.CloseReasonManual
	if !a.EndsAt.After(time.Now()) {
		reason = model.CloseReasonExpired
	}
	settlement, err := settleTx(ctx, tx, &a, reason)
	if err != nil {
		return model.Settlement{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Settlement{}, wrapErr(err)
	}
	return settlement, nil
}

// ExpireDueAuctions force-closes every open auction past its deadline.
// Each auction settles in its own transaction; one that loses the race
// to a concurrent closer is skipped.
func (p *Postgres) ExpireDueAuctions(ctx context.Context) ([]model.Settlement, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id FROM auctions WHERE state=$1 AND ends_at <= NOW()`, string(model.AuctionOpen))
	if err != nil {
		return nil, wrapErr(err)
	}
	var due []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, wrapErr(err)
		}
		due = append(due, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err)
	}

	var settled []model.Settlement
	for _, id := range due {
		s, err := p.CloseAuction(ctx, id)
		if errors.Is(err, educoinerrors.ErrAuctionClosed) {
			continue
		}
		if err != nil {
			return settled, err
		}
		settled = append(settled, s)
	}
	return settled, nil
}

// ActivePeriod returns the currently active academic period
func (p *Postgres) ActivePeriod(ctx context.Context) (string, error) {
	var name string
	err := p.pool.QueryRow(ctx, `SELECT name FROM periods WHERE active LIMIT 1`).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("no active period configured: %w", educoinerrors.ErrInvalidInput)
	}
	if err != nil {
		return "", wrapErr(err)
	}
	return name, nil
}

// RolloverPeriod settles every open auction of the active period, then
// resets its wallets to zero with reset ledger entries, and activates
// the new period.
func (p *Postgres) RolloverPeriod(ctx context.Context, newPeriod string) (model.RolloverSummary, error) {
	oldPeriod, err := p.ActivePeriod(ctx)
	if err != nil {
		return model.RolloverSummary{}, err
	}
	if newPeriod == oldPeriod {
		return model.RolloverSummary{}, fmt.Errorf("period %s is already active: %w", newPeriod, educoinerrors.ErrInvalidInput)
	}

	summary := model.RolloverSummary{Period: newPeriod}

	rows, err := p.pool.Query(ctx, `SELECT id FROM auctions WHERE period=$1 AND state=$2`,
		oldPeriod, string(model.AuctionOpen))
	if err != nil {
		return model.RolloverSummary{}, wrapErr(err)
	}
	var open []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return model.RolloverSummary{}, wrapErr(err)
		}
		open = append(open, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return model.RolloverSummary{}, wrapErr(err)
	}
	for _, id := range open {
		if _, err := p.CloseAuction(ctx, id); err != nil && !errors.Is(err, educoinerrors.ErrAuctionClosed) {
			return model.RolloverSummary{}, err
		}
		summary.ClosedAuctions++
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return model.RolloverSummary{}, wrapErr(err)
	}
	defer tx.Rollback(ctx)

	wrows, err := tx.Query(ctx, `
		SELECT id, balance FROM wallets
		WHERE period=$1 AND (balance <> 0 OR locked <> 0 OR corrupt) FOR UPDATE`, oldPeriod)
	if err != nil {
		return model.RolloverSummary{}, wrapErr(err)
	}
	type resetRow struct {
		id      string
		balance int64
	}
	var resets []resetRow
	for wrows.Next() {
		var rr resetRow
		if err := wrows.Scan(&rr.id, &rr.balance); err != nil {
			wrows.Close()
			return model.RolloverSummary{}, wrapErr(err)
		}
		resets = append(resets, rr)
	}
	wrows.Close()
	if err := wrows.Err(); err != nil {
		return model.RolloverSummary{}, wrapErr(err)
	}

	for _, rr := range resets {
		if err := insertTx(ctx, tx, rr.id, model.TxReset, rr.balance, "", "period rollover to "+newPeriod); err != nil {
			return model.RolloverSummary{}, wrapErr(err)
		}
	}
	if _, err := tx.Exec(ctx, `
		UPDATE wallets SET balance=0, locked=0, corrupt=FALSE
		WHERE period=$1 AND (balance <> 0 OR locked <> 0 OR corrupt)`, oldPeriod); err != nil {
		return model.RolloverSummary{}, wrapErr(err)
	}
	summary.ResetWallets = len(resets)

	if _, err := tx.Exec(ctx, `UPDATE periods SET active=FALSE WHERE name=$1`, oldPeriod); err != nil {
		return model.RolloverSummary{}, wrapErr(err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO periods(name, active) VALUES ($1, TRUE)
		ON CONFLICT (name) DO UPDATE SET active=TRUE`, newPeriod); err != nil {
		return model.RolloverSummary{}, wrapErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.RolloverSummary{}, wrapErr(err)
	}
	return summary, nil
}
