package game

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fadedpez/sentenza/pkg/entities"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// SQLite table schemas. Bet amounts are decimal strings for the same
// reason account balances are.
const (
	createGamesTableSQL = `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		host_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		result TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	createBetsTableSQL = `
	CREATE TABLE IF NOT EXISTS bets (
		id TEXT PRIMARY KEY,
		game_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		bettor_id TEXT NOT NULL,
		currency TEXT NOT NULL,
		amount TEXT NOT NULL,
		selection TEXT NOT NULL,
		placed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (game_id) REFERENCES games(id)
	)`

	createGameIndexesSQL = `
	CREATE INDEX IF NOT EXISTS idx_games_host_kind ON games(host_id, kind);
	CREATE INDEX IF NOT EXISTS idx_bets_game_id ON bets(game_id)
	`
)

const timestampFormat = "2006-01-02 15:04:05"

var timestampFormats = []string{
	timestampFormat,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-07:00",
	time.RFC3339,
}

func parseTimestamp(value string) (time.Time, error) {
	var parseErr error
	for _, format := range timestampFormats {
		t, err := time.Parse(format, value)
		if err == nil {
			return t, nil
		}
		parseErr = err
	}
	return time.Time{}, fmt.Errorf("error parsing timestamp '%s': %w", value, parseErr)
}

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	for _, schema := range []string{createGamesTableSQL, createBetsTableSQL, createGameIndexesSQL} {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("error creating game tables: %w", err)
		}
	}

	return &SQLiteRepository{db: db}, nil
}

// SaveGame creates or updates a game together with its bets. The game
// row and bet rows are written in one transaction so a reader never sees
// a game with half its bets.
func (r *SQLiteRepository) SaveGame(ctx context.Context, g *entities.Game) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var result interface{}
	if g.Result != nil {
		encoded, err := entities.EncodeOutcome(g.Result)
		if err != nil {
			return fmt.Errorf("error encoding game result: %w", err)
		}
		result = string(encoded)
	}

	gameQuery := `
		INSERT INTO games (id, host_id, kind, status, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			result = excluded.result
	`

	_, err = tx.ExecContext(ctx, gameQuery,
		g.ID,
		g.HostID,
		string(g.Kind),
		string(g.Status),
		result,
		g.CreatedAt.Format(timestampFormat),
	)
	if err != nil {
		return fmt.Errorf("error saving game: %w", err)
	}

	// Bets are rewritten wholesale; the position column preserves
	// placement order independent of timestamp granularity.
	if _, err := tx.ExecContext(ctx, `DELETE FROM bets WHERE game_id = ?`, g.ID); err != nil {
		return fmt.Errorf("error clearing bets: %w", err)
	}

	betQuery := `
		INSERT INTO bets (id, game_id, position, bettor_id, currency, amount, selection, placed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, b := range g.Bets {
		_, err := tx.ExecContext(ctx, betQuery,
			b.ID,
			g.ID,
			i,
			b.BettorID,
			string(b.Currency),
			b.Amount.String(),
			b.Selection,
			b.PlacedAt.Format(timestampFormat),
		)
		if err != nil {
			return fmt.Errorf("error saving bet: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing game save: %w", err)
	}

	return nil
}

// GetGame retrieves a game by ID
func (r *SQLiteRepository) GetGame(ctx context.Context, id string) (*entities.Game, error) {
	query := `SELECT id, host_id, kind, status, result, created_at FROM games WHERE id = ?`
	return r.queryGame(ctx, query, id)
}

// GetActiveGame retrieves the host's non-terminal game of a kind, if any
func (r *SQLiteRepository) GetActiveGame(ctx context.Context, hostID string, kind entities.GameKind) (*entities.Game, error) {
	query := `
		SELECT id, host_id, kind, status, result, created_at
		FROM games
		WHERE host_id = ? AND kind = ? AND status IN ('OPEN', 'CLOSED')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.queryGame(ctx, query, hostID, string(kind))
}

func (r *SQLiteRepository) queryGame(ctx context.Context, query string, args ...interface{}) (*entities.Game, error) {
	var (
		g         entities.Game
		kind      string
		status    string
		result    sql.NullString
		createdAt string
	)

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&g.ID,
		&g.HostID,
		&kind,
		&status,
		&result,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("error getting game: %w", err)
	}

	g.Kind = entities.GameKind(kind)
	g.Status = entities.GameStatus(status)

	if result.Valid && result.String != "" {
		outcome, err := entities.DecodeOutcome([]byte(result.String))
		if err != nil {
			return nil, fmt.Errorf("error decoding game result: %w", err)
		}
		g.Result = outcome
	}

	g.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}

	bets, err := r.loadBets(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	g.Bets = bets

	return &g, nil
}

func (r *SQLiteRepository) loadBets(ctx context.Context, gameID string) ([]*entities.Bet, error) {
	query := `
		SELECT id, game_id, bettor_id, currency, amount, selection, placed_at
		FROM bets
		WHERE game_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("error querying bets: %w", err)
	}
	defer rows.Close()

	bets := make([]*entities.Bet, 0)

	for rows.Next() {
		var (
			b        entities.Bet
			currency string
			amount   string
			placedAt string
		)

		err := rows.Scan(&b.ID, &b.GameID, &b.BettorID, &currency, &amount, &b.Selection, &placedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning bet row: %w", err)
		}

		b.Currency = entities.CurrencyCode(currency)

		b.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("error parsing bet amount '%s': %w", amount, err)
		}

		b.PlacedAt, err = parseTimestamp(placedAt)
		if err != nil {
			return nil, err
		}

		bets = append(bets, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bet rows: %w", err)
	}

	return bets, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
