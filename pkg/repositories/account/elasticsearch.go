package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/fadedpez/sentenza/pkg/entities"
)

// ElasticsearchConfig holds configuration for the ledger entry archive
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
	BatchSize   int // entries buffered before an automatic flush
}

// DefaultElasticsearchConfig returns a default archive configuration
func DefaultElasticsearchConfig() *ElasticsearchConfig {
	return &ElasticsearchConfig{
		URL:         "http://localhost:9200",
		IndexPrefix: "sentenza",
		BatchSize:   100,
	}
}

// ElasticsearchRepository decorates a base Repository, mirroring every
// committed ledger entry into a monthly Elasticsearch index for offline
// analytics. Account reads and writes pass straight through; the archive
// is best-effort and never blocks or fails a balance mutation.
type ElasticsearchRepository struct {
	baseRepo Repository
	client   *elasticsearch.Client
	config   *ElasticsearchConfig

	mu      sync.Mutex
	pending []*entities.LedgerEntry
}

// NewElasticsearchRepository creates a new archiving repository around a base
func NewElasticsearchRepository(baseRepo Repository, config *ElasticsearchConfig) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
	}
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	if config.IndexPrefix == "" {
		config.IndexPrefix = "sentenza"
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	return &ElasticsearchRepository{
		baseRepo: baseRepo,
		client:   client,
		config:   config,
	}, nil
}

// GetAccount retrieves an account by participant ID
func (r *ElasticsearchRepository) GetAccount(ctx context.Context, id string) (*entities.Account, error) {
	return r.baseRepo.GetAccount(ctx, id)
}

// SaveAccount creates or updates an account
func (r *ElasticsearchRepository) SaveAccount(ctx context.Context, account *entities.Account) error {
	return r.baseRepo.SaveAccount(ctx, account)
}

// AddEntry appends the audit record to the base repository, then queues
// it for the archive. The base append is authoritative; archive buffering
// happens only after it succeeds.
func (r *ElasticsearchRepository) AddEntry(ctx context.Context, entry *entities.LedgerEntry) error {
	if err := r.baseRepo.AddEntry(ctx, entry); err != nil {
		return err
	}

	entryCopy := *entry

	r.mu.Lock()
	r.pending = append(r.pending, &entryCopy)
	shouldFlush := len(r.pending) >= r.config.BatchSize
	r.mu.Unlock()

	if shouldFlush {
		// Archive errors are deliberately swallowed here; the scheduler
		// retries on its next flush tick.
		_ = r.Flush(ctx)
	}

	return nil
}

// GetEntries retrieves recent ledger entries for an account
func (r *ElasticsearchRepository) GetEntries(ctx context.Context, accountID string, limit int) ([]*entities.LedgerEntry, error) {
	return r.baseRepo.GetEntries(ctx, accountID, limit)
}

// entryDocument is the archive's wire shape; amounts stay decimal strings
type entryDocument struct {
	AccountID    string    `json:"account_id"`
	Currency     string    `json:"currency"`
	Delta        string    `json:"delta"`
	BalanceAfter string    `json:"balance_after"`
	OperationID  string    `json:"operation_id"`
	Description  string    `json:"description"`
	Timestamp    time.Time `json:"timestamp"`
}

// Flush bulk-indexes the buffered entries. Entries that fail to index go
// back on the buffer for the next attempt.
func (r *ElasticsearchRepository) Flush(ctx context.Context) error {
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	indexName := fmt.Sprintf("%s-ledger-%s", r.config.IndexPrefix, time.Now().Format("2006.01"))

	var buf bytes.Buffer
	for _, entry := range batch {
		meta := map[string]map[string]string{
			"index": {"_index": indexName, "_id": entry.ID},
		}
		metaLine, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("error encoding bulk metadata: %w", err)
		}

		doc := entryDocument{
			AccountID:    entry.AccountID,
			Currency:     string(entry.Currency),
			Delta:        entry.Delta.String(),
			BalanceAfter: entry.BalanceAfter.String(),
			OperationID:  entry.OperationID,
			Description:  entry.Description,
			Timestamp:    entry.Timestamp,
		}
		docLine, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("error encoding ledger entry document: %w", err)
		}

		buf.Write(metaLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	req := esapi.BulkRequest{Body: bytes.NewReader(buf.Bytes())}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		r.requeue(batch)
		return fmt.Errorf("error executing bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		r.requeue(batch)
		return fmt.Errorf("bulk request failed: %s", res.String())
	}

	return nil
}

func (r *ElasticsearchRepository) requeue(batch []*entities.LedgerEntry) {
	r.mu.Lock()
	r.pending = append(batch, r.pending...)
	r.mu.Unlock()
}
