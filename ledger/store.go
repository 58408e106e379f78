package ledger

import (
	"encoding/json"
	"sync"
	"time"

	sErrors "github.com/mlandesman/sams/errors"
	"github.com/mlandesman/sams/plaindb"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Store persists per-client transaction lists in a plaindb bucket.
// Bucket layout: one record per client ID holding that client's full
// transaction list.
type Store struct {
	mu      sync.Mutex
	bucket  plaindb.Bucket
	logger  *zap.Logger
	ids     IDGenerator
	updates map[string]uint64
}

// NewStore opens the transactions bucket
func NewStore(db plaindb.DB, logger *zap.Logger) (*Store, error) {
	bucket, err := db.Bucket("transactions", "1", &storeUpgrader{})
	return &Store{
		bucket:  bucket,
		logger:  logger,
		updates: make(map[string]uint64),
	}, err
}

// UpdateCount returns the number of completed writes for the client since
// this process started. Monotonically increasing; balance recompute
// triggering watches it.
func (s *Store) UpdateCount(clientID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates[clientID]
}

// AllTransactions returns every transaction for the client, in chronological
// order. This is the "unfiltered all" dataset advanced filters run over.
func (s *Store) AllTransactions(clientID string) ([]Transaction, error) {
	var txns []Transaction
	found, err := s.bucket.Get(clientID, &txns)
	if err != nil {
		return nil, err
	}
	if !found {
		return []Transaction{}, nil
	}
	return SortTransactions(txns), nil
}

// FetchTransactions returns the client's transactions whose normalized date
// falls within [start, end]. Transactions without a parseable date are
// excluded from date-bounded fetches.
func (s *Store) FetchTransactions(clientID string, start, end time.Time) ([]Transaction, error) {
	txns, err := s.AllTransactions(clientID)
	if err != nil {
		return nil, err
	}
	filtered := make([]Transaction, 0, len(txns))
	for _, txn := range txns {
		instant, ok := txn.Date.Instant()
		if !ok {
			continue
		}
		if instant.Before(start) || instant.After(end) {
			continue
		}
		filtered = append(filtered, txn)
	}
	return filtered, nil
}

// GetTransactionByID does a point lookup. Returns nil without error when the
// transaction does not exist; the caller decides how to surface that.
func (s *Store) GetTransactionByID(clientID, id string) (*Transaction, error) {
	txns, err := s.AllTransactions(clientID)
	if err != nil {
		return nil, err
	}
	for i := range txns {
		if txns[i].ID == id {
			return &txns[i], nil
		}
	}
	return nil, nil
}

// AddTransactions appends transactions to the client's ledger. Missing IDs
// are minted; duplicate IDs are rejected before anything is written.
func (s *Store) AddTransactions(clientID string, txns []Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.AllTransactions(clientID)
	if err != nil {
		return err
	}
	idSet := make(map[string]bool, len(existing)+len(txns))
	for _, txn := range existing {
		idSet[txn.ID] = true
	}
	var errs sErrors.Errors
	for i := range txns {
		if txns[i].ID == "" {
			instant, ok := txns[i].Date.Instant()
			if !ok {
				instant = time.Now()
			}
			txns[i].ID = s.ids.Next(instant)
		}
		if !errs.ErrIf(idSet[txns[i].ID], "Duplicate transaction ID found: '%s'", txns[i].ID) {
			idSet[txns[i].ID] = true
		}
	}
	if err := errs.ErrOrNil(); err != nil {
		return err
	}

	updated := SortTransactions(append(existing, txns...))
	s.logger.Info("Adding transactions",
		zap.String("clientID", clientID),
		zap.Int("count", len(txns)))
	if err := s.bucket.Put(clientID, updated); err != nil {
		return err
	}
	s.updates[clientID]++
	return nil
}

type storeUpgrader struct{}

func (u *storeUpgrader) Parse(dataVersion, id string, data json.RawMessage) (interface{}, error) {
	if dataVersion != "1" {
		return nil, errors.Errorf("Unknown transactions version: %s", dataVersion)
	}
	var txns []Transaction
	err := json.Unmarshal(data, &txns)
	return txns, err
}

func (u *storeUpgrader) Upgrade(dataVersion, id string, data interface{}) (string, interface{}, error) {
	return "", nil, errors.Errorf("Unknown transactions version: %s", dataVersion)
}
