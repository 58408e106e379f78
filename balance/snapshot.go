// Package balance computes authoritative account balances for a client from a
// fiscal year-end snapshot plus a replay of every transaction recorded since.
package balance

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/mlandesman/sams/plaindb"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Snapshot is a client's account balances as of the end of a fiscal year.
// Amounts are in major currency units.
type Snapshot struct {
	// Year is the calendar year the fiscal year begins in
	Year        int             `json:"year"`
	CashBalance decimal.Decimal `json:"cashBalance"`
	BankBalance decimal.Decimal `json:"bankBalance"`
	AsOf        time.Time       `json:"asOf,omitempty"`
}

// Store manages year-end balance snapshots, one list per client
type Store struct {
	bucket plaindb.Bucket
}

// NewStore opens the snapshot bucket
func NewStore(db plaindb.DB) (*Store, error) {
	bucket, err := db.Bucket("balances", "1", &snapshotUpgrader{})
	if err != nil {
		return nil, err
	}
	return &Store{bucket: bucket}, nil
}

// Get returns the client's snapshot for the given fiscal year
func (s *Store) Get(clientID string, year int) (Snapshot, bool, error) {
	var snapshots []Snapshot
	if _, err := s.bucket.Get(clientID, &snapshots); err != nil {
		return Snapshot{}, false, err
	}
	for _, snapshot := range snapshots {
		if snapshot.Year == year {
			return snapshot, true, nil
		}
	}
	return Snapshot{}, false, nil
}

// Latest returns the client's most recent snapshot
func (s *Store) Latest(clientID string) (Snapshot, bool, error) {
	var snapshots []Snapshot
	if _, err := s.bucket.Get(clientID, &snapshots); err != nil {
		return Snapshot{}, false, err
	}
	if len(snapshots) == 0 {
		return Snapshot{}, false, nil
	}
	latest := snapshots[0]
	for _, snapshot := range snapshots[1:] {
		if snapshot.Year > latest.Year {
			latest = snapshot
		}
	}
	return latest, true, nil
}

// Put adds or replaces the client's snapshot for its year
func (s *Store) Put(clientID string, snapshot Snapshot) error {
	var snapshots []Snapshot
	if _, err := s.bucket.Get(clientID, &snapshots); err != nil {
		return err
	}
	replaced := false
	for i := range snapshots {
		if snapshots[i].Year == snapshot.Year {
			snapshots[i] = snapshot
			replaced = true
			break
		}
	}
	if !replaced {
		snapshots = append(snapshots, snapshot)
	}
	sort.Slice(snapshots, func(a, b int) bool {
		return snapshots[a].Year < snapshots[b].Year
	})
	return s.bucket.Put(clientID, snapshots)
}

type snapshotUpgrader struct{}

func (u *snapshotUpgrader) Parse(dataVersion, id string, data json.RawMessage) (interface{}, error) {
	if dataVersion != "1" {
		return nil, errors.Errorf("Unknown balances version: %s", dataVersion)
	}
	var snapshots []Snapshot
	return snapshots, json.Unmarshal(data, &snapshots)
}

func (u *snapshotUpgrader) Upgrade(dataVersion, id string, data interface{}) (string, interface{}, error) {
	return "", nil, errors.Errorf("Unknown balances version: %s", dataVersion)
}
