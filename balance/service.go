package balance

import (
	"sync"
	"time"

	"github.com/mlandesman/sams/client"
	"github.com/mlandesman/sams/directory"
	"github.com/mlandesman/sams/fiscal"
	"github.com/mlandesman/sams/ledger"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	cacheExpiration = 5 * time.Minute
	cacheCleanup    = 10 * time.Minute
)

// Balances is the computed balance picture for a client. Amounts are in major
// currency units.
type Balances struct {
	CashBalance           decimal.Decimal `json:"cashBalance"`
	BankBalance           decimal.Decimal `json:"bankBalance"`
	TotalBalance          decimal.Decimal `json:"totalBalance"`
	ProcessedTransactions int             `json:"processedTransactions"`
	AsOf                  time.Time       `json:"asOf"`
}

// Service computes and caches client balances
type Service struct {
	snapshots *Store
	ledger    *ledger.Store
	directory *directory.Store
	clients   *client.Store
	logger    *zap.Logger
	cache     *gocache.Cache

	triggersMu sync.Mutex
	triggers   map[string]*Trigger

	// noBalanceFound latches after a failed recompute and clears on the next
	// successful one, or on an explicit refresh. The UI shows it as a
	// persistent warning, not a transient message.
	noBalanceFound atomic.Bool
}

// NewService assembles a balance service over the given stores
func NewService(
	snapshots *Store,
	ledgerStore *ledger.Store,
	directoryStore *directory.Store,
	clients *client.Store,
	logger *zap.Logger,
) *Service {
	return &Service{
		snapshots: snapshots,
		ledger:    ledgerStore,
		directory: directoryStore,
		clients:   clients,
		logger:    logger,
		cache:     gocache.New(cacheExpiration, cacheCleanup),
		triggers:  make(map[string]*Trigger),
	}
}

// ObserveUpdates feeds a client's ledger update counter to its recompute
// trigger. Each client gets its own trigger; baselines are established at 0
// because in-process counters always start there, so the very first write
// after boot recomputes.
func (s *Service) ObserveUpdates(clientID string, counter uint64) {
	s.triggersMu.Lock()
	trigger, ok := s.triggers[clientID]
	if !ok {
		trigger = NewTrigger(func() {
			if _, err := s.Balances(clientID, true); err != nil {
				s.logger.Error("Triggered balance recompute failed",
					zap.String("client", clientID), zap.Error(err))
			}
		}, s.logger)
		trigger.Observe(0)
		s.triggers[clientID] = trigger
	}
	s.triggersMu.Unlock()
	trigger.Observe(counter)
}

// NoBalanceFound reports whether the persistent missing-snapshot warning is set
func (s *Service) NoBalanceFound() bool {
	return s.noBalanceFound.Load()
}

// Balances returns the client's current balances, from cache when available.
// forceRefresh drops the cached value and clears the missing-snapshot warning
// before recomputing. Returns nil when the client has no snapshot to compute
// from.
func (s *Service) Balances(clientID string, forceRefresh bool) (*Balances, error) {
	if forceRefresh {
		s.cache.Delete(clientID)
		s.noBalanceFound.Store(false)
	} else if cached, found := s.cache.Get(clientID); found {
		balances := cached.(Balances)
		return &balances, nil
	}

	snapshot, found, err := s.snapshots.Latest(clientID)
	if err != nil {
		return nil, err
	}
	if !found {
		s.noBalanceFound.Store(true)
		s.logger.Warn("No balance snapshot found", zap.String("client", clientID))
		return nil, nil
	}
	balances, err := s.Recalculate(clientID, snapshot.Year)
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// Recalculate replays every transaction recorded after the named fiscal
// year's snapshot and returns the resulting balances. Successful recomputes
// refresh the cache and clear the missing-snapshot warning; a missing snapshot
// latches it.
func (s *Service) Recalculate(clientID string, snapshotYear int) (*Balances, error) {
	snapshot, found, err := s.snapshots.Get(clientID, snapshotYear)
	if err != nil {
		return nil, err
	}
	if !found {
		s.noBalanceFound.Store(true)
		return nil, errors.Errorf("No balance snapshot found for client %q year %d", clientID, snapshotYear)
	}

	config := s.fiscalConfig(clientID)
	replayRange := fiscal.Resolve(fiscal.TokenAll, config, s.logger)
	replayStart := fiscal.YearStart(snapshotYear+1, config)

	txns, err := s.ledger.FetchTransactions(clientID, replayStart, replayRange.End)
	if err != nil {
		return nil, err
	}

	cash, bank := snapshot.CashBalance, snapshot.BankBalance
	for _, txn := range txns {
		for _, line := range lines(txn) {
			accountType, err := s.directory.AccountType(clientID, line.accountName)
			if err != nil {
				return nil, err
			}
			if accountType == "cash" {
				cash = cash.Add(line.amount)
			} else {
				bank = bank.Add(line.amount)
			}
		}
	}

	balances := Balances{
		CashBalance:           cash,
		BankBalance:           bank,
		TotalBalance:          cash.Add(bank),
		ProcessedTransactions: len(txns),
		AsOf:                  time.Now(),
	}
	s.cache.Set(clientID, balances, gocache.DefaultExpiration)
	s.noBalanceFound.Store(false)
	s.logger.Info("Recalculated balances",
		zap.String("client", clientID),
		zap.Int("snapshotYear", snapshotYear),
		zap.Int("processed", balances.ProcessedTransactions),
	)
	return &balances, nil
}

type balanceLine struct {
	accountName string
	amount      decimal.Decimal
}

// lines expands a transaction into the account movements to replay. Split
// transactions move money per allocation; the transaction-level amount is
// ignored for splits to avoid double counting.
func lines(txn ledger.Transaction) []balanceLine {
	if !txn.IsSplit() {
		return []balanceLine{{
			accountName: txn.AccountName,
			amount:      decimal.New(txn.Amount, -2),
		}}
	}
	result := make([]balanceLine, 0, len(txn.Allocations))
	for _, allocation := range txn.Allocations {
		accountName := allocation.AccountName
		if accountName == "" {
			accountName = txn.AccountName
		}
		result = append(result, balanceLine{
			accountName: accountName,
			amount:      decimal.New(allocation.Amount, -2),
		})
	}
	return result
}

func (s *Service) fiscalConfig(clientID string) fiscal.Config {
	c, found, err := s.clients.Get(clientID)
	if err != nil || !found {
		return fiscal.Config{}
	}
	return c.Fiscal()
}

// Format renders an amount with the client's currency symbol, for logs and
// plain-text output
func Format(amount decimal.Decimal, currencyCode string) string {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.MXN
	}
	printer := message.NewPrinter(language.English)
	value, _ := amount.Float64()
	return printer.Sprint(currency.Symbol(unit.Amount(value)))
}
