// Command demo seeds a data directory with plausible HOA accounting data:
// two clients, their reference lists, a balance snapshot, and a few years of
// procedurally generated transactions.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mlandesman/sams/balance"
	"github.com/mlandesman/sams/client"
	"github.com/mlandesman/sams/directory"
	"github.com/mlandesman/sams/ledger"
	"github.com/mlandesman/sams/plaindb"
	"github.com/mlandesman/sams/vcs"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	dataDir := flag.String("data", "./data", "Data directory to seed")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := seed(*dataDir, logger); err != nil {
		logger.Error("Seeding failed", zap.Error(err))
		os.Exit(1)
	}
}

func seed(dataDir string, logger *zap.Logger) error {
	db, err := plaindb.Open(dataDir, plaindb.VersionControl(vcs.Author{Name: "SAMS Demo"}, nil))
	if err != nil {
		return err
	}
	defer db.Close()

	clients, err := client.NewStore(db)
	if err != nil {
		return err
	}
	ledgerStore, err := ledger.NewStore(db, logger)
	if err != nil {
		return err
	}
	directoryStore, err := directory.NewStore(db)
	if err != nil {
		return err
	}
	snapshots, err := balance.NewStore(db)
	if err != nil {
		return err
	}

	for _, c := range demoClients {
		if err := clients.Put(c); err != nil {
			return err
		}
		if err := directoryStore.PutVendors(c.ID, demoVendors); err != nil {
			return err
		}
		if err := directoryStore.PutCategories(c.ID, demoCategories); err != nil {
			return err
		}
		if err := directoryStore.PutUnits(c.ID, demoUnits[c.ID]); err != nil {
			return err
		}
		if err := directoryStore.PutAccounts(c.ID, demoAccounts); err != nil {
			return err
		}
		if err := snapshots.Put(c.ID, balance.Snapshot{
			Year:        2023,
			CashBalance: decimal.NewFromInt(5000),
			BankBalance: decimal.NewFromInt(250000),
		}); err != nil {
			return err
		}

		txns := generateTransactions(c)
		if err := ledgerStore.AddTransactions(c.ID, txns); err != nil {
			return err
		}
		logger.Info("Seeded client", zap.String("client", c.ID), zap.Int("transactions", len(txns)))

		service := balance.NewService(snapshots, ledgerStore, directoryStore, clients, logger)
		balances, err := service.Recalculate(c.ID, 2023)
		if err != nil {
			return err
		}
		fmt.Printf("%s: cash %s, bank %s, total %s (%d transactions replayed)\n",
			c.ID,
			balance.Format(balances.CashBalance, c.Configuration.Currency),
			balance.Format(balances.BankBalance, c.Configuration.Currency),
			balance.Format(balances.TotalBalance, c.Configuration.Currency),
			balances.ProcessedTransactions,
		)
	}
	return nil
}
