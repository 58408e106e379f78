package main

import (
	"fmt"
	"time"

	"github.com/mlandesman/sams/client"
	"github.com/mlandesman/sams/directory"
	"github.com/mlandesman/sams/ledger"
	"golang.org/x/exp/rand"
)

var demoClients = []client.Client{
	{
		ID:   "MTC",
		Name: "Marina Turquesa Condominiums",
		Configuration: client.Configuration{
			FiscalYearStartMonth: 7,
			Timezone:             "America/Cancun",
			Currency:             "MXN",
		},
	},
	{
		ID:   "AVII",
		Name: "Aventuras Villas II",
		Configuration: client.Configuration{
			FiscalYearStartMonth: 1,
			Timezone:             "America/Cancun",
			Currency:             "MXN",
		},
	},
}

var demoVendors = []directory.Vendor{
	{ID: "v1", Name: "CFE"},
	{ID: "v2", Name: "Aguakan"},
	{ID: "v3", Name: "Caribbean Pool Care"},
	{ID: "v4", Name: "Jardines del Sol"},
	{ID: "v5", Name: "Elevadores Schindler"},
	{ID: "v6", Name: "Seguros Monterrey"},
	{ID: "v7", Name: "Ferreteria La Playa"},
}

var demoCategories = []directory.Category{
	{ID: "c1", Name: "Electricity", Type: "expense"},
	{ID: "c2", Name: "Water", Type: "expense"},
	{ID: "c3", Name: "Pool Maintenance", Type: "expense"},
	{ID: "c4", Name: "Landscaping", Type: "expense"},
	{ID: "c5", Name: "Insurance", Type: "expense"},
	{ID: "c6", Name: "Repairs", Type: "expense"},
	{ID: "c7", Name: "HOA Dues", Type: "income"},
	{ID: "c8", Name: "Special Assessment", Type: "income"},
}

var demoUnits = map[string][]directory.Unit{
	"MTC": {
		{ID: "1A"}, {ID: "1B"}, {ID: "1C (Eifler)"}, {ID: "2A"},
		{ID: "2B"}, {ID: "2C"}, {ID: "PH4D"},
	},
	"AVII": {
		{ID: "101"}, {ID: "102"}, {ID: "103"}, {ID: "201"}, {ID: "202"},
	},
}

var demoAccounts = []directory.Account{
	{ID: "a1", Name: "Petty Cash", Type: "cash"},
	{ID: "a2", Name: "Scotiabank", Type: "bank"},
	{ID: "a3", Name: "CiBanco Reserve", Type: "bank"},
}

// generateTransactions builds a deterministic few years of dues income and
// vendor expenses, seeded from the client ID so reruns produce the same books
func generateTransactions(c client.Client) []ledger.Transaction {
	var rng rand.PCGSource
	rng.Seed(seedFromID(c.ID))
	random := rand.New(&rng)

	var txns []ledger.Transaction
	units := demoUnits[c.ID]
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)

	for month := start; month.Before(end); month = month.AddDate(0, 1, 0) {
		// monthly dues per unit
		for i, unit := range units {
			date := month.AddDate(0, 0, random.Intn(10)).Add(time.Duration(8+i) * time.Hour)
			txns = append(txns, ledger.Transaction{
				ID:           date.Format("20060102_150405") + fmt.Sprintf("_%08x", random.Uint32()),
				Date:         ledger.NewDate(date),
				Amount:       int64(450000 + random.Intn(5)*10000), // ~4,500 MXN dues
				Type:         ledger.TypeIncome,
				CategoryName: "HOA Dues",
				AccountName:  "Scotiabank",
				UnitID:       unit.ID,
				VendorName:   "",
				Notes:        fmt.Sprintf("Dues %s", month.Format("January 2006")),
			})
		}
		// a handful of vendor expenses
		for i := 0; i < 3+random.Intn(3); i++ {
			vendor := demoVendors[random.Intn(len(demoVendors))]
			category := demoCategories[random.Intn(6)] // expense categories only
			date := month.AddDate(0, 0, random.Intn(27)).Add(time.Duration(9+i) * time.Hour)
			account := "Scotiabank"
			if random.Intn(10) == 0 {
				account = "Petty Cash"
			}
			txns = append(txns, ledger.Transaction{
				ID:           date.Format("20060102_150405") + fmt.Sprintf("_%08x", random.Uint32()),
				Date:         ledger.NewDate(date),
				Amount:       -int64(50000 + random.Intn(200000)),
				Type:         ledger.TypeExpense,
				VendorName:   vendor.Name,
				CategoryName: category.Name,
				AccountName:  account,
				Description:  fmt.Sprintf("%s - %s", vendor.Name, category.Name),
			})
		}
	}
	return txns
}

func seedFromID(id string) uint64 {
	var seed uint64 = 0x5A4D53 // arbitrary non-zero base
	for _, r := range id {
		seed = seed*31 + uint64(r)
	}
	return seed
}
