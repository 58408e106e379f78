// Package directory holds per-client reference data: vendors, categories,
// units, and accounts. These lists feed the filter-selection UI; transaction
// filtering itself matches by name and works without them.
package directory

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/mlandesman/sams/ledger"
	"github.com/mlandesman/sams/plaindb"
	"github.com/pkg/errors"
)

// Vendor is a payee the association does business with
type Vendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category is a chart-of-accounts expense/income category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"` // expense or income
}

// Account is a real-world money account balances are tracked against
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Type is "cash" or "bank"; balance recomputes split on it
	Type string `json:"type"`
}

// Unit is a dwelling unit within the association
type Unit struct {
	// ID may carry a display suffix, e.g. "1C (Eifler)"
	ID    string `json:"id"`
	Owner string `json:"owner,omitempty"`
}

// Base returns the unit's comparison identifier, without any display suffix
func (u Unit) Base() string {
	return ledger.BaseUnitID(u.ID)
}

// Store manages the reference data buckets
type Store struct {
	vendors    plaindb.Bucket
	categories plaindb.Bucket
	units      plaindb.Bucket
	accounts   plaindb.Bucket
}

// NewStore opens all reference data buckets
func NewStore(db plaindb.DB) (*Store, error) {
	vendors, err := db.Bucket("vendors", "1", listUpgrader("vendors", func() interface{} { return &[]Vendor{} }))
	if err != nil {
		return nil, err
	}
	categories, err := db.Bucket("categories", "1", listUpgrader("categories", func() interface{} { return &[]Category{} }))
	if err != nil {
		return nil, err
	}
	units, err := db.Bucket("units", "1", listUpgrader("units", func() interface{} { return &[]Unit{} }))
	if err != nil {
		return nil, err
	}
	accounts, err := db.Bucket("accounts", "1", listUpgrader("accounts", func() interface{} { return &[]Account{} }))
	if err != nil {
		return nil, err
	}
	return &Store{
		vendors:    vendors,
		categories: categories,
		units:      units,
		accounts:   accounts,
	}, nil
}

// Vendors returns the client's vendors sorted by name
func (s *Store) Vendors(clientID string) ([]Vendor, error) {
	var vendors []Vendor
	if err := getList(s.vendors, clientID, &vendors); err != nil {
		return nil, err
	}
	sort.Slice(vendors, func(a, b int) bool {
		return strings.ToLower(vendors[a].Name) < strings.ToLower(vendors[b].Name)
	})
	return vendors, nil
}

// Categories returns the client's categories sorted by name
func (s *Store) Categories(clientID string) ([]Category, error) {
	var categories []Category
	if err := getList(s.categories, clientID, &categories); err != nil {
		return nil, err
	}
	sort.Slice(categories, func(a, b int) bool {
		return strings.ToLower(categories[a].Name) < strings.ToLower(categories[b].Name)
	})
	return categories, nil
}

// Units returns the client's units sorted by base identifier
func (s *Store) Units(clientID string) ([]Unit, error) {
	var units []Unit
	if err := getList(s.units, clientID, &units); err != nil {
		return nil, err
	}
	sort.Slice(units, func(a, b int) bool {
		return units[a].Base() < units[b].Base()
	})
	return units, nil
}

// Accounts returns the client's accounts sorted by name
func (s *Store) Accounts(clientID string) ([]Account, error) {
	var accounts []Account
	if err := getList(s.accounts, clientID, &accounts); err != nil {
		return nil, err
	}
	sort.Slice(accounts, func(a, b int) bool {
		return strings.ToLower(accounts[a].Name) < strings.ToLower(accounts[b].Name)
	})
	return accounts, nil
}

// AccountType returns the type of the named account, matching by
// case-insensitive name. Defaults to "bank" when the account is unknown, so
// balance recomputes stay total-preserving for unrecognized names.
func (s *Store) AccountType(clientID, accountName string) (string, error) {
	accounts, err := s.Accounts(clientID)
	if err != nil {
		return "", err
	}
	for _, account := range accounts {
		if strings.EqualFold(account.Name, accountName) {
			return account.Type, nil
		}
	}
	return "bank", nil
}

// PutVendors replaces the client's vendor list
func (s *Store) PutVendors(clientID string, vendors []Vendor) error {
	return s.vendors.Put(clientID, vendors)
}

// PutCategories replaces the client's category list
func (s *Store) PutCategories(clientID string, categories []Category) error {
	return s.categories.Put(clientID, categories)
}

// PutUnits replaces the client's unit list
func (s *Store) PutUnits(clientID string, units []Unit) error {
	return s.units.Put(clientID, units)
}

// PutAccounts replaces the client's account list
func (s *Store) PutAccounts(clientID string, accounts []Account) error {
	return s.accounts.Put(clientID, accounts)
}

func getList(bucket plaindb.Bucket, clientID string, list interface{}) error {
	_, err := bucket.Get(clientID, list)
	return err
}

type upgrader struct {
	name    string
	newList func() interface{}
}

func listUpgrader(name string, newList func() interface{}) plaindb.Upgrader {
	return &upgrader{name: name, newList: newList}
}

func (u *upgrader) Parse(dataVersion, id string, data json.RawMessage) (interface{}, error) {
	if dataVersion != "1" {
		return nil, errors.Errorf("Unknown %s version: %s", u.name, dataVersion)
	}
	list := u.newList()
	if err := json.Unmarshal(data, list); err != nil {
		return nil, err
	}
	// store the slice, not the pointer, so bucket reads assign cleanly
	return reflect.ValueOf(list).Elem().Interface(), nil
}

func (u *upgrader) Upgrade(dataVersion, id string, data interface{}) (string, interface{}, error) {
	return "", nil, errors.Errorf("Unknown %s version: %s", u.name, dataVersion)
}
