package client

import (
	"encoding/json"
	"sort"

	"github.com/mlandesman/sams/plaindb"
	"github.com/pkg/errors"
)

// Store manages the client registry
type Store struct {
	bucket plaindb.Bucket
}

// NewStore opens the clients bucket
func NewStore(db plaindb.DB) (*Store, error) {
	bucket, err := db.Bucket("clients", "1", &storeUpgrader{})
	return &Store{bucket: bucket}, err
}

// Get returns the client with the given ID
func (s *Store) Get(id string) (Client, bool, error) {
	var c Client
	found, err := s.bucket.Get(id, &c)
	return c, found, err
}

// List returns all clients ordered by ID
func (s *Store) List() ([]Client, error) {
	var c Client
	var clients []Client
	err := s.bucket.Iter(&c, func(id string) bool {
		clients = append(clients, c)
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(clients, func(a, b int) bool {
		return clients[a].ID < clients[b].ID
	})
	return clients, nil
}

// Put creates or replaces a client record
func (s *Store) Put(c Client) error {
	if c.ID == "" {
		return errors.New("Client ID must not be empty")
	}
	return s.bucket.Put(c.ID, c)
}

type storeUpgrader struct{}

func (u *storeUpgrader) Parse(dataVersion, id string, data json.RawMessage) (interface{}, error) {
	if dataVersion != "1" {
		return nil, errors.Errorf("Unknown clients version: %s", dataVersion)
	}
	var c Client
	err := json.Unmarshal(data, &c)
	if c.ID == "" {
		c.ID = id
	}
	return c, err
}

func (u *storeUpgrader) Upgrade(dataVersion, id string, data interface{}) (string, interface{}, error) {
	return "", nil, errors.Errorf("Unknown clients version: %s", dataVersion)
}
