package client

import (
	"testing"

	"github.com/mlandesman/sams/plaindb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutGetList(t *testing.T) {
	store, err := NewStore(plaindb.NewMockDB(plaindb.MockConfig{}))
	require.NoError(t, err)

	mtc := Client{
		ID:   "MTC",
		Name: "Marina Turquesa Condominiums",
		Configuration: Configuration{
			FiscalYearStartMonth: 7,
			Timezone:             "America/Cancun",
			Currency:             "MXN",
		},
	}
	require.NoError(t, store.Put(mtc))
	require.NoError(t, store.Put(Client{ID: "AVII", Name: "Aventuras Villas II"}))

	got, found, err := store.Get("MTC")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, mtc, got)

	_, found, err = store.Get("nope")
	require.NoError(t, err)
	assert.False(t, found)

	clients, err := store.List()
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "AVII", clients[0].ID)
	assert.Equal(t, "MTC", clients[1].ID)
}

func TestStoreRejectsEmptyID(t *testing.T) {
	store, err := NewStore(plaindb.NewMockDB(plaindb.MockConfig{}))
	require.NoError(t, err)
	assert.Error(t, store.Put(Client{Name: "no id"}))
}

func TestClientFiscalConfig(t *testing.T) {
	c := Client{Configuration: Configuration{FiscalYearStartMonth: 7, Timezone: "America/Cancun"}}
	cfg := c.Fiscal()
	assert.Equal(t, 7, cfg.FiscalYearStartMonth)
	assert.Equal(t, "America/Cancun", cfg.Timezone)
}
