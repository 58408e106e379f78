// Package client manages the HOA clients this deployment administers.
// Every other store is scoped by a client ID.
package client

import (
	"github.com/mlandesman/sams/fiscal"
)

// Configuration is a client's accounting configuration
type Configuration struct {
	// FiscalYearStartMonth is 1-12; zero means calendar year
	FiscalYearStartMonth int `json:"fiscalYearStartMonth,omitempty"`
	// Timezone is the IANA zone the client's books are kept in
	Timezone string `json:"timezone,omitempty"`
	// Currency is an ISO 4217 code, e.g. "MXN"
	Currency string `json:"currency,omitempty"`
}

// Client is one managed homeowners association
type Client struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Configuration Configuration `json:"configuration"`
}

// Fiscal returns the client's date-range resolution config
func (c Client) Fiscal() fiscal.Config {
	return fiscal.Config{
		FiscalYearStartMonth: c.Configuration.FiscalYearStartMonth,
		Timezone:             c.Configuration.Timezone,
	}
}
