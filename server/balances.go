package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// BalanceResponse is the response type for fetching account balances
type BalanceResponse struct {
	Balances       interface{} `json:"balances"`
	NoBalanceFound bool        `json:"noBalanceFound"`
}

func getBalances(stores Stores) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("clientId")
		_, forceRefresh := c.GetQuery("refresh")
		balances, err := stores.Balances.Balances(clientID, forceRefresh)
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, BalanceResponse{
			Balances:       balances,
			NoBalanceFound: stores.Balances.NoBalanceFound(),
		})
	}
}

func recalculateBalances(stores Stores) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("clientId")
		yearQuery, hasYear := c.GetQuery("snapshotYear")
		if !hasYear {
			// no year given: recompute from the latest snapshot
			balances, err := stores.Balances.Balances(clientID, true)
			if err != nil {
				abortWithClientError(c, http.StatusInternalServerError, err)
				return
			}
			c.JSON(http.StatusOK, balances)
			return
		}

		year, err := strconv.Atoi(yearQuery)
		if err != nil {
			abortWithClientError(c, http.StatusBadRequest, errors.Errorf("Invalid integer: %s", yearQuery))
			return
		}
		balances, err := stores.Balances.Recalculate(clientID, year)
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, balances)
	}
}
