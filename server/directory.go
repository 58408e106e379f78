package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mlandesman/sams/directory"
)

// listResponse wraps reference data lists. Failures never reach here; a
// handler aborts instead, so Success is always true on a 200.
type listResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

func getVendors(store *directory.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendors, err := store.Vendors(c.Param("clientId"))
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, listResponse{Success: true, Data: vendors})
	}
}

func getCategories(store *directory.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := store.Categories(c.Param("clientId"))
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, listResponse{Success: true, Data: categories})
	}
}

func getUnits(store *directory.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		units, err := store.Units(c.Param("clientId"))
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, listResponse{Success: true, Data: units})
	}
}

func getAccounts(store *directory.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := store.Accounts(c.Param("clientId"))
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, listResponse{Success: true, Data: accounts})
	}
}
