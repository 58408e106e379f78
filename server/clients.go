package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mlandesman/sams/client"
	"github.com/pkg/errors"
)

func getClients(store *client.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		clients, err := store.List()
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, map[string]interface{}{
			"clients": clients,
		})
	}
}

func getClient(store *client.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("clientId")
		hoaClient, found, err := store.Get(clientID)
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		if !found {
			abortWithClientError(c, http.StatusNotFound, errors.Errorf("Unknown client: %s", clientID))
			return
		}
		c.JSON(http.StatusOK, hoaClient)
	}
}
