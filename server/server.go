package server

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/mlandesman/sams/balance"
	"github.com/mlandesman/sams/client"
	"github.com/mlandesman/sams/consts"
	"github.com/mlandesman/sams/directory"
	"github.com/mlandesman/sams/ledger"
	"github.com/mlandesman/sams/locator"
	"go.uber.org/zap"
)

const loggerKey = "logger"

// Stores bundles the persistence layers the API serves from
type Stores struct {
	Clients   *client.Store
	Ledger    *ledger.Store
	Directory *directory.Store
	Balances  *balance.Service
}

// Run starts the API server on addr and blocks until it fails
func Run(addr string, stores Stores, logger *zap.Logger) error {
	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(logger, time.RFC3339, true),
		recovery(logger, true),
	)

	api := engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(loggerKey, logger)
	})
	setupAPI(api, stores, logger)

	logger.Info("Starting server", zap.String("addr", addr))
	return engine.Run(addr)
}

func setupAPI(router gin.IRouter, stores Stores, logger *zap.Logger) {
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, map[string]string{
			"version": consts.Version,
		})
	})

	router.GET("/clients", getClients(stores.Clients))
	router.GET("/clients/:clientId", getClient(stores.Clients))

	workingSets := ledger.NewWorkingSetCache()
	loc := locator.New(locator.Config{
		Lookup:      stores.Ledger.GetTransactionByID,
		WidenedView: stores.Ledger.AllTransactions,
		Logger:      logger,
	})
	router.GET("/clients/:clientId/transactions", getTransactions(stores, workingSets, logger))
	router.POST("/clients/:clientId/transactions", addTransactions(stores, workingSets))
	router.GET("/clients/:clientId/transactions/:id", getTransaction(stores))
	router.POST("/clients/:clientId/transactions/:id/locate", locateTransaction(stores, workingSets, loc, logger))

	router.GET("/clients/:clientId/balances", getBalances(stores))
	router.POST("/clients/:clientId/balances/recalculate", recalculateBalances(stores))

	router.GET("/clients/:clientId/vendors", getVendors(stores.Directory))
	router.GET("/clients/:clientId/categories", getCategories(stores.Directory))
	router.GET("/clients/:clientId/units", getUnits(stores.Directory))
	router.GET("/clients/:clientId/accounts", getAccounts(stores.Directory))
}

func abortWithClientError(c *gin.Context, status int, err error) {
	logger := c.MustGet(loggerKey).(*zap.Logger)
	logger.WithOptions(zap.AddCallerSkip(1))
	if status/100 == 5 {
		logger.Error("Aborting with server error", zap.Error(err))
	} else {
		logger.Info("Aborting with client error", zap.String("error", err.Error()))
	}
	c.AbortWithStatusJSON(status, map[string]string{
		"Error": err.Error(),
	})
}
