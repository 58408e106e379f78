package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mlandesman/sams/fiscal"
	"github.com/mlandesman/sams/ledger"
	"github.com/mlandesman/sams/locator"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// include [] suffix to support query param arrays
	vendorsQuery    = "vendor[]"
	categoriesQuery = "category[]"
	unitsQuery      = "unit[]"
	accountsQuery   = "account[]"

	// MaxResults is the maximum number of results from a paginated request
	MaxResults = 50
)

func getTransactions(stores Stores, workingSets *ledger.WorkingSetCache, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("clientId")
		hoaClient, found, err := stores.Clients.Get(clientID)
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		if !found {
			abortWithClientError(c, http.StatusNotFound, errors.Errorf("Unknown client: %s", clientID))
			return
		}

		page, results, ok := parsePagination(c)
		if !ok {
			return
		}

		opts := ledger.QueryOptions{
			Search: c.Query("search"),
			Filter: filterSpecFromQuery(c),
		}
		config := hoaClient.Fiscal()
		opts.Ref.Location = config.Location()

		all, dateFiltered, err := loadWorkingSets(stores.Ledger, workingSets, clientID, c.Query("range"), config, opts.Filter, logger)
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}

		c.JSON(http.StatusOK, ledger.Query(all, dateFiltered, opts, page, results))
	}
}

func addTransactions(stores Stores, workingSets *ledger.WorkingSetCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("clientId")
		_, found, err := stores.Clients.Get(clientID)
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		if !found {
			abortWithClientError(c, http.StatusNotFound, errors.Errorf("Unknown client: %s", clientID))
			return
		}

		var txns []ledger.Transaction
		if err := c.ShouldBindJSON(&txns); err != nil {
			abortWithClientError(c, http.StatusBadRequest, err)
			return
		}
		if err := stores.Ledger.AddTransactions(clientID, txns); err != nil {
			abortWithClientError(c, http.StatusBadRequest, err)
			return
		}

		// the cached full dataset is stale now; the balance trigger decides
		// whether this write warrants a recompute
		workingSets.Invalidate(clientID)
		stores.Balances.ObserveUpdates(clientID, stores.Ledger.UpdateCount(clientID))
		c.Status(http.StatusNoContent)
	}
}

func getTransaction(stores Stores) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, id := c.Param("clientId"), c.Param("id")
		txn, err := stores.Ledger.GetTransactionByID(clientID, id)
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		if txn == nil {
			abortWithClientError(c, http.StatusNotFound, errors.New(locator.NotFoundMessage))
			return
		}
		c.JSON(http.StatusOK, txn)
	}
}

func locateTransaction(stores Stores, workingSets *ledger.WorkingSetCache, loc *locator.Locator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, id := c.Param("clientId"), c.Param("id")
		hoaClient, found, err := stores.Clients.Get(clientID)
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		if !found {
			abortWithClientError(c, http.StatusNotFound, errors.Errorf("Unknown client: %s", clientID))
			return
		}

		opts := ledger.QueryOptions{
			Search: c.Query("search"),
			Filter: filterSpecFromQuery(c),
		}
		config := hoaClient.Fiscal()
		opts.Ref.Location = config.Location()

		all, dateFiltered, err := loadWorkingSets(stores.Ledger, workingSets, clientID, c.Query("range"), config, opts.Filter, logger)
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		// the full matching view, not one display page
		view := ledger.Query(all, dateFiltered, opts, 1, maxViewSize(len(all), len(dateFiltered))).Transactions

		c.JSON(http.StatusOK, loc.Locate(clientID, id, view))
	}
}

// loadWorkingSets fetches the date-bounded view, plus the full dataset when an
// advanced filter needs it. The full set is cached per client and replaced
// wholesale on reload.
func loadWorkingSets(
	store *ledger.Store,
	workingSets *ledger.WorkingSetCache,
	clientID, rangeToken string,
	config fiscal.Config,
	spec ledger.FilterSpec,
	logger *zap.Logger,
) (all, dateFiltered []ledger.Transaction, err error) {
	dateRange := fiscal.Resolve(rangeToken, config, logger)
	dateFiltered, err = store.FetchTransactions(clientID, dateRange.Start, dateRange.End)
	if err != nil {
		return nil, nil, err
	}
	if spec.Empty() {
		return nil, dateFiltered, nil
	}

	all, found := workingSets.Get(clientID)
	if !found {
		all, err = store.AllTransactions(clientID)
		if err != nil {
			return nil, nil, err
		}
		workingSets.Put(clientID, all)
	}
	return all, dateFiltered, nil
}

func parsePagination(c *gin.Context) (page, results int, ok bool) {
	page, results = 1, 10
	if pageQuery, ok := c.GetQuery("page"); ok {
		if parsedPage, err := strconv.ParseInt(pageQuery, 10, 64); err != nil {
			c.Error(errors.Errorf("Invalid integer: %s", pageQuery))
		} else if parsedPage < 1 {
			c.Error(errors.New("Page must be a positive integer"))
		} else {
			page = int(parsedPage)
		}
	}
	if resultsQuery, ok := c.GetQuery("results"); ok {
		if parsedResults, err := strconv.ParseInt(resultsQuery, 10, 64); err != nil {
			c.Error(errors.Errorf("Invalid integer: %s", resultsQuery))
		} else if parsedResults < 1 || parsedResults > MaxResults {
			c.Error(errors.Errorf("Results must be a positive integer no more than %d", MaxResults))
		} else {
			results = int(parsedResults)
		}
	}
	if len(c.Errors) > 0 {
		errMsg := ""
		for _, e := range c.Errors {
			errMsg += e.Error() + "\n"
		}
		abortWithClientError(c, http.StatusBadRequest, errors.New(errMsg))
		return 0, 0, false
	}
	return page, results, true
}

func filterSpecFromQuery(c *gin.Context) ledger.FilterSpec {
	return ledger.FilterSpec{
		Vendors:     c.QueryArray(vendorsQuery),
		Categories:  c.QueryArray(categoriesQuery),
		Units:       c.QueryArray(unitsQuery),
		Accounts:    c.QueryArray(accountsQuery),
		MinAmount:   c.Query("minAmount"),
		MaxAmount:   c.Query("maxAmount"),
		StartDate:   c.Query("startDate"),
		EndDate:     c.Query("endDate"),
		Description: c.Query("description"),
		Notes:       c.Query("notes"),
	}
}

func maxViewSize(sizes ...int) int {
	max := 1
	for _, size := range sizes {
		if size > max {
			max = size
		}
	}
	return max
}
