// This is the http surface of the relayer.
// It accepts reveal submissions for endpoint-mode chains
// and publishes deposit state on the http routes.

package reporter

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"

	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/deposit"
)

const (
	ROUTE_HELLO   = "/hello"
	ROUTE_DEPOSIT = "/deposit"
	ROUTE_REVEAL  = "/api/v1/reveal"
)

type HttpReporter struct {
	serverIP   string // listen ip
	serverPort string // listen port

	// upstream collaborators
	store    deposit.Store
	registry *chain.Registry
}

func NewHttpReporter(serverIP string, serverPort string, store deposit.Store, registry *chain.Registry) *HttpReporter {
	return &HttpReporter{
		serverIP:   serverIP,
		serverPort: serverPort,
		store:      store,
		registry:   registry,
	}
}

// Hook up routes & handlers
func (h *HttpReporter) SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET(ROUTE_HELLO, Hello)
	router.GET(ROUTE_DEPOSIT, h.Deposit)
	router.POST(ROUTE_REVEAL, h.Reveal)

	return router
}

// Hook up router & ip:port
func (h *HttpReporter) Run() {
	router := h.SetupRouter()
	address := h.serverIP + ":" + h.serverPort
	if err := router.Run(address); err != nil {
		panic(err)
	}
}

// Example route.
func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "world",
	})
}

// Fetch one deposit by id and publish it on the route.
func (h *HttpReporter) Deposit(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be provided"})
		return
	}

	d, err := h.store.GetById(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No deposit found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": d})
}

// RevealRequest is the endpoint-mode intake payload.
type RevealRequest struct {
	ChainName      string                     `json:"chainName" binding:"required"`
	FundingTx      deposit.FundingTransaction `json:"fundingTx" binding:"required"`
	Reveal         deposit.Reveal             `json:"reveal" binding:"required"`
	L2DepositOwner string                     `json:"l2DepositOwner" binding:"required"`
	L2Sender       string                     `json:"l2Sender"`
}

// Accept a reveal submission and feed it to the owning chain handler. The
// handler's ingestion path owns validation and dedup; a malformed funding
// transaction is dropped there, so this route only answers "accepted".
func (h *HttpReporter) Reveal(c *gin.Context) {
	var req RevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	handler := h.registry.Get(req.ChainName)
	if handler == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no handler for chain " + req.ChainName})
		return
	}

	logger.WithField("chain", req.ChainName).Info("reveal received over http")
	handler.Ingest(c.Request.Context(), &deposit.L1OutputEvent{
		FundingTx:      req.FundingTx,
		Reveal:         req.Reveal,
		L2DepositOwner: req.L2DepositOwner,
		L2Sender:       req.L2Sender,
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
