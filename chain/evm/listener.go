package evm

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	logger "github.com/sirupsen/logrus"

	"github.com/bitbridge-io/relay-go/chain"
)

const (
	defaultPollInterval = 60 * time.Second
	resubscribeDelay    = 5 * time.Second

	// rough L2 block time used to turn a minutes window into a block window
	// for past-deposit queries
	assumedL2BlockSeconds = 2
)

// SetupL2Listeners starts the configured ingestion strategy. Push
// subscription when a websocket URL is configured, poll loop otherwise.
// Endpoint mode skips both: events arrive over HTTP instead.
func (h *Handler) SetupL2Listeners(ctx context.Context) error {
	log := logger.WithField("chain", h.cfg.ChainName)

	if h.cfg.UseEndpoint {
		log.Info("endpoint mode, L2 listeners disabled")
		return nil
	}
	if h.l2Client == nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel

	if h.cfg.L2WsUrl != "" {
		h.wg.Add(1)
		go h.subscribeLoop(ctx)
		log.Info("L2 push subscription started")
		return nil
	}

	h.wg.Add(1)
	go h.pollLoop(ctx)
	log.Info("L2 poll loop started")
	return nil
}

func (h *Handler) eventQuery(fromBlock, toBlock *big.Int) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: fromBlock,
		ToBlock:   toBlock,
		Addresses: []ethcommon.Address{h.l2ContractAddress},
		Topics:    [][]ethcommon.Hash{{DepositInitializedSignatureHash}},
	}
}

func (h *Handler) handleLog(ctx context.Context, vlog types.Log) {
	ev, err := decodeDepositInitialized(vlog.Data, vlog.Topics)
	if err != nil {
		logger.WithFields(logger.Fields{
			"chain":  h.cfg.ChainName,
			"txHash": vlog.TxHash.Hex(),
		}).WithError(err).Warn("failed to decode DepositInitialized event, dropping")
		return
	}
	h.ingestor.HandleDepositEvent(ctx, ev)
}

// subscribeLoop keeps a long-lived websocket subscription alive,
// re-establishing it after transport errors.
func (h *Handler) subscribeLoop(ctx context.Context) {
	defer h.wg.Done()
	log := logger.WithField("chain", h.cfg.ChainName)

	for {
		wsClient, err := ethclient.DialContext(ctx, h.cfg.L2WsUrl)
		if err != nil {
			log.WithError(err).Error("failed to dial L2 websocket")
			select {
			case <-ctx.Done():
				return
			case <-time.After(resubscribeDelay):
				continue
			}
		}

		logs := make(chan types.Log, 128)
		sub, err := wsClient.SubscribeFilterLogs(ctx, h.eventQuery(nil, nil), logs)
		if err != nil {
			log.WithError(err).Error("failed to subscribe to DepositInitialized events")
			wsClient.Close()
			select {
			case <-ctx.Done():
				return
			case <-time.After(resubscribeDelay):
				continue
			}
		}

	recv:
		for {
			select {
			case <-ctx.Done():
				sub.Unsubscribe()
				wsClient.Close()
				return
			case err := <-sub.Err():
				log.WithError(err).Warn("L2 subscription dropped, resubscribing")
				wsClient.Close()
				break recv
			case vlog := <-logs:
				h.handleLog(ctx, vlog)
			}
		}
	}
}

// pollLoop queries for new events once per interval. Ticks never overlap:
// one goroutine does the full query before waiting for the next tick.
func (h *Handler) pollLoop(ctx context.Context) {
	defer h.wg.Done()
	log := logger.WithField("chain", h.cfg.ChainName)

	interval := h.cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastPolled := h.GetLatestBlock(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			latest, err := h.l2Client.BlockNumber(ctx)
			if err != nil {
				log.WithError(err).Error("failed to get latest L2 block")
				continue
			}
			if latest <= lastPolled {
				continue
			}

			query := h.eventQuery(
				new(big.Int).SetUint64(lastPolled+1),
				new(big.Int).SetUint64(latest),
			)
			logs, err := h.l2Client.FilterLogs(ctx, query)
			if err != nil {
				log.WithError(err).Error("failed to filter DepositInitialized events")
				continue
			}
			for _, vlog := range logs {
				h.handleLog(ctx, vlog)
			}
			lastPolled = latest
		}
	}
}

// CheckForPastDeposits recovers events missed during downtime, walking the
// window newest-first. Dedup in the ingestor makes re-delivery harmless.
func (h *Handler) CheckForPastDeposits(ctx context.Context, opts chain.PastDepositsOptions) {
	log := logger.WithField("chain", h.cfg.ChainName)

	if !h.SupportsPastDepositCheck() {
		log.Debug("past deposit check not supported, skip")
		return
	}

	latest := opts.LatestBlock
	if latest == 0 {
		latest = h.GetLatestBlock(ctx)
	}
	if latest == 0 {
		return
	}

	window := uint64(opts.PastTimeInMinutes) * 60 / assumedL2BlockSeconds
	var from uint64
	if latest > window {
		from = latest - window
	}

	query := h.eventQuery(new(big.Int).SetUint64(from), new(big.Int).SetUint64(latest))
	logs, err := h.l2Client.FilterLogs(ctx, query)
	if err != nil {
		log.WithError(err).Error("failed to query past DepositInitialized events")
		return
	}

	log.WithFields(logger.Fields{
		"fromBlock": from,
		"toBlock":   latest,
		"events":    len(logs),
	}).Info("checking for past deposits")

	for i := len(logs) - 1; i >= 0; i-- {
		h.handleLog(ctx, logs[i])
	}
}
