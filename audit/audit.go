/*
Package audit emits deposit lifecycle records. Publishing is fire-and-forget:
a failed publish is logged and dropped, never surfaced to the caller.
*/
package audit

import (
	"time"

	logger "github.com/sirupsen/logrus"
)

type EventType string

const (
	DepositCreated     EventType = "deposit.created"
	DepositInitialized EventType = "deposit.initialized"
	DepositFinalized   EventType = "deposit.finalized"
	DepositAwaitingVAA EventType = "deposit.awaiting_wormhole_vaa"
	DepositBridged     EventType = "deposit.bridged"
	StatusChanged      EventType = "deposit.status_changed"
)

type Record struct {
	Event     EventType `json:"event"`
	DepositId string    `json:"depositId"`
	ChainName string    `json:"chainName"`
	TxHash    string    `json:"txHash,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

type Publisher interface {
	Publish(r Record)
}

// LogPublisher writes audit records to the process log. Used when no
// message broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(r Record) {
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().Unix()
	}
	logger.WithFields(logger.Fields{
		"event":     r.Event,
		"depositId": r.DepositId,
		"chain":     r.ChainName,
		"txHash":    r.TxHash,
		"detail":    r.Detail,
	}).Info("audit")
}
