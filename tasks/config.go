package tasks

import (
	"time"

	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/deposit"
)

const MinTickerInterval = 100 * time.Millisecond

type Config struct {
	Registry *chain.Registry
	Store    deposit.Store

	// TickerInterval spaces the lifecycle ticks; clamped to
	// MinTickerInterval.
	TickerInterval time.Duration

	// PastTimeInMinutes bounds the startup catch-up query. 0 disables the
	// catch-up pass.
	PastTimeInMinutes int
}
