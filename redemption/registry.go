package redemption

import (
	"context"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/bitbridge-io/relay-go/chain"
)

// Registry owns one redemption handler per participating chain. Non-EVM
// chains and chains without redemption enabled never enter it.
type Registry struct {
	mu       sync.RWMutex
	factory  Factory
	handlers map[string]*Handler
}

func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:  factory,
		handlers: make(map[string]*Handler),
	}
}

// Initialize constructs, initializes and registers a handler for every EVM
// config with redemption enabled. A failing chain is logged and skipped; it
// never aborts the remaining configs.
func (r *Registry) Initialize(ctx context.Context, configs []*chain.Config) {
	for _, cfg := range configs {
		log := logger.WithField("chain", cfg.ChainName)

		if cfg.ChainType != chain.TypeEvm || !cfg.EnableL2Redemption {
			continue
		}
		if r.Get(cfg.ChainName) != nil {
			log.Debug("redemption handler already registered, skip")
			continue
		}

		handler, err := r.factory(cfg)
		if err != nil {
			log.WithError(err).Error("failed to construct redemption handler")
			continue
		}
		if err := handler.Initialize(ctx); err != nil {
			log.WithError(err).Error("failed to initialize redemption handler")
			continue
		}

		r.Register(cfg.ChainName, handler)
		log.Info("redemption handler registered")
	}
}

func (r *Registry) Register(chainName string, h *Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[chainName] = h
}

func (r *Registry) Get(chainName string) *Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[chainName]
}

func (r *Registry) List() []*Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Handler, 0, len(r.handlers))
	for _, h := range r.handlers {
		out = append(out, h)
	}
	return out
}

func (r *Registry) Filter(pred func(*Handler) bool) []*Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Handler
	for _, h := range r.handlers {
		if pred(h) {
			out = append(out, h)
		}
	}
	return out
}

func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[string]*Handler)
}
