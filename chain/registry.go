package chain

import (
	"context"
	"sync"

	logger "github.com/sirupsen/logrus"
)

// Registry owns one handler instance per configured chain. It is built by
// the composition root and passed by reference to whatever schedules the
// handlers; there is no global instance.
type Registry struct {
	mu       sync.RWMutex
	factory  HandlerFactory
	handlers map[string]Handler
}

func NewRegistry(factory HandlerFactory) *Registry {
	return &Registry{
		factory:  factory,
		handlers: make(map[string]Handler),
	}
}

// Initialize constructs and registers a handler for every config. A failing
// chain is logged and skipped; it never aborts the remaining configs.
func (r *Registry) Initialize(ctx context.Context, configs []*Config, deps Deps) {
	for _, cfg := range configs {
		log := logger.WithField("chain", cfg.ChainName)

		if r.Get(cfg.ChainName) != nil {
			log.Debug("handler already registered, skip")
			continue
		}

		handler, err := r.factory(cfg, deps)
		if err != nil {
			log.WithError(err).Error("failed to construct chain handler")
			continue
		}

		if err := handler.SetupL2Listeners(ctx); err != nil {
			log.WithError(err).Error("failed to set up L2 listeners")
			handler.Stop()
			continue
		}

		r.Register(cfg.ChainName, handler)
		log.WithField("chainType", cfg.ChainType).Info("chain handler registered")
	}
}

func (r *Registry) Register(chainName string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[chainName] = h
}

func (r *Registry) Get(chainName string) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[chainName]
}

func (r *Registry) List() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Handler, 0, len(r.handlers))
	for _, h := range r.handlers {
		out = append(out, h)
	}
	return out
}

func (r *Registry) Filter(pred func(Handler) bool) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Handler
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

	for _, h := range r.handlers {
		h.Stop()
	}
	r.handlers = make(map[string]Handler)
}
