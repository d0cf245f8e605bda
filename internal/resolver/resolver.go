package resolver

import (
	"context"
	"log/slog"
	"strings"

	"clipcart/internal/logging"
	"clipcart/internal/store"
)

// Strategy is one way of locating video candidates for a product. Strategies
// never mutate the snapshot and report failure through the error return; the
// cascade treats a failed strategy the same as an empty one.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, page *PageSnapshot, product *store.Product) ([]string, error)
}

// Resolver runs the strategy cascade.
type Resolver struct {
	strategies []Strategy
	logger     *slog.Logger
}

// New builds a resolver over the provided strategies in priority order.
func New(logger *slog.Logger, strategies ...Strategy) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		strategies: strategies,
		logger:     logging.WithComponent(logger, "resolver"),
	}
}

// Resolve walks the cascade and returns the first strategy's candidates,
// normalized. Strategy errors are logged and swallowed so a broken extractor
// never masks a later one. An empty result means no strategy found media.
func (r *Resolver) Resolve(ctx context.Context, page *PageSnapshot, product *store.Product) ([]string, error) {
	for _, strategy := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidates, err := strategy.Resolve(ctx, page, product)
		if err != nil {
			r.logger.Warn("strategy failed",
				logging.String("strategy", strategy.Name()),
				logging.String(logging.FieldProductID, product.ID),
				logging.Error(err))
			continue
		}
		candidates = normalizeCandidates(candidates)
		if len(candidates) == 0 {
			continue
		}
		r.logger.Info("resolved candidates",
			logging.String("strategy", strategy.Name()),
			logging.String(logging.FieldProductID, product.ID),
			logging.Int("count", len(candidates)))
		return candidates, nil
	}
	return nil, nil
}

// normalizeCandidates trims, drops unusable schemes, and deduplicates while
// preserving order. Blob URIs reference in-memory browser objects and can
// never be fetched out of process.
func normalizeCandidates(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		lower := strings.ToLower(candidate)
		if strings.HasPrefix(lower, "blob:") {
			continue
		}
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}
	return out
}
