package services

import (
	"context"
	"sync"

	"github.com/pathwise/pathwise-backend/internal/domain"
)

// ProgressSubscriber receives ConceptProgressChanged events. Events fire at
// most once per successful write, synchronously after commit; subscribers must
// be idempotent and swallow their own failures.
type ProgressSubscriber func(ctx context.Context, ev domain.ConceptProgressChanged)

type progressNotifier struct {
	mu   sync.RWMutex
	subs []ProgressSubscriber
}

func (n *progressNotifier) subscribe(fn ProgressSubscriber) {
	if fn == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

func (n *progressNotifier) publish(ctx context.Context, ev domain.ConceptProgressChanged) {
	n.mu.RLock()
	subs := make([]ProgressSubscriber, len(n.subs))
	copy(subs, n.subs)
	n.mu.RUnlock()
	for _, fn := range subs {
		fn(ctx, ev)
	}
}
