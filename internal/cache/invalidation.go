package cache

import (
	"sync/atomic"

	"go.uber.org/fx"
)

// Invalidation is a shared generation counter. Writers bump it after any
// mutation that affects derived aggregates; cached readers key their entries
// by the generation, so a bump makes every older entry unreachable without
// coordinating across modules.
type Invalidation struct {
	gen atomic.Uint64
}

func NewInvalidation() *Invalidation { return &Invalidation{} }

func (i *Invalidation) Bump() {
	i.gen.Add(1)
}

func (i *Invalidation) Gen() uint64 {
	return i.gen.Load()
}

var Module = fx.Module("cache",
	fx.Provide(NewInvalidation),
)
