package async

import (
	"context"
	"fmt"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketcal/pkg/utils/errutil"
)

// Group tracks dispatched handlers so that shutdown can wait for them
type Group struct {
	wg sync.WaitGroup
}

// Go runs handler in a new goroutine that outlives the caller's cancellation. The logger and
// Sentry hub in ctx are kept. Errors and panics are reported, not returned.
func (g *Group) Go(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := context.WithoutCancel(ctx)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				errutil.Handle(bgCtx, goerr.New("panic in async handler", goerr.V("panic", fmt.Sprint(r))), "async handler panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()
}

// Wait blocks until every handler started through the group has returned
func (g *Group) Wait() {
	g.wg.Wait()
}
