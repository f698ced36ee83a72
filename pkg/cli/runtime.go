package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/ticketcal/pkg/cli/config"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/service/worker"
	"github.com/secmon-lab/ticketcal/pkg/usecase"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
	"github.com/secmon-lab/ticketcal/pkg/utils/safe"
)

// dispatchMode selects how a command hands work to the task handlers
type dispatchMode int

const (
	// dispatchConfigured uses the queue when --queue-url is set, goroutines otherwise
	dispatchConfigured dispatchMode = iota
	// dispatchInline always runs work in this process
	dispatchInline
)

// runtimeConfig gathers the flags every command building use cases needs
type runtimeConfig struct {
	app     config.App
	repo    config.Repository
	zendesk config.Zendesk
	google  config.Google
	queue   config.Queue
}

func (x *runtimeConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.app.Flags()...)
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.zendesk.Flags()...)
	flags = append(flags, x.google.Flags()...)
	flags = append(flags, x.queue.Flags()...)
	return flags
}

// runtime is the wired application
type runtime struct {
	repo   interfaces.Repository
	uc     *usecase.UseCases
	inline *worker.InlineDispatcher

	closers []func()
}

// Close waits for in-process work and releases connections
func (x *runtime) Close(ctx context.Context) {
	if x.inline != nil {
		x.inline.Wait()
	}
	for i := len(x.closers) - 1; i >= 0; i-- {
		x.closers[i]()
	}
	logging.From(ctx).Debug("runtime closed")
}

func (x *runtimeConfig) build(ctx context.Context, mode dispatchMode) (*runtime, error) {
	appCfg, err := x.app.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load configuration")
	}

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize repository")
	}
	rt := &runtime{repo: repo}
	rt.closers = append(rt.closers, func() { safe.Close(ctx, repo) })

	ticketSvc, err := x.zendesk.Configure()
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}

	oauthCfg, calendars, err := x.google.Configure(x.app.BaseURL(), repo.Credential())
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}

	var dispatcher interfaces.Dispatcher
	if mode == dispatchConfigured && x.queue.Enabled() {
		client, err := x.queue.NewClient()
		if err != nil {
			rt.Close(ctx)
			return nil, goerr.Wrap(err, "failed to connect task queue")
		}
		rt.closers = append(rt.closers, func() { safe.Close(ctx, client) })
		dispatcher = client
		if x.repo.IsMemory() {
			logging.From(ctx).Warn("queue workers cannot see the in-memory repository of this process")
		}
	} else {
		rt.inline = worker.NewInlineDispatcher()
		dispatcher = rt.inline
	}

	rt.uc = usecase.New(repo,
		usecase.WithCalendar(calendars),
		usecase.WithTicketing(ticketSvc),
		usecase.WithDispatcher(dispatcher),
		usecase.WithFieldIDs(appCfg.FieldIDs()),
		usecase.WithTicketBaseURL(x.zendesk.URL()),
		usecase.WithBaseURL(x.app.BaseURL()),
		usecase.WithAPIToken(x.app.APIToken()),
		usecase.WithOAuthConfig(oauthCfg),
		usecase.WithRenewLead(x.queue.RenewLead()),
	)
	if rt.inline != nil {
		rt.inline.SetHandler(rt.uc)
	}

	logging.From(ctx).Info("runtime configured",
		"app", x.app,
		"repository", x.repo,
		"zendesk", x.zendesk,
		"google", x.google,
		"queue", x.queue,
		"inline_dispatch", rt.inline != nil,
	)
	return rt, nil
}
