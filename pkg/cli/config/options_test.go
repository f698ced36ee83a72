package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/ticketcal/pkg/cli/config"
	"github.com/secmon-lab/ticketcal/pkg/repository/memory"
)

func TestRepositoryConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("memory", "", "").Configure(ctx)
		gt.NoError(t, err).Required()
		_, ok := repo.(*memory.Memory)
		gt.Bool(t, ok).True()
		gt.NoError(t, repo.Close())
	})

	t.Run("redis backend requires URL", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("redis", "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingOption)
	})

	t.Run("firestore backend requires project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("firestore", "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingOption)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("mysql", "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestZendeskConfigure(t *testing.T) {
	_, err := config.NewZendeskForTest("https://example.zendesk.com", "agent@example.com", "").Configure()
	gt.Error(t, err).Is(config.ErrMissingOption)

	svc, err := config.NewZendeskForTest("https://example.zendesk.com", "agent@example.com", "token").Configure()
	gt.NoError(t, err)
	gt.Value(t, svc).NotNil()
}

func TestGoogleOAuthConfig(t *testing.T) {
	_, err := config.NewGoogleForTest("", "secret").OAuthConfig("https://ticketcal.example.com")
	gt.Error(t, err).Is(config.ErrMissingOption)

	cfg, err := config.NewGoogleForTest("client-id", "secret").OAuthConfig("https://ticketcal.example.com/")
	gt.NoError(t, err).Required()
	gt.Value(t, cfg.RedirectURL).Equal("https://ticketcal.example.com/oauth/callback")
	gt.Value(t, cfg.ClientID).Equal("client-id")
}

func TestAlertConfigure(t *testing.T) {
	n, err := config.NewAlertForTest("", "").Configure()
	gt.NoError(t, err)
	gt.Value(t, n).Nil()

	_, err = config.NewAlertForTest("xoxb-test", "").Configure()
	gt.Error(t, err)

	n, err = config.NewAlertForTest("xoxb-test", "C123").Configure()
	gt.NoError(t, err)
	gt.Value(t, n).NotNil()
}
