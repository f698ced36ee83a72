package safe_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
	"github.com/secmon-lab/ticketcal/pkg/utils/safe"
)

type trackingBody struct {
	io.Reader
	closed   bool
	closeErr error
}

func (b *trackingBody) Close() error {
	b.closed = true
	return b.closeErr
}

func TestClose(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	safe.Close(ctx, nil)

	body := &trackingBody{Reader: strings.NewReader(""), closeErr: errors.New("already closed")}
	safe.Close(ctx, body)
	gt.Bool(t, body.closed).True()
	gt.String(t, buf.String()).Contains("already closed")
}

func TestDrainAndClose(t *testing.T) {
	r := strings.NewReader("unread response body")
	body := &trackingBody{Reader: r}

	safe.DrainAndClose(context.Background(), body)
	gt.Bool(t, body.closed).True()
	gt.Value(t, r.Len()).Equal(0)

	safe.DrainAndClose(context.Background(), nil)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	safe.Write(context.Background(), &buf, []byte("ok"))
	gt.Value(t, buf.String()).Equal("ok")
}
