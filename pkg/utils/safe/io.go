package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
)

// maxDrain bounds how much of an unread body is discarded before closing
const maxDrain = 64 << 10

// Close closes c and logs a failure. A nil closer is ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", "error", err.Error())
	}
}

// DrainAndClose discards the unread rest of an HTTP body, up to a limit, and closes it
func DrainAndClose(ctx context.Context, body io.ReadCloser) {
	if body == nil {
		return
	}
	if _, err := io.Copy(io.Discard, io.LimitReader(body, maxDrain)); err != nil {
		logging.From(ctx).Debug("failed to drain body", "error", err.Error())
	}
	Close(ctx, body)
}

// Write writes data to w and logs a failure
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("failed to write", "error", err.Error())
	}
}
