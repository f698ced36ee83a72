package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	goslack "github.com/slack-go/slack"

	"github.com/secmon-lab/ticketcal/pkg/service/slack"
)

type postedMessage struct {
	channel     string
	text        string
	attachments []goslack.Attachment
}

func newSlackServer(t *testing.T, ok bool) (*httptest.Server, func() []postedMessage) {
	t.Helper()
	var mu sync.Mutex
	var posted []postedMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/chat.postMessage")
		gt.NoError(t, r.ParseForm())

		msg := postedMessage{channel: r.FormValue("channel"), text: r.FormValue("text")}
		if raw := r.FormValue("attachments"); raw != "" {
			gt.NoError(t, json.Unmarshal([]byte(raw), &msg.attachments))
		}
		mu.Lock()
		posted = append(posted, msg)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if ok {
			_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
		} else {
			_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
		}
	}))
	t.Cleanup(srv.Close)

	return srv, func() []postedMessage {
		mu.Lock()
		defer mu.Unlock()
		return append([]postedMessage(nil), posted...)
	}
}

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("", "C123")
		gt.Error(t, err)
	})

	t.Run("returns error when channel is empty", func(t *testing.T) {
		_, err := slack.New("xoxb-test", "")
		gt.Error(t, err)
	})
}

func TestAlert(t *testing.T) {
	ctx := context.Background()

	t.Run("posts title and error values", func(t *testing.T) {
		srv, posted := newSlackServer(t, true)
		n, err := slack.New("xoxb-test", "C123", slack.WithAPIURL(srv.URL+"/"), slack.WithSource("ticketcal-test"))
		gt.NoError(t, err).Required()

		cause := goerr.New("malformed ticket", goerr.V("ticket_id", 7), goerr.V("field", "start_date"))
		gt.NoError(t, n.Alert(ctx, "task ticket:fetch failed permanently", cause))

		msgs := posted()
		gt.A(t, msgs).Length(1)
		gt.Value(t, msgs[0].channel).Equal("C123")
		gt.String(t, msgs[0].text).Contains("task ticket:fetch failed permanently")
		gt.A(t, msgs[0].attachments).Length(1)

		att := msgs[0].attachments[0]
		gt.Value(t, att.Text).Equal("malformed ticket")
		gt.Value(t, att.Footer).Equal("ticketcal-test")
		gt.A(t, att.Fields).Length(2)
		gt.Value(t, att.Fields[0].Title).Equal("field")
		gt.Value(t, att.Fields[0].Value).Equal("start_date")
		gt.Value(t, att.Fields[1].Title).Equal("ticket_id")
		gt.Value(t, att.Fields[1].Value).Equal("7")
	})

	t.Run("returns error when Slack rejects the message", func(t *testing.T) {
		srv, _ := newSlackServer(t, false)
		n, err := slack.New("xoxb-test", "C123", slack.WithAPIURL(srv.URL+"/"))
		gt.NoError(t, err).Required()

		gt.Error(t, n.Alert(ctx, "title", goerr.New("boom")))
	})
}

func TestTruncateToMaxBytes(t *testing.T) {
	gt.Value(t, slack.TruncateToMaxBytes("hello", 10)).Equal("hello")
	gt.Value(t, slack.TruncateToMaxBytes("hello", 3)).Equal("hel")
	// "日本" is two 3-byte runes
	gt.Value(t, slack.TruncateToMaxBytes("日本", 4)).Equal("日")
	gt.Value(t, slack.TruncateToMaxBytes("日本", 2)).Equal("")
}
