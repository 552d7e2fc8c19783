package notification

import (
	"context"
	"encoding/json"
	gohttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vastra/pkg/mail"
)

type newOrder struct{ number string }

func (n *newOrder) Via() []string { return []string{Mail, Slack, Broadcast} }

func (n *newOrder) ToMail() *mail.Message {
	return mail.NewMessage().Subject("New order " + n.number).Text("A new order arrived")
}

func (n *newOrder) ToSlack() SlackMessage {
	return SlackMessage{Text: "New order " + n.number}
}

func (n *newOrder) ToBroadcast() (string, any) {
	return "order.placed", map[string]string{"order_number": n.number}
}

type hub struct{ events []string }

func (h *hub) Publish(event string, _ any) error {
	h.events = append(h.events, event)
	return nil
}

func TestSendAllChannels(t *testing.T) {
	var slackText string
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		var msg SlackMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		slackText = msg.Text
	}))
	defer srv.Close()

	sender := &mail.MemorySender{}
	h := &hub{}
	nt := &Notifier{
		Mailer:   mail.New(mail.Config{From: "orders@vastra.in"}, sender),
		SlackURL: srv.URL,
		Hub:      h,
	}

	require.NoError(t, nt.Send(context.Background(), "ops@vastra.in", &newOrder{number: "VS-1"}))

	sent := sender.Messages()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"ops@vastra.in"}, sent[0].To)
	assert.Equal(t, "New order VS-1", slackText)
	assert.Equal(t, []string{"order.placed"}, h.events)
}

func TestUnconfiguredChannelsAreSkipped(t *testing.T) {
	nt := &Notifier{}
	assert.NoError(t, nt.Send(context.Background(), "", &newOrder{number: "VS-2"}))
}

func TestSlackFailureIsReported(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		w.WriteHeader(gohttp.StatusForbidden)
	}))
	defer srv.Close()

	nt := &Notifier{SlackURL: srv.URL}
	err := nt.Send(context.Background(), "", &newOrder{number: "VS-3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack")
}
