package mail

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	netmail "net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMailer() (*Mailer, *MemorySender) {
	sender := &MemorySender{}
	m := New(Config{From: "orders@vastra.in", FromName: "Vastra"}, sender)
	m.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return m, sender
}

func TestSendMultipartAlternative(t *testing.T) {
	m, sender := newTestMailer()

	msg := NewMessage().
		To("asha@example.com").
		BCC("audit@vastra.in").
		Subject("Order VST-8K2M confirmed ✓").
		Text("Thanks for your order").
		HTML("<p>Thanks for your order</p>")
	require.NoError(t, m.Send(context.Background(), msg))

	sent := sender.Messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "orders@vastra.in", sent[0].From)
	assert.Equal(t, []string{"asha@example.com", "audit@vastra.in"}, sent[0].To)
	assert.NotContains(t, string(sent[0].Raw), "audit@vastra.in", "BCC must not appear in headers")

	parsed, err := netmail.ReadMessage(strings.NewReader(string(sent[0].Raw)))
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Order VST-8K2M confirmed ✓", subject)

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(parsed.Body, params["boundary"])
	var types []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		types = append(types, strings.Split(p.Header.Get("Content-Type"), ";")[0])
	}
	assert.Equal(t, []string{"text/plain", "text/html"}, types)
}

func TestSendRequiresRecipient(t *testing.T) {
	m, _ := newTestMailer()
	err := m.Send(context.Background(), NewMessage().Subject("x").Text("y"))
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestSinglePartHTML(t *testing.T) {
	m, _ := newTestMailer()
	raw, err := m.Encode(NewMessage().To("a@b.c").Subject("Hi").HTML("<b>hi</b>"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `Content-Type: text/html; charset="UTF-8"`)
	assert.Contains(t, string(raw), "Message-ID: <")
	assert.True(t, strings.HasSuffix(string(raw), "<b>hi</b>"))
}
