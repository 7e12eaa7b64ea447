package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eventika/venue-api/internal/logging"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type funcNotifier func(ctx context.Context, n Notification) error

func (f funcNotifier) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

func TestMulti(t *testing.T) {
	ok := funcNotifier(func(context.Context, Notification) error { return nil })
	fail := funcNotifier(func(context.Context, Notification) error { return errors.New("down") })
	msg := Notification{Reference: "r1", Title: "t", Content: "c"}

	t.Run("NoTargets", func(t *testing.T) {
		err := NewMulti(logging.Discard()).Notify(context.Background(), msg)
		assert.ErrorIs(t, err, ErrNoTargets)
	})

	t.Run("OneDelivered", func(t *testing.T) {
		m := NewMulti(logging.Discard()).Add("mail", fail).Add("discord", ok)
		assert.NoError(t, m.Notify(context.Background(), msg))
	})

	t.Run("AllFailed", func(t *testing.T) {
		m := NewMulti(logging.Discard()).Add("mail", fail).Add("discord", fail)
		err := m.Notify(context.Background(), msg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mail: down")
		assert.Contains(t, err.Error(), "discord: down")
	})
}

type fakeSession struct {
	channelID string
	content   string
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channelID = channelID
	f.content = content
	return &discordgo.Message{}, nil
}

func TestDiscordNotifier(t *testing.T) {
	session := &fakeSession{}
	n := &DiscordNotifier{session: session, channelID: "chan-1"}

	err := n.Notify(context.Background(), Notification{Title: "New Booking Request from Anna", Content: "Name: Anna"})
	require.NoError(t, err)
	assert.Equal(t, "chan-1", session.channelID)
	assert.Contains(t, session.content, "New Booking Request from Anna")
	assert.Contains(t, session.content, "Name: Anna")

	t.Run("Truncated", func(t *testing.T) {
		long := strings.Repeat("Å", 3000)
		require.NoError(t, n.Notify(context.Background(), Notification{Title: "t", Content: long}))
		assert.LessOrEqual(t, len(session.content), discordMessageLimit)
		assert.True(t, strings.HasSuffix(session.content, "…\n```"))
	})

	t.Run("MissingChannel", func(t *testing.T) {
		n := &DiscordNotifier{session: session}
		assert.Error(t, n.Notify(context.Background(), Notification{}))
	})
}

type fakeDialer struct {
	sent []*gomail.Message
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return nil
}

func TestMailNotifier(t *testing.T) {
	dialer := &fakeDialer{}
	n := &MailNotifier{dialer: dialer, from: "web@eventika.se", to: "mario@eventika.se"}

	err := n.Notify(context.Background(), Notification{
		Title:   "New Booking Request from Anna",
		Content: "Name: Anna",
		ReplyTo: "anna@example.com",
	})
	require.NoError(t, err)
	require.Len(t, dialer.sent, 1)

	m := dialer.sent[0]
	assert.Equal(t, []string{"mario@eventika.se"}, m.GetHeader("To"))
	assert.Equal(t, []string{"anna@example.com"}, m.GetHeader("Reply-To"))
	assert.Equal(t, []string{"New Booking Request from Anna"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Name: Anna")
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaNotifier(t *testing.T) {
	w := &fakeWriter{}
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	n := &KafkaNotifier{writer: w, now: func() time.Time { return at }}

	require.NoError(t, n.Notify(context.Background(), Notification{Reference: "ref-1", Title: "t", Content: "c"}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "ref-1", string(w.msgs[0].Key))

	var event BookingRequestedEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &event))
	assert.Equal(t, "booking_requested", event.Type)
	assert.Equal(t, at, event.CreatedAt)
}
