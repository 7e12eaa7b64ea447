package notifier

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Discord rejects channel messages longer than this.
const discordMessageLimit = 2000

type channelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   channelSender
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	n := &DiscordNotifier{channelID: channelID}
	if session != nil {
		n.session = session
	}
	return n
}

func (n *DiscordNotifier) Notify(ctx context.Context, msg Notification) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	message := fmt.Sprintf("📅 **%s**\n```\n%s\n```", msg.Title, msg.Content)
	if len(message) > discordMessageLimit {
		message = truncate(message, discordMessageLimit-len("…\n```")) + "…\n```"
	}

	_, err := n.session.ChannelMessageSend(n.channelID, message, discordgo.WithContext(ctx))
	return err
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && (s[cut]&0xC0) == 0x80 {
		cut--
	}
	return s[:cut]
}
