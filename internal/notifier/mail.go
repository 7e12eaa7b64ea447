package notifier

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailNotifier e-mails booking requests to the venue over SMTP.
type MailNotifier struct {
	dialer mailSender
	from   string
	to     string
}

func NewMailNotifier(host string, port int, username, password, from, to string) *MailNotifier {
	return &MailNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		to:     to,
	}
}

func (n *MailNotifier) Notify(ctx context.Context, msg Notification) error {
	if n.to == "" {
		return fmt.Errorf("mail recipient is empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Title)
	m.SetBody("text/plain", msg.Content)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send booking mail: %w", err)
	}
	return nil
}
