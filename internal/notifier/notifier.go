package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Notification is the opaque title + content pair delivered to the venue.
type Notification struct {
	Reference string
	Title     string
	Content   string
	ReplyTo   string
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

var ErrNoTargets = errors.New("no notification targets configured")

type target struct {
	name     string
	notifier Notifier
}

// Multi delivers to every configured target. A notification counts as
// delivered when at least one target accepted it.
type Multi struct {
	targets []target
	log     *logrus.Logger
}

func NewMulti(log *logrus.Logger) *Multi {
	return &Multi{log: log}
}

func (m *Multi) Add(name string, n Notifier) *Multi {
	m.targets = append(m.targets, target{name: name, notifier: n})
	return m
}

func (m *Multi) Len() int { return len(m.targets) }

func (m *Multi) Notify(ctx context.Context, n Notification) error {
	if len(m.targets) == 0 {
		return ErrNoTargets
	}

	var errs []error
	delivered := 0
	for _, t := range m.targets {
		if err := t.notifier.Notify(ctx, n); err != nil {
			m.log.WithFields(logrus.Fields{
				"target":    t.name,
				"reference": n.Reference,
			}).WithError(err).Warn("notification target failed")
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return errors.Join(errs...)
	}
	return nil
}
