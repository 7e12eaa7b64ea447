package logging

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	if l := New("DEBUG", "json"); l.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", l.GetLevel())
	} else if _, ok := l.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("expected JSON formatter, got %T", l.Formatter)
	}

	if l := New("chatty", "text"); l.GetLevel() != logrus.InfoLevel {
		t.Errorf("unknown level should fall back to info, got %s", l.GetLevel())
	}
}

func TestDiscard(t *testing.T) {
	if l := Discard(); l.Out != io.Discard {
		t.Errorf("expected io.Discard output, got %T", l.Out)
	}
}
