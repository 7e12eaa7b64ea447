package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/eventika/venue-api/internal/ledger"
	"github.com/eventika/venue-api/internal/notifier"
	"github.com/eventika/venue-api/internal/pricing"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrDateUnavailable = errors.New("the requested date is already booked")
	ErrDeliveryFailed  = errors.New("booking request could not be delivered")
	ErrInProgress      = errors.New("a submission with this key is already being processed")
)

// Availability answers whether a calendar date is already taken.
type Availability interface {
	IsBooked(ctx context.Context, date string) (bool, error)
}

// Keys is the subset of dedup.Store the service needs.
type Keys interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
	Remember(ctx context.Context, key, value string, ttl time.Duration) error
	Recall(ctx context.Context, key string) (string, bool, error)
}

// claimTTL bounds how long an unfinished submission holds its key, so a
// crash between claiming and remembering does not block retries for the
// whole receipt lifetime.
const claimTTL = 2 * time.Minute

type Receipt struct {
	Reference string `json:"reference"`
	Total     int64  `json:"total"`
	Currency  string `json:"currency"`
	Duplicate bool   `json:"duplicate"`
}

type Service struct {
	notifier     notifier.Notifier
	availability Availability
	keys         Keys
	ttl          time.Duration
	log          *logrus.Logger
}

func NewService(n notifier.Notifier, availability Availability, keys Keys, ttl time.Duration, log *logrus.Logger) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{notifier: n, availability: availability, keys: keys, ttl: ttl, log: log}
}

// Submit validates the form and notifies the owner once per key. An
// empty key gets a fresh one, so only clients that send a key are
// protected against double submission.
func (s *Service) Submit(ctx context.Context, key string, p Payload) (Receipt, error) {
	p = p.Normalize()
	if err := Validate(p); err != nil {
		return Receipt{}, err
	}

	if key != "" {
		value, ok, err := s.keys.Recall(ctx, key)
		if err != nil {
			return Receipt{}, fmt.Errorf("recall submission: %w", err)
		}
		if ok {
			return decodeReceipt(value)
		}
	}

	if ledger.ValidateDate(p.Date) == nil && s.availability != nil {
		booked, err := s.availability.IsBooked(ctx, p.Date)
		if err != nil {
			return Receipt{}, fmt.Errorf("check availability: %w", err)
		}
		if booked {
			return Receipt{}, ErrDateUnavailable
		}
	}

	quote := pricing.Estimate(p.Selection)
	logger := s.log.WithFields(logrus.Fields{"date": p.Date, "total": quote.Total})
	if p.TotalEstimate != 0 && int64(math.Round(p.TotalEstimate)) != quote.Total {
		logger.WithField("client_total", p.TotalEstimate).Warn("client estimate differs from server quote")
	}

	if key == "" {
		key = uuid.NewString()
	}
	claimed, err := s.keys.Claim(ctx, key, min(claimTTL, s.ttl))
	if err != nil {
		return Receipt{}, fmt.Errorf("claim submission key: %w", err)
	}
	if !claimed {
		return s.previous(ctx, key)
	}

	receipt := Receipt{
		Reference: uuid.NewString(),
		Total:     quote.Total,
		Currency:  quote.Currency,
	}
	msg := ComposeSummary(p, quote)
	msg.Reference = receipt.Reference

	if err := s.notifier.Notify(ctx, msg); err != nil {
		logger.WithError(err).WithField("reference", receipt.Reference).Error("failed to send booking notification")
		// Let the visitor try again with the same key.
		if rerr := s.keys.Release(context.WithoutCancel(ctx), key); rerr != nil {
			logger.WithError(rerr).Warn("failed to release submission key")
		}
		return Receipt{}, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	data, _ := json.Marshal(receipt)
	if err := s.keys.Remember(context.WithoutCancel(ctx), key, string(data), s.ttl); err != nil {
		logger.WithError(err).Warn("failed to remember submission receipt")
	}

	logger.WithField("reference", receipt.Reference).Info("booking request delivered")
	return receipt, nil
}

func (s *Service) previous(ctx context.Context, key string) (Receipt, error) {
	value, ok, err := s.keys.Recall(ctx, key)
	if err != nil {
		return Receipt{}, fmt.Errorf("recall submission: %w", err)
	}
	if !ok {
		return Receipt{}, ErrInProgress
	}
	return decodeReceipt(value)
}

func decodeReceipt(value string) (Receipt, error) {
	var receipt Receipt
	if err := json.Unmarshal([]byte(value), &receipt); err != nil {
		return Receipt{}, fmt.Errorf("decode stored receipt: %w", err)
	}
	receipt.Duplicate = true
	return receipt, nil
}
