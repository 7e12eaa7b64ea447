// Package ledger keeps the set of booked calendar dates. Anyone may read
// the dates; only the owner may read notes or change anything.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/eventika/venue-api/internal/auth"
	"github.com/eventika/venue-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MaxNoteLength bounds the operator label, in characters.
const MaxNoteLength = 12

const DateLayout = "2006-01-02"

var (
	ErrUnauthenticated = errors.New("sign-in required")
	ErrForbidden       = errors.New("only the owner can manage booked dates")
	ErrNotFound        = errors.New("booked date not found")
	ErrInvalidDate     = errors.New("date must be a calendar date in YYYY-MM-DD format")
	ErrNoteTooLong     = fmt.Errorf("note must be at most %d characters", MaxNoteLength)
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Policy decides who is the owner.
type Policy interface {
	IsOwner(id *auth.Identity) bool
}

type Ledger struct {
	db     *gorm.DB
	policy Policy
	log    *logrus.Logger
}

func New(db *gorm.DB, policy Policy, log *logrus.Logger) *Ledger {
	return &Ledger{db: db, policy: policy, log: log}
}

// ValidateDate accepts only real dates written as YYYY-MM-DD.
func ValidateDate(date string) error {
	if !datePattern.MatchString(date) {
		return ErrInvalidDate
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func normalizeNote(note *string) (*string, error) {
	if note == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > MaxNoteLength {
		return nil, ErrNoteTooLong
	}
	return &trimmed, nil
}

func (l *Ledger) authorize(id *auth.Identity) error {
	if id == nil {
		return ErrUnauthenticated
	}
	if !l.policy.IsOwner(id) {
		return ErrForbidden
	}
	return nil
}

// PublicDates lists booked dates only, ascending.
func (l *Ledger) PublicDates(ctx context.Context) ([]string, error) {
	dates := []string{}
	err := l.db.WithContext(ctx).Model(&models.BookedDate{}).Order("date asc").Pluck("date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("list booked dates: %w", err)
	}
	return dates, nil
}

// IsBooked reports whether date is in the ledger.
func (l *Ledger) IsBooked(ctx context.Context, date string) (bool, error) {
	var count int64
	if err := l.db.WithContext(ctx).Model(&models.BookedDate{}).Where("date = ?", date).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check booked date: %w", err)
	}
	return count > 0, nil
}

// AdminList returns full rows for the owner.
func (l *Ledger) AdminList(ctx context.Context, id *auth.Identity) ([]models.BookedDate, error) {
	if err := l.authorize(id); err != nil {
		return nil, err
	}
	rows := []models.BookedDate{}
	if err := l.db.WithContext(ctx).Order("date asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list booked dates: %w", err)
	}
	return rows, nil
}

// Add books date. An existing date keeps its row and gets the new note,
// so a date is never stored twice. created reports whether a row was
// inserted.
func (l *Ledger) Add(ctx context.Context, id *auth.Identity, date string, note *string) (models.BookedDate, bool, error) {
	if err := l.authorize(id); err != nil {
		return models.BookedDate{}, false, err
	}
	if err := ValidateDate(date); err != nil {
		return models.BookedDate{}, false, err
	}
	note, err := normalizeNote(note)
	if err != nil {
		return models.BookedDate{}, false, err
	}

	row, created, err := l.upsert(ctx, id, date, note)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost an insert race on the unique index; the row exists now.
		row, created, err = l.upsert(ctx, id, date, note)
	}
	if err != nil {
		return models.BookedDate{}, false, fmt.Errorf("add booked date: %w", err)
	}

	l.log.WithFields(logrus.Fields{"date": date, "created": created}).Info("booked date saved")
	return row, created, nil
}

func (l *Ledger) upsert(ctx context.Context, id *auth.Identity, date string, note *string) (models.BookedDate, bool, error) {
	var row models.BookedDate
	created := false
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.BookedDate{Date: date}).FirstOrInit(&row).Error; err != nil {
			return err
		}

		created = row.ID == 0
		action := models.BookedDateUpdated
		if created {
			action = models.BookedDateAdded
			if id.UserID != 0 {
				userID := id.UserID
				row.CreatedByID = &userID
			}
		}
		row.Date = date
		row.Note = note

		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return recordHistory(tx, action, date, note, id)
	})
	return row, created, err
}

// Update replaces the note of an existing date.
func (l *Ledger) Update(ctx context.Context, id *auth.Identity, date string, note *string) (models.BookedDate, error) {
	if err := l.authorize(id); err != nil {
		return models.BookedDate{}, err
	}
	if err := ValidateDate(date); err != nil {
		return models.BookedDate{}, err
	}
	note, err := normalizeNote(note)
	if err != nil {
		return models.BookedDate{}, err
	}

	var row models.BookedDate
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ?", date).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		row.Note = note
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return recordHistory(tx, models.BookedDateUpdated, date, note, id)
	})
	if errors.Is(err, ErrNotFound) {
		return models.BookedDate{}, err
	}
	if err != nil {
		return models.BookedDate{}, fmt.Errorf("update booked date: %w", err)
	}
	return row, nil
}

// Remove deletes date. Removing a date that is not booked returns
// ErrNotFound and changes nothing.
func (l *Ledger) Remove(ctx context.Context, id *auth.Identity, date string) error {
	if err := l.authorize(id); err != nil {
		return err
	}
	if err := ValidateDate(date); err != nil {
		return err
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("date = ?", date).Delete(&models.BookedDate{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return recordHistory(tx, models.BookedDateRemoved, date, nil, id)
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("remove booked date: %w", err)
	}

	l.log.WithField("date", date).Info("booked date removed")
	return nil
}

// History returns the most recent ledger changes first.
func (l *Ledger) History(ctx context.Context, id *auth.Identity, limit int) ([]models.BookedDateHistory, error) {
	if err := l.authorize(id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows := []models.BookedDateHistory{}
	if err := l.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return rows, nil
}

func recordHistory(tx *gorm.DB, action models.BookedDateAction, date string, note *string, id *auth.Identity) error {
	return tx.Create(&models.BookedDateHistory{
		Action:  action,
		Date:    date,
		Note:    note,
		ActorID: id.UserID,
	}).Error
}
