package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eventika/venue-api/internal/auth"
	"github.com/eventika/venue-api/internal/logging"
	"github.com/eventika/venue-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	owner    = &auth.Identity{UserID: 1, Subject: "owner-discord-id", Username: "mario"}
	stranger = &auth.Identity{UserID: 2, Subject: "someone-else", Username: "eve"}
)

func setup(t *testing.T) (*Ledger, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.BookedDate{}, &models.BookedDateHistory{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.Create(&models.User{DiscordID: owner.Subject, Username: owner.Username})
	db.Create(&models.User{DiscordID: stranger.Subject, Username: stranger.Username})

	return New(db, auth.OwnerPolicy{OwnerID: owner.Subject}, logging.Discard()), db
}

func note(s string) *string { return &s }

func countRows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	db.Model(&models.BookedDate{}).Count(&n)
	return n
}

func TestAddThenList(t *testing.T) {
	l, _ := setup(t)
	ctx := context.Background()

	row, created, err := l.Add(ctx, owner, "2025-06-15", note("Smith"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !created {
		t.Error("expected a new row")
	}
	if row.CreatedByID == nil || *row.CreatedByID != owner.UserID {
		t.Errorf("expected createdBy %d, got %v", owner.UserID, row.CreatedByID)
	}

	dates, err := l.PublicDates(ctx)
	if err != nil {
		t.Fatalf("PublicDates failed: %v", err)
	}
	if len(dates) != 1 || dates[0] != "2025-06-15" {
		t.Errorf("expected [2025-06-15], got %v", dates)
	}

	rows, err := l.AdminList(ctx, owner)
	if err != nil {
		t.Fatalf("AdminList failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Note == nil || *rows[0].Note != "Smith" {
		t.Errorf("expected one row with note Smith, got %+v", rows)
	}
}

func TestAddTwiceKeepsOneRow(t *testing.T) {
	l, db := setup(t)
	ctx := context.Background()

	if _, _, err := l.Add(ctx, owner, "2025-07-01", note("First")); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	_, created, err := l.Add(ctx, owner, "2025-07-01", note("Second"))
	if err != nil {
		t.Fatalf("second Add failed: %v", err)
	}
	if created {
		t.Error("second Add must not create a row")
	}

	if n := countRows(t, db); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
	rows, _ := l.AdminList(ctx, owner)
	if *rows[0].Note != "Second" {
		t.Errorf("expected note to be overwritten, got %q", *rows[0].Note)
	}
}

func TestPublicDatesSorted(t *testing.T) {
	l, _ := setup(t)
	ctx := context.Background()

	for _, d := range []string{"2025-09-01", "2025-06-15", "2025-07-20"} {
		if _, _, err := l.Add(ctx, owner, d, nil); err != nil {
			t.Fatalf("Add %s failed: %v", d, err)
		}
	}
	dates, _ := l.PublicDates(ctx)
	want := []string{"2025-06-15", "2025-07-20", "2025-09-01"}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, dates)
		}
	}
}

func TestAuthorization(t *testing.T) {
	l, db := setup(t)
	ctx := context.Background()

	if _, _, err := l.Add(ctx, owner, "2025-06-15", note("Smith")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	for _, tc := range []struct {
		name string
		id   *auth.Identity
		want error
	}{
		{"Anonymous", nil, ErrUnauthenticated},
		{"NotOwner", stranger, ErrForbidden},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := l.Add(ctx, tc.id, "2025-08-01", nil); !errors.Is(err, tc.want) {
				t.Errorf("Add: expected %v, got %v", tc.want, err)
			}
			if _, err := l.Update(ctx, tc.id, "2025-06-15", note("Hacked")); !errors.Is(err, tc.want) {
				t.Errorf("Update: expected %v, got %v", tc.want, err)
			}
			if err := l.Remove(ctx, tc.id, "2025-06-15"); !errors.Is(err, tc.want) {
				t.Errorf("Remove: expected %v, got %v", tc.want, err)
			}
			if _, err := l.AdminList(ctx, tc.id); !errors.Is(err, tc.want) {
				t.Errorf("AdminList: expected %v, got %v", tc.want, err)
			}
			if _, err := l.History(ctx, tc.id, 10); !errors.Is(err, tc.want) {
				t.Errorf("History: expected %v, got %v", tc.want, err)
			}
		})
	}

	if n := countRows(t, db); n != 1 {
		t.Errorf("expected state unchanged with 1 row, got %d", n)
	}
	rows, _ := l.AdminList(ctx, owner)
	if *rows[0].Note != "Smith" {
		t.Errorf("expected note unchanged, got %q", *rows[0].Note)
	}
}

func TestRemove(t *testing.T) {
	l, db := setup(t)
	ctx := context.Background()

	l.Add(ctx, owner, "2025-06-15", nil)
	l.Add(ctx, owner, "2025-06-16", nil)

	if err := l.Remove(ctx, owner, "2025-12-24"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if n := countRows(t, db); n != 2 {
		t.Fatalf("missing date removal must not touch other rows, got %d rows", n)
	}

	if err := l.Remove(ctx, owner, "2025-06-15"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	dates, _ := l.PublicDates(ctx)
	if len(dates) != 1 || dates[0] != "2025-06-16" {
		t.Errorf("expected [2025-06-16], got %v", dates)
	}

	// A removed date can be booked again.
	if _, created, err := l.Add(ctx, owner, "2025-06-15", nil); err != nil || !created {
		t.Errorf("expected re-add to create a row, created=%v err=%v", created, err)
	}
}

func TestUpdate(t *testing.T) {
	l, _ := setup(t)
	ctx := context.Background()

	if _, err := l.Update(ctx, owner, "2025-06-15", note("Nobody")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	l.Add(ctx, owner, "2025-06-15", note("Smith"))

	row, err := l.Update(ctx, owner, "2025-06-15", note("Johansson"))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if *row.Note != "Johansson" {
		t.Errorf("expected Johansson, got %q", *row.Note)
	}

	row, err = l.Update(ctx, owner, "2025-06-15", note("   "))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if row.Note != nil {
		t.Errorf("expected blank note to clear, got %q", *row.Note)
	}
}

func TestValidation(t *testing.T) {
	l, db := setup(t)
	ctx := context.Background()

	for _, d := range []string{"", "2025-6-15", "15-06-2025", "2025-02-30", "2025-13-01", "2025-06-15T00:00:00Z"} {
		if _, _, err := l.Add(ctx, owner, d, nil); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("date %q: expected ErrInvalidDate, got %v", d, err)
		}
	}

	if _, _, err := l.Add(ctx, owner, "2025-06-15", note(strings.Repeat("x", 13))); !errors.Is(err, ErrNoteTooLong) {
		t.Errorf("expected ErrNoteTooLong, got %v", err)
	}
	// Twelve characters, several of them multi-byte.
	if _, _, err := l.Add(ctx, owner, "2025-06-15", note("Åsa Öberg-Nä")); err != nil {
		t.Errorf("expected 12-rune note to be accepted, got %v", err)
	}

	if n := countRows(t, db); n != 1 {
		t.Errorf("expected only the valid add to persist, got %d rows", n)
	}
}

func TestHistory(t *testing.T) {
	l, _ := setup(t)
	ctx := context.Background()

	l.Add(ctx, owner, "2025-06-15", note("Smith"))
	l.Update(ctx, owner, "2025-06-15", note("Jones"))
	l.Remove(ctx, owner, "2025-06-15")

	rows, err := l.History(ctx, owner, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 history rows, got %d", len(rows))
	}
	want := []models.BookedDateAction{models.BookedDateRemoved, models.BookedDateUpdated, models.BookedDateAdded}
	for i, a := range want {
		if rows[i].Action != a {
			t.Errorf("row %d: expected %s, got %s", i, a, rows[i].Action)
		}
		if rows[i].ActorID != owner.UserID {
			t.Errorf("row %d: expected actor %d, got %d", i, owner.UserID, rows[i].ActorID)
		}
	}
}

func TestIsBooked(t *testing.T) {
	l, _ := setup(t)
	ctx := context.Background()

	l.Add(ctx, owner, "2025-06-15", nil)

	if booked, _ := l.IsBooked(ctx, "2025-06-15"); !booked {
		t.Error("expected 2025-06-15 to be booked")
	}
	if booked, _ := l.IsBooked(ctx, "2025-06-16"); booked {
		t.Error("expected 2025-06-16 to be free")
	}
}
