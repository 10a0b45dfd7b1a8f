package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/birthday-board/internal/apperror"
	"github.com/sakif/birthday-board/internal/model"
	"github.com/sakif/birthday-board/internal/people"
	"github.com/sakif/birthday-board/internal/repository"
)

// unknownName is stored when a contact carries a birthday but no name.
const unknownName = "Unknown"

// ContactService owns the two contact pipelines: the on-demand sync from the
// People API and the birthday-annotated query behind the dashboard.
type ContactService struct {
	users       repository.UserRepository
	contacts    repository.ContactRepository
	connections people.ConnectionLister
	logger      *slog.Logger
}

// NewContactService creates a ContactService with all required dependencies.
func NewContactService(
	users repository.UserRepository,
	contacts repository.ContactRepository,
	connections people.ConnectionLister,
	logger *slog.Logger,
) *ContactService {
	return &ContactService{
		users:       users,
		contacts:    contacts,
		connections: connections,
		logger:      logger,
	}
}

// Sync runs the single-pass contact pipeline for a user and returns how many
// contacts were written:
//
//	resolve tokens → list connections → filter to birthday-bearers
//	→ normalize → bulk-upsert
//
// The pipeline is stateless and idempotent: the upsert keys on
// (user, resource name), so running it twice against the same upstream data
// writes the same rows twice rather than duplicating them.
//
// FAILURE POLICY: an unknown user surfaces as apperror.ErrNotFound (the
// session referenced a deleted account — the handler answers 404). Every
// other failure, upstream or storage, wraps into a single ErrSyncFailed with
// the cause attached. No partial success, no retry.
func (s *ContactService) Sync(ctx context.Context, userID string) (int, error) {
	tokens, err := s.users.GetTokens(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("service/contacts: resolving tokens: %w", apperror.SyncFailed(err))
	}
	if tokens.AccessToken == "" {
		return 0, apperror.Unauthenticated("no access token stored for user")
	}

	persons, err := s.connections.ListConnections(ctx, tokens.AccessToken, tokens.RefreshToken)
	if err != nil {
		return 0, fmt.Errorf("service/contacts: listing connections: %w", apperror.SyncFailed(err))
	}

	contacts := normalizeContacts(persons)

	if err := s.contacts.UpsertBatch(ctx, userID, contacts); err != nil {
		return 0, fmt.Errorf("service/contacts: storing contacts: %w", apperror.SyncFailed(err))
	}

	s.logger.Info("contacts synced",
		slog.String("userID", userID),
		slog.Int("fetched", len(persons)),
		slog.Int("stored", len(contacts)),
	)

	return len(contacts), nil
}

// normalizeContacts filters the upstream page down to birthday-bearing
// entries and flattens each one into the stored shape:
//
//   - first birthday record with a dated month/day → "YYYY-MM-DD",
//     zero-padded, with model.FallbackBirthYear when the year is absent
//   - first name, or "Unknown" when the contact has none
//   - first email / first photo, or empty when missing
//
// Entries without any usable birthday are dropped entirely — they never
// reach storage.
func normalizeContacts(persons []people.Person) []model.Contact {
	contacts := make([]model.Contact, 0, len(persons))
	for _, p := range persons {
		date, ok := firstBirthdayDate(p.Birthdays)
		if !ok {
			continue
		}

		year := date.Year
		if year == 0 {
			year = model.FallbackBirthYear
		}

		c := model.Contact{
			ResourceName: p.ResourceName,
			Name:         unknownName,
			Birthday:     fmt.Sprintf("%04d-%02d-%02d", year, date.Month, date.Day),
		}
		if len(p.Names) > 0 && p.Names[0].DisplayName != "" {
			c.Name = p.Names[0].DisplayName
		}
		if len(p.EmailAddresses) > 0 {
			c.Email = p.EmailAddresses[0].Value
		}
		if len(p.Photos) > 0 {
			c.PhotoURL = p.Photos[0].URL
		}

		contacts = append(contacts, c)
	}
	return contacts
}

// firstBirthdayDate returns the first birthday record that actually carries
// a month/day. Google sometimes sends a birthday entry with a free-text
// value and no structured date — those are unusable here.
func firstBirthdayDate(birthdays []people.Birthday) (people.Date, bool) {
	for _, b := range birthdays {
		if b.Date != nil && b.Date.Month > 0 && b.Date.Day > 0 {
			return *b.Date, true
		}
	}
	return people.Date{}, false
}

// ListWithBirthdays returns the user's stored contacts annotated with the
// days until each one's next birthday, sorted soonest-first (ties broken by
// name). The computation uses only the month/day — the stored year, real or
// sentinel, never matters.
func (s *ContactService) ListWithBirthdays(ctx context.Context, userID string, today time.Time) ([]model.ContactWithBirthday, error) {
	stored, err := s.contacts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/contacts: listing stored contacts: %w", err)
	}

	annotated := make([]model.ContactWithBirthday, 0, len(stored))
	for _, c := range stored {
		days, err := DaysUntilBirthday(c.Birthday, today)
		if err != nil {
			// A malformed stored birthday means the sync wrote something it
			// shouldn't have. Log it and skip the row rather than failing
			// the whole dashboard.
			s.logger.Warn("skipping contact with malformed birthday",
				slog.String("contactID", c.ID),
				slog.String("birthday", c.Birthday),
			)
			continue
		}
		annotated = append(annotated, model.ContactWithBirthday{
			Contact:           c,
			DaysUntilBirthday: days,
		})
	}

	sort.Slice(annotated, func(i, j int) bool {
		if annotated[i].DaysUntilBirthday != annotated[j].DaysUntilBirthday {
			return annotated[i].DaysUntilBirthday < annotated[j].DaysUntilBirthday
		}
		return annotated[i].Name < annotated[j].Name
	})

	return annotated, nil
}

// DaysUntilBirthday computes the whole days from today until the next
// occurrence of the birthday's month/day: this year if it hasn't passed yet,
// next year otherwise, 0 on the birthday itself.
//
// Both endpoints are normalized to UTC midnights, so the difference is an
// exact multiple of 24h regardless of the server's zone or DST transitions.
// Feb 29 in a non-leap year normalizes to Mar 1 via time.Date's rollover,
// matching how most calendars roll the celebration forward.
func DaysUntilBirthday(birthday string, today time.Time) (int, error) {
	month, day, err := parseBirthdayMonthDay(birthday)
	if err != nil {
		return 0, err
	}

	ty, tm, td := today.Date()
	todayMid := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)

	next := time.Date(ty, month, day, 0, 0, 0, 0, time.UTC)
	if next.Before(todayMid) {
		next = time.Date(ty+1, month, day, 0, 0, 0, 0, time.UTC)
	}

	return int(next.Sub(todayMid) / (24 * time.Hour)), nil
}

// parseBirthdayMonthDay pulls the month and day out of a stored "YYYY-MM-DD"
// string by hand rather than through time.Parse: the stored fallback year is
// not a leap year, so time.Parse would reject a perfectly valid year-less
// Feb 29 birthday as "day out of range".
func parseBirthdayMonthDay(birthday string) (time.Month, int, error) {
	parts := strings.Split(birthday, "-")
	if len(parts) != 3 {
		return 0, 0, fmt.Errorf("malformed birthday %q", birthday)
	}
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("malformed birthday year in %q", birthday)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("malformed birthday month in %q", birthday)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("malformed birthday day in %q", birthday)
	}
	return time.Month(month), day, nil
}
