package model

import "time"

// FallbackBirthYear is stored when Google reports a birthday without a year.
// The dashboard only ever uses the month/day portion, so the literal year is
// a harmless sentinel.
const FallbackBirthYear = 1900

// Contact is one synced Google contact that carries a birthday.
//
// ResourceName is the People API identifier (e.g. "people/c123456789") and,
// together with the owning UserID, forms the uniqueness key for upserts:
// re-running a sync overwrites rather than duplicates.
//
// Birthday is stored as a zero-padded "YYYY-MM-DD" string. When Google omits
// the year (common — people rarely share it), FallbackBirthYear is substituted.
type Contact struct {
	ID           string    `json:"id"           db:"id"`
	UserID       string    `json:"-"            db:"user_id"`
	ResourceName string    `json:"resourceName" db:"resource_name"`
	Name         string    `json:"name"         db:"name"`
	Email        string    `json:"email"        db:"email"`     // may be empty
	Birthday     string    `json:"birthday"     db:"birthday"`  // "YYYY-MM-DD"
	PhotoURL     string    `json:"photoUrl"     db:"photo_url"` // may be empty
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"    db:"updated_at"`
}

// ContactWithBirthday is a Contact annotated with the number of days until
// the next occurrence of its birthday. The field is derived at query time
// from today's date and the contact's month/day — it is never persisted.
type ContactWithBirthday struct {
	Contact
	DaysUntilBirthday int `json:"daysUntilBirthday"`
}
