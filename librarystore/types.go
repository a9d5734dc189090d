package librarystore

import (
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

// Book represents a title in the inventory together with its stock counter.
// AvailableQuantity is never negative; it is mutated only by the borrow and
// return operations of the storage engine (and direct admin stock edits).
type Book struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Author            string `json:"author"`
	ISBN              string `json:"isbn"`
	AvailableQuantity int    `json:"available_quantity"`
	ShelfLocation     string `json:"shelf_location"`
}

// User represents a registered account. PasswordHash holds the bcrypt hash of
// the password and is never serialized.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
}

// BorrowedBook is the reporting view of an active loan, joined with the
// display fields of the user and the book.
type BorrowedBook struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	BookID   int64  `json:"book_id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	DueDate  Date   `json:"due_date"`
}

// UserUpdate describes a partial user update. Nil fields leave the stored
// value unchanged. PasswordHash, when set, must already be hashed.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// BookUpdate describes a partial book update. Nil fields leave the stored
// value unchanged.
type BookUpdate struct {
	Title             *string
	Author            *string
	ISBN              *string
	AvailableQuantity *int
	ShelfLocation     *string
}

// Date is a calendar day without a time component, serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return Date{}, errors.Join(ErrInvalidDate, err)
	}

	return Date{t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON serializes the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return ErrInvalidDate
	}

	parsed, err := ParseDate(raw[1 : len(raw)-1])
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}
