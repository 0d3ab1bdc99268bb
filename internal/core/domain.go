package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

type (
	// TransactionType is stored as free text; comparison is always
	// case-insensitive and anything that is neither INCOME nor EXPENSE
	// falls outside both aggregation buckets.
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID       int64
		Name     string
		Amount   Money
		Type     TransactionType
		Category string
		Date     Date
		Note     string
	}

	User struct {
		ID       int64
		Name     string
		Email    string
		Password string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty name")
	ErrNameTooLong   = errors.New("name too long (max 200 characters)")
	ErrNoteTooLong   = errors.New("note too long (max 255 characters)")
	ErrEmptyEmail    = errors.New("empty email")
	ErrEmptyPassword = errors.New("empty password")
)

// Matches reports whether t equals other ignoring case.
func (t TransactionType) Matches(other TransactionType) bool {
	return strings.EqualFold(string(t), string(other))
}

// Recognized reports whether the type is one of the two known values.
func (t TransactionType) Recognized() bool {
	return t.Matches(Income) || t.Matches(Expense)
}

// ParseType normalizes user input to the canonical constant when it is a
// known type and returns the trimmed input untouched otherwise.
func ParseType(s string) TransactionType {
	t := TransactionType(strings.TrimSpace(s))
	switch {
	case t.Matches(Income):
		return Income
	case t.Matches(Expense):
		return Expense
	default:
		return t
	}
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a yyyy-mm-dd form value. An empty string yields the
// absent date without error.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true when the date is absent. Absent dates are excluded
// from monthly aggregation.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// Month returns the calendar month (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// String formats the date as yyyy-mm-dd, or "" when absent.
func (d Date) String() string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format("2006-01-02")
}

// InMonth reports whether the date falls in the given year+month.
// Always false for absent dates.
func (d Date) InMonth(m YearMonth) bool {
	if d.IsEmpty() {
		return false
	}
	return d.Year() == m.Year && d.Month() == m.Month
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month int // 1-12
}

// YearMonthOf returns the YearMonth containing t.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// Label formats the month for display, e.g. "December 2025".
func (m YearMonth) Label() string {
	return time.Month(m.Month).String() + " " + strconv.Itoa(m.Year)
}

// Validate checks the fields a form submission must carry. The type and the
// amount sign are deliberately not validated against each other.
func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Name)) == 0 {
		return ErrEmptyName
	}
	if len(t.Name) > 200 {
		return ErrNameTooLong
	}
	if len(t.Note) > 255 {
		return ErrNoteTooLong
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks a registration submission.
func (u User) Validate() error {
	if len(strings.TrimSpace(u.Name)) == 0 {
		return ErrEmptyName
	}
	if len(strings.TrimSpace(u.Email)) == 0 {
		return ErrEmptyEmail
	}
	if u.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}
