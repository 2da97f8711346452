package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ContributorStatus is the lifecycle state of a registered contributor.
type ContributorStatus string

const (
	StatusActive    ContributorStatus = "Ativo"
	StatusInactive  ContributorStatus = "Inativo"
	StatusSuspended ContributorStatus = "Suspenso"
)

// Category classifies a contribution. CategoryTithe is the only category
// counted as a tithe; every other value is reported as an offering.
type Category string

const (
	CategoryTithe        Category = "Dízimo"
	CategoryGratitude    Category = "Oferta de Gratidão"
	CategorySpecial      Category = "Oferta Especial"
	CategoryMissions     Category = "Missões"
	CategoryConstruction Category = "Construção"
	CategoryOther        Category = "Outros"
)

// PaymentMethod is how a contribution was received.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "Dinheiro"
	PaymentPix      PaymentMethod = "PIX"
	PaymentCard     PaymentMethod = "Cartão"
	PaymentTransfer PaymentMethod = "Transferência"
	PaymentCheck    PaymentMethod = "Cheque"
	PaymentOther    PaymentMethod = "Outros"
)

type (
	// Date is a calendar date. The time-of-day portion is always midnight UTC.
	Date struct {
		time.Time
	}

	// Money is a monetary amount in cents.
	Money struct {
		Cents int64
	}

	Contributor struct {
		ID         int64
		Name       string
		Phone      string
		Email      string
		Address    string
		BirthDate  Date
		Occupation string
		Status     ContributorStatus
		Notes      string
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	Contribution struct {
		ID            int64
		ContributorID int64
		Category      Category
		Amount        Money
		Date          Date
		Payment       PaymentMethod
		Envelope      string
		Notes         string
		RecordedBy    string
		CreatedAt     time.Time
		UpdatedAt     time.Time

		// Filled by the storage layer when listing, from the owning
		// contributor record.
		ContributorName  string
		ContributorPhone string
	}
)

var (
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidPhone       = errors.New("invalid phone")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidPayment     = errors.New("invalid payment method")
	ErrMissingContributor = errors.New("missing contributor reference")
)

var (
	phonePattern = regexp.MustCompile(`^[0-9()+\-. ]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)
)

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SameMonth reports whether the date falls in the given calendar month.
func (d Date) SameMonth(year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}

func (s ContributorStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

func (c Category) Valid() bool {
	switch c {
	case CategoryTithe, CategoryGratitude, CategorySpecial,
		CategoryMissions, CategoryConstruction, CategoryOther:
		return true
	}
	return false
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentPix, PaymentCard,
		PaymentTransfer, PaymentCheck, PaymentOther:
		return true
	}
	return false
}

func (c Contributor) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if c.Phone != "" && !phonePattern.MatchString(c.Phone) {
		return ErrInvalidPhone
	}
	if c.Email != "" && !emailPattern.MatchString(c.Email) {
		return ErrInvalidEmail
	}
	if !c.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (c Contribution) Validate() error {
	if c.ContributorID <= 0 {
		return ErrMissingContributor
	}
	if !c.Category.Valid() {
		return ErrInvalidCategory
	}
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	if err := c.Date.Validate(); err != nil {
		return err
	}
	if !c.Payment.Valid() {
		return ErrInvalidPayment
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}
