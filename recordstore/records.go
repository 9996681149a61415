package recordstore

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownRole = errors.New("unknown role")

// Role is the access role of a User.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// ParseRole maps a stored or configured role name to a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMember:
		return RoleMember, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", errors.Join(ErrUnknownRole, errors.New(s))
	}
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Book is a catalog entry. Books are soft-deleted through Active and never removed.
type Book struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	PublishedYear   int       `json:"published_year"`
	Genre           string    `json:"genre"`
	AvailableCopies int       `json:"available_copies"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// User is a library member or administrator. Users are soft-deleted through Active.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Loan records one borrowed copy. ReturnDate is set if and only if Returned is true.
type Loan struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	BookID     uuid.UUID  `json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Returned   bool       `json:"returned"`
}

// IsOpen reports whether the loan still holds a copy.
func (l Loan) IsOpen() bool {
	return !l.Returned
}

// LoanView is a Loan together with the book and user attributes readers need to display it.
type LoanView struct {
	Loan
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
	BookActive bool   `json:"book_active"`
	UserName   string `json:"user_name"`
	UserEmail  string `json:"user_email"`
	UserActive bool   `json:"user_active"`
}

// Visibility selects how read paths treat soft-deleted records.
// Every read path takes it explicitly.
type Visibility int

const (
	// MemberView hides inactive books, and loans whose book or user is inactive.
	MemberView Visibility = iota

	// AdminView includes inactive records.
	AdminView
)

func (v Visibility) String() string {
	switch v {
	case MemberView:
		return "member"
	case AdminView:
		return "admin"
	default:
		return "unknown"
	}
}

// VisibilityFor returns the widest Visibility a caller with the given role may use.
func VisibilityFor(role Role) Visibility {
	if role.IsAdmin() {
		return AdminView
	}

	return MemberView
}

// LoanFilter narrows Loans. Zero IDs match every loan.
type LoanFilter struct {
	LoanID     uuid.UUID
	UserID     uuid.UUID
	BookID     uuid.UUID
	OnlyOpen   bool
	Visibility Visibility
}

// BookFilter narrows Books.
type BookFilter struct {
	Visibility Visibility
}
