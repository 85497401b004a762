package user

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Telephone string    `json:"telephone" db:"telephone"`
	Email     string    `json:"email" db:"email"`
	// Password carries the plain-text password from the request into the service.
	// It is never stored; the service replaces it with PasswordHash.
	Password     string    `json:"-" db:"-"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Filter narrows ListUsers. Empty fields are ignored; the remaining ones are
// case-insensitive substring matches combined with OR.
type Filter struct {
	Name      string
	Email     string
	Telephone string
}

func (f Filter) Normalize() Filter {
	return Filter{
		Name:      strings.TrimSpace(f.Name),
		Email:     strings.TrimSpace(f.Email),
		Telephone: strings.TrimSpace(f.Telephone),
	}
}

func (f Filter) IsEmpty() bool {
	n := f.Normalize()
	return n.Name == "" && n.Email == "" && n.Telephone == ""
}
