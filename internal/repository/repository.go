package repository

import (
	"wordtrainer/internal/domain"
)

// UserStore persists the whole user document. Load returns every record
// normalized; Save replaces the stored document with users.
type UserStore interface {
	Load() (domain.Users, error)
	Save(users domain.Users) error
}
