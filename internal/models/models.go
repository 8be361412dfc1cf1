// package models defines the data model for the ytdash web service
package models

import (
	"time"
)

// Model is a row the service persists. Only browser sessions are stored; YouTube data never is.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Repository is the CRUD surface shared by every table.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}

// SessionStorage is the session table as seen by the web session store.
//
// Save upserts; DeleteExpired returns how many rows were purged.
type SessionStorage interface {
	Repository[*Session]
	Save(session *Session) error
	DeleteExpired() (int64, error)
}
