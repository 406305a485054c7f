// Package storage defines the contract every database backend must
// satisfy. Handlers depend only on these interfaces, so tests and
// alternative backends can be swapped in without touching them.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/channels-api/internal/types"
)

var (
	// ErrNotFound is returned when a lookup, update or delete matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when a write would violate a
	// uniqueness constraint (email, matricule, channel name or
	// subscription pair).
	ErrAlreadyExists = errors.New("record already exists")
)

// Students covers the student resource.
type Students interface {
	// CreateStudent inserts a student with an already hashed password.
	CreateStudent(ctx context.Context, in types.StudentCreate, passwordHash string) (types.Student, error)

	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// GetStudentExtra returns the student and the channels they follow.
	GetStudentExtra(ctx context.Context, id int64) (types.StudentExtra, error)

	// GetStudentCredentials returns the student owning email and the
	// stored password hash.
	GetStudentCredentials(ctx context.Context, email string) (types.Student, string, error)

	GetStudents(ctx context.Context, skip, limit int) ([]types.Student, error)

	// EmailTaken reports whether a student other than excludeID uses
	// email. Pass 0 to check against every student.
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)

	// MatriculeTaken is EmailTaken for the registration number.
	MatriculeTaken(ctx context.Context, matricule string, excludeID int64) (bool, error)

	// UpdateStudent applies the non-nil fields of in. An empty
	// passwordHash leaves the password unchanged.
	UpdateStudent(ctx context.Context, id int64, in types.StudentUpdate, passwordHash string) (types.Student, error)

	// DeleteStudent removes the student and their subscriptions.
	DeleteStudent(ctx context.Context, id int64) error
}

// Channels covers the channel resource.
type Channels interface {
	CreateChannel(ctx context.Context, in types.ChannelCreate) (types.Channel, error)
	GetChannelByID(ctx context.Context, id int64) (types.Channel, error)
	GetChannels(ctx context.Context, skip, limit int) ([]types.Channel, error)
	ChannelNameTaken(ctx context.Context, name string) (bool, error)
}

// Subscriptions covers the (channel, student) relation.
type Subscriptions interface {
	Subscribe(ctx context.Context, channelID, studentID int64) (types.Subscription, error)
	GetSubscription(ctx context.Context, channelID, studentID int64) (types.Subscription, error)
	ListSubscriptions(ctx context.Context, filter types.SubscriptionFilter) ([]types.SubscriptionExtra, error)
	Unsubscribe(ctx context.Context, channelID, studentID int64) error
}

// Storage is the full database contract used by the HTTP layer.
type Storage interface {
	Students
	Channels
	Subscriptions

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	Close() error
}
