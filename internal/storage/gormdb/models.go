package gormdb

import (
	"time"

	"github.com/aanand-mishra/channels-api/internal/types"
)

// Student is the persisted student row.
type Student struct {
	ID           int64     `gorm:"primaryKey"`
	FirstName    string    `gorm:"size:100;not null"`
	LastName     string    `gorm:"size:100;not null"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	Matricule    string    `gorm:"size:32;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"<-:create"`
	UpdatedAt    time.Time
}

// TableName implements schema.Tabler.
func (Student) TableName() string { return "students" }

// Channel is the persisted channel row.
type Channel struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"size:100;not null;uniqueIndex"`
	Description string    `gorm:"size:500"`
	CreatedAt   time.Time `gorm:"<-:create"`
}

// TableName implements schema.Tabler.
func (Channel) TableName() string { return "channels" }

// Subscription is keyed by the (channel_id, student_id) pair, so a
// student can follow a channel at most once.
type Subscription struct {
	ChannelID int64     `gorm:"primaryKey;autoIncrement:false"`
	StudentID int64     `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"<-:create"`

	Channel Channel `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
}

// TableName implements schema.Tabler.
func (Subscription) TableName() string { return "subscriptions" }

func (s Student) toType() types.Student {
	return types.Student{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Matricule: s.Matricule,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (c Channel) toType() types.Channel {
	return types.Channel{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

func (s Subscription) toType() types.Subscription {
	return types.Subscription{
		ChannelID: s.ChannelID,
		StudentID: s.StudentID,
		CreatedAt: s.CreatedAt,
	}
}

// toExtra expects Channel and Student to be preloaded.
func (s Subscription) toExtra() types.SubscriptionExtra {
	return types.SubscriptionExtra{
		Subscription: s.toType(),
		Channel:      s.Channel.toType(),
		Student:      s.Student.toType(),
	}
}
