// Package types holds the request and response shapes exchanged over
// HTTP. Persisted records live with the storage implementation; these
// structs are what clients send and receive.
//
// validate:"..." tags are checked by go-playground/validator before a
// request reaches storage.
package types

import "time"

// ── Students ────────────────────────────────────────────────────────────────

// StudentCreate is the signup payload.
type StudentCreate struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"required,max=100"`
	Email     string `json:"email"      validate:"required,email,max=255"`
	Matricule string `json:"matricule"  validate:"required,alphanum,max=32"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
}

// StudentUpdate is a partial update; nil fields are left untouched.
// A field that is present must still satisfy the signup rules, so a
// name cannot be blanked.
type StudentUpdate struct {
	FirstName *string `json:"first_name" validate:"omitnil,min=1,max=100"`
	LastName  *string `json:"last_name"  validate:"omitnil,min=1,max=100"`
	Email     *string `json:"email"      validate:"omitnil,email,max=255"`
	Matricule *string `json:"matricule"  validate:"omitnil,alphanum,max=32"`
	Password  *string `json:"password"   validate:"omitnil,min=8,max=72"`
}

// Student is the public view of a student. The password hash never
// leaves storage.
type Student struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Matricule string    `json:"matricule"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentExtra is a student together with the channels they follow.
type StudentExtra struct {
	Student
	Channels []Channel `json:"channels"`
}

// ── Channels ────────────────────────────────────────────────────────────────

// ChannelCreate is the payload for creating a channel. Names are unique.
type ChannelCreate struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// Channel is the public view of a channel.
type Channel struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ── Subscriptions ───────────────────────────────────────────────────────────

// SubscriptionCreate subscribes StudentID to ChannelID. Only the
// student themselves may do so.
type SubscriptionCreate struct {
	ChannelID int64 `json:"channel_id" validate:"required,gt=0"`
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}

// Subscription is one (channel, student) pair.
type Subscription struct {
	ChannelID int64     `json:"channel_id"`
	StudentID int64     `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SubscriptionExtra embeds both ends of the relation.
type SubscriptionExtra struct {
	Subscription
	Channel Channel `json:"channel"`
	Student Student `json:"student"`
}

// SubscriptionFilter narrows a subscription listing. Skip and Limit only
// apply when neither id filter is set.
type SubscriptionFilter struct {
	ChannelID *int64
	StudentID *int64
	Skip      int
	Limit     int
}

// ── Tokens ──────────────────────────────────────────────────────────────────

// TokenRequest carries the credentials exchanged for a bearer token.
type TokenRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Token is the response of POST /token. ExpiresIn is in seconds.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
