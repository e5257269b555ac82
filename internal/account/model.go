package account

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates no account matched the lookup.
	ErrNotFound = errors.New("account not found")
	// ErrConflict indicates a unique constraint on phone number or channel id rejected a write.
	ErrConflict = errors.New("conflicting account identity")
	// ErrAlreadyExists is returned when provisioning an account whose phone or channel is taken.
	ErrAlreadyExists = errors.New("account already exists")
	// ErrInvalidInput signals missing or malformed fields on an admin request.
	ErrInvalidInput = errors.New("invalid account input")
)

// Tier is the subscription plan.
type Tier string

const (
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierBasic || t == TierPremium
}

const placeholderPrefix = "manual_"

// ChannelIdentity is either an unconfirmed placeholder assigned at provisioning time
// or a confirmed messaging-channel id. It moves from unconfirmed to confirmed once.
type ChannelIdentity struct {
	id        string
	confirmed bool
}

// PlaceholderIdentity mints a fresh unconfirmed identity.
func PlaceholderIdentity() ChannelIdentity {
	return ChannelIdentity{id: placeholderPrefix + uuid.NewString()}
}

// UnconfirmedIdentity restores a stored placeholder.
func UnconfirmedIdentity(id string) ChannelIdentity {
	return ChannelIdentity{id: id}
}

// ConfirmedIdentity wraps a real channel id.
func ConfirmedIdentity(id string) ChannelIdentity {
	return ChannelIdentity{id: id, confirmed: true}
}

// ID returns the stored identifier, placeholder or real.
func (c ChannelIdentity) ID() string { return c.id }

// Confirmed reports whether the id came from the messaging channel.
func (c ChannelIdentity) Confirmed() bool { return c.confirmed }

// Profile carries the names the messaging channel reports for a user.
type Profile struct {
	FirstName string
	LastName  string
	Username  string
}

// overlay returns p with every non-empty field of next applied on top.
func (p Profile) overlay(next Profile) Profile {
	if next.FirstName != "" {
		p.FirstName = next.FirstName
	}
	if next.LastName != "" {
		p.LastName = next.LastName
	}
	if next.Username != "" {
		p.Username = next.Username
	}
	return p
}

// Subscription describes paid access.
type Subscription struct {
	Tier      Tier
	Active    bool
	StartDate *time.Time
	EndDate   *time.Time
}

// Progress records one lesson's completion state.
type Progress struct {
	LessonID    int
	Completed   bool
	CompletedAt time.Time
}

// Account is one learner.
type Account struct {
	ID           string
	Channel      ChannelIdentity
	Profile      Profile
	PhoneNumber  string
	Subscription Subscription
	Progress     []Progress
	CreatedAt    time.Time
}

// Stats summarises the account base for the admin dashboard.
type Stats struct {
	TotalAccounts       int64
	ActiveSubscriptions int64
	CompletedLessons    int64
	CreatedSince        int64
}

// NormalizePhone returns the canonical form of a phone number: trimmed, with a leading plus.
func NormalizePhone(raw string) string {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return ""
	}
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return phone
}
