package db

import (
	"time"
)

// Swipe directions.
const (
	DirectionLike = "like"
	DirectionPass = "pass"
)

// User table. Profiles are created via guest signup or the seeder and are
// never hard-deleted; Active is the soft lifecycle flag.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	Name         string    `json:"name" gorm:"size:30;not null"`
	Age          int       `json:"age" gorm:"not null"`
	City         string    `json:"city" gorm:"size:40"`
	Bio          string    `json:"bio" gorm:"size:180"`
	PhotoURL     string    `json:"photoUrl" gorm:"size:512"`
	PasswordHash string    `json:"-" gorm:"size:255"`
	Active       bool      `json:"-" gorm:"default:true"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime;index:idx_users_created,sort:desc"`
	UpdatedAt    time.Time `json:"-" gorm:"autoUpdateTime"`
}

// Swipe is an actor's directional like/pass decision on a target.
//
// Composite PK: (ActorID, TargetID)
//   - Ensures a single row per ordered pair (overwrite guarantee).
//
// Indexes:
//   - idx_target_direction_updated_actor(target_id, direction, updated_at DESC, actor_id)
//     Optimizes "who liked me" lists with pagination.
//   - idx_actor_target_direction(actor_id, target_id, direction)
//     Optimizes the reverse-edge lookup during match reconciliation.
type Swipe struct {
	ActorID   string    `json:"userId" gorm:"primaryKey;size:64;index:idx_actor_target_direction,priority:1"`
	TargetID  string    `json:"targetId" gorm:"primaryKey;size:64;index:idx_target_direction_updated_actor,priority:1;index:idx_actor_target_direction,priority:2"`
	Direction string    `json:"direction" gorm:"size:8;not null;index:idx_target_direction_updated_actor,priority:2;index:idx_actor_target_direction,priority:3"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime;index:idx_target_direction_updated_actor,priority:3,sort:desc"`
}

// Match is the undirected relationship created the moment both directed
// likes exist. Exactly one row per unordered pair, enforced by the unique
// index on PairKey. Rows are never updated or deleted.
type Match struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserLow   string    `gorm:"size:64;not null;index"`
	UserHigh  string    `gorm:"size:64;not null;index"`
	PairKey   string    `gorm:"size:130;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// pairKeySeparator never appears in user ids.
const pairKeySeparator = ":"

// CanonicalPair sorts two user ids byte-wise and derives the order-independent
// pair key. Both halves of a reciprocal like produce the identical key, so the
// uniqueness constraint decides the race no matter which side swiped last.
func CanonicalPair(a, b string) (low, high, key string) {
	if b < a {
		a, b = b, a
	}
	return a, b, a + pairKeySeparator + b
}

// ChatMessage belongs to exactly one Match. Messages are immutable once
// created and ordered by creation time, id as tiebreaker. The chat id
// exposed over HTTP is the match id.
type ChatMessage struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	MatchID   string    `json:"chatId" gorm:"size:64;not null;index:idx_messages_match_created,priority:1"`
	SenderID  string    `json:"senderId" gorm:"size:64;not null"`
	Body      string    `json:"body" gorm:"size:1000;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime;index:idx_messages_match_created,priority:2"`
}

// PushSubscription is a browser web-push registration. Upserted on
// (user_id, endpoint); pruned when the push gateway reports the endpoint gone.
type PushSubscription struct {
	ID           string    `gorm:"primaryKey;size:64"`
	UserID       string    `gorm:"size:64;not null;index;uniqueIndex:idx_subs_user_endpoint,priority:1"`
	Endpoint     string    `gorm:"size:500;not null;uniqueIndex:idx_subs_user_endpoint,priority:2"`
	Subscription string    `gorm:"type:text;not null"` // raw subscription JSON from the browser
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// DeviceToken is an FCM registration. A token re-registered by another user
// moves to that user. Pruned when FCM reports the token unregistered.
type DeviceToken struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    string    `gorm:"size:64;not null;index"`
	Token     string    `gorm:"size:255;not null;uniqueIndex"`
	Platform  string    `gorm:"size:16;not null;default:android"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
