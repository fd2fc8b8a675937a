// file: internal/events/kudo_events.go
package events

// Event types emitted by the recognition engine.
const (
	EventKudoCreated  = "kudo.created"
	EventKudoLiked    = "kudo.liked"
	EventKudoUnliked  = "kudo.unliked"
	EventBadgeAwarded = "user.badge_awarded"
	EventLevelUp      = "user.level_up"
)

// KudoCreatedEvent is published after a kudo and its progression update
// have committed.
type KudoCreatedEvent struct {
	BaseEvent
	KudoID     int64  `json:"kudo_id"`
	FromUserID int64  `json:"from_user_id"`
	ToUserID   int64  `json:"to_user_id"`
	Category   string `json:"category"`
}

// NewKudoCreatedEvent creates a kudo.created event attributed to the
// sender.
func NewKudoCreatedEvent(kudoID, fromUserID, toUserID int64, category string) *KudoCreatedEvent {
	return &KudoCreatedEvent{
		BaseEvent:  NewBaseEvent(EventKudoCreated, &fromUserID),
		KudoID:     kudoID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Category:   category,
	}
}

// KudoLikeToggledEvent is published after a like toggle commits.
type KudoLikeToggledEvent struct {
	BaseEvent
	KudoID int64 `json:"kudo_id"`
	Liked  bool  `json:"liked"`
}

// NewKudoLikeToggledEvent creates a kudo.liked or kudo.unliked event.
func NewKudoLikeToggledEvent(kudoID, userID int64, liked bool) *KudoLikeToggledEvent {
	eventType := EventKudoUnliked
	if liked {
		eventType = EventKudoLiked
	}
	return &KudoLikeToggledEvent{
		BaseEvent: NewBaseEvent(eventType, &userID),
		KudoID:    kudoID,
		Liked:     liked,
	}
}

// BadgeAwardedEvent is published for each badge granted by progression.
type BadgeAwardedEvent struct {
	BaseEvent
	BadgeName string `json:"badge_name"`
}

// NewBadgeAwardedEvent creates a user.badge_awarded event for the
// recipient.
func NewBadgeAwardedEvent(userID int64, badgeName string) *BadgeAwardedEvent {
	return &BadgeAwardedEvent{
		BaseEvent: NewBaseEvent(EventBadgeAwarded, &userID),
		BadgeName: badgeName,
	}
}

// LevelUpEvent is published when progression raises a user's level.
type LevelUpEvent struct {
	BaseEvent
	OldLevel int `json:"old_level"`
	NewLevel int `json:"new_level"`
}

// NewLevelUpEvent creates a user.level_up event for the recipient.
func NewLevelUpEvent(userID int64, oldLevel, newLevel int) *LevelUpEvent {
	return &LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, &userID),
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
	}
}
