package models

import "time"

// Subscription records that UserID follows AuthorID. A user cannot
// follow themselves; the handlers reject it before the duplicate check
// and the check constraint backs them up at the store level.
type Subscription struct {
	ID        uint `gorm:"primarykey" json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_subscription_pair;check:chk_no_self_follow,user_id <> author_id" json:"user_id"`
	AuthorID  uint `gorm:"not null;uniqueIndex:idx_subscription_pair" json:"author_id"`
	CreatedAt time.Time
}
