package domain

import (
	"fmt"
	"time"
)

// EntityKind is persisted verbatim in content_type columns; values must stay stable.
type EntityKind string

const (
	EntityProduct    EntityKind = "store.product"
	EntityCollection EntityKind = "store.collection"
)

func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case EntityProduct, EntityCollection:
		return EntityKind(s), nil
	default:
		return "", NewValidationError("content_type", fmt.Sprintf("unknown entity kind %q", s))
	}
}

type EntityRef struct {
	Kind EntityKind `json:"content_type"`
	ID   uint64     `json:"object_id"`
}

func (r EntityRef) String() string { return fmt.Sprintf("%s:%d", r.Kind, r.ID) }

// Association is the store-neutral view of a tagged or liked item.
// ActorID is the tag id for tags and the user id for likes.
type Association struct {
	ID        uint64    `json:"id"`
	ActorID   uint64    `json:"actor_id"`
	Label     string    `json:"label,omitempty"`
	Target    EntityRef `json:"target"`
	CreatedAt time.Time `json:"created_at"`
}

type Tag struct {
	ID    uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Label string `json:"label" gorm:"size:255;not null;uniqueIndex"`
}

type TaggedItem struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	TagID       uint64     `gorm:"not null;uniqueIndex:idx_tagged_target"`
	Tag         *Tag       `gorm:"constraint:OnDelete:CASCADE"`
	ContentType EntityKind `gorm:"size:100;not null;uniqueIndex:idx_tagged_target;index:idx_tagged_entity"`
	ObjectID    uint64     `gorm:"not null;uniqueIndex:idx_tagged_target;index:idx_tagged_entity"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
}

type LikedItem struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	UserID      uint64     `gorm:"not null;uniqueIndex:idx_liked_target"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE"`
	ContentType EntityKind `gorm:"size:100;not null;uniqueIndex:idx_liked_target;index:idx_liked_entity"`
	ObjectID    uint64     `gorm:"not null;uniqueIndex:idx_liked_target;index:idx_liked_entity"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
}
