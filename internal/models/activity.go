package models

import (
	"fmt"
	"time"
)

type ActivityVerb string

const (
	VerbAssigned  ActivityVerb = "assigned"
	VerbCommented ActivityVerb = "commented"
	VerbMentioned ActivityVerb = "mentioned"
)

// TargetKind names the entity type an Activity points at.
type TargetKind string

const (
	TargetTask    TargetKind = "task"
	TargetProject TargetKind = "project"
	TargetComment TargetKind = "comment"
	TargetTeam    TargetKind = "team"
)

// TargetRef is a typed reference to any entity.
type TargetRef struct {
	Kind TargetKind `json:"kind"`
	ID   uint64     `json:"id"`
}

func (r TargetRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Activity is an append-only fact. Nothing updates or deletes these rows.
type Activity struct {
	ID         uint64       `gorm:"primarykey" json:"id"`
	ActorID    uint64       `gorm:"not null" json:"actor_id"`
	Verb       ActivityVerb `gorm:"type:varchar(100);not null" json:"verb"`
	TargetKind TargetKind   `gorm:"type:varchar(30);not null" json:"target_kind"`
	TargetID   uint64       `gorm:"not null" json:"target_id"`
	ProjectID  *uint64      `json:"project_id"`
	CreatedAt  time.Time    `json:"created_at"`

	// Relations
	Actor User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

// Target returns the typed target reference.
func (a Activity) Target() TargetRef {
	return TargetRef{Kind: a.TargetKind, ID: a.TargetID}
}
