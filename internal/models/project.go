package models

import "time"

// Project groups tasks. Tasks lists top-level task ids only; subtasks are
// reachable through their parent.
type Project struct {
	ID          string        `gorm:"primaryKey;size:32" json:"id" bson:"_id"`
	Title       string        `gorm:"not null" json:"title" bson:"title"`
	Description string        `gorm:"type:text" json:"description" bson:"description"`
	Deadline    *time.Time    `json:"deadline" bson:"deadline"`
	Priority    Priority      `gorm:"size:16;default:Medium" json:"priority" bson:"priority"`
	Status      ProjectStatus `gorm:"size:16;default:Planning;index" json:"status" bson:"status"`
	Progress    int           `gorm:"default:0" json:"progress" bson:"progress"`
	Members     []Member      `gorm:"serializer:json;type:text" json:"members" bson:"members"`
	Tasks       []string      `gorm:"serializer:json;type:text" json:"tasks" bson:"tasks"`
	Activity    []Activity    `gorm:"serializer:json;type:mediumtext" json:"activity" bson:"activity"`
	CreatedBy   string        `gorm:"size:64;not null" json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time     `gorm:"autoCreateTime:false" json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime:false" json:"updatedAt" bson:"updatedAt"`
}

// Member is a user's membership in a project.
type Member struct {
	User     string    `json:"user" bson:"user"`
	Role     Role      `json:"role" bson:"role"`
	JoinedAt time.Time `json:"joinedAt" bson:"joinedAt"`
}

// Activity is an append-only audit entry on a project.
type Activity struct {
	Action      string    `json:"action" bson:"action"`
	Description string    `json:"description" bson:"description"`
	User        string    `json:"user" bson:"user"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}
