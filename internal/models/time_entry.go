package models

import "time"

// TimeEntry records time a user spent on a task. A nil EndTime means the
// session is still running.
type TimeEntry struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	TaskID     string     `gorm:"size:32;index" json:"taskId" bson:"taskId"`
	UserID     string     `gorm:"size:64;index" json:"userId" bson:"userId"`
	ProjectID  string     `gorm:"size:32;index" json:"projectId" bson:"projectId"`
	StartTime  time.Time  `gorm:"not null" json:"startTime" bson:"startTime"`
	EndTime    *time.Time `json:"endTime" bson:"endTime"`
	DurationMs int64      `gorm:"default:0" json:"durationMs" bson:"durationMs"`
	Notes      string     `gorm:"type:text" json:"notes" bson:"notes"`
}
