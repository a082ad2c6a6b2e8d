package models

import "time"

// Task is the core work item. List-valued fields are stored as JSON
// columns so the row keeps the shape of a single document.
type Task struct {
	ID             string          `gorm:"primaryKey;size:32" json:"id" bson:"_id"`
	Title          string          `gorm:"not null" json:"title" bson:"title"`
	Description    string          `gorm:"type:text" json:"description" bson:"description"`
	Category       string          `gorm:"size:64" json:"category" bson:"category"`
	Tags           []string        `gorm:"serializer:json;type:text" json:"tags" bson:"tags"`
	Project        string          `gorm:"size:32;not null;index" json:"project" bson:"project"`
	ParentTask     *string         `gorm:"size:32;index" json:"parentTask" bson:"parentTask"`
	Subtasks       []string        `gorm:"serializer:json;type:text" json:"subtasks" bson:"subtasks"`
	Level          int             `gorm:"default:0" json:"level" bson:"level"`
	Status         TaskStatus      `gorm:"size:16;default:ToDo;index" json:"status" bson:"status"`
	Priority       Priority        `gorm:"size:16;default:Medium" json:"priority" bson:"priority"`
	DueDate        *time.Time      `gorm:"index" json:"dueDate" bson:"dueDate"`
	EstimatedHours *float64        `json:"estimatedHours" bson:"estimatedHours"`
	ActualHours    *float64        `json:"actualHours" bson:"actualHours"`
	AssignedTo     []string        `gorm:"serializer:json;type:text" json:"assignedTo" bson:"assignedTo"`
	CreatedBy      string          `gorm:"size:64" json:"createdBy" bson:"createdBy"`
	Dependencies   []Dependency    `gorm:"serializer:json;type:text" json:"dependencies" bson:"dependencies"`
	Attachments    []Attachment    `gorm:"serializer:json;type:text" json:"attachments" bson:"attachments"`
	Comments       []Comment       `gorm:"serializer:json;type:text" json:"comments" bson:"comments"`
	Checklist      []ChecklistItem `gorm:"serializer:json;type:text" json:"checklist" bson:"checklist"`
	Recurrence     Recurrence      `gorm:"embedded;embeddedPrefix:recurrence_" json:"recurrence" bson:"recurrence"`
	Health         Health          `gorm:"embedded;embeddedPrefix:health_" json:"health" bson:"health"`
	CreatedAt      time.Time       `gorm:"autoCreateTime:false" json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime:false" json:"updatedAt" bson:"updatedAt"`
	CompletedAt    *time.Time      `json:"completedAt" bson:"completedAt"`
}

// IsTopLevel reports whether the task has no parent and is therefore
// listed directly on its project.
func (t *Task) IsTopLevel() bool {
	return t.ParentTask == nil || *t.ParentTask == ""
}

// CompletionTime returns when the task was completed, falling back to the
// last update for records written before CompletedAt existed.
func (t *Task) CompletionTime() time.Time {
	if t.CompletedAt != nil {
		return *t.CompletedAt
	}
	return t.UpdatedAt
}

// Dependency is a directed edge from the owning task to Task.
type Dependency struct {
	Task  string       `json:"task" bson:"task"`
	Type  RelationType `json:"type" bson:"type"`
	Delay float64      `json:"delay" bson:"delay"` // hours
}

// Attachment is a reference to an uploaded file.
type Attachment struct {
	ID         string    `json:"id" bson:"id"`
	Name       string    `json:"name" bson:"name"`
	URL        string    `json:"url" bson:"url"`
	Type       string    `json:"type" bson:"type"`
	UploadedBy string    `json:"uploadedBy" bson:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt" bson:"uploadedAt"`
}

// Comment is a note left on a task.
type Comment struct {
	ID        string    `json:"id" bson:"id"`
	Text      string    `json:"text" bson:"text"`
	Author    string    `json:"author" bson:"author"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	Mentions  []string  `json:"mentions" bson:"mentions"`
}

// ChecklistItem is one step of a task's checklist.
type ChecklistItem struct {
	Title       string     `json:"title" bson:"title"`
	Completed   bool       `json:"completed" bson:"completed"`
	CompletedAt *time.Time `json:"completedAt" bson:"completedAt"`
	CompletedBy string     `json:"completedBy" bson:"completedBy"`
}

// Recurrence holds the rule of a template task, or the back-reference of a
// generated instance. Occurrences of zero means no cap.
type Recurrence struct {
	IsRecurring           bool       `gorm:"default:false;index" json:"isRecurring" bson:"isRecurring"`
	ParentRecurringTaskID string     `gorm:"size:32;index" json:"parentRecurringTaskId,omitempty" bson:"parentRecurringTaskId,omitempty"`
	Frequency             Frequency  `gorm:"size:16" json:"frequency,omitempty" bson:"frequency,omitempty"`
	Interval              int        `json:"interval,omitempty" bson:"interval,omitempty"`
	DaysOfWeek            []int      `gorm:"serializer:json;type:text" json:"daysOfWeek,omitempty" bson:"daysOfWeek,omitempty"`
	EndDate               *time.Time `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Occurrences           int        `json:"occurrences,omitempty" bson:"occurrences,omitempty"`
}

// Health is the last computed schedule classification of a task.
type Health struct {
	Status           HealthStatus  `gorm:"size:16;default:on-track" json:"status" bson:"status"`
	LastCalculatedAt *time.Time    `json:"lastCalculatedAt" bson:"lastCalculatedAt"`
	Factors          HealthFactors `gorm:"embedded;embeddedPrefix:factor_" json:"factors" bson:"factors"`
}

// HealthFactors explains a Health status. DaysUntilDue is nil when the
// task has no due date.
type HealthFactors struct {
	DaysUntilDue          *int     `json:"daysUntilDue" bson:"daysUntilDue"`
	BlockedByDependencies bool     `json:"blockedByDependencies" bson:"blockedByDependencies"`
	ProgressRate          int      `json:"progressRate" bson:"progressRate"`
	RisksIdentified       []string `gorm:"serializer:json;type:text" json:"risksIdentified" bson:"risksIdentified"`
}
