package models

import "errors"

// ErrInvalidInput is wrapped by every validation failure so callers can
// match malformed requests with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "ToDo"
	StatusInProgress TaskStatus = "InProgress"
	StatusOnHold     TaskStatus = "OnHold"
	StatusCompleted  TaskStatus = "Completed"
	StatusCancelled  TaskStatus = "Cancelled"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Priority ranks tasks and projects.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// RelationType is the scheduling relation of a dependency edge.
type RelationType string

const (
	FinishToStart  RelationType = "finish-to-start"
	StartToStart   RelationType = "start-to-start"
	FinishToFinish RelationType = "finish-to-finish"
	StartToFinish  RelationType = "start-to-finish"
)

// Valid reports whether r is a known relation type.
func (r RelationType) Valid() bool {
	switch r {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	}
	return false
}

// Frequency is the stepping unit of a recurrence rule. FrequencyCustom is
// accepted on templates but produces no occurrences.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyCustom  Frequency = "custom"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyCustom:
		return true
	}
	return false
}

// HealthStatus classifies how a task is tracking against its schedule.
type HealthStatus string

const (
	HealthOnTrack HealthStatus = "on-track"
	HealthAtRisk  HealthStatus = "at-risk"
	HealthDelayed HealthStatus = "delayed"
	HealthAhead   HealthStatus = "ahead"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "Planning"
	ProjectInProgress ProjectStatus = "InProgress"
	ProjectOnHold     ProjectStatus = "OnHold"
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectCancelled  ProjectStatus = "Cancelled"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// Role is a project member's permission level.
type Role string

const (
	RoleAdmin       Role = "Admin"
	RoleContributor Role = "Contributor"
	RoleViewer      Role = "Viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleContributor, RoleViewer:
		return true
	}
	return false
}
