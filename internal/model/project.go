package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProjectType string

const (
	ProjectTypePersonal ProjectType = "personal"
	ProjectTypeOrder    ProjectType = "order"
)

func (t ProjectType) Valid() bool {
	return t == ProjectTypePersonal || t == ProjectTypeOrder
}

type ProjectStatus string

const (
	StatusIdea       ProjectStatus = "idea"
	StatusAgreement  ProjectStatus = "agreement"
	StatusInProgress ProjectStatus = "in_progress"
	StatusCompleted  ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusIdea, StatusAgreement, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// InitialStatus: personal projects start as an idea, orders start in agreement.
func InitialStatus(t ProjectType) ProjectStatus {
	if t == ProjectTypeOrder {
		return StatusAgreement
	}
	return StatusIdea
}

// StatusesFor lists the statuses a user may pick for a project of type t.
func StatusesFor(t ProjectType) []ProjectStatus {
	if t == ProjectTypeOrder {
		return []ProjectStatus{StatusAgreement, StatusInProgress, StatusCompleted}
	}
	return []ProjectStatus{StatusIdea, StatusInProgress, StatusCompleted}
}

type Project struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"user_id"`
	Name        string              `json:"name"`
	Type        ProjectType         `json:"type"`
	Status      ProjectStatus       `json:"status"`
	Deadline    *time.Time          `json:"deadline,omitempty"`
	Cost        decimal.NullDecimal `json:"cost"` // only meaningful for orders
	CreatedAt   time.Time           `json:"created_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

func (p *Project) IsCompleted() bool {
	return p.Status == StatusCompleted
}

// ProjectFilter narrows project lists. Zero values mean "any".
type ProjectFilter struct {
	Type ProjectType
	// Completed selects completed (true) or not completed (false) projects.
	Completed *bool
}
