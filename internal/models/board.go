package models

import (
	"encoding/json"
	"time"
)

// BaseBoard is the project-owned root of every board. Each base board is
// specialised by exactly one KanbanBoard or ScrumBoard row.
type BaseBoard struct {
	ID          int    `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	ProjectID   int    `json:"projectId" gorm:"not null;index"`

	Project *Project `json:"-" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for BaseBoard Model
func (BaseBoard) TableName() string {
	return "base_boards"
}

// KanbanBoard carries the kanban-only fields of a base board.
type KanbanBoard struct {
	ID          int `json:"id" gorm:"primaryKey"`
	TaskLimit   int `json:"taskLimit" gorm:"not null"`
	BaseBoardID int `json:"baseBoardId" gorm:"not null;uniqueIndex"`

	BaseBoard *BaseBoard `json:"-" gorm:"foreignKey:BaseBoardID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for KanbanBoard Model
func (KanbanBoard) TableName() string {
	return "kanban_boards"
}

// ScrumBoard carries the scrum-only fields of a base board.
type ScrumBoard struct {
	ID          int       `json:"id" gorm:"primaryKey"`
	TimeLimit   time.Time `json:"timeLimit" gorm:"not null"`
	BaseBoardID int       `json:"baseBoardId" gorm:"not null;uniqueIndex"`

	BaseBoard *BaseBoard `json:"-" gorm:"foreignKey:BaseBoardID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for ScrumBoard Model
func (ScrumBoard) TableName() string {
	return "scrum_boards"
}

// BoardType names a board specialisation.
type BoardType string

const (
	BoardKanban BoardType = "kanban"
	BoardScrum  BoardType = "scrum"
)

// BoardSpec is the closed set of board specialisations: KanbanSpec or ScrumSpec.
type BoardSpec interface {
	Type() BoardType
	isBoardSpec()
}

// KanbanSpec limits how many tasks a kanban board is meant to hold.
type KanbanSpec struct {
	TaskLimit int `json:"taskLimit"`
}

func (KanbanSpec) Type() BoardType { return BoardKanban }
func (KanbanSpec) isBoardSpec()    {}

// ScrumSpec fixes the sprint deadline of a scrum board.
type ScrumSpec struct {
	Deadline time.Time `json:"deadline"`
}

func (ScrumSpec) Type() BoardType { return BoardScrum }
func (ScrumSpec) isBoardSpec()    {}

// Board is a base board together with its single specialisation.
// SpecID is the id of the kanban_boards or scrum_boards row.
type Board struct {
	BaseBoard BaseBoard
	SpecID    int
	Spec      BoardSpec
}

func (b Board) MarshalJSON() ([]byte, error) {
	out := struct {
		ID        int        `json:"id"`
		Type      BoardType  `json:"type"`
		BaseBoard BaseBoard  `json:"baseBoard"`
		TaskLimit *int       `json:"taskLimit,omitempty"`
		Deadline  *time.Time `json:"deadline,omitempty"`
	}{ID: b.SpecID, BaseBoard: b.BaseBoard}

	switch s := b.Spec.(type) {
	case KanbanSpec:
		out.Type = BoardKanban
		out.TaskLimit = &s.TaskLimit
	case ScrumSpec:
		out.Type = BoardScrum
		out.Deadline = &s.Deadline
	}
	return json.Marshal(out)
}

// StatusID identifies a reusable status label.
type StatusID int

// Default statuses bound to every new board.
const (
	StatusNew        StatusID = 1
	StatusInProgress StatusID = 2
	StatusInReview   StatusID = 3
	StatusDone       StatusID = 4
)

// DefaultStatuses lists the statuses every new board is seeded with, in order.
var DefaultStatuses = []StatusID{StatusNew, StatusInProgress, StatusInReview, StatusDone}

// Status is a reusable label, unique by name.
type Status struct {
	ID   StatusID `json:"id" gorm:"primaryKey"`
	Name string   `json:"name" gorm:"uniqueIndex;not null"`
}

// TableName specifies the table name for Status Model
func (Status) TableName() string {
	return "statuses"
}

// BoardStatus binds a Status to one board, giving every board its own set.
type BoardStatus struct {
	ID          int      `json:"id" gorm:"primaryKey"`
	BaseBoardID int      `json:"baseBoardId" gorm:"not null;index"`
	StatusID    StatusID `json:"statusId" gorm:"not null"`

	BaseBoard *BaseBoard `json:"-" gorm:"foreignKey:BaseBoardID;constraint:OnDelete:CASCADE"`
	Status    *Status    `json:"-" gorm:"foreignKey:StatusID"`
}

// TableName specifies the table name for BoardStatus Model
func (BoardStatus) TableName() string {
	return "board_statuses"
}

// BoardStatusView is a board status joined with its label.
type BoardStatusView struct {
	ID          int      `json:"id"`
	BaseBoardID int      `json:"baseBoardId"`
	StatusID    StatusID `json:"statusId"`
	Name        string   `json:"name"`
}
