package models

import (
	"time"
)

// Task represents a task in the system.
// CreatorID is set once at creation; Version guards concurrent updates.
type Task struct {
	ID                  int       `json:"id" gorm:"primaryKey"`
	Name                string    `json:"name" gorm:"not null"`
	Description         string    `json:"description"`
	Priority            int       `json:"priority" gorm:"not null"`
	LastUpdate          time.Time `json:"lastUpdate" gorm:"column:last_update;not null"`
	TimeLimit           time.Time `json:"timeLimit" gorm:"column:time_limit"`
	CreatorID           int       `json:"creatorId" gorm:"column:creator_id;not null;index"`
	ResponsiblePersonID int       `json:"responsiblePersonId" gorm:"column:responsible_person_id;not null;index"`
	BoardStatusID       int       `json:"boardStatusId" gorm:"column:board_status_id;not null;index"`
	Version             int       `json:"version" gorm:"not null"`

	// Participant links use RESTRICT so identity behind audit entries is never cascaded away.
	Creator           *Participant `json:"-" gorm:"foreignKey:CreatorID;constraint:OnDelete:RESTRICT"`
	ResponsiblePerson *Participant `json:"-" gorm:"foreignKey:ResponsiblePersonID;constraint:OnDelete:RESTRICT"`
	BoardStatus       *BoardStatus `json:"-" gorm:"foreignKey:BoardStatusID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// TaskComment is a message left on a task by a participant.
type TaskComment struct {
	ID            int    `json:"id" gorm:"primaryKey"`
	Message       string `json:"message" gorm:"not null"`
	ParticipantID int    `json:"participantId" gorm:"not null;index"`
	TaskID        int    `json:"taskId" gorm:"not null;index"`

	Participant *Participant `json:"-" gorm:"foreignKey:ParticipantID;constraint:OnDelete:RESTRICT"`
	Task        *Task        `json:"-" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for TaskComment Model
func (TaskComment) TableName() string {
	return "task_comments"
}

// TaskHistory is one append-only audit entry. TaskID and ProjectID are plain
// references, not foreign keys, so entries outlive the task they describe.
// ProjectID keeps a deleted task's trail reachable from its project.
type TaskHistory struct {
	ID           int          `json:"id" gorm:"primaryKey"`
	Date         time.Time    `json:"date" gorm:"not null;index"`
	Action       string       `json:"action" gorm:"type:text;not null"`
	UserID       int          `json:"userId" gorm:"not null;index"`
	TaskID       int          `json:"taskId" gorm:"not null;index"`
	ProjectID    int          `json:"projectId" gorm:"not null;default:0;index"`
	ActionTypeID ActionTypeID `json:"actionTypeId" gorm:"not null"`

	User       *User       `json:"-" gorm:"foreignKey:UserID"`
	ActionType *ActionType `json:"-" gorm:"foreignKey:ActionTypeID"`
}

// TableName specifies the table name for TaskHistory Model
func (TaskHistory) TableName() string {
	return "task_histories"
}

// HistoryEntry is a TaskHistory row as presented to readers.
type HistoryEntry struct {
	ID             int          `json:"id"`
	Date           time.Time    `json:"date"`
	Action         string       `json:"action"`
	UserID         int          `json:"userId"`
	UserName       string       `json:"userName"`
	TaskID         int          `json:"taskId"`
	ProjectID      int          `json:"projectId"`
	ActionTypeID   ActionTypeID `json:"actionTypeId"`
	ActionTypeName string       `json:"actionTypeName"`
}

// AllModels lists every persisted entity in migration order.
func AllModels() []any {
	return []any{
		&User{},
		&Role{},
		&ActionType{},
		&Status{},
		&Project{},
		&Participant{},
		&BaseBoard{},
		&KanbanBoard{},
		&ScrumBoard{},
		&BoardStatus{},
		&Task{},
		&TaskComment{},
		&TaskHistory{},
	}
}
