package models

// Project is the unit of access control. A project that is not secured is
// readable by every authenticated user.
type Project struct {
	ID          int    `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	IsSecured   bool   `json:"isSecured" gorm:"column:is_secured;not null;default:false"`
}

// TableName specifies the table name for Project Model
func (Project) TableName() string {
	return "projects"
}

// Participant is a user's membership in one project together with the role
// they hold there. At most one row exists per (project, user).
type Participant struct {
	ID        int    `json:"id" gorm:"primaryKey"`
	ProjectID int    `json:"projectId" gorm:"not null;uniqueIndex:uq_participants_project_user;index"`
	UserID    int    `json:"userId" gorm:"not null;uniqueIndex:uq_participants_project_user;index"`
	RoleID    RoleID `json:"roleId" gorm:"not null"`

	Project *Project `json:"-" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	User    *User    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Role    *Role    `json:"-" gorm:"foreignKey:RoleID"`
}

// TableName specifies the table name for Participant Model
func (Participant) TableName() string {
	return "participants"
}

// ParticipantView is a participant joined with the user's display fields.
type ParticipantView struct {
	ID        int    `json:"id"`
	ProjectID int    `json:"projectId"`
	UserID    int    `json:"userId"`
	RoleID    RoleID `json:"roleId"`
	UserName  string `json:"userName"`
	UserLogin string `json:"userLogin"`
}
