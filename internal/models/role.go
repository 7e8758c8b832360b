package models

// RoleID identifies one of the three fixed privilege levels.
// Lower ids are more privileged.
type RoleID int

const (
	RoleOwner RoleID = 1
	RoleAdmin RoleID = 2
	RoleUser  RoleID = 3
)

// Allow-lists used by the transport layer.
var (
	OwnerRoles = []RoleID{RoleOwner}
	AdminRoles = []RoleID{RoleOwner, RoleAdmin}
	AnyRole    = []RoleID{RoleOwner, RoleAdmin, RoleUser}
)

// IsValidRole reports whether id is one of the seeded roles.
func IsValidRole(id RoleID) bool {
	return id == RoleOwner || id == RoleAdmin || id == RoleUser
}

// Role is seed data; it is never created or edited at runtime.
type Role struct {
	ID   RoleID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name string `json:"name" gorm:"not null"`
}

// TableName specifies the table name for Role Model
func (Role) TableName() string {
	return "roles"
}

// ActionTypeID classifies a TaskHistory entry.
type ActionTypeID int

const (
	ActionCreate ActionTypeID = 1
	ActionUpdate ActionTypeID = 2
	ActionDelete ActionTypeID = 3
)

// ActionType is seed data naming each ActionTypeID.
type ActionType struct {
	ID   ActionTypeID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name string       `json:"name" gorm:"not null"`
}

// TableName specifies the table name for ActionType Model
func (ActionType) TableName() string {
	return "action_types"
}

// SeedRoles, SeedActionTypes and SeedStatuses are inserted at schema
// initialisation and referenced by fixed id elsewhere.
var (
	SeedRoles = []Role{
		{ID: RoleOwner, Name: "Owner"},
		{ID: RoleAdmin, Name: "Admin"},
		{ID: RoleUser, Name: "User"},
	}
	SeedActionTypes = []ActionType{
		{ID: ActionCreate, Name: "Create"},
		{ID: ActionUpdate, Name: "Update"},
		{ID: ActionDelete, Name: "Delete"},
	}
	SeedStatuses = []Status{
		{ID: StatusNew, Name: "New"},
		{ID: StatusInProgress, Name: "In Progress"},
		{ID: StatusInReview, Name: "In Review"},
		{ID: StatusDone, Name: "Done"},
	}
)
