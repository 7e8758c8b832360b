package models

// User represents an account. Users hold no global role; roles are
// scoped per project through Participant.
type User struct {
	ID       int    `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null"`
	Login    string `json:"login" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
