package models

import "time"

// Credential keys persisted by the credential store.
const (
	CredentialKeyToken    = "token"
	CredentialKeyUserName = "user_name"
)

// Credential is one persisted key/value row of the local credential store.
type Credential struct {
	Name      string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName pins the table name shared with the postgres migrations.
func (Credential) TableName() string { return "credentials" }
