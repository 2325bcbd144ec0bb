// Package credentials persists the session token and display name, the only
// state that survives a restart.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kaniyamudhan/rupeeraiser/internal/models"
)

// Credential is the persisted session.
type Credential struct {
	Token    string
	UserName string
}

// Store is a process-wide key/value store for the session credential.
type Store interface {
	// Load returns the persisted credential; ok is false when no token is stored.
	Load(ctx context.Context) (cred Credential, ok bool, err error)
	Save(ctx context.Context, cred Credential) error
	Clear(ctx context.Context) error
}

// GormStore keeps the credential in the credentials table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a credential store on top of a migrated database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var credentialKeys = []string{models.CredentialKeyToken, models.CredentialKeyUserName}

// Load implements Store.
func (s *GormStore) Load(ctx context.Context) (Credential, bool, error) {
	var rows []models.Credential
	if err := s.db.WithContext(ctx).Where("name IN ?", credentialKeys).Find(&rows).Error; err != nil {
		return Credential{}, false, fmt.Errorf("loading credential: %w", err)
	}

	var cred Credential
	for _, row := range rows {
		switch row.Name {
		case models.CredentialKeyToken:
			cred.Token = row.Value
		case models.CredentialKeyUserName:
			cred.UserName = row.Value
		}
	}
	return cred, cred.Token != "", nil
}

// Save implements Store.
func (s *GormStore) Save(ctx context.Context, cred Credential) error {
	if cred.Token == "" {
		return errors.New("saving credential: empty token")
	}
	now := time.Now()
	rows := []models.Credential{
		{Name: models.CredentialKeyToken, Value: cred.Token, UpdatedAt: now},
		{Name: models.CredentialKeyUserName, Value: cred.UserName, UpdatedAt: now},
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *GormStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("name IN ?", credentialKeys).Delete(&models.Credential{}).Error; err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}

// MemoryStore keeps the credential in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	cred Credential
}

// NewMemoryStore creates an empty in-memory store, optionally pre-seeded.
func NewMemoryStore(seed ...Credential) *MemoryStore {
	s := &MemoryStore{}
	if len(seed) > 0 {
		s.cred = seed[0]
	}
	return s
}

// Load implements Store.
func (s *MemoryStore) Load(context.Context) (Credential, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred, s.cred.Token != "", nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Credential{}
	return nil
}

// Inspect reads the expiry of a JWT access token without verifying its
// signature. ok is false for tokens that are not JWTs or carry no exp claim.
func Inspect(token string) (expiresAt time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether token is a JWT whose exp claim is before now.
// Tokens that cannot be inspected are not considered expired.
func Expired(token string, now time.Time) bool {
	exp, ok := Inspect(token)
	return ok && !exp.After(now)
}
