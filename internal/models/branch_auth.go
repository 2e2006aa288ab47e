package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// BranchAuth - 지부별 관리자 비밀번호. 지부당 최대 1개
type BranchAuth struct {
	ID           uint   `gorm:"primaryKey"`
	BranchName   string `gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255"` // 빈 값 = 아직 등록 안 됨
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Registered reports whether the branch has a password set.
func (a *BranchAuth) Registered() bool {
	return a != nil && a.PasswordHash != ""
}

// Matches reports whether password is the branch's registered password.
func (a *BranchAuth) Matches(password string) bool {
	if !a.Registered() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
