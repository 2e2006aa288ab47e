package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"smartstore-backend/internal/models"
)

// DateLayout is the format of ApplicationRecord.Date.
const DateLayout = "2006-01-02 15:04:05"

type GormStore struct {
	db   *gorm.DB
	cost int
	now  func() time.Time
}

var _ RecordStore = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, cost: bcrypt.DefaultCost, now: time.Now}
}

// WithClock replaces the clock used for record dates.
func (s *GormStore) WithClock(now func() time.Time) *GormStore {
	s.now = now
	return s
}

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func (s *GormStore) WithBcryptCost(cost int) *GormStore {
	s.cost = cost
	return s
}

func (s *GormStore) SubmitApplication(ctx context.Context, draft *models.ApplicationRecord) error {
	now := s.now()
	draft.ID = 0
	draft.CreatedAt = now
	draft.Date = now.Format(DateLayout)

	if err := s.db.WithContext(ctx).Create(draft).Error; err != nil {
		return fmt.Errorf("신청 저장 실패: %w", err)
	}
	return nil
}

func (s *GormStore) RegisterBranchPassword(ctx context.Context, branchName, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("비밀번호 해시 실패: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.BranchAuth
		err := tx.Where("branch_name = ?", branchName).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			auth := models.BranchAuth{BranchName: branchName, PasswordHash: string(hash)}
			if err := tx.Create(&auth).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrBranchPasswordExists
				}
				return fmt.Errorf("지부 비밀번호 생성 실패: %w", err)
			}
			return nil

		case err != nil:
			return fmt.Errorf("지부 비밀번호 조회 실패: %w", err)

		case existing.Registered():
			return ErrBranchPasswordExists
		}

		// 빈 비밀번호 행만 갱신 (동시 등록 시 먼저 끝난 쪽만 성공)
		res := tx.Model(&models.BranchAuth{}).
			Where("id = ? AND (password_hash = '' OR password_hash IS NULL)", existing.ID).
			Update("password_hash", string(hash))
		if res.Error != nil {
			return fmt.Errorf("지부 비밀번호 갱신 실패: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrBranchPasswordExists
		}
		return nil
	})
}

func (s *GormStore) ListRecords(ctx context.Context) ([]models.ApplicationRecord, error) {
	var records []models.ApplicationRecord
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("신청 목록 조회 실패: %w", err)
	}
	return records, nil
}

func (s *GormStore) ListBranchAuths(ctx context.Context) ([]models.BranchAuth, error) {
	var auths []models.BranchAuth
	if err := s.db.WithContext(ctx).Order("branch_name").Find(&auths).Error; err != nil {
		return nil, fmt.Errorf("지부 비밀번호 목록 조회 실패: %w", err)
	}
	return auths, nil
}
