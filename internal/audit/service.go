package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"smartstore-backend/internal/models"
)

type LogOptions struct {
	BranchName  string
	Actor       string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Data        any
}

// Filter narrows List; BranchName is required.
type Filter struct {
	BranchName string
	EntityType string
	Action     models.AuditAction
	Limit      int
}

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) WriteLog(ctx context.Context, opts LogOptions) error {
	data := "null"
	if opts.Data != nil {
		if b, err := json.Marshal(opts.Data); err == nil {
			data = string(b)
		}
	}

	entry := models.AuditLog{
		BranchName:  opts.BranchName,
		Actor:       opts.Actor,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		Data:        data,
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("감사 로그 저장 실패: %w", err)
	}
	return nil
}

// List returns the newest entries of one branch first.
func (s *Service) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	if f.BranchName == "" {
		return nil, errors.New("감사 로그 조회: 지부가 필요합니다")
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}

	q := s.db.WithContext(ctx).Model(&models.AuditLog{}).Where("branch_name = ?", f.BranchName)
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC").Order("id DESC").Limit(f.Limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("감사 로그 조회 실패: %w", err)
	}
	return logs, nil
}
