package models

import "time"

type AuditAction string

const (
	AuditActionSubmit           AuditAction = "submit"
	AuditActionAdminCheck       AuditAction = "admin_check"
	AuditActionAdminCheckFail   AuditAction = "admin_check_failed"
	AuditActionRegisterPassword AuditAction = "register_password"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// 어느 지부?
	BranchName string `gorm:"size:100;index" json:"branch_name"`

	// 누가? (신원 claim의 이름, 없으면 빈 값)
	Actor string `gorm:"size:100" json:"actor"`

	// 어떤 대상? (예: "application", "branch_auth")
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`

	Action      AuditAction `gorm:"size:30" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	// 부가 정보 (JSON). 비밀번호/상점 계정은 절대 넣지 않음
	Data string `gorm:"type:text" json:"data"`
}
