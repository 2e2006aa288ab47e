package models

import "time"

// ApplicationRecord - 스마트상점 신청 1건. 생성 후 수정/삭제 없음 (append-only)
type ApplicationRecord struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// 지부 정보 (본인 확인 키: BranchName + BranchRep + BranchPhone)
	BranchName  string `gorm:"size:100;not null;index" json:"branch_name"`
	BranchRep   string `gorm:"size:100;not null" json:"branch_rep"`
	BranchPhone string `gorm:"size:50" json:"branch_phone"`

	// 신청 상점 정보
	BusinessName string `gorm:"size:200" json:"business_name"`
	RepName      string `gorm:"size:100" json:"rep_name"`
	PhoneNumber  string `gorm:"size:50" json:"phone_number"`
	Address      string `gorm:"size:255" json:"address"`

	// 관리자 계정 기록 (입력한 그대로 저장)
	StoreID string `gorm:"size:100" json:"store_id"`
	StorePW string `gorm:"size:100" json:"store_pw"`

	// 등록일 "2006-01-02 15:04:05", 저장 시점에 store가 채움
	Date      string    `gorm:"size:30;not null" json:"date"`
	CreatedAt time.Time `gorm:"index" json:"-"`
}
