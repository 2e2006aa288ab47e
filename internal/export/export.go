// Package export writes application records as CSV or XLSX files.
package export

import (
	"time"

	"smartstore-backend/internal/models"
)

// Header is the column header shared by both formats.
var Header = []string{"지부", "대표", "연락처", "상호", "대표이름", "전화번호", "주소", "상점아이디", "상점비밀번호", "등록일"}

const filePrefix = "신청현황_"

// FileName is "신청현황_<YYYY-MM-DD>.<ext>" using the UTC date of now.
func FileName(now time.Time, ext string) string {
	return filePrefix + now.UTC().Format("2006-01-02") + "." + ext
}

func row(r models.ApplicationRecord, phone func(string) string) []string {
	return []string{
		r.BranchName,
		r.BranchRep,
		phone(r.BranchPhone),
		r.BusinessName,
		r.RepName,
		phone(r.PhoneNumber),
		r.Address,
		r.StoreID,
		r.StorePW,
		r.Date,
	}
}
