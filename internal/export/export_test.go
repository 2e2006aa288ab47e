package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"smartstore-backend/internal/models"
)

var sample = []models.ApplicationRecord{
	{
		BranchName:   "서울지부",
		BranchRep:    "홍길동",
		BranchPhone:  "010-1234-5678",
		BusinessName: "길동상회",
		RepName:      "김대표",
		PhoneNumber:  "0212345678",
		Address:      "서울시 중구, 1층",
		StoreID:      "gildong",
		StorePW:      "pw1234",
		Date:         "2026-03-02 09:01:00",
	},
}

func TestFileName(t *testing.T) {
	now := time.Date(2026, 3, 2, 23, 30, 0, 0, time.FixedZone("KST", 9*3600))

	assert.Equal(t, "신청현황_2026-03-02.csv", FileName(now, "csv"))
	assert.Equal(t, "신청현황_2026-03-02.xlsx", FileName(now.Add(-9*time.Hour), "xlsx"))
	assert.Equal(t, "신청현황_2026-03-03.csv", FileName(now.Add(10*time.Hour), "csv"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\uFEFF"))
	assert.True(t, strings.HasPrefix(out, "\uFEFF지부,대표,연락처,상호,대표이름,전화번호,주소,상점아이디,상점비밀번호,등록일\n"))

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\uFEFF"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{
		"서울지부", "홍길동", `="010-1234-5678"`, "길동상회", "김대표",
		`="0212345678"`, "서울시 중구, 1층", "gildong", "pw1234", "2026-03-02 09:01:00",
	}, rows[1])
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	assert.Equal(t, "\uFEFF"+strings.Join(Header, ",")+"\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sample))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "010-1234-5678", rows[1][2])
	assert.Equal(t, "0212345678", rows[1][5])
	assert.Equal(t, "pw1234", rows[1][8])
}
