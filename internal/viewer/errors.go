package viewer

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"smartstore-backend/internal/history"
	"smartstore-backend/internal/httperr"
	"smartstore-backend/internal/store"
	"smartstore-backend/internal/viewsession"
)

var (
	ErrNothingToExport = errors.New("viewer: nothing to export")
	ErrAdminRequired   = errors.New("viewer: admin authentication required")

	// ErrRegisteredSessionGone means the branch password was stored but the
	// session expired or was closed before it could be marked authenticated.
	ErrRegisteredSessionGone = errors.New("viewer: password registered, session gone")
)

// StoreError is a failed call to the record or session store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

var errorStatus = []struct {
	err    error
	status int
	msg    string
}{
	{viewsession.ErrNotFound, fiber.StatusNotFound, "조회 세션이 없거나 만료되었습니다"},
	{history.ErrInvalidMode, fiber.StatusBadRequest, "알 수 없는 조회 모드입니다"},
	{history.ErrBranchRequired, fiber.StatusBadRequest, "지부를 선택해 주세요"},
	{history.ErrPasswordRequired, fiber.StatusBadRequest, "비밀번호를 입력해 주세요"},
	{history.ErrPasswordTooShort, fiber.StatusBadRequest, fmt.Sprintf("비밀번호는 %d자 이상이어야 합니다", history.MinPasswordLength)},
	{history.ErrPasswordTooLong, fiber.StatusBadRequest, "비밀번호가 너무 깁니다"},
	{history.ErrPasswordMismatch, fiber.StatusUnauthorized, "비밀번호가 일치하지 않습니다"},
	{history.ErrNotAdminMode, fiber.StatusConflict, "관리자 모드에서만 사용할 수 있습니다"},
	{history.ErrRegistrationNotOpen, fiber.StatusConflict, "비밀번호 등록 단계가 아닙니다"},
	{history.ErrRegistrationInFlight, fiber.StatusConflict, "비밀번호 등록이 이미 진행 중입니다"},
	{store.ErrBranchPasswordExists, fiber.StatusConflict, "이미 비밀번호가 등록된 지부입니다"},
	{ErrNothingToExport, fiber.StatusBadRequest, "내보낼 신청 내역이 없습니다"},
	{ErrAdminRequired, fiber.StatusForbidden, "관리자 인증이 필요합니다"},
	{ErrRegisteredSessionGone, fiber.StatusGone, "비밀번호는 등록되었지만 조회 세션이 만료되었습니다. 새 세션에서 다시 인증해 주세요"},
}

// toHTTP maps an error of the service to the error sent to the client.
func (s *Service) toHTTP(err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return httperr.Store(s.log, s.metrics, se.Op, se.Err)
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return fiber.NewError(e.status, e.msg)
		}
	}
	s.log.Error("처리되지 않은 조회 오류", zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, httperr.MsgStoreFailed)
}
