// Package viewer runs history view sessions: it loads records and branch
// auths from the record store, applies the session state machine from
// package history and keeps the result in a viewsession.Store.
package viewer

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartstore-backend/internal/audit"
	"smartstore-backend/internal/history"
	"smartstore-backend/internal/metrics"
	"smartstore-backend/internal/models"
	"smartstore-backend/internal/store"
	"smartstore-backend/internal/viewsession"
)

// Auditor is the part of audit.Service the viewer writes to.
type Auditor interface {
	WriteLog(ctx context.Context, opts audit.LogOptions) error
}

// View is what a client renders for one session.
type View struct {
	ID               string           `json:"id"`
	Identity         history.Identity `json:"identity"`
	Mode             history.Mode     `json:"mode"`
	Branch           string           `json:"branch"`
	Authenticated    bool             `json:"authenticated"`
	RegistrationOpen bool             `json:"registration_open"`
	Registering      bool             `json:"registering"`
	history.Page
}

const lockStripes = 64

type Service struct {
	records  store.RecordStore
	sessions viewsession.Store
	audit    Auditor
	metrics  *metrics.Metrics
	log      *zap.Logger
	timeout  time.Duration
	now      func() time.Time

	locks [lockStripes]sync.Mutex
}

func NewService(records store.RecordStore, sessions viewsession.Store, auditor Auditor, m *metrics.Metrics, log *zap.Logger, storeTimeout time.Duration) *Service {
	return &Service{
		records:  records,
		sessions: sessions,
		audit:    auditor,
		metrics:  m,
		log:      log,
		timeout:  storeTimeout,
		now:      time.Now,
	}
}

// lock serializes changes to one session id.
func (s *Service) lock(id string) func() {
	h := fnv.New32a()
	h.Write([]byte(id))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) listRecords(ctx context.Context) ([]models.ApplicationRecord, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	records, err := s.records.ListRecords(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list_records", Err: err}
	}
	return records, nil
}

func (s *Service) lookupAuth(ctx context.Context) history.AuthLookup {
	return func(branch string) (*models.BranchAuth, error) {
		ctx, cancel := s.storeCtx(ctx)
		defer cancel()

		auths, err := s.records.ListBranchAuths(ctx)
		if err != nil {
			return nil, &StoreError{Op: "list_branch_auths", Err: err}
		}
		return history.FindBranchAuth(auths, branch), nil
	}
}

func (s *Service) get(ctx context.Context, id string) (*history.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, viewsession.ErrNotFound) {
			return nil, err
		}
		return nil, &StoreError{Op: "session_get", Err: err}
	}
	return sess, nil
}

func (s *Service) save(ctx context.Context, sess *history.Session) error {
	sess.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return &StoreError{Op: "session_save", Err: err}
	}
	return nil
}

// update loads session id, applies fn and saves it under the session lock.
// The session is saved even when fn fails so partial transitions stick.
func (s *Service) update(ctx context.Context, id string, fn func(*history.Session) error) (*history.Session, error) {
	defer s.lock(id)()

	sess, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	fnErr := fn(sess)
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, fnErr
}

func render(sess *history.Session, records []models.ApplicationRecord) View {
	page := history.Paginate(sess.Visible(records), sess.Page)
	return View{
		ID:               sess.ID,
		Identity:         sess.Identity,
		Mode:             sess.Mode,
		Branch:           sess.Branch,
		Authenticated:    sess.Authenticated(),
		RegistrationOpen: sess.RegistrationOpen,
		Registering:      sess.Registering,
		Page:             page,
	}
}

func (s *Service) renderFresh(ctx context.Context, sess *history.Session) (View, error) {
	records, err := s.listRecords(ctx)
	if err != nil {
		return View{}, err
	}
	return render(sess, records), nil
}

func (s *Service) writeAudit(ctx context.Context, opts audit.LogOptions) {
	if s.audit == nil {
		return
	}
	if err := s.audit.WriteLog(ctx, opts); err != nil {
		s.log.Warn("감사 로그 기록 실패", zap.String("action", string(opts.Action)), zap.Error(err))
	}
}

// Open starts a session in "my" mode on page 1.
func (s *Service) Open(ctx context.Context, identity history.Identity) (View, error) {
	sess := history.NewSession(uuid.NewString(), identity)
	if err := s.save(ctx, sess); err != nil {
		return View{}, err
	}
	s.metrics.SessionsOpened.Inc()
	s.log.Debug("조회 세션 생성", zap.String("session", sess.ID))
	return s.renderFresh(ctx, sess)
}

func (s *Service) View(ctx context.Context, id string) (View, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return View{}, err
	}
	records, err := s.listRecords(ctx)
	if err != nil {
		return View{}, err
	}
	// a stored page may be out of range after records changed
	sess.Page = history.ClampPage(sess.Page, len(sess.Visible(records)))
	return render(sess, records), nil
}

func (s *Service) Close(ctx context.Context, id string) error {
	defer s.lock(id)()
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return &StoreError{Op: "session_delete", Err: err}
	}
	return nil
}

func (s *Service) SetMode(ctx context.Context, id, mode string) (View, error) {
	m, err := history.ParseMode(mode)
	if err != nil {
		return View{}, err
	}
	sess, err := s.update(ctx, id, func(sess *history.Session) error {
		return sess.SetMode(m)
	})
	if err != nil {
		return View{}, err
	}
	return s.renderFresh(ctx, sess)
}

func (s *Service) SelectBranch(ctx context.Context, id, branch string) (View, error) {
	sess, err := s.update(ctx, id, func(sess *history.Session) error {
		sess.SelectBranch(branch)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return s.renderFresh(ctx, sess)
}

// CheckAdmin runs the admin password check of the session's branch.
func (s *Service) CheckAdmin(ctx context.Context, id, password string) (View, history.CheckOutcome, error) {
	var outcome history.CheckOutcome
	sess, err := s.update(ctx, id, func(sess *history.Session) error {
		var err error
		outcome, err = sess.CheckPassword(password, s.lookupAuth(ctx))
		return err
	})

	var se *StoreError
	switch {
	case errors.Is(err, viewsession.ErrNotFound), errors.As(err, &se):
		return View{}, "", err
	case errors.Is(err, history.ErrPasswordMismatch):
		s.metrics.AdminChecks.WithLabelValues("mismatch").Inc()
		s.writeAudit(ctx, audit.LogOptions{
			BranchName:  sess.Branch,
			Actor:       sess.Identity.Name,
			EntityType:  "branch_auth",
			Action:      models.AuditActionAdminCheckFail,
			Description: "관리자 비밀번호 불일치",
			Data:        map[string]string{"session": sess.ID},
		})
		return View{}, "", err
	case err != nil:
		s.metrics.AdminChecks.WithLabelValues("invalid").Inc()
		return View{}, "", err
	}

	s.metrics.AdminChecks.WithLabelValues(string(outcome)).Inc()
	if outcome == history.OutcomeAuthenticated {
		s.writeAudit(ctx, audit.LogOptions{
			BranchName:  sess.Branch,
			Actor:       sess.Identity.Name,
			EntityType:  "branch_auth",
			Action:      models.AuditActionAdminCheck,
			Description: "관리자 인증 성공",
			Data:        map[string]string{"session": sess.ID},
		})
	}

	v, err := s.renderFresh(ctx, sess)
	if err != nil {
		return View{}, "", err
	}
	return v, outcome, nil
}

// RegisterPassword stores the first password of the session's branch. The
// store call runs outside the session lock; the busy flag in the session
// rejects a second submit meanwhile.
func (s *Service) RegisterPassword(ctx context.Context, id, password string) (View, error) {
	var branch string
	if _, err := s.update(ctx, id, func(sess *history.Session) error {
		var err error
		branch, err = sess.BeginRegistration(password)
		return err
	}); err != nil {
		return View{}, err
	}

	storeErr := func() error {
		ctx, cancel := s.storeCtx(ctx)
		defer cancel()
		return s.records.RegisterBranchPassword(ctx, branch, password)
	}()

	sess, err := s.update(ctx, id, func(sess *history.Session) error {
		switch {
		case storeErr == nil:
			sess.CompleteRegistration(branch)
		case errors.Is(storeErr, store.ErrBranchPasswordExists):
			sess.CloseRegistration()
		default:
			sess.AbortRegistration()
		}
		return nil
	})

	switch {
	case errors.Is(storeErr, store.ErrBranchPasswordExists):
		return View{}, storeErr
	case storeErr != nil:
		return View{}, &StoreError{Op: "register_password", Err: storeErr}
	}

	s.metrics.PasswordsRegistered.Inc()
	actor := ""
	if sess != nil {
		actor = sess.Identity.Name
	}
	s.writeAudit(ctx, audit.LogOptions{
		BranchName:  branch,
		Actor:       actor,
		EntityType:  "branch_auth",
		Action:      models.AuditActionRegisterPassword,
		Description: "지부 비밀번호 등록",
		Data:        map[string]string{"session": id},
	})

	if errors.Is(err, viewsession.ErrNotFound) {
		return View{}, ErrRegisteredSessionGone
	}
	if err != nil {
		return View{}, err
	}
	return s.renderFresh(ctx, sess)
}

func (s *Service) page(ctx context.Context, id string, move func(sess *history.Session, total int)) (View, error) {
	var records []models.ApplicationRecord
	sess, err := s.update(ctx, id, func(sess *history.Session) error {
		var err error
		if records, err = s.listRecords(ctx); err != nil {
			return err
		}
		move(sess, len(sess.Visible(records)))
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return render(sess, records), nil
}

func (s *Service) Next(ctx context.Context, id string) (View, error) {
	return s.page(ctx, id, (*history.Session).Next)
}

func (s *Service) Prev(ctx context.Context, id string) (View, error) {
	return s.page(ctx, id, func(sess *history.Session, _ int) { sess.Prev() })
}

func (s *Service) GoTo(ctx context.Context, id string, page int) (View, error) {
	return s.page(ctx, id, func(sess *history.Session, total int) { sess.GoTo(page, total) })
}

// Visible returns every record the session may see, across all pages.
func (s *Service) Visible(ctx context.Context, id string) ([]models.ApplicationRecord, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	records, err := s.listRecords(ctx)
	if err != nil {
		return nil, err
	}
	visible := sess.Visible(records)
	if len(visible) == 0 {
		return nil, ErrNothingToExport
	}
	return visible, nil
}

// AdminBranch returns the branch the session is authenticated for.
func (s *Service) AdminBranch(ctx context.Context, id string) (string, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return "", err
	}
	if !sess.Authenticated() {
		return "", ErrAdminRequired
	}
	return sess.Branch, nil
}
