package history

import (
	"time"
	"unicode/utf8"

	"smartstore-backend/internal/models"
)

type Mode string

const (
	ModeMine  Mode = "my"
	ModeAdmin Mode = "admin"
)

// ParseMode accepts only the two known modes.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMine, ModeAdmin:
		return Mode(s), nil
	}
	return "", ErrInvalidMode
}

type AuthState string

const (
	Unauthenticated AuthState = "unauthenticated"
	Authenticated   AuthState = "authenticated"
)

// CheckOutcome is the non-error result of an admin password check.
type CheckOutcome string

const (
	OutcomeAuthenticated        CheckOutcome = "authenticated"
	OutcomeRegistrationRequired CheckOutcome = "registration_required"
)

const (
	MinPasswordLength = 4
	// bcrypt rejects longer input
	MaxPasswordBytes = 72
)

// Session is the state of one history view.
//
// Auth is keyed by (Mode, Branch): any change of either drops it back to
// Unauthenticated, resets the page and closes the registration prompt. A
// password registration that finishes after such a change does not
// authenticate the new key.
type Session struct {
	ID       string    `json:"id"`
	Identity Identity  `json:"identity"`
	Mode     Mode      `json:"mode"`
	Branch   string    `json:"branch"`
	Auth     AuthState `json:"auth"`
	Page     int       `json:"page"`

	RegistrationOpen  bool   `json:"registration_open"`
	Registering       bool   `json:"registering"`
	RegisteringBranch string `json:"registering_branch,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string, identity Identity) *Session {
	return &Session{
		ID:       id,
		Identity: identity,
		Mode:     ModeMine,
		Auth:     Unauthenticated,
		Page:     1,
	}
}

func (s *Session) Authenticated() bool {
	return s.Mode == ModeAdmin && s.Branch != "" && s.Auth == Authenticated
}

func (s *Session) resetKey() {
	s.Page = 1
	s.Auth = Unauthenticated
	s.RegistrationOpen = false
}

// SetMode switches the view mode. Selecting the current mode again still
// resets, the same way a click on the mode tab does.
func (s *Session) SetMode(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	s.Mode = m
	s.resetKey()
	return nil
}

func (s *Session) SelectBranch(branch string) {
	s.Branch = branch
	s.resetKey()
}

// Visible returns the records this session may see, in input order.
func (s *Session) Visible(records []models.ApplicationRecord) []models.ApplicationRecord {
	switch s.Mode {
	case ModeMine:
		return FilterMine(records, s.Identity)
	case ModeAdmin:
		if !s.Authenticated() {
			return make([]models.ApplicationRecord, 0)
		}
		return FilterBranch(records, s.Branch)
	}
	return make([]models.ApplicationRecord, 0)
}

// AuthLookup fetches the auth entry of a branch; nil means none exists.
type AuthLookup func(branch string) (*models.BranchAuth, error)

// CheckPassword runs the admin password check for the selected branch.
//
// Validation failures leave the session untouched and never call lookup. A
// branch with no password opens the registration prompt instead of failing.
func (s *Session) CheckPassword(entered string, lookup AuthLookup) (CheckOutcome, error) {
	if s.Mode != ModeAdmin {
		return "", ErrNotAdminMode
	}
	if s.Branch == "" {
		return "", ErrBranchRequired
	}
	if entered == "" {
		return "", ErrPasswordRequired
	}

	auth, err := lookup(s.Branch)
	if err != nil {
		return "", err
	}

	if !auth.Registered() {
		s.RegistrationOpen = true
		return OutcomeRegistrationRequired, nil
	}
	if !auth.Matches(entered) {
		s.Auth = Unauthenticated
		return "", ErrPasswordMismatch
	}

	s.Auth = Authenticated
	return OutcomeAuthenticated, nil
}

// ValidateNewPassword applies the registration length rules.
func ValidateNewPassword(pw string) error {
	if utf8.RuneCountInString(pw) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(pw) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// BeginRegistration marks the session busy registering a password for the
// current branch and returns that branch. At most one registration is in
// flight per session.
func (s *Session) BeginRegistration(pw string) (string, error) {
	if s.Mode != ModeAdmin {
		return "", ErrNotAdminMode
	}
	if s.Registering {
		return "", ErrRegistrationInFlight
	}
	if !s.RegistrationOpen || s.Branch == "" {
		return "", ErrRegistrationNotOpen
	}
	if err := ValidateNewPassword(pw); err != nil {
		return "", err
	}

	s.Registering = true
	s.RegisteringBranch = s.Branch
	return s.Branch, nil
}

// CompleteRegistration finishes a successful registration for branch.
// Registration implies authentication: the password just stored is trusted
// without asking the store again.
func (s *Session) CompleteRegistration(branch string) {
	s.Registering = false
	s.RegisteringBranch = ""
	if s.Mode != ModeAdmin || s.Branch != branch {
		return
	}
	s.RegistrationOpen = false
	s.Auth = Authenticated
}

// AbortRegistration clears the busy flag after a failed store call; the
// prompt stays open so the user can retry.
func (s *Session) AbortRegistration() {
	s.Registering = false
	s.RegisteringBranch = ""
}

// CloseRegistration clears the busy flag and closes the prompt, for when the
// branch got a password from somewhere else meanwhile.
func (s *Session) CloseRegistration() {
	s.AbortRegistration()
	s.RegistrationOpen = false
}

// Next moves one page forward; no-op on the last page of total records.
func (s *Session) Next(total int) {
	if s.Page < TotalPages(total) {
		s.Page++
	}
	s.Page = ClampPage(s.Page, total)
}

// Prev moves one page back; no-op on the first page.
func (s *Session) Prev() {
	if s.Page > 1 {
		s.Page--
	}
}

// GoTo jumps to page, clamped into range.
func (s *Session) GoTo(page, total int) {
	s.Page = ClampPage(page, total)
}
