// Package history decides which application records a viewer may see.
//
// A view session runs in one of two modes. In ModeMine the viewer sees the
// records whose branch identity triple matches their own claimed identity. In
// ModeAdmin the viewer sees every record of one branch, but only after the
// branch password was checked in the same session.
package history

import (
	"strings"

	"golang.org/x/text/width"

	"smartstore-backend/internal/models"
)

// Identity is the viewer's claimed identity. It is never verified against a
// secret and only drives the self-identity match.
type Identity struct {
	BranchName string `json:"branch_name"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
}

// Complete reports whether the identity can match anything at all.
func (i Identity) Complete() bool {
	return i.BranchName != "" && i.Name != ""
}

// Digits keeps only the ASCII digits of s after folding full-width forms, so
// "010-1234-5678", "01012345678" and "０１０１２３４５６７８" compare equal.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, width.Fold.String(s))
}

// OwnedBy reports whether r belongs to id under the self-identity match.
func OwnedBy(r models.ApplicationRecord, id Identity) bool {
	if !id.Complete() {
		return false
	}
	return r.BranchName == id.BranchName &&
		r.BranchRep == id.Name &&
		Digits(r.BranchPhone) == Digits(id.Phone)
}

// FilterMine returns the records owned by id, keeping their order. An
// incomplete identity sees nothing.
func FilterMine(records []models.ApplicationRecord, id Identity) []models.ApplicationRecord {
	out := make([]models.ApplicationRecord, 0)
	if !id.Complete() {
		return out
	}
	for _, r := range records {
		if OwnedBy(r, id) {
			out = append(out, r)
		}
	}
	return out
}

// FilterBranch returns the records of one branch, keeping their order.
func FilterBranch(records []models.ApplicationRecord, branch string) []models.ApplicationRecord {
	out := make([]models.ApplicationRecord, 0)
	if branch == "" {
		return out
	}
	for _, r := range records {
		if r.BranchName == branch {
			out = append(out, r)
		}
	}
	return out
}

// FindBranchAuth returns the auth entry of branch, or nil.
func FindBranchAuth(auths []models.BranchAuth, branch string) *models.BranchAuth {
	for i := range auths {
		if auths[i].BranchName == branch {
			return &auths[i]
		}
	}
	return nil
}
