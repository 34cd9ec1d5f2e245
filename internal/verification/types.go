package verification

import (
	"context"
	"fmt"

	"github.com/example/storefront/internal/models"
)

// SendCodeRequest is the body of the send-code endpoint.
type SendCodeRequest struct {
	Telefono string `json:"telefono"`
}

// VerifyCodeRequest is the body of the verify-code endpoint.
type VerifyCodeRequest struct {
	Telefono string `json:"telefono"`
	Codigo   string `json:"codigo"`
}

// SendCodeResult is a successful send-code answer.
type SendCodeResult struct {
	Message          string `json:"message"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
	PhoneNumber      string `json:"phone_number"`
}

// Validate checks the fields the client relies on.
func (r SendCodeResult) Validate() error {
	if r.PhoneNumber == "" {
		return fmt.Errorf("send-code response: missing phone_number")
	}
	if r.ExpiresInMinutes < 0 {
		return fmt.Errorf("send-code response: negative expires_in_minutes")
	}
	return nil
}

// VerifyCodeResult is a verify-code answer with a success status. Verified
// must still be checked: a 200 with Verified false is a failed attempt.
type VerifyCodeResult struct {
	Message     string   `json:"message"`
	Verified    bool     `json:"verified"`
	PhoneNumber string   `json:"phone_number"`
	Session     *Session `json:"session,omitempty"`
}

// Validate checks the fields the client relies on.
func (r VerifyCodeResult) Validate() error {
	if r.Verified && r.Session != nil && !r.Session.UserSession().Valid() {
		return fmt.Errorf("verify-code response: incomplete session")
	}
	return nil
}

// Session is the session handed out with a successful verification.
type Session struct {
	Token  string    `json:"token"`
	UserID models.ID `json:"user_id"`
	PlanID models.ID `json:"plan_id"`
	Name   string    `json:"name,omitempty"`
}

// UserSession converts s into the store's session value.
func (s Session) UserSession() models.UserSession {
	return models.UserSession{
		Token:  s.Token,
		UserID: s.UserID.String(),
		PlanID: s.PlanID.String(),
		Name:   s.Name,
	}
}

// ErrorResponse is the body of every non-success answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Verifier performs the two network phases.
type Verifier interface {
	SendCode(ctx context.Context, phone string) (*SendCodeResult, error)
	VerifyCode(ctx context.Context, phone, code string) (*VerifyCodeResult, error)
}
