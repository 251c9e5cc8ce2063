// Package email renders and delivers visitor follow-up emails.
package email

import (
	"context"
	"fmt"

	"openhouse_backend/platform/config"
)

// FollowUp is everything needed to thank a visitor after a check-in.
type FollowUp struct {
	ToEmail         string
	Name            string
	PropertyAddress string
	FlyerURL        string
	// VisitCount is the visitor's check-in count at this open house today.
	// Values above one produce the return-visit email.
	VisitCount int
}

// IsReturnVisit reports whether the follow-up uses the return-visit template.
func (f FollowUp) IsReturnVisit() bool {
	return f.VisitCount > 1
}

// Subject returns the email subject line for the follow-up.
func (f FollowUp) Subject() string {
	if f.IsReturnVisit() {
		return fmt.Sprintf(subjectReturnVisitFmt, f.PropertyAddress)
	}
	return fmt.Sprintf(subjectFirstVisitFmt, f.PropertyAddress)
}

type Sender interface {
	SendFollowUpEmail(ctx context.Context, followUp FollowUp) error
}

// NoopSender drops every email. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendFollowUpEmail(context.Context, FollowUp) error {
	return nil
}

// NewSender returns an SMTP sender, or a NoopSender when email is disabled.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

var (
	_ Sender = NoopSender{}
	_ Sender = (*SMTPSender)(nil)
)
