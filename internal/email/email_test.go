package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestFollowUpSubject(t *testing.T) {
	first := FollowUp{PropertyAddress: "45 Kahala Ave", VisitCount: 1}
	again := FollowUp{PropertyAddress: "45 Kahala Ave", VisitCount: 2}

	assert.Equal(t, "Thank You for Visiting 45 Kahala Ave", first.Subject())
	assert.Equal(t, "Welcome Back! 45 Kahala Ave", again.Subject())
	assert.False(t, FollowUp{}.IsReturnVisit())
}

func TestRenderFirstVisit(t *testing.T) {
	html, text, err := renderFollowUp(FollowUp{
		Name:            "Keala",
		PropertyAddress: "45 Kahala Ave",
		FlyerURL:        "https://minio.local/flyer.pdf",
		VisitCount:      1,
	}, fixedNow)

	require.NoError(t, err)
	assert.Contains(t, html, "Hi Keala,")
	assert.Contains(t, html, "https://minio.local/flyer.pdf")
	assert.Contains(t, html, "2026")
	assert.NotContains(t, html, "Welcome Back")
	assert.Contains(t, text, "Download the property fact sheet: https://minio.local/flyer.pdf")
}

func TestRenderReturnVisit(t *testing.T) {
	html, text, err := renderFollowUp(FollowUp{Name: "Keala", PropertyAddress: "45 Kahala Ave", VisitCount: 3}, fixedNow)

	require.NoError(t, err)
	assert.Contains(t, html, "Welcome Back!")
	assert.Contains(t, html, "3rd visit today")
	assert.NotContains(t, html, "Download Property Fact Sheet")
	assert.Contains(t, text, "3rd visit today to 45 Kahala Ave")
}

func TestRenderEscapesVisitorInput(t *testing.T) {
	html, _, err := renderFollowUp(FollowUp{Name: "<script>x</script>", PropertyAddress: "1 Main"}, fixedNow)

	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderBlankNameFallsBack(t *testing.T) {
	html, text, err := renderFollowUp(FollowUp{Name: "   ", PropertyAddress: "1 Main"}, fixedNow)

	require.NoError(t, err)
	assert.Contains(t, html, "Hi there,")
	assert.Contains(t, text, "Hi there,")
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 103: "103rd"}
	for n, want := range cases {
		assert.Equal(t, want, ordinal(n))
	}
}

func TestBuildFollowUpMessage(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "", "", "hello@example.com", "Open House")
	s.now = func() time.Time { return fixedNow }

	msg, err := s.buildFollowUp(FollowUp{ToEmail: "visitor@example.com", Name: "Keala", PropertyAddress: "45 Kahala Ave", VisitCount: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Welcome Back! 45 Kahala Ave"}, msg.GetGenHeader("Subject"))

	_, err = s.buildFollowUp(FollowUp{ToEmail: "not an address"})
	assert.Error(t, err)
}

func TestNoopSender(t *testing.T) {
	assert.NoError(t, NoopSender{}.SendFollowUpEmail(context.Background(), FollowUp{ToEmail: "a@b.co"}))
}

type emailConfig struct{ enabled bool }

func (c emailConfig) GetEmailEnabled() bool       { return c.enabled }
func (c emailConfig) GetSMTPHost() string         { return "smtp.example.com" }
func (c emailConfig) GetSMTPPort() int            { return 587 }
func (c emailConfig) GetSMTPUsername() string     { return "user" }
func (c emailConfig) GetSMTPPassword() string     { return "pass" }
func (c emailConfig) GetEmailFromName() string    { return "Open House" }
func (c emailConfig) GetEmailFromAddress() string { return "hello@example.com" }

func TestNewSender(t *testing.T) {
	assert.IsType(t, NoopSender{}, NewSender(emailConfig{enabled: false}))
	assert.IsType(t, &SMTPSender{}, NewSender(emailConfig{enabled: true}))
}
