package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-context/config"
)

func testConfig() *config.Config {
	return &config.Config{AppName: "Acme", CompanyName: "Acme Inc", VerifyEmailURL: "https://acme.test/verify"}
}

func TestRender_VerifyEmail(t *testing.T) {
	exp := time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)
	data := NewVerifyEmailData(testConfig(), "alice@example.com", "042917",
		WithExpiresAt(exp, time.FixedZone("COT", -5*3600)))

	subject, text, html, err := Render(VerifyEmail, data)
	require.NoError(t, err)
	assert.Equal(t, "Acme: your verification code is 042917", subject)
	assert.Contains(t, text, "Hi alice@example.com,")
	assert.Contains(t, text, "01 March 2024, 12:00 COT")
	assert.Contains(t, html, "<strong>042917</strong>")
	assert.Contains(t, html, `href="https://acme.test/verify"`)
}

func TestRender_AccountStatus(t *testing.T) {
	data := NewAccountStatusData(testConfig(), "bob@example.com", "suspended", WithName("Bob"))

	subject, text, _, err := Render(AccountStatus, data)
	require.NoError(t, err)
	assert.Equal(t, "Your Acme account is now suspended", subject)
	assert.Contains(t, text, "Hi Bob,")
}

func TestRender_EmailChanged(t *testing.T) {
	data := NewEmailChangedData(testConfig(), "old@example.com", "new@example.com")
	assert.Equal(t, "old@example.com", data["RecipientEmail"])

	_, text, html, err := Render(EmailChanged, data)
	require.NoError(t, err)
	assert.Contains(t, text, "from old@example.com to new@example.com")
	assert.Contains(t, html, "<strong>new@example.com</strong>")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", map[string]any{})
	assert.Error(t, err)
}
