package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mailtpl "github.com/oksasatya/go-ddd-user-context/pkg/mailer/templates"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, to, subject, text, html string) error {
	args := m.Called(ctx, to, subject, text, html)
	return args.Error(0)
}

func TestDeliver_Plain(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, "a@example.com", "hi", "body", "").Return(nil)

	err := Deliver(context.Background(), s, EmailJob{To: "a@example.com", Subject: "hi", Text: "body"})
	require.NoError(t, err)
	s.AssertExpectations(t)
}

func TestDeliver_Template(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, "a@example.com", "Your account is now active",
		mock.MatchedBy(func(text string) bool { return text != "" }),
		mock.MatchedBy(func(html string) bool { return html != "" })).Return(nil)

	job := EmailJob{
		To:       "a@example.com",
		Template: mailtpl.AccountStatus,
		Data:     map[string]any{"Status": "active", "Name": "", "AppName": ""},
	}
	require.NoError(t, Deliver(context.Background(), s, job))
	s.AssertExpectations(t)
}

func TestDeliver_SendError(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("boom"))
	assert.EqualError(t, Deliver(context.Background(), s, EmailJob{To: "a@example.com"}), "boom")
}

func TestEmailJob_EnsureRecipient(t *testing.T) {
	j := EmailJob{To: "a@example.com", Data: map[string]any{"Email": "b@example.com"}}
	j.EnsureRecipient()
	assert.Equal(t, "b@example.com", j.Data["Email"])
	assert.Equal(t, "a@example.com", j.Data["RecipientEmail"])
}
