package email

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	date := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	raw, err := BuildMessage("noreply@example.com", "ann@example.com", "Aurum Life: Task Due Now", "<p>hi</p>", date)
	require.NoError(t, err)

	r, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := r.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Aurum Life: Task Due Now", subject)

	to, err := r.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "ann@example.com", to[0].Address)

	part, err := r.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<p>hi</p>")
}

func TestNewSender_MockWhenHostMissing(t *testing.T) {
	s := NewSender(SMTPConfig{})
	_, ok := s.(*MockSender)
	require.True(t, ok)
	assert.NoError(t, s.Send(context.Background(), "a@example.com", "subject", "<p>body</p>"))
}
