package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicq/internal/notifications/domain"
)

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, sink.Send(context.Background(), domain.Notification{
		Recipient: uuid.New(),
		Subject:   "Appointment confirmed",
		Body:      "see you",
	}))
	assert.Contains(t, buf.String(), "Appointment confirmed")
}

func TestRecordingSink(t *testing.T) {
	ctx := context.Background()
	sink := NewRecordingSink()

	require.NoError(t, sink.Send(ctx, domain.Notification{Subject: "one"}))

	sink.SetErr(errors.New("smtp down"))
	assert.Error(t, sink.Send(ctx, domain.Notification{Subject: "two"}))

	sink.SetErr(nil)
	require.NoError(t, sink.Send(ctx, domain.Notification{Subject: "three"}))

	sent := sink.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "one", sent[0].Subject)
	assert.Equal(t, "three", sent[1].Subject)
}
