package mailer

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

func TestDraftReminderWritesEmlFile(t *testing.T) {
	m := New("me@example.com", t.TempDir())

	company := model.Company{
		ID:           "acme",
		Name:         "Acme Corp",
		ContactEmail: "hello@acme.example",
	}
	tasks := []model.Task{
		{
			ID:      "t1",
			Title:   "Renew contract",
			Status:  model.StatusPending,
			EndDate: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:     "t2",
			Title:  "Archive old tickets",
			Status: model.StatusCompleted,
		},
	}

	path, err := m.DraftReminder(company, tasks)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".eml"))
	assert.Contains(t, path, "reminder-acme-corp-")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "Subject: Reminder: pending items for Acme Corp")
	assert.Contains(t, content, "hello@acme.example")
	assert.Contains(t, content, "me@example.com")
	assert.Contains(t, content, "Renew contract (due Apr 15, 2026)")

	// Completed work does not get nagged about.
	assert.NotContains(t, content, "Archive old tickets")
}

func TestDraftReminderRequiresContactEmail(t *testing.T) {
	m := New("me@example.com", t.TempDir())

	_, err := m.DraftReminder(model.Company{Name: "No Mail Inc"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no contact email")
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "acme-corp", sanitizeName("Acme Corp"))
	assert.Equal(t, "a-b_c-1", sanitizeName("A/B_C 1"))
}
