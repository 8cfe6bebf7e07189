// Package mailer drafts reminder emails to client companies. Drafts are
// written as .eml files for the user's mail client to pick up; taskflow
// never sends mail itself.
package mailer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"

	"taskflow/internal/model"
)

// Mailer composes company reminder drafts.
type Mailer struct {
	fromAddress string
	draftsDir   string
}

// New creates a Mailer writing drafts to draftsDir with the given From
// address.
func New(fromAddress, draftsDir string) *Mailer {
	return &Mailer{
		fromAddress: fromAddress,
		draftsDir:   draftsDir,
	}
}

// DraftReminder composes an RFC 5322 reminder email for a company listing
// its outstanding tasks and writes it to the drafts directory. It returns
// the path of the written .eml file.
func (m *Mailer) DraftReminder(
	company model.Company,
	tasks []model.Task,
) (string, error) {
	if company.ContactEmail == "" {
		return "", fmt.Errorf("company %s has no contact email", company.Name)
	}

	if err := os.MkdirAll(m.draftsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating drafts directory: %w", err)
	}

	var header mail.Header
	header.SetDate(time.Now())
	header.SetMessageID(uuid.New().String() + "@taskflow")
	header.SetSubject(fmt.Sprintf("Reminder: pending items for %s", company.Name))

	from := []*mail.Address{{Address: m.fromAddress}}
	to := []*mail.Address{{Name: company.Name, Address: company.ContactEmail}}
	header.SetAddressList("From", from)
	header.SetAddressList("To", to)

	var buf strings.Builder
	mw, err := mail.CreateWriter(&buf, header)
	if err != nil {
		return "", fmt.Errorf("creating message writer: %w", err)
	}

	var inlineHeader mail.InlineHeader
	inlineHeader.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	iw, err := mw.CreateSingleInline(inlineHeader)
	if err != nil {
		return "", fmt.Errorf("creating message body: %w", err)
	}
	if _, err := iw.Write([]byte(reminderBody(company, tasks))); err != nil {
		return "", fmt.Errorf("writing message body: %w", err)
	}
	if err := iw.Close(); err != nil {
		return "", fmt.Errorf("closing message body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing message writer: %w", err)
	}

	name := fmt.Sprintf("reminder-%s-%s.eml",
		sanitizeName(company.Name), time.Now().Format("20060102-150405"))
	path := filepath.Join(m.draftsDir, name)
	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing draft %s: %w", path, err)
	}

	return path, nil
}

// reminderBody renders the plain-text body listing the company's
// outstanding tasks, most urgent first.
func reminderBody(company model.Company, tasks []model.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", company.Name)
	b.WriteString("A friendly reminder about the following items:\n\n")

	for _, t := range tasks {
		if t.Completed() {
			continue
		}
		fmt.Fprintf(&b, "  - %s", t.Title)
		if !t.EndDate.IsZero() {
			fmt.Fprintf(&b, " (due %s)", t.EndDate.Format("Jan 2, 2006"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nBest regards,\nThe taskflow team\n")
	return b.String()
}

// sanitizeName makes a company name safe for use in a filename.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(name))
}
