package testutil

import (
	"regexp"
	"sync"
	"testing"
)

type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer records every message it is asked to send. Err, when set, is
// returned from Send after recording.
type Mailer struct {
	mu   sync.Mutex
	sent []Mail
	Err  error
}

func (m *Mailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, Mail{To: to, Subject: subject, Body: body})
	return m.Err
}

func (m *Mailer) Messages() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Mail, len(m.sent))
	copy(out, m.sent)
	return out
}

var codeRe = regexp.MustCompile(`code is: ([0-9a-f]+)`)

// LastCode extracts the verification code from the newest message to addr.
func (m *Mailer) LastCode(t *testing.T, addr string) string {
	t.Helper()
	msgs := m.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].To != addr {
			continue
		}
		if match := codeRe.FindStringSubmatch(msgs[i].Body); match != nil {
			return match[1]
		}
	}
	t.Fatalf("no verification code sent to %s", addr)
	return ""
}
