package debug

import (
	"log"
	"strings"
	"sync"
	"time"
)

// Mail es un correo "enviado" por el backend de desarrollo.
type Mail struct {
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Code    string    `json:"code,omitempty"`
	SentAt  time.Time `json:"sentAt"`
}

// Mailbox reemplaza al servidor SMTP: guarda los correos por destinatario y
// los reenvía al dashboard.
type Mailbox struct {
	mu    sync.RWMutex
	boxes map[string][]Mail
	limit int
}

// NewMailbox guarda hasta limit correos por destinatario (0 = 20).
func NewMailbox(limit int) *Mailbox {
	if limit <= 0 {
		limit = 20
	}
	return &Mailbox{boxes: make(map[string][]Mail), limit: limit}
}

func normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Send guarda el correo. code es opcional y se expone aparte para las pruebas
// y la CLI.
func (m *Mailbox) Send(to, subject, body, code string) Mail {
	mail := Mail{To: to, Subject: subject, Body: body, Code: code, SentAt: time.Now()}

	m.mu.Lock()
	key := normalize(to)
	box := append(m.boxes[key], mail)
	if len(box) > m.limit {
		box = box[len(box)-m.limit:]
	}
	m.boxes[key] = box
	m.mu.Unlock()

	log.Printf("📧 Correo a %s: %s", to, subject)
	SendMail(mail)
	return mail
}

// Messages regresa los correos del destinatario, del más viejo al más nuevo.
func (m *Mailbox) Messages(to string) []Mail {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Mail(nil), m.boxes[normalize(to)]...)
}

// Last es el correo más reciente del destinatario.
func (m *Mailbox) Last(to string) (Mail, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	box := m.boxes[normalize(to)]
	if len(box) == 0 {
		return Mail{}, false
	}
	return box[len(box)-1], true
}
