package debug

import "testing"

func TestMailboxKeepsMessagesPerRecipient(t *testing.T) {
	m := NewMailbox(2)

	m.Send("Ana@Hub.mx", "Código", "uno", "111111")
	m.Send("ana@hub.mx", "Código", "dos", "222222")
	m.Send("ana@hub.mx", "Código", "tres", "333333")
	m.Send("luis@hub.mx", "Bienvenido", "hola", "")

	msgs := m.Messages(" ANA@hub.mx ")
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages after trimming, got %d", len(msgs))
	}
	if msgs[0].Body != "dos" || msgs[1].Body != "tres" {
		t.Errorf("Oldest messages should be dropped first, got %+v", msgs)
	}

	last, ok := m.Last("ana@hub.mx")
	if !ok || last.Code != "333333" {
		t.Errorf("Unexpected last mail %+v", last)
	}
	if _, ok := m.Last("nadie@hub.mx"); ok {
		t.Error("Empty mailbox has no last mail")
	}
	if len(m.Messages("luis@hub.mx")) != 1 {
		t.Error("Recipients must not share a mailbox")
	}
}

func TestSetEnabled(t *testing.T) {
	prev := IsEnabled()
	defer SetEnabled(prev)

	SetEnabled(false)
	if IsEnabled() {
		t.Fatal("Dashboard should be disabled")
	}
	// Sin dashboard ni clientes no debe bloquear
	LogInfo("prueba", map[string]interface{}{"k": 1})

	SetEnabled(true)
	if !IsEnabled() {
		t.Fatal("Dashboard should be enabled")
	}
	LogError("prueba", nil)
}
