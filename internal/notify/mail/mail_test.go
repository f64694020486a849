package mail

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"
)

func TestSend_NoopWhenUnconfigured(t *testing.T) {
	t.Parallel()

	n := New("", "helpdesk@example.com", "", "")
	if err := n.Send(context.Background(), "mod@example.com", "s", "b"); err != nil {
		t.Errorf("Send = %v, want nil", err)
	}
}

func TestMessage_Format(t *testing.T) {
	t.Parallel()

	got := string(message("helpdesk@example.com", "mod@example.com", "Ticket assigned", "details here"))

	wantLines := []string{
		"From: helpdesk@example.com\r\n",
		"To: mod@example.com\r\n",
		"Subject: Ticket assigned\r\n",
		"Content-Type: text/plain; charset=UTF-8\r\n",
		"\r\ndetails here\r\n",
	}
	for _, w := range wantLines {
		if !strings.Contains(got, w) {
			t.Errorf("message missing %q:\n%s", w, got)
		}
	}
	if !strings.Contains(got, "\r\n\r\n") {
		t.Error("message missing header/body separator")
	}
}

// fakeSMTP is a minimal SMTP server accepting one delivery.
type fakeSMTP struct {
	ln   net.Listener
	data chan string
}

func newFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	f := &fakeSMTP{ln: ln, data: make(chan string, 1)}
	t.Cleanup(func() { ln.Close() })

	go f.serve()
	return f
}

func (f *fakeSMTP) serve() {
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	write := func(s string) { conn.Write([]byte(s + "\r\n")) }

	write("220 fake ESMTP ready")
	inData := false
	var body strings.Builder
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		if inData {
			if line == "." {
				inData = false
				f.data <- body.String()
				write("250 ok")
				continue
			}
			body.WriteString(line + "\n")
			continue
		}

		switch {
		case strings.HasPrefix(line, "EHLO"):
			write("250-fake")
			write("250 OK")
		case strings.HasPrefix(line, "HELO"):
			write("250 fake")
		case strings.HasPrefix(line, "MAIL FROM:"):
			write("250 ok")
		case strings.HasPrefix(line, "RCPT TO:"):
			write("250 ok")
		case line == "DATA":
			inData = true
			write("354 go ahead")
		case line == "QUIT":
			write("221 bye")
			return
		default:
			write("250 ok")
		}
	}
}

func TestSend_DeliversMessage(t *testing.T) {
	t.Parallel()

	srv := newFakeSMTP(t)
	n := New(srv.ln.Addr().String(), "helpdesk@example.com", "", "")

	err := n.Send(context.Background(), "mod@example.com", "New ticket", "you have been assigned")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case body := <-srv.data:
		if !strings.Contains(body, "Subject: New ticket") {
			t.Errorf("delivered message missing subject:\n%s", body)
		}
		if !strings.Contains(body, "you have been assigned") {
			t.Errorf("delivered message missing body:\n%s", body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
}
