package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer delivers notifications over plain SMTP.
type SMTPMailer struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

// NewSMTP creates a mailer from SMTP credentials.
func NewSMTP(host, port, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
	}
}

// Send composes the template for kind and delivers it to recipient.
func (m *SMTPMailer) Send(ctx context.Context, recipient string, kind Kind, p Params) Result {
	if recipient == "" {
		return Result{Success: false, Message: "recipient email is missing"}
	}
	if m.host == "" || m.port == "" || m.user == "" || m.password == "" {
		return Result{Success: false, Message: "SMTP credentials not fully configured"}
	}

	subject, body := compose(kind, p)

	var msg strings.Builder
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	if p.CreatorEmail != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", p.CreatorEmail)
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n\r\n%s\r\n", subject, body)

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	if err := smtp.SendMail(addr, auth, m.from, []string{recipient}, []byte(msg.String())); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("failed to send email: %v", err)}
	}

	return Result{Success: true, Message: "Email sent successfully"}
}

func compose(kind Kind, p Params) (subject, body string) {
	creator := p.CreatorName
	if creator == "" {
		creator = "Someone"
	}
	description := p.Description
	if description == "" {
		description = "Split expense"
	}
	category := p.Category
	if category == "" {
		category = "Uncategorized"
	}

	switch kind {
	case KindPaymentReminder:
		subject = fmt.Sprintf("Payment Reminder: %s", description)
		message := p.ReminderMessage
		if message == "" {
			message = fmt.Sprintf("This is a friendly reminder that your payment of $%.2f for %q is still pending.", p.ShareAmount, description)
		}
		body = fmt.Sprintf("Hi %s,\n\n%s\n\nCategory: %s\nDate: %s\nTotal: $%.2f\nYour share: $%.2f\n\n- %s",
			p.ToName, message, category, p.Date, p.TotalAmount, p.ShareAmount, creator)
	default:
		subject = fmt.Sprintf("%s split an expense with you: %s", creator, description)
		body = fmt.Sprintf("Hi %s,\n\n%s added you to a split expense.\n\nDescription: %s\nCategory: %s\nDate: %s\nTotal: $%.2f\nYour share: $%.2f\n",
			p.ToName, creator, description, category, p.Date, p.TotalAmount, p.ShareAmount)
	}
	return subject, body
}
