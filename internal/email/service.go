package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendContactNotification forwards a contact request to the support
// inbox.
func (s *Service) SendContactNotification(to, name, replyTo, message string) error {
	subject := fmt.Sprintf("Contact request from %s", replyTo)
	body := BuildContactNotificationBody(name, replyTo, message)
	return s.send(to, subject, body)
}

// SendCartMergedReceipt tells a customer which items carried over from
// their guest cart at login.
func (s *Service) SendCartMergedReceipt(to string, items []CartItem) error {
	subject := "Your saved cart items are back"
	body := BuildCartMergedBody(items)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}

// CartItem is a cart line enriched for email rendering.
type CartItem struct {
	ProductID string
	Name      string
	Quantity  int
}

// BuildContactNotificationBody builds the plain-text body forwarded to
// the support inbox.
func BuildContactNotificationBody(name, replyTo, message string) string {
	var b strings.Builder
	b.WriteString("New contact request\n")
	b.WriteString("===================\n\n")
	fmt.Fprintf(&b, "Name:  %s\n", name)
	fmt.Fprintf(&b, "Email: %s\n\n", replyTo)
	b.WriteString(message)
	b.WriteString("\n")
	return b.String()
}

// BuildCartMergedBody lists the items restored into the server cart.
func BuildCartMergedBody(items []CartItem) string {
	var b strings.Builder
	b.WriteString("The items you picked out before signing in were added to your cart:\n\n")
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		fmt.Fprintf(&b, "  - %s x%d\n", name, item.Quantity)
	}
	b.WriteString("\nThey are waiting for you at checkout.\n")
	return b.String()
}
