// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kisanexport/storefront/internal/config"
	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/utils"
)

type NotificationService struct {
	users  repository.UserRepository
	config *config.Config
	send   func(to, subject, body string) error
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(users repository.UserRepository, config *config.Config) *NotificationService {
	s := &NotificationService{
		users:  users,
		config: config,
	}
	s.send = s.sendEmail
	return s
}

func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	data := map[string]interface{}{
		"Name":      user.Name,
		"StoreName": s.config.Email.FromName,
		"ShopURL":   s.config.Frontend.BaseURL + "/products",
	}
	return s.deliver(user.Email, "welcome", data)
}

func (s *NotificationService) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		return errors.Wrap(err, "failed to load order owner")
	}

	lines := make([]map[string]interface{}, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, map[string]interface{}{
			"Name":        item.Name,
			"VariantName": item.VariantName,
			"Quantity":    item.Quantity,
			"LineTotal":   utils.FormatMoney(item.LineTotal()),
		})
	}

	data := map[string]interface{}{
		"Name":      user.Name,
		"OrderID":   order.ID,
		"Items":     lines,
		"Total":     utils.FormatMoney(order.Total),
		"Address":   order.ShippingAddress,
		"OrderURL":  fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
		"StoreName": s.config.Email.FromName,
	}
	return s.deliver(user.Email, "order_confirmation", data)
}

func (s *NotificationService) SendOrderStatusUpdate(ctx context.Context, order *models.Order) error {
	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		return errors.Wrap(err, "failed to load order owner")
	}

	data := map[string]interface{}{
		"Name":      user.Name,
		"OrderID":   order.ID,
		"Status":    order.Status,
		"OrderURL":  fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
		"StoreName": s.config.Email.FromName,
	}
	return s.deliver(user.Email, "order_status", data)
}

func (s *NotificationService) deliver(to, templateType string, data map[string]interface{}) error {
	tmpl := s.getEmailTemplate(templateType)

	subject, err := s.renderTemplate(tmpl.Subject, data)
	if err != nil {
		return errors.Wrap(err, "failed to render email subject")
	}
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return errors.Wrap(err, "failed to render email template")
	}

	return s.send(to, subject, body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email not sent, SMTP is not configured")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	from := fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", from, to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"welcome": {
			Subject: "Welcome to {{.StoreName}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Name}}!</h2>
	<p>Your account is ready. Browse our spices, grains and dry fruits for export:</p>
	<a href="{{.ShopURL}}">Start shopping</a>
	<p>Best regards,<br>{{.StoreName}} Team</p>
</body>
</html>`,
		},
		"order_confirmation": {
			Subject: "Order {{.OrderID}} confirmed",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your order, {{.Name}}!</h2>
	<table>
	{{range .Items}}<tr><td>{{.Name}} ({{.VariantName}})</td><td>x{{.Quantity}}</td><td>{{.LineTotal}}</td></tr>
	{{end}}</table>
	<p><strong>Total: {{.Total}}</strong></p>
	<p>Shipping to: {{.Address.Name}}, {{.Address.Address}}, {{.Address.City}} {{.Address.Zip}}, {{.Address.Country}}</p>
	<a href="{{.OrderURL}}">View your order</a>
	<p>Best regards,<br>{{.StoreName}} Team</p>
</body>
</html>`,
		},
		"order_status": {
			Subject: "Order {{.OrderID}} is now {{.Status}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Your order {{.OrderID}} is now <strong>{{.Status}}</strong>.</p>
	<a href="{{.OrderURL}}">Track your order</a>
	<p>Best regards,<br>{{.StoreName}} Team</p>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
