package utils

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends plain notification emails through SendGrid
type Mailer struct {
	APIKey string
	From   *mail.Email
}

func NewMailer(apiKey string) *Mailer {
	return &Mailer{
		APIKey: apiKey,
		From:   mail.NewEmail("Flyer Price Scraper", "no-reply@flyer-prices.example"),
	}
}

// SendEmail sends an email using SendGrid
func (m *Mailer) SendEmail(toName, toEmail, subject, textContent, htmlContent string) error {
	if m.APIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not set")
	}

	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(m.From, subject, to, textContent, htmlContent)
	client := sendgrid.NewSendClient(m.APIKey)

	response, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email to %s: %v", toEmail, err)
		return err
	}

	if response.StatusCode >= 400 {
		log.Printf("SendGrid API Error: Status Code %d, Body: %s", response.StatusCode, response.Body)
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	log.Printf("Email sent successfully to %s. Status Code: %d", toEmail, response.StatusCode)
	return nil
}
