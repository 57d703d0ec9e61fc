package utils

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"time"
)

// ======================
// SMTP Configuration
// ======================
var (
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	smtpUsername  = os.Getenv("SMTP_USERNAME")
	smtpPassword  = os.Getenv("SMTP_PASSWORD")
	smtpFromName  = os.Getenv("SMTP_FROM_NAME")
	smtpFromEmail = os.Getenv("SMTP_FROM_EMAIL")
	frontendURL   = os.Getenv("FRONTEND_URL")
	smtpTimeout   = 10 * time.Second
)

func sendEmail(to, subject, body string) error {
	if smtpHost == "" || smtpUsername == "" || smtpPassword == "" {
		fmt.Println("⚠️ SMTP not configured. Email not sent.")
		return nil
	}

	if smtpFromEmail == "" {
		smtpFromEmail = smtpUsername
	}

	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         smtpHost,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", smtpUsername, smtpPassword, smtpHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := client.Mail(smtpFromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		smtpFromName, smtpFromEmail, to, subject, body)

	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	return client.Quit()
}

// SendPasswordResetEmail mails the back-office reset link.
func SendPasswordResetEmail(to, name, token string) error {
	link := fmt.Sprintf("%s/auth-pages/reset-password?token=%s", frontendURL, token)
	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>We received a request to reset your password. The link below is valid for one hour:</p>
		<p><a href="%s">Reset your password</a></p>
		<p>If you did not request this, you can ignore this email.</p>`, name, link)
	return sendEmail(to, "Password Reset", body)
}

// SendEstateApprovalEmail notifies the estate admin of the approval decision.
func SendEstateApprovalEmail(to, adminName, estateName string, approved bool, note string) error {
	subject := fmt.Sprintf("Estate %q approved", estateName)
	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Your estate <b>%s</b> has been approved. Residents can now register and you can issue gate passes.</p>`,
		adminName, estateName)

	if !approved {
		subject = fmt.Sprintf("Estate %q registration update", estateName)
		body = fmt.Sprintf(`
			<p>Hello %s,</p>
			<p>Your estate <b>%s</b> could not be approved at this time.</p>
			<p>Reason: %s</p>`, adminName, estateName, note)
	}

	return sendEmail(to, subject, body)
}
