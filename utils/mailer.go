package utils

import (
	"fmt"

	"github.com/badoux/checkmail"
	"gopkg.in/gomail.v2"

	"cabanas/config"
)

// ValidateInviteEmail checks the syntax of an invitee address before an
// invitation record is created.
func ValidateInviteEmail(email string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return fmt.Errorf("invalid email address: %w", err)
	}
	return nil
}

// SendInvitationEmail mails a team invitation with its accept token.
// Sending is best-effort: the invitation record exists either way.
func SendInvitationEmail(to, teamName, token string) error {
	if config.AppConfig.SMTPHost == "" {
		return fmt.Errorf("SMTP is not configured")
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Te invitaron al equipo %s</h2>
			<p>Acepta la invitación desde la aplicación con este código:</p>
			<h3>%s</h3>
			<p>Si no esperabas este correo, ignóralo.</p>
		</body>
		</html>
	`, teamName, token)

	m := gomail.NewMessage()
	m.SetHeader("From", config.AppConfig.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Invitación al equipo %s", teamName))
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	return nil
}
