package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for advisory emails
// (password-changed notices and the like). Auth-critical mail never goes
// through the queue: those sends are synchronous so failures propagate.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// PasswordChangedJob builds the advisory notice sent after a successful
// password rotation.
func PasswordChangedJob(to Recipient) EmailJob {
	return EmailJob{
		To:      to.Email,
		Subject: "Your password was changed",
		Text: "Hi " + to.Username + ",\n\nYour password was just changed. " +
			"If this was you, no action is needed. If not, reset your password immediately.\n",
	}
}
