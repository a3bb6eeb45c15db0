package mailer

import (
	"fmt"
	"html"
	"strings"
)

// ConfirmationMessage asks a new user to activate the account.
func ConfirmationMessage(baseURL, name, email, token string) *Message {
	link := strings.TrimRight(baseURL, "/") + "/auth/confirm/" + token
	return &Message{
		To:      email,
		ToName:  name,
		Subject: "Confirm your PropertyHub account",
		Text: fmt.Sprintf("Hi %s,\n\nyour account is almost ready, confirm it by opening this link:\n%s\n\n"+
			"If you did not create this account you can ignore this message.\n", name, link),
		HTML: fmt.Sprintf(`<p>Hi %s,</p><p>your account is almost ready, confirm it by opening this link:</p>`+
			`<p><a href="%s">Confirm account</a></p><p>If you did not create this account you can ignore this message.</p>`,
			html.EscapeString(name), html.EscapeString(link)),
	}
}

// PasswordResetMessage carries the link to choose a new password.
func PasswordResetMessage(baseURL, name, email, token string) *Message {
	link := strings.TrimRight(baseURL, "/") + "/auth/forgot-password/" + token
	return &Message{
		To:      email,
		ToName:  name,
		Subject: "Reset your PropertyHub password",
		Text: fmt.Sprintf("Hi %s,\n\nyou asked to reset your password, follow this link to choose a new one:\n%s\n\n"+
			"If you did not ask for it you can ignore this message.\n", name, link),
		HTML: fmt.Sprintf(`<p>Hi %s,</p><p>you asked to reset your password, follow this link to choose a new one:</p>`+
			`<p><a href="%s">Reset password</a></p><p>If you did not ask for it you can ignore this message.</p>`,
			html.EscapeString(name), html.EscapeString(link)),
	}
}
