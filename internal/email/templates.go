package email

import "fmt"

// The message bodies mirror what users see: a short greeting, the code,
// and how long it stays valid.

func LoginCodeEmail(to, name, code string) *Email {
	return &Email{
		To:      []string{to},
		Subject: "Your login code",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour login verification code is: %s\n\nIt expires in 10 minutes. If you did not try to sign in, you can ignore this message.\n",
			name, code),
	}
}

func SetupCodeEmail(to, name, code string) *Email {
	return &Email{
		To:      []string{to},
		Subject: "Confirm two-factor authentication",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour two-factor setup code is: %s\n\nEnter it to finish enabling two-factor authentication. It expires in 10 minutes.\n",
			name, code),
	}
}

func ResetCodeEmail(to, name, code string) *Email {
	return &Email{
		To:      []string{to},
		Subject: "Password reset code",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour password reset code is: %s\n\nIt expires in 10 minutes. If you did not request a reset, you can ignore this message.\n",
			name, code),
	}
}
