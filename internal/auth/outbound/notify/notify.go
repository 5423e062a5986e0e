// Package notify delivers issued passcodes to users. Two sinks exist: a
// direct SMTP sink and a broker sink that defers delivery to the mailer
// module. Configuration picks one.
package notify

import (
	"fmt"
	"time"
)

func passcodeSubject() string {
	return "Your login code"
}

func passcodeTextBody(code string, ttl time.Duration) string {
	return fmt.Sprintf(
		"Your one-time login code is %s.\n\nIt expires in %d minutes. If you did not request it, ignore this email.\n",
		code, int(ttl.Minutes()),
	)
}

func passcodeHTMLBody(code string, ttl time.Duration) string {
	return fmt.Sprintf(
		`<p>Your one-time login code is <strong>%s</strong>.</p><p>It expires in %d minutes. If you did not request it, ignore this email.</p>`,
		code, int(ttl.Minutes()),
	)
}
