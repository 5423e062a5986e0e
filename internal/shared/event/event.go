// Package event declares the message contracts shared between modules.
package event

const (
	// PasscodeIssuedDestination is the subject passcode issuance events are
	// published on.
	PasscodeIssuedDestination = "auth.passcode.issued"

	// PasscodeIssuedConsumerMailer is the queue group of the mailer module.
	PasscodeIssuedConsumerMailer = "mailer.passcode_issued"
)

// PasscodeIssuedMessage carries a freshly issued passcode to the delivery
// side. It transits the broker only; it is never logged or returned to a
// caller.
type PasscodeIssuedMessage struct {
	Email      string `json:"email"`
	Code       string `json:"code"`
	TTLSeconds int64  `json:"ttl_seconds"`
}
