package auth

import "errors"

// Error codes reported by the identity provider.
const (
	CodeUserNotFound      = "auth/user-not-found"
	CodeWrongPassword     = "auth/wrong-password"
	CodeEmailInUse        = "auth/email-already-in-use"
	CodeWeakPassword      = "auth/weak-password"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeUserDisabled      = "auth/user-disabled"
	CodeTooManyRequests   = "auth/too-many-requests"
	CodeNetworkFailed     = "auth/network-request-failed"
	CodeInvalidToken      = "auth/invalid-token"
	CodeOperationDisabled = "auth/operation-not-allowed"
)

var messages = map[string]string{
	CodeUserNotFound:      "No account found with this email address.",
	CodeWrongPassword:     "Incorrect password. Please try again.",
	CodeEmailInUse:        "An account with this email already exists.",
	CodeWeakPassword:      "Password should be at least 6 characters long.",
	CodeInvalidEmail:      "Please enter a valid email address.",
	CodeUserDisabled:      "This account has been disabled.",
	CodeTooManyRequests:   "Too many failed attempts. Please try again later.",
	CodeNetworkFailed:     "Network error. Please check your connection and try again.",
	CodeInvalidToken:      "Your session has expired. Please sign in again.",
	CodeOperationDisabled: "Email/password accounts are not enabled. Please contact support.",
}

const genericMessage = "An error occurred during authentication. Please try again."

// Message maps an error code to its user-readable text.
func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return genericMessage
}

// Error is an authentication failure shown inline on the login/signup form.
type Error struct {
	Code string
}

func (e *Error) Error() string {
	return Message(e.Code)
}

func newError(code string) error {
	return &Error{Code: code}
}

// CodeOf returns the auth code carried by err, or "" if err is not an *Error.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

var (
	// ErrUserExists is returned by a UserStore for a duplicate email.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned by a UserStore when no user matches.
	ErrUserNotFound = errors.New("user not found")
)
