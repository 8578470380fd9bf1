/*
Package errs provides the coded error type and the application error codes.

The codes identify specific failures both inside the server and on the wire
to clients, independent of the HTTP status that carries them.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates an unsupported request Content-Type.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed request body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates the per-IP request budget was exhausted.
	ErrRateLimitExceeded = 1005
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrInvalidCredentials indicates that the username/password pair did not match.
	ErrInvalidCredentials = 3001

	// ErrUserAlreadyExists indicates a registration conflict on the username.
	ErrUserAlreadyExists = 3002

	// ErrUserNotFound indicates the referenced account does not exist.
	ErrUserNotFound = 3003

	// ErrInvalidSession indicates the session token is missing, unknown, or expired.
	ErrInvalidSession = 3004

	// ErrSessionTerminated indicates the session was superseded by a newer login.
	ErrSessionTerminated = 3005
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000
)
