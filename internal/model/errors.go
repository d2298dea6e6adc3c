package model

// ErrorKind classifies a failed download attempt. The kind drives retry and
// account-health decisions, not the literal error text.
type ErrorKind string

const (
	// ErrorKindNone means no error occurred
	ErrorKindNone ErrorKind = ""

	// ErrorKindAuth means the credential was rejected or is stale
	ErrorKindAuth ErrorKind = "auth"

	// ErrorKindRateLimited means the provider signaled backoff
	ErrorKindRateLimited ErrorKind = "rate_limited"

	// ErrorKindTransient means a timeout or connection-level failure
	ErrorKindTransient ErrorKind = "transient"

	// ErrorKindContentUnavailable means the item itself is bad, not the account
	ErrorKindContentUnavailable ErrorKind = "content_unavailable"

	// ErrorKindUnknown means the failure could not be classified
	ErrorKindUnknown ErrorKind = "unknown"
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	return string(k)
}

// Retryable returns true if an item failing with this kind may be re-enqueued.
// Unknown failures are treated conservatively as transient.
func (k ErrorKind) Retryable() bool {
	switch k {
	case ErrorKindAuth, ErrorKindRateLimited, ErrorKindTransient, ErrorKindUnknown:
		return true
	default:
		return false
	}
}

// CountsAgainstAccount returns true if this kind increments the account's
// consecutive-failure counter. A bad video is not the account's fault.
func (k ErrorKind) CountsAgainstAccount() bool {
	return k != ErrorKindContentUnavailable && k != ErrorKindNone
}

// Disabling returns true if repeated failures of this kind should disable the
// account. Only authentication failures indicate a dead credential.
func (k ErrorKind) Disabling() bool {
	return k == ErrorKindAuth
}
