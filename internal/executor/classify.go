package executor

import (
	"strings"

	"github.com/ytget/yt-harvester/internal/model"
)

// Classification is substring matching on yt-dlp's error output: the tool
// reports failures as text, not structured codes. Ordering matters — the
// auth phrases are checked first because YouTube's bot-check page mentions
// both sign-in and availability.
var (
	authPhrases = []string{
		"sign in to confirm",
		"login required",
		"cookies are no longer valid",
		"account cookies",
		"http error 401",
		"http error 403",
		"unable to authenticate",
	}
	rateLimitPhrases = []string{
		"http error 429",
		"too many requests",
		"rate-limited",
		"rate limited",
	}
	unavailablePhrases = []string{
		"video unavailable",
		"private video",
		"this video is not available",
		"video has been removed",
		"copyright",
		"http error 404",
		"members-only",
	}
	transientPhrases = []string{
		"timed out",
		"timeout",
		"connection reset",
		"connection refused",
		"temporary failure",
		"network is unreachable",
		"unexpected eof",
		"incomplete read",
		"http error 5",
	}
)

// Classify maps a yt-dlp error message onto the error taxonomy. Anything
// unrecognized comes back as unknown and is retried like a transient failure.
func Classify(message string) model.ErrorKind {
	msg := strings.ToLower(message)

	for _, p := range authPhrases {
		if strings.Contains(msg, p) {
			return model.ErrorKindAuth
		}
	}
	for _, p := range rateLimitPhrases {
		if strings.Contains(msg, p) {
			return model.ErrorKindRateLimited
		}
	}
	for _, p := range unavailablePhrases {
		if strings.Contains(msg, p) {
			return model.ErrorKindContentUnavailable
		}
	}
	for _, p := range transientPhrases {
		if strings.Contains(msg, p) {
			return model.ErrorKindTransient
		}
	}
	return model.ErrorKindUnknown
}
