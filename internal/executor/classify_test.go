package executor

import (
	"testing"

	"github.com/ytget/yt-harvester/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message  string
		expected model.ErrorKind
	}{
		{"ERROR: [youtube] abc: Sign in to confirm you're not a bot", model.ErrorKindAuth},
		{"HTTP Error 403: Forbidden", model.ErrorKindAuth},
		{"HTTP Error 401: Unauthorized", model.ErrorKindAuth},
		{"The provided account cookies are no longer valid", model.ErrorKindAuth},
		{"HTTP Error 429: Too Many Requests", model.ErrorKindRateLimited},
		{"ERROR: unable to download video data: rate-limited by server", model.ErrorKindRateLimited},
		{"ERROR: [youtube] abc: Video unavailable", model.ErrorKindContentUnavailable},
		{"ERROR: [youtube] abc: Private video. Sign in if you've been granted access", model.ErrorKindContentUnavailable},
		{"This video has been removed by the uploader", model.ErrorKindContentUnavailable},
		{"HTTP Error 404: Not Found", model.ErrorKindContentUnavailable},
		{"ERROR: unable to download webpage: The read operation timed out", model.ErrorKindTransient},
		{"read tcp 10.0.0.2:443: connection reset by peer", model.ErrorKindTransient},
		{"HTTP Error 503: Service Unavailable", model.ErrorKindTransient},
		{"something entirely new happened", model.ErrorKindUnknown},
		{"", model.ErrorKindUnknown},
	}

	for _, test := range tests {
		if got := Classify(test.message); got != test.expected {
			t.Errorf("Classify(%q) = %q, expected %q", test.message, got, test.expected)
		}
	}
}
