package resilience

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Upstream generation APIs report saturation and key problems as message text
// as often as status codes, so classification is marker-based over the lowered
// error string. Anything not recognizably transient fails fast.
var transientMarkers = []string{
	"503",
	"unavailable",
	"overloaded",
	"429",
	"rate limit",
	"rate_limit",
	"quota",
	"resource_exhausted",
}

var permanentMarkers = []string{
	"400",
	"invalid_argument",
	"api key not valid",
	"api_key_invalid",
	"permission_denied",
	"unauthenticated",
}

// ClassifyGeneration maps an upstream generation error for retry and breaker
// purposes. Permanent client errors do not feed the breaker: a malformed
// request says nothing about upstream health.
func ClassifyGeneration(err error) ErrorClassification {
	if err == nil {
		return ErrorClassification{}
	}
	msg := strings.ToLower(err.Error())

	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return ErrorClassification{Retryable: true, RecordFailure: true}
		}
	}
	return ErrorClassification{Retryable: false, RecordFailure: true}
}

var retryHintRE = regexp.MustCompile(`retry in (\d+(?:\.\d+)?)\s*s`)

// RetryHint extracts the upstream "retry in Ns" suggestion from an error
// message. The hint is capped so a hostile or confused upstream cannot park
// callers for minutes.
func RetryHint(err error, cap time.Duration) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	m := retryHintRE.FindStringSubmatch(strings.ToLower(err.Error()))
	if m == nil {
		return 0, false
	}
	seconds, convErr := strconv.ParseFloat(m[1], 64)
	if convErr != nil || seconds <= 0 {
		return 0, false
	}
	hint := time.Duration(seconds * float64(time.Second))
	if hint > cap {
		hint = cap
	}
	return hint, true
}
