package skland

import "strings"

// OutcomeKind classifies the parsed result of one sign-in response.
type OutcomeKind int

const (
	// OutcomeSigned is a fresh successful sign-in.
	OutcomeSigned OutcomeKind = iota
	// OutcomeAlreadySigned means today's sign-in was already claimed.
	// Reported through the failure channel but never retried.
	OutcomeAlreadySigned
	// OutcomeFailed is a genuine application-level failure.
	OutcomeFailed
)

// SignInOutcome is the adapter-level parse of one sign-in response body.
// Message carries the upstream text untouched.
type SignInOutcome struct {
	Kind    OutcomeKind
	Awards  []string
	Message string
}

// duplicateSignCodes are the upstream codes observed for a repeat sign-in.
// Codes are checked before text markers; the marker list below remains the
// fallback because the code set is not exhaustive across titles.
var duplicateSignCodes = map[int]bool{
	10001: true,
	10002: true,
}

// alreadySignedMarkers are substrings the upstream uses, across wording
// variants, when a sign-in was already claimed today. Matched case-insensitively.
var alreadySignedMarkers = []string{
	"已签到",
	"请勿重复",
	"重复签到",
	"签到过",
	"今日已",
	"already",
}

// classifyFailure decides whether an unsuccessful sign-in response is a
// repeat sign-in or a genuine failure. Pure function; the marker table is the
// single place to update when upstream wording changes.
func classifyFailure(code int, message string) OutcomeKind {
	if duplicateSignCodes[code] {
		return OutcomeAlreadySigned
	}
	lower := strings.ToLower(message)
	for _, marker := range alreadySignedMarkers {
		if strings.Contains(lower, marker) {
			return OutcomeAlreadySigned
		}
	}
	return OutcomeFailed
}

// AlreadySigned reports whether a SignInResult's error text matches a known
// repeat-sign-in marker. Callers use it to render "already signed" rows
// distinctly from failures.
func AlreadySigned(errText string) bool {
	if errText == "" {
		return false
	}
	return classifyFailure(0, errText) == OutcomeAlreadySigned
}
