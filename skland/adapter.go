package skland

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// SignInRequest is the title-specific request an adapter builds for one
// bound role, before signing. Body doubles as the canonical signature
// payload for POST endpoints.
type SignInRequest struct {
	Method string
	Path   string
	Body   []byte
}

// SignInTarget is the per-title capability. Adding a title means adding one
// implementation; no other component changes.
type SignInTarget interface {
	// Game identifies the title this adapter serves.
	Game() Game

	// AppCode is the binding-list app code the exchanger matches roles on.
	AppCode() string

	// BuildSignInRequest shapes the sign-in call for one bound role.
	BuildSignInRequest(role BoundRole) (SignInRequest, error)

	// ParseSignInResponse classifies the raw response body into a fresh
	// success, a repeat sign-in, or a failure. The upstream message is
	// preserved verbatim in the outcome.
	ParseSignInResponse(body []byte) SignInOutcome
}

type attendanceBody struct {
	UID    string `json:"uid"`
	GameID string `json:"gameId"`
}

func buildAttendanceBody(role BoundRole) ([]byte, error) {
	b, err := json.Marshal(attendanceBody{UID: role.UID, GameID: role.ChannelMasterID})
	if err != nil {
		return nil, errors.Wrap(err, "marshal attendance body")
	}
	return b, nil
}

// parseAttendance handles the shared attendance envelope. code 0 is a fresh
// sign-in; everything else goes through the repeat-vs-failed classifier.
func parseAttendance(body []byte) SignInOutcome {
	var env zonaiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return SignInOutcome{Kind: OutcomeFailed, Message: fmt.Sprintf("unparseable response: %v", err)}
	}
	if env.Code != 0 {
		return SignInOutcome{Kind: classifyFailure(env.Code, env.Message), Message: env.Message}
	}

	var data attendanceData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return SignInOutcome{Kind: OutcomeFailed, Message: fmt.Sprintf("unparseable awards: %v", err)}
	}
	awards := make([]string, 0, len(data.Awards))
	for _, a := range data.Awards {
		if a.Count > 1 {
			awards = append(awards, fmt.Sprintf("%s x%d", a.Resource.Name, a.Count))
		} else {
			awards = append(awards, a.Resource.Name)
		}
	}
	return SignInOutcome{Kind: OutcomeSigned, Awards: awards}
}
