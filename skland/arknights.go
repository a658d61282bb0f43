package skland

const arknightsAttendancePath = "/api/v1/game/attendance"

// ArknightsAdapter signs in the Arknights daily attendance.
type ArknightsAdapter struct{}

func (ArknightsAdapter) Game() Game      { return GameArknights }
func (ArknightsAdapter) AppCode() string { return "arknights" }

func (ArknightsAdapter) BuildSignInRequest(role BoundRole) (SignInRequest, error) {
	body, err := buildAttendanceBody(role)
	if err != nil {
		return SignInRequest{}, err
	}
	return SignInRequest{Method: "POST", Path: arknightsAttendancePath, Body: body}, nil
}

func (ArknightsAdapter) ParseSignInResponse(body []byte) SignInOutcome {
	return parseAttendance(body)
}
