package skland

const endfieldAttendancePath = "/api/v1/game/endfield/attendance"

// EndfieldAdapter signs in the Endfield daily attendance. Same envelope as
// Arknights, separate endpoint.
type EndfieldAdapter struct{}

func (EndfieldAdapter) Game() Game      { return GameEndfield }
func (EndfieldAdapter) AppCode() string { return "endfield" }

func (EndfieldAdapter) BuildSignInRequest(role BoundRole) (SignInRequest, error) {
	body, err := buildAttendanceBody(role)
	if err != nil {
		return SignInRequest{}, err
	}
	return SignInRequest{Method: "POST", Path: endfieldAttendancePath, Body: body}, nil
}

func (EndfieldAdapter) ParseSignInResponse(body []byte) SignInOutcome {
	return parseAttendance(body)
}
