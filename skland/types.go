package skland

import "encoding/json"

// Game identifies one supported Hypergryph title.
type Game string

const (
	GameArknights Game = "arknights"
	GameEndfield  Game = "endfield"
)

// DisplayName returns the player-facing title name used in reports.
func (g Game) DisplayName() string {
	switch g {
	case GameArknights:
		return "明日方舟"
	case GameEndfield:
		return "终末地"
	default:
		return string(g)
	}
}

// SessionCredential is the short-lived credential pair obtained by exchanging
// a grant. It is owned by a single DoFullSignIn run and never persisted.
type SessionCredential struct {
	Cred          string
	SigningSecret string
	UserID        string
}

// BoundRole is one game-account binding discovered during credential exchange.
// A grant may have several roles per game (one per server).
type BoundRole struct {
	Game            Game
	UID             string
	ChannelMasterID string
	ServerName      string
	Nickname        string
}

// SignInResult is the outcome of one sign-in attempt for one bound role.
// Err carries the upstream message verbatim; callers match on it to tell
// "already signed today" apart from a genuine failure.
type SignInResult struct {
	Game    Game
	Success bool
	Awards  []string
	Err     string
}

// zonaiEnvelope is the response wrapper used by all zonai.skland.com endpoints.
type zonaiEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// hypergryphEnvelope is the response wrapper used by as.hypergryph.com.
type hypergryphEnvelope struct {
	Status int             `json:"status"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

type grantCodeData struct {
	Code string `json:"code"`
}

type credData struct {
	Cred   string `json:"cred"`
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type bindingData struct {
	List []bindingApp `json:"list"`
}

type bindingApp struct {
	AppCode     string        `json:"appCode"`
	BindingList []bindingRole `json:"bindingList"`
}

type bindingRole struct {
	UID             string `json:"uid"`
	ChannelMasterID string `json:"channelMasterId"`
	ChannelName     string `json:"channelName"`
	NickName        string `json:"nickName"`
	IsDefault       bool   `json:"isDefault"`
}

type userData struct {
	User struct {
		Nickname string `json:"nickname"`
	} `json:"user"`
}

type attendanceData struct {
	Awards []attendanceAward `json:"awards"`
}

type attendanceAward struct {
	Resource struct {
		Name string `json:"name"`
	} `json:"resource"`
	Count int `json:"count"`
}
