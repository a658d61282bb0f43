package skland

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	hypergryphAppCode = "4ca99fa6b56cc2ba"

	grantPath   = "/user/oauth2/v2/grant"
	credPath    = "/api/v1/user/auth/generate_cred_by_code"
	bindingPath = "/api/v1/game/player/binding"
	userMePath  = "/api/v1/user/me"

	// The upstream rejects timestamps ahead of its own clock; shave a couple
	// of seconds so local clock drift doesn't invalidate signatures.
	clockSkew = 2 * time.Second
)

// exchanger turns a long-lived grant into a session credential plus the set
// of bound roles, in one pass. Invoked once per DoFullSignIn run; session
// credentials are never cached across runs.
type exchanger struct {
	exec     *executor
	signer   *Signer
	authBase string
	apiBase  string
	appCodes map[string]Game
	now      func() time.Time
	log      zerolog.Logger
}

func (x *exchanger) timestamp() string {
	return strconv.FormatInt(x.now().Add(-clockSkew).Unix(), 10)
}

// exchange performs grant -> OAuth code -> cred -> bindings -> nickname.
// A rejected grant surfaces as ErrGrantExpired; transport faults are retried
// by the executor and, once exhausted, abort the exchange.
func (x *exchanger) exchange(ctx context.Context, grant string) (SessionCredential, string, []BoundRole, error) {
	code, err := x.grantCode(ctx, grant)
	if err != nil {
		return SessionCredential{}, "", nil, err
	}

	cred, err := x.generateCred(ctx, code)
	if err != nil {
		return SessionCredential{}, "", nil, err
	}

	roles, defaultNick, err := x.bindings(ctx, cred)
	if err != nil {
		return SessionCredential{}, "", nil, err
	}

	nickname := x.nickname(ctx, cred)
	if nickname == "" {
		nickname = defaultNick
	}
	return cred, nickname, roles, nil
}

func (x *exchanger) grantCode(ctx context.Context, grant string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"appCode": hypergryphAppCode,
		"token":   grant,
		"type":    0,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal grant request")
	}

	respBody, err := x.exec.do(ctx, "POST", x.authBase+grantPath, nil, body)
	if err != nil {
		return "", errors.Wrap(err, "grant exchange")
	}

	var env hypergryphEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return "", errors.Wrapf(ErrUpstream, "unparseable grant response: %v", err)
	}
	if env.Status != 0 {
		return "", errors.Wrapf(ErrGrantExpired, "status %d: %s", env.Status, env.Msg)
	}

	var data grantCodeData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Code == "" {
		return "", errors.Wrap(ErrUpstream, "grant response missing code")
	}
	return data.Code, nil
}

func (x *exchanger) generateCred(ctx context.Context, code string) (SessionCredential, error) {
	body, err := json.Marshal(map[string]any{"kind": 1, "code": code})
	if err != nil {
		return SessionCredential{}, errors.Wrap(err, "marshal cred request")
	}

	respBody, err := x.exec.do(ctx, "POST", x.apiBase+credPath, x.deviceHeaders(), body)
	if err != nil {
		return SessionCredential{}, errors.Wrap(err, "generate cred")
	}

	var env zonaiEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return SessionCredential{}, errors.Wrapf(ErrUpstream, "unparseable cred response: %v", err)
	}
	if env.Code != 0 {
		// The one-shot code was minted from the grant moments ago; a
		// rejection here means the grant itself no longer stands.
		return SessionCredential{}, errors.Wrapf(ErrGrantExpired, "code %d: %s", env.Code, env.Message)
	}

	var data credData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Cred == "" || data.Token == "" {
		return SessionCredential{}, errors.Wrap(ErrUpstream, "cred response missing fields")
	}
	return SessionCredential{Cred: data.Cred, SigningSecret: data.Token, UserID: data.UserID}, nil
}

func (x *exchanger) bindings(ctx context.Context, cred SessionCredential) ([]BoundRole, string, error) {
	ts := x.timestamp()
	header, err := x.signer.AuthHeaders(cred, bindingPath, "", ts)
	if err != nil {
		return nil, "", err
	}

	respBody, err := x.exec.do(ctx, "GET", x.apiBase+bindingPath, header, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "list bindings")
	}

	var env zonaiEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, "", errors.Wrapf(ErrUpstream, "unparseable binding response: %v", err)
	}
	if env.Code != 0 {
		return nil, "", errors.Wrapf(ErrUpstream, "binding list: code %d: %s", env.Code, env.Message)
	}

	var data bindingData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, "", errors.Wrapf(ErrUpstream, "unparseable binding list: %v", err)
	}

	var roles []BoundRole
	var defaultNick string
	for _, app := range data.List {
		game, ok := x.appCodes[app.AppCode]
		if !ok {
			x.log.Debug().Str("appCode", app.AppCode).Msg("skipping unsupported title binding")
			continue
		}
		for _, b := range app.BindingList {
			roles = append(roles, BoundRole{
				Game:            game,
				UID:             b.UID,
				ChannelMasterID: b.ChannelMasterID,
				ServerName:      b.ChannelName,
				Nickname:        b.NickName,
			})
			if b.IsDefault && defaultNick == "" {
				defaultNick = b.NickName
			}
		}
	}
	if defaultNick == "" && len(roles) > 0 {
		defaultNick = roles[0].Nickname
	}
	return roles, defaultNick, nil
}

// nickname resolves the account display name. Best effort: a failure falls
// back to the default binding's role name rather than failing the run.
func (x *exchanger) nickname(ctx context.Context, cred SessionCredential) string {
	ts := x.timestamp()
	header, err := x.signer.AuthHeaders(cred, userMePath, "", ts)
	if err != nil {
		return ""
	}

	respBody, err := x.exec.do(ctx, "GET", x.apiBase+userMePath, header, nil)
	if err != nil {
		x.log.Warn().Err(err).Msg("resolve nickname failed, falling back to binding name")
		return ""
	}

	var env zonaiEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil || env.Code != 0 {
		return ""
	}
	var data userData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return ""
	}
	return data.User.Nickname
}

func (x *exchanger) deviceHeaders() map[string][]string {
	return map[string][]string{
		"platform": {platformIOS},
		"dId":      {x.signer.deviceID},
		"vName":    {x.signer.vName},
	}
}

// TruncateGrant renders a grant safe for logs: first four characters only.
func TruncateGrant(grant string) string {
	if len(grant) <= 4 {
		return "****"
	}
	return fmt.Sprintf("%s…", grant[:4])
}
