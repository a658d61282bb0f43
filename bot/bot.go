// Package bot maps user commands onto the sign-in client and keeps the user
// store current. The host message framework delivers commands in and replies
// out; this package owns everything in between.
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/seelevollerei/skland-signin/skland"
	"github.com/seelevollerei/skland-signin/store"
)

const dateLayout = "2006-01-02"

// SignInAPI is the slice of the sign-in client the bot needs.
type SignInAPI interface {
	DoFullSignIn(ctx context.Context, grant string) ([]skland.SignInResult, string, error)
}

// Service handles the login / logout / status commands and the daily batch.
type Service struct {
	api       SignInAPI
	users     store.UserRepo
	groups    store.GroupRepo
	messenger Messenger
	log       zerolog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) { s.now = nowFunc }
}

// NewService wires the bot command layer.
func NewService(api SignInAPI, users store.UserRepo, groups store.GroupRepo, messenger Messenger, options ...Option) (*Service, error) {
	if api == nil {
		return nil, errors.New("[NewService] sign-in api is required")
	}
	if users == nil {
		return nil, errors.New("[NewService] user repo is required")
	}
	if groups == nil {
		return nil, errors.New("[NewService] group repo is required")
	}
	s := &Service{
		api:       api,
		users:     users,
		groups:    groups,
		messenger: messenger,
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login binds a grant to a user: performs a full sign-in immediately, stores
// the record on success, and returns the reply text. An expired or rejected
// grant is reported without creating a record.
func (s *Service) Login(ctx context.Context, userID, platform, destination, grant string) (string, error) {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return HelpText, nil
	}

	results, nickname, err := s.api.DoFullSignIn(ctx, grant)
	if err != nil {
		s.log.Warn().Str("user", userID).Err(err).Msg("login sign-in failed")
		if errors.Is(err, skland.ErrGrantExpired) {
			return "登录失败: 凭证无效或已过期，请重新获取 token", nil
		}
		return "登录失败: " + err.Error(), nil
	}

	rec := &store.UserRecord{
		UserID:      userID,
		Grant:       grant,
		Nickname:    nickname,
		Destination: destination,
		Platform:    platform,
		LastSign:    map[string]string{},
		BoundAt:     s.now(),
	}
	s.applyResults(rec, results)
	if err := s.users.Upsert(ctx, rec); err != nil {
		return "", errors.Wrap(err, "store user record")
	}

	s.log.Info().Str("user", userID).Str("nickname", nickname).Msg("user logged in")
	return "登录成功！\n" + FormatStatus(results, nickname), nil
}

// Logout removes the user's record and grant.
func (s *Service) Logout(ctx context.Context, userID string) (string, error) {
	err := s.users.Delete(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "您尚未绑定森空岛账号", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "delete user record")
	}
	return "已退出登录并清除绑定信息", nil
}

// Status runs a fresh sign-in for one user and returns the formatted report.
func (s *Service) Status(ctx context.Context, userID string) (string, error) {
	rec, err := s.users.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "你还未绑定账号，请使用 /skdlogin <token>", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "load user record")
	}

	results, nickname, err := s.api.DoFullSignIn(ctx, rec.Grant)
	if err != nil {
		if errors.Is(err, skland.ErrGrantExpired) {
			return "凭证已过期，请使用 /skdlogin 重新登录", nil
		}
		return "查询失败: " + err.Error(), nil
	}

	rec.Nickname = nickname
	s.applyResults(rec, results)
	if err := s.users.Upsert(ctx, rec); err != nil {
		return "", errors.Wrap(err, "store user record")
	}
	return FormatStatus(results, nickname), nil
}

// GroupStatus signs in every registered member of a group and renders the
// status table. Per-member failures show as error rows; they never abort the
// rest of the table.
func (s *Service) GroupStatus(ctx context.Context, groupID string) (string, error) {
	memberIDs, err := s.groups.Members(ctx, groupID)
	if err != nil {
		return "", errors.Wrap(err, "list group members")
	}

	lines := append([]string{}, groupHeader...)
	for _, userID := range memberIDs {
		rec, err := s.users.Get(ctx, userID)
		if err != nil {
			continue
		}
		results, nickname, err := s.api.DoFullSignIn(ctx, rec.Grant)
		if err != nil {
			s.log.Warn().Str("user", userID).Err(err).Msg("group status sign-in failed")
			lines = append(lines, " ⚠️ | ⚠️ | (Error)")
			continue
		}
		rec.Nickname = nickname
		s.applyResults(rec, results)
		if err := s.users.Upsert(ctx, rec); err != nil {
			s.log.Error().Str("user", userID).Err(err).Msg("store user record failed")
		}

		today := s.today()
		lines = append(lines, formatGroupRow(
			rec.LastSign[string(skland.GameArknights)] == today,
			rec.LastSign[string(skland.GameEndfield)] == today,
			nickname,
		))
	}
	return strings.Join(lines, "\n"), nil
}

// RegisterGroupMember records that a registered user belongs to a group.
func (s *Service) RegisterGroupMember(ctx context.Context, groupID, userID string) error {
	return s.groups.AddMember(ctx, groupID, userID)
}

// AutoSignAll runs the daily batch: a full sign-in for every stored user,
// with the result (or a re-login prompt) delivered to the user's private
// destination. One user's failure never stops the batch.
func (s *Service) AutoSignAll(ctx context.Context) {
	recs, err := s.users.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("auto sign: list users failed")
		return
	}
	if len(recs) == 0 {
		s.log.Info().Msg("auto sign: no registered users")
		return
	}

	s.log.Info().Int("users", len(recs)).Msg("auto sign starting")
	for _, rec := range recs {
		if ctx.Err() != nil {
			s.log.Warn().Msg("auto sign aborted by shutdown")
			return
		}
		s.autoSignOne(ctx, rec)
	}
	s.log.Info().Msg("auto sign finished")
}

func (s *Service) autoSignOne(ctx context.Context, rec *store.UserRecord) {
	results, nickname, err := s.api.DoFullSignIn(ctx, rec.Grant)
	if err != nil {
		s.log.Warn().Str("user", rec.UserID).Err(err).Msg("auto sign failed")
		s.deliver(ctx, rec, "⚠️ 自动签到失败\n错误: "+err.Error()+"\n请使用 /skdlogin 重新登录")
		return
	}

	rec.Nickname = nickname
	s.applyResults(rec, results)
	if err := s.users.Upsert(ctx, rec); err != nil {
		s.log.Error().Str("user", rec.UserID).Err(err).Msg("store user record failed")
	}

	s.deliver(ctx, rec, "🎮 森空岛自动签到结果\n\n"+FormatStatus(results, nickname))
	s.log.Info().Str("user", rec.UserID).Str("nickname", nickname).Msg("auto sign complete")
}

func (s *Service) deliver(ctx context.Context, rec *store.UserRecord, text string) {
	if s.messenger == nil || rec.Destination == "" {
		return
	}
	if err := s.messenger.Send(ctx, rec.Destination, text); err != nil {
		s.log.Error().Str("user", rec.UserID).Err(err).Msg("deliver message failed")
	}
}

// applyResults stamps today's date for every game that is signed (freshly or
// already) in this run.
func (s *Service) applyResults(rec *store.UserRecord, results []skland.SignInResult) {
	if rec.LastSign == nil {
		rec.LastSign = map[string]string{}
	}
	today := s.today()
	for _, r := range results {
		if r.Success || skland.AlreadySigned(r.Err) {
			rec.LastSign[string(r.Game)] = today
		}
	}
}

func (s *Service) today() string {
	return s.now().Format(dateLayout)
}
