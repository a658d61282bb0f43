package bot

import (
	"testing"

	"github.com/seelevollerei/skland-signin/skland"
	"github.com/stretchr/testify/require"
)

func TestFormatStatus(t *testing.T) {
	t.Run("no bindings", func(t *testing.T) {
		require.Equal(t, "没有绑定游戏", FormatStatus(nil, "博士"))
	})

	t.Run("fresh sign-in with awards", func(t *testing.T) {
		out := FormatStatus([]skland.SignInResult{
			{Game: skland.GameArknights, Success: true, Awards: []string{"龙门币", "合成玉 x200"}},
		}, "博士")
		require.Equal(t, "【博士】\n明日方舟 已签到 (龙门币, 合成玉 x200)", out)
	})

	t.Run("fresh sign-in without awards", func(t *testing.T) {
		out := FormatStatus([]skland.SignInResult{
			{Game: skland.GameEndfield, Success: true},
		}, "")
		require.Equal(t, "终末地 已签到 (无奖励)", out)
	})

	t.Run("already signed renders as signed", func(t *testing.T) {
		out := FormatStatus([]skland.SignInResult{
			{Game: skland.GameArknights, Err: "请勿重复签到！"},
		}, "")
		require.Equal(t, "明日方舟 已签到 (无奖励)", out)
	})

	t.Run("failure keeps upstream text", func(t *testing.T) {
		out := FormatStatus([]skland.SignInResult{
			{Game: skland.GameArknights, Err: "服务器繁忙"},
		}, "")
		require.Equal(t, "明日方舟 签到失败: 服务器繁忙", out)
	})

	t.Run("mixed games keep order", func(t *testing.T) {
		out := FormatStatus([]skland.SignInResult{
			{Game: skland.GameArknights, Success: true, Awards: []string{"furniture"}},
			{Game: skland.GameEndfield, Err: "角色不存在"},
		}, "博士")
		require.Equal(t, "【博士】\n明日方舟 已签到 (furniture)\n终末地 签到失败: 角色不存在", out)
	})
}

func TestFormatGroupRow(t *testing.T) {
	require.Equal(t, " ✅ | ❌ | 博士", formatGroupRow(true, false, "博士"))
	require.Equal(t, " ❌ | ✅ | 博士", formatGroupRow(false, true, "博士"))
}
