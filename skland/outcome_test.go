package skland

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyFailure(t *testing.T) {
	t.Run("duplicate codes", func(t *testing.T) {
		require.Equal(t, OutcomeAlreadySigned, classifyFailure(10001, "异常"))
		require.Equal(t, OutcomeAlreadySigned, classifyFailure(10002, ""))
	})

	t.Run("marker variants", func(t *testing.T) {
		for _, msg := range []string{
			"今日已签到",
			"请勿重复签到",
			"重复签到",
			"您已经签到过了",
			"今日已完成",
			"Already checked in today",
		} {
			require.Equal(t, OutcomeAlreadySigned, classifyFailure(10003, msg), msg)
		}
	})

	t.Run("genuine failures", func(t *testing.T) {
		for _, msg := range []string{
			"角色不存在",
			"服务器繁忙",
			"internal error",
			"",
		} {
			require.Equal(t, OutcomeFailed, classifyFailure(10003, msg), msg)
		}
	})
}

func TestAlreadySigned(t *testing.T) {
	require.True(t, AlreadySigned("请勿重复签到"))
	require.True(t, AlreadySigned("Already checked in"))
	require.False(t, AlreadySigned("服务器繁忙"))
	require.False(t, AlreadySigned(""))
}
