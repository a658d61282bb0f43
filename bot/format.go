package bot

import (
	"fmt"
	"strings"

	"github.com/seelevollerei/skland-signin/skland"
)

// HelpText is the reply to the help command.
const HelpText = "森空岛签到插件帮助\n" +
	"1. 私聊机器人发送 /skdlogin <token> 登录并签到\n" +
	"2. 私聊机器人发送 /skdlogout 登出\n" +
	"3. /skd 查看签到状态"

// FormatStatus renders the per-game sign-in report for one user. A result
// matching an "already signed" marker renders as signed; the raw upstream
// text is kept for genuine failures.
func FormatStatus(results []skland.SignInResult, nickname string) string {
	if len(results) == 0 {
		return "没有绑定游戏"
	}
	var lines []string
	if nickname != "" {
		lines = append(lines, fmt.Sprintf("【%s】", nickname))
	}
	for _, r := range results {
		name := r.Game.DisplayName()
		switch {
		case r.Success:
			lines = append(lines, fmt.Sprintf("%s 已签到 (%s)", name, formatAwards(r.Awards)))
		case skland.AlreadySigned(r.Err):
			lines = append(lines, fmt.Sprintf("%s 已签到 (无奖励)", name))
		default:
			lines = append(lines, fmt.Sprintf("%s 签到失败: %s", name, r.Err))
		}
	}
	return strings.Join(lines, "\n")
}

func formatAwards(awards []string) string {
	if len(awards) == 0 {
		return "无奖励"
	}
	return strings.Join(awards, ", ")
}

// formatGroupRow renders one line of the group status table.
func formatGroupRow(signedArknights, signedEndfield bool, nickname string) string {
	return fmt.Sprintf(" %s | %s | %s", statusIcon(signedArknights), statusIcon(signedEndfield), nickname)
}

func statusIcon(signed bool) string {
	if signed {
		return "✅"
	}
	return "❌"
}

var groupHeader = []string{
	"📊 森空岛签到统计",
	"═══════════════",
	"方舟 | 终末 | 昵称",
	"-----------------",
}
