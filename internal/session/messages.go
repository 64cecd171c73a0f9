package session

import (
	"context"
	"errors"
	"strings"

	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"github.com/phrazzld/pinyin-picturebook/internal/redact"
)

// Reader-facing messages for failed story generation.
const (
	MsgGeneric     = "哎呀！制作绘本时出了一点小问题。"
	MsgNetwork     = "网络连接错误，请检查网络后重试。"
	MsgRateLimited = "请求太多啦，请稍等一会再试。"
)

// UserMessage selects the message shown in the error phase. Network and
// rate-limit failures get fixed messages; anything else shows the error's own
// text with secrets removed, falling back to MsgGeneric.
func UserMessage(err error) string {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return MsgGeneric
	}

	switch generation.KindOf(err) {
	case generation.KindNetwork:
		return MsgNetwork
	case generation.KindRateLimited:
		return MsgRateLimited
	}

	msg := strings.TrimSpace(redact.String(err.Error()))
	if msg == "" {
		return MsgGeneric
	}
	return msg
}
