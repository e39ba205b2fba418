// Package realtime 笔记变更的实时通知：进程内广播、WebSocket 服务端与客户端
package realtime

import (
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// 帧类型
const (
	TypeAuthorization = "Authorization"
	TypeNoteChanged   = "NoteChanged"
	TypeError         = "Error"
)

// Frame 文本帧，线上格式为 "Type|payload"
type Frame struct {
	Type string
	Data []byte
}

// ErrIllegalFrame 缺少类型分隔符
var ErrIllegalFrame = errors.New("illegal frame, missing type separator")

// Encode 编码帧，[]byte 与 string 原样写入，其余按 JSON 编码
func Encode(frameType string, v any) ([]byte, error) {
	var payload []byte
	switch d := v.(type) {
	case []byte:
		payload = d
	case string:
		payload = []byte(d)
	default:
		b, err := sonic.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "encode frame")
		}
		payload = b
	}
	out := make([]byte, 0, len(frameType)+1+len(payload))
	out = append(out, frameType...)
	out = append(out, '|')
	return append(out, payload...), nil
}

// Decode 解析文本帧
func Decode(s string) (Frame, error) {
	i := strings.Index(s, "|")
	if i < 0 {
		return Frame{}, ErrIllegalFrame
	}
	return Frame{Type: s[:i], Data: []byte(s[i+1:])}, nil
}

// Bind 将帧数据按 JSON 解码到 v
func (f Frame) Bind(v any) error {
	return errors.Wrap(sonic.Unmarshal(f.Data, v), "decode frame")
}
