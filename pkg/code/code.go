package code

import (
	"fmt"
	"net/http"
)

// Code 业务状态码
// Code carries a numeric status, a bilingual message and optional payload.
type Code struct {
	// 状态码
	code int
	// 是否成功
	status bool
	// 双语消息
	Lang lang
	// HTTP 状态码
	httpStatus int

	data        interface{}
	haveData    bool
	details     []string
	haveDetails bool
}

var codes = map[int]string{}

// NewError 注册一个错误码，重复注册会 panic
func NewError(code int, httpStatus int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, status: false, Lang: l, httpStatus: httpStatus}
}

// NewSuss 注册一个成功码
func NewSuss(code int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, status: true, Lang: l, httpStatus: http.StatusOK}
}

// Clone 返回不带 data/details 的副本
// Registered codes are package globals; attach payloads to a clone only.
func (e *Code) Clone() *Code {
	return &Code{
		code:       e.code,
		status:     e.status,
		Lang:       e.Lang,
		httpStatus: e.httpStatus,
	}
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

// WithData 返回携带数据的副本
func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.details = e.details
	c.haveDetails = e.haveDetails
	c.haveData = true
	c.data = data
	return c
}

// WithDetails 返回携带详情的副本
func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.data = e.data
	c.haveData = e.haveData
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

// Is 按状态码比较，便于 errors.Is 穿透 WithDetails 生成的副本
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	if !ok {
		return false
	}
	return t.code == e.code
}

func (e *Code) StatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusOK
	}
	return e.httpStatus
}
