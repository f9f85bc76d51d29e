package errors

import (
	"cryptograph/pkg/errors/ecode"
)

// 带错误码的error，由response层解码成统一的响应结构

type codeError struct {
	code    int
	message string
}

func (e *codeError) Error() string {
	return e.message
}

// WithCode 构造一个带业务错误码的error
func WithCode(code int, message string) error {
	return &codeError{code: code, message: message}
}

// DecodeErr 解出错误码和提示信息；nil表示成功
func DecodeErr(err error) (int, string) {
	if err == nil {
		return ecode.Success, "OK"
	}
	if ce, ok := err.(*codeError); ok {
		return ce.code, ce.message
	}
	return ecode.InternalErr, err.Error()
}
