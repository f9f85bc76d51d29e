package ecode

// 错误码定义，0表示成功
const (
	Success = 0

	InternalErr            = 10001
	InvalidParamErr        = 10002
	NotFoundErr            = 10003
	RequireAuthErr         = 10004
	TooManyRequestErr      = 10005
	RecordExistErr         = 10006
	PasswordErr            = 10007
	InsufficientBalanceErr = 10008
	UpstreamErr            = 10009 // 交易所行情接口异常
)
