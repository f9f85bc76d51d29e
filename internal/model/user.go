package model

// UserRegisterReq 注册请求
type UserRegisterReq struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type UserRegisterRes struct {
	IsSuccess bool   `json:"is_success"`
	UserId    int64  `json:"user_id"`
	Username  string `json:"username"`
}

// UserLoginReq 登录请求
type UserLoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserLoginRes struct {
	UserId      int64  `json:"user_id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	ExpiredAt   int64  `json:"expired_at"`
}

// UserVerifyEmailReq 邮箱可用性校验
type UserVerifyEmailReq struct {
	Email string `json:"email" binding:"required,email"`
}

type UserVerifyEmailRes struct {
	IsAvailable bool `json:"is_available"`
}

// SettingUpdateReq 更新通知偏好
type SettingUpdateReq struct {
	NotifyEmail *bool `json:"notify_email" binding:"required"`
}

// UserInfo 用于缓存和响应的用户摘要
type UserInfo struct {
	UserId   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
