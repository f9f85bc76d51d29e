package user

import (
	"github.com/gin-gonic/gin"

	"cryptograph/internal/consts"
	"cryptograph/internal/model"
	"cryptograph/internal/service"
	"cryptograph/pkg/errors"
	"cryptograph/pkg/errors/ecode"
	"cryptograph/pkg/response"
	"cryptograph/pkg/validator"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// @Summary		用户注册
// @Produce		json
// @Param			data	body		model.UserRegisterReq	true	"注册信息"
// @Success		200		{object}	response.ApiResponse{data=model.UserRegisterRes}
// @Router			/api/v1/auth/register [post]
func (handler *UserHandler) UserRegister() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.UserRegisterReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.InvalidParamErr, validator.Translate(err)), nil)
			return
		}
		res, err := handler.service.Register(ctx, req)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		用户登录
// @Produce		json
// @Param			data	body		model.UserLoginReq	true	"登录信息"
// @Success		200		{object}	response.ApiResponse{data=model.UserLoginRes}
// @Router			/api/v1/auth/login [post]
func (handler *UserHandler) UserLogin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.UserLoginReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.InvalidParamErr, validator.Translate(err)), nil)
			return
		}
		res, err := handler.service.Login(ctx, req)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		退出登录
// @Produce		json
// @Param			Authorization	header		string	true	"Bearer 用户令牌"
// @Success		200				{object}	response.ApiResponse
// @Router			/api/v1/auth/logout [post]
func (handler *UserHandler) UserLogout() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := ctx.GetString(consts.JWTTokenCtx)
		if token == "" {
			response.RequireAuthErr(ctx, nil)
			return
		}
		if err := handler.service.Logout(ctx, token); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.InternalErr, err.Error()), nil)
			return
		}
		response.JSON(ctx, nil, nil)
	}
}

// @Summary		检查邮箱是否可用
// @Produce		json
// @Param			data	body		model.UserVerifyEmailReq	true	"邮箱"
// @Success		200		{object}	response.ApiResponse{data=model.UserVerifyEmailRes}
// @Router			/api/v1/auth/verify-email [post]
func (handler *UserHandler) UserVerifyEmail() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.UserVerifyEmailReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.InvalidParamErr, validator.Translate(err)), nil)
			return
		}
		res, err := handler.service.VerifyEmail(ctx, req)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		当前用户信息
// @Produce		json
// @Param			Authorization	header		string	true	"Bearer 用户令牌"
// @Success		200				{object}	response.ApiResponse{data=model.UserInfo}
// @Router			/api/v1/user/info [get]
func (handler *UserHandler) UserInfoGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userId := ctx.GetInt64(consts.UserID)
		res, err := handler.service.Info(ctx, userId)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		通知偏好
// @Produce		json
// @Param			Authorization	header		string	true	"Bearer 用户令牌"
// @Success		200				{object}	response.ApiResponse{data=entity.Setting}
// @Router			/api/v1/user/settings [get]
func (handler *UserHandler) SettingGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userId := ctx.GetInt64(consts.UserID)
		res, err := handler.service.SettingGet(ctx, userId)
		if err != nil {
			response.JSON(ctx, errors.WithCode(ecode.InternalErr, err.Error()), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		更新通知偏好
// @Produce		json
// @Param			Authorization	header		string					true	"Bearer 用户令牌"
// @Param			data			body		model.SettingUpdateReq	true	"偏好设置"
// @Success		200				{object}	response.ApiResponse{data=entity.Setting}
// @Router			/api/v1/user/settings [put]
func (handler *UserHandler) SettingUpdate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userId := ctx.GetInt64(consts.UserID)
		var req model.SettingUpdateReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.InvalidParamErr, validator.Translate(err)), nil)
			return
		}
		res, err := handler.service.SettingUpdate(ctx, userId, *req.NotifyEmail)
		if err != nil {
			response.JSON(ctx, errors.WithCode(ecode.InternalErr, err.Error()), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}
