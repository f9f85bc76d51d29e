package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"cryptograph/conf"
	"cryptograph/internal/dao"
	"cryptograph/internal/model"
	"cryptograph/internal/model/entity"
	"cryptograph/pkg/errors"
	"cryptograph/pkg/errors/ecode"
	"cryptograph/pkg/jwt"
	"cryptograph/pkg/logger"
	"cryptograph/pkg/mail"
	"cryptograph/pkg/uuid"
	"cryptograph/utils/security"
)

type UserService struct {
	users    dao.UserDao
	node     *uuid.SnowNode
	verifier *mail.Verifier // 为nil时注册不做SMTP可达性校验
}

func NewUserService(users dao.UserDao, node *uuid.SnowNode) *UserService {
	s := &UserService{users: users, node: node}
	if conf.AppConfig.Email.PreCheck {
		s.verifier = mail.NewVerifier(conf.AppConfig.Email.Sender)
	}
	return s
}

// Register 用户注册，用户名和邮箱都要求唯一
func (s *UserService) Register(ctx context.Context, req model.UserRegisterReq) (model.UserRegisterRes, error) {
	var res model.UserRegisterRes
	if _, err := s.users.UserGetByName(ctx, req.Username); err == nil {
		return res, errors.WithCode(ecode.RecordExistErr, "username already taken")
	} else if err != gorm.ErrRecordNotFound {
		return res, err
	}
	count, err := s.users.UserCountByEmail(ctx, req.Email)
	if err != nil {
		return res, err
	}
	if count > 0 {
		return res, errors.WithCode(ecode.RecordExistErr, "email already registered")
	}
	if s.verifier != nil {
		if err := s.verifier.VerifyEmail(req.Email); err != nil {
			return res, errors.WithCode(ecode.InvalidParamErr, err.Error())
		}
	}
	hash, err := security.PasswordHash(req.Password)
	if err != nil {
		return res, err
	}
	user := &entity.User{
		Id:           s.node.GenSnowID(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.UserCreate(ctx, user); err != nil {
		return res, err
	}
	logger.Info("user registered", logger.Pair("user_id", user.Id), logger.Pair("username", user.Username))
	res.IsSuccess = true
	res.UserId = user.Id
	res.Username = user.Username
	return res, nil
}

// Login 校验口令并签发token
func (s *UserService) Login(ctx context.Context, req model.UserLoginReq) (model.UserLoginRes, error) {
	var res model.UserLoginRes
	user, err := s.users.UserGetByName(ctx, req.Username)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return res, errors.WithCode(ecode.PasswordErr, "invalid username or password")
		}
		return res, err
	}
	if !security.PasswordCompare(user.PasswordHash, req.Password) {
		return res, errors.WithCode(ecode.PasswordErr, "invalid username or password")
	}
	expireAt := time.Now().Add(time.Duration(conf.AppConfig.Jwt.JwtTtl) * time.Second)
	claims := jwt.BuildClaims(expireAt, user.Id)
	token, err := jwt.GenToken(claims, conf.AppConfig.Jwt.Secret)
	if err != nil {
		return res, err
	}
	res.UserId = user.Id
	res.Username = user.Username
	res.AccessToken = token
	res.ExpiredAt = expireAt.Unix()
	return res, nil
}

// Logout token进黑名单，宽限期内仍可用，避免并发请求瞬间全部失效
func (s *UserService) Logout(ctx context.Context, token string) error {
	return jwt.JoinBlackList(ctx, token, conf.AppConfig.Jwt.Secret)
}

// VerifyEmail 给前端的邮箱可用性检查
func (s *UserService) VerifyEmail(ctx context.Context, req model.UserVerifyEmailReq) (model.UserVerifyEmailRes, error) {
	count, err := s.users.UserCountByEmail(ctx, req.Email)
	if err != nil {
		return model.UserVerifyEmailRes{}, err
	}
	if count > 0 {
		return model.UserVerifyEmailRes{IsAvailable: false}, nil
	}
	if s.verifier != nil {
		if err := s.verifier.VerifyEmail(req.Email); err != nil {
			return model.UserVerifyEmailRes{IsAvailable: false}, nil
		}
	}
	return model.UserVerifyEmailRes{IsAvailable: true}, nil
}

// Info 当前用户摘要
func (s *UserService) Info(ctx context.Context, userId int64) (model.UserInfo, error) {
	user, err := s.users.UserGetById(ctx, userId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return model.UserInfo{}, errors.WithCode(ecode.NotFoundErr, "user not found")
		}
		return model.UserInfo{}, err
	}
	return model.UserInfo{UserId: user.Id, Username: user.Username, Email: user.Email}, nil
}

// SettingGet 通知偏好，没存过就按默认开
func (s *UserService) SettingGet(ctx context.Context, userId int64) (entity.Setting, error) {
	setting, err := s.users.SettingGet(ctx, userId)
	if err == gorm.ErrRecordNotFound {
		return entity.Setting{UserId: userId, NotifyEmail: true}, nil
	}
	return setting, err
}

// SettingUpdate 更新通知偏好
func (s *UserService) SettingUpdate(ctx context.Context, userId int64, notifyEmail bool) (entity.Setting, error) {
	setting, err := s.users.SettingGet(ctx, userId)
	if err != nil && err != gorm.ErrRecordNotFound {
		return entity.Setting{}, err
	}
	setting.UserId = userId
	setting.NotifyEmail = notifyEmail
	if err := s.users.SettingUpsert(ctx, &setting); err != nil {
		return entity.Setting{}, err
	}
	return setting, nil
}
