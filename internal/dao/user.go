package dao

import (
	"context"
	"cryptograph/internal/model/entity"

	"gorm.io/gorm"
)

type UserDao interface {
	// 根据用户名获取user实体
	UserGetByName(ctx context.Context, username string) (entity.User, error)
	// 根据id获取用户
	UserGetById(ctx context.Context, userId int64) (entity.User, error)
	// 创建用户
	UserCreate(ctx context.Context, user *entity.User) error
	// 邮箱是否已注册
	UserCountByEmail(ctx context.Context, email string) (int64, error)
	// 获取用户通知偏好
	SettingGet(ctx context.Context, userId int64) (entity.Setting, error)
	// 更新通知偏好
	SettingUpsert(ctx context.Context, setting *entity.Setting) error
}

type userDao struct {
	db *gorm.DB
}

func NewUserDao(db *gorm.DB) UserDao {
	return &userDao{db: db}
}

func (d *userDao) UserGetByName(ctx context.Context, username string) (entity.User, error) {
	var u entity.User
	err := d.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	return u, err
}

func (d *userDao) UserGetById(ctx context.Context, userId int64) (entity.User, error) {
	var u entity.User
	err := d.db.WithContext(ctx).Where("id = ?", userId).First(&u).Error
	return u, err
}

func (d *userDao) UserCreate(ctx context.Context, user *entity.User) error {
	return d.db.WithContext(ctx).Create(user).Error
}

func (d *userDao) UserCountByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&entity.User{}).Where("email = ?", email).Count(&count).Error
	return count, err
}

func (d *userDao) SettingGet(ctx context.Context, userId int64) (entity.Setting, error) {
	var s entity.Setting
	err := d.db.WithContext(ctx).Where("user_id = ?", userId).First(&s).Error
	return s, err
}

func (d *userDao) SettingUpsert(ctx context.Context, setting *entity.Setting) error {
	return d.db.WithContext(ctx).Save(setting).Error
}
