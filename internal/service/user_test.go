package service

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"cryptograph/internal/model"
	"cryptograph/internal/model/entity"
	pkgerrors "cryptograph/pkg/errors"
	"cryptograph/pkg/errors/ecode"
	"cryptograph/pkg/uuid"
	"cryptograph/utils/security"
)

type fakeUserDao struct {
	byName   map[string]entity.User
	settings map[int64]entity.Setting
}

func newFakeUserDao() *fakeUserDao {
	return &fakeUserDao{
		byName:   map[string]entity.User{},
		settings: map[int64]entity.Setting{},
	}
}

func (f *fakeUserDao) UserGetByName(_ context.Context, username string) (entity.User, error) {
	if u, ok := f.byName[username]; ok {
		return u, nil
	}
	return entity.User{}, gorm.ErrRecordNotFound
}

func (f *fakeUserDao) UserGetById(_ context.Context, userId int64) (entity.User, error) {
	for _, u := range f.byName {
		if u.Id == userId {
			return u, nil
		}
	}
	return entity.User{}, gorm.ErrRecordNotFound
}

func (f *fakeUserDao) UserCreate(_ context.Context, user *entity.User) error {
	f.byName[user.Username] = *user
	return nil
}

func (f *fakeUserDao) UserCountByEmail(_ context.Context, email string) (int64, error) {
	for _, u := range f.byName {
		if u.Email == email {
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeUserDao) SettingGet(_ context.Context, userId int64) (entity.Setting, error) {
	if s, ok := f.settings[userId]; ok {
		return s, nil
	}
	return entity.Setting{}, gorm.ErrRecordNotFound
}

func (f *fakeUserDao) SettingUpsert(_ context.Context, setting *entity.Setting) error {
	f.settings[setting.UserId] = *setting
	return nil
}

func newTestUserService(users *fakeUserDao) *UserService {
	return &UserService{users: users, node: uuid.NewNode(1)}
}

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserDao()
	s := newTestUserService(users)

	res, err := s.Register(context.Background(), model.UserRegisterReq{
		Username: "satoshi", Email: "s@example.com", Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !res.IsSuccess || res.UserId == 0 {
		t.Fatalf("register res = %+v", res)
	}

	login, err := s.Login(context.Background(), model.UserLoginReq{Username: "satoshi", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.AccessToken == "" || login.UserId != res.UserId {
		t.Errorf("login res = %+v", login)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users := newFakeUserDao()
	users.byName["satoshi"] = entity.User{Id: 1, Username: "satoshi", Email: "other@example.com"}
	s := newTestUserService(users)

	_, err := s.Register(context.Background(), model.UserRegisterReq{
		Username: "satoshi", Email: "new@example.com", Password: "hunter22",
	})
	if err == nil {
		t.Fatal("expected duplicate username error")
	}
	if code, _ := pkgerrors.DecodeErr(err); code != ecode.RecordExistErr {
		t.Errorf("code = %d, want RecordExistErr", code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserDao()
	users.byName["other"] = entity.User{Id: 1, Username: "other", Email: "taken@example.com"}
	s := newTestUserService(users)

	_, err := s.Register(context.Background(), model.UserRegisterReq{
		Username: "satoshi", Email: "taken@example.com", Password: "hunter22",
	})
	if err == nil {
		t.Fatal("expected duplicate email error")
	}
	if code, _ := pkgerrors.DecodeErr(err); code != ecode.RecordExistErr {
		t.Errorf("code = %d, want RecordExistErr", code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := security.PasswordHash("correct")
	if err != nil {
		t.Fatal(err)
	}
	users := newFakeUserDao()
	users.byName["satoshi"] = entity.User{Id: 1, Username: "satoshi", PasswordHash: hash}
	s := newTestUserService(users)

	for _, name := range []string{"satoshi", "nobody"} {
		_, err := s.Login(context.Background(), model.UserLoginReq{Username: name, Password: "wrong"})
		if err == nil {
			t.Fatalf("login %s: expected error", name)
		}
		if code, _ := pkgerrors.DecodeErr(err); code != ecode.PasswordErr {
			t.Errorf("login %s: code = %d, want PasswordErr", name, code)
		}
	}
}

func TestSettingDefaultsToNotify(t *testing.T) {
	s := newTestUserService(newFakeUserDao())
	setting, err := s.SettingGet(context.Background(), 42)
	if err != nil {
		t.Fatalf("SettingGet: %v", err)
	}
	if !setting.NotifyEmail {
		t.Error("unset preference should default to notifications on")
	}
}

func TestSettingUpdate(t *testing.T) {
	users := newFakeUserDao()
	s := newTestUserService(users)
	setting, err := s.SettingUpdate(context.Background(), 42, false)
	if err != nil {
		t.Fatalf("SettingUpdate: %v", err)
	}
	if setting.NotifyEmail {
		t.Error("update to false not applied")
	}
	got, err := s.SettingGet(context.Background(), 42)
	if err != nil {
		t.Fatalf("SettingGet: %v", err)
	}
	if got.NotifyEmail {
		t.Error("persisted preference should be off")
	}
}
