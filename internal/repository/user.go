package repository

import (
	"net/http"
	"net/url"

	"github.com/user/cinebook/internal/model"
)

type UserRepository struct {
	backend *Backend
}

func NewUserRepository(backend *Backend) *UserRepository {
	return &UserRepository{backend: backend}
}

// Login 用户登录，成功时返回后端确认的用户信息
func (r *UserRepository) Login(username, password string, cookies []*http.Cookie) (*model.User, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	var user model.User
	if err := r.backend.PostJSON("/login/", body, &user, cookies); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register 注册新用户，注册成功后不会自动登录
func (r *UserRepository) Register(username, email, password string, cookies []*http.Cookie) error {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	return r.backend.PostJSON("/register/", body, nil, cookies)
}

// Logout 通知后端退出登录
func (r *UserRepository) Logout(cookies []*http.Cookie) error {
	return r.backend.PostJSON("/logout/", nil, nil, cookies)
}

// Current 根据持久化的用户名拉取当前用户
func (r *UserRepository) Current(username string, cookies []*http.Cookie) (*model.User, error) {
	query := url.Values{"username": {username}}
	var user model.User
	if err := r.backend.GetJSON("/user/current/", query, &user, cookies); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile 拉取用户资料
func (r *UserRepository) Profile(username string, cookies []*http.Cookie) (*model.User, error) {
	query := url.Values{"username": {username}}
	var user model.User
	if err := r.backend.GetJSON("/user/profile/", query, &user, cookies); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate 资料更新请求，空字段不提交
type ProfileUpdate struct {
	Username        string `json:"username"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Email           string `json:"email,omitempty"`
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password,omitempty"`
}

// UpdateProfile 更新用户资料，返回后端合并后的最新字段
func (r *UserRepository) UpdateProfile(update ProfileUpdate, cookies []*http.Cookie) (*model.User, error) {
	var user model.User
	if err := r.backend.PutJSON("/user/profile/", update, &user, cookies); err != nil {
		return nil, err
	}
	return &user, nil
}
