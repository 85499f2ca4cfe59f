package repository

import (
	"net/http"
	"net/url"

	"github.com/user/cinebook/internal/model"
)

type AdminRepository struct {
	backend *Backend
}

func NewAdminRepository(backend *Backend) *AdminRepository {
	return &AdminRepository{backend: backend}
}

// Dashboard 获取后台统计数据
func (r *AdminRepository) Dashboard(username string, cookies []*http.Cookie) (*model.DashboardStats, error) {
	query := url.Values{"username": {username}}
	var stats model.DashboardStats
	if err := r.backend.GetJSON("/admin/dashboard/", query, &stats, cookies); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Users 获取全部用户列表
func (r *AdminRepository) Users(username string, cookies []*http.Cookie) ([]model.User, error) {
	query := url.Values{"username": {username}}
	var users []model.User
	if err := r.backend.GetJSON("/admin/users/", query, &users, cookies); err != nil {
		return nil, err
	}
	return users, nil
}

// Promote 提升用户为管理员
func (r *AdminRepository) Promote(userID string, cookies []*http.Cookie) error {
	return r.backend.PostJSON("/admin/users/"+userID+"/promote/", nil, nil, cookies)
}

// Demote 取消用户的管理员权限
func (r *AdminRepository) Demote(userID string, cookies []*http.Cookie) error {
	return r.backend.PostJSON("/admin/users/"+userID+"/demote/", nil, nil, cookies)
}

// Venues 获取影院参考数据（只读）
func (r *AdminRepository) Venues(cookies []*http.Cookie) ([]model.Venue, error) {
	var venues []model.Venue
	if err := r.backend.GetJSON("/venues/", nil, &venues, cookies); err != nil {
		return nil, err
	}
	return venues, nil
}
