package service

import (
	"log"
	"net/http"
	"time"

	"github.com/user/cinebook/internal/model"
	"github.com/user/cinebook/internal/repository"
	"github.com/user/cinebook/internal/utils"
)

const dashboardCacheKey = "dashboard_stats"

// DashboardService 后台统计
// 统计属于非关键刷新：拉取失败时退回最近一次成功的数据而不是让页面报错
type DashboardService struct {
	repos *repository.Repositories
}

func NewDashboardService(repos *repository.Repositories) *DashboardService {
	return &DashboardService{repos: repos}
}

// Stats 获取统计数据，degraded 为 true 表示本次展示的是降级后的旧值
func (s *DashboardService) Stats(username string, cookies []*http.Cookie) (*model.DashboardStats, bool) {
	stats, err := s.repos.Admin.Dashboard(username, cookies)
	if err == nil {
		utils.CacheSet(dashboardCacheKey, stats, 24*time.Hour)
		return stats, false
	}
	log.Printf("[后台] 拉取统计失败，使用缓存值: %v", err)

	if cached, ok := utils.CacheGet(dashboardCacheKey); ok {
		if last, ok := cached.(*model.DashboardStats); ok {
			return last, true
		}
	}

	// 没有任何历史数据时展示零值
	return &model.DashboardStats{}, true
}
