package service

import (
	"net/http"
	"time"

	"github.com/user/cinebook/internal/model"
	"github.com/user/cinebook/internal/repository"
	"github.com/user/cinebook/internal/utils"
	"golang.org/x/sync/singleflight"
)

// MovieService 电影目录读取
// 列表与详情走短 TTL 缓存，singleflight 合并并发的相同拉取
// 评分提交、后台增删改之后调用 Invalidate 强制下次回源
type MovieService struct {
	repos     *repository.Repositories
	listCache *utils.TTLCache[[]model.Movie]
	itemCache *utils.TTLCache[*model.Movie]
	group     singleflight.Group
}

func NewMovieService(repos *repository.Repositories) *MovieService {
	return &MovieService{
		repos:     repos,
		listCache: utils.NewTTLCache[[]model.Movie](8, time.Minute),
		itemCache: utils.NewTTLCache[*model.Movie](256, time.Minute),
	}
}

// List 获取全部电影
func (s *MovieService) List(cookies []*http.Cookie) ([]model.Movie, error) {
	if movies, ok := s.listCache.Get("all"); ok {
		return movies, nil
	}

	val, err, _ := s.group.Do("movies:all", func() (interface{}, error) {
		movies, err := s.repos.Movie.List(cookies)
		if err != nil {
			return nil, err
		}
		s.listCache.Set("all", movies)
		return movies, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]model.Movie), nil
}

// Get 获取电影详情
func (s *MovieService) Get(id string, cookies []*http.Cookie) (*model.Movie, error) {
	if movie, ok := s.itemCache.Get(id); ok {
		return movie, nil
	}

	val, err, _ := s.group.Do("movies:"+id, func() (interface{}, error) {
		movie, err := s.repos.Movie.Get(id, cookies)
		if err != nil {
			return nil, err
		}
		s.itemCache.Set(id, movie)
		return movie, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*model.Movie), nil
}

// Refresh 绕过缓存回源并更新缓存（评分提交后刷新聚合用）
func (s *MovieService) Refresh(id string, cookies []*http.Cookie) (*model.Movie, error) {
	movie, err := s.repos.Movie.Get(id, cookies)
	if err != nil {
		return nil, err
	}
	s.itemCache.Set(id, movie)
	s.listCache.Delete("all")
	return movie, nil
}

// Invalidate 清除缓存，后台增删改之后调用
func (s *MovieService) Invalidate(id string) {
	if id != "" {
		s.itemCache.Delete(id)
	}
	s.listCache.Delete("all")
}
