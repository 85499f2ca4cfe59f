package service

import (
	"errors"
	"net/http"

	"github.com/user/cinebook/internal/model"
	"github.com/user/cinebook/internal/repository"
)

// RatingService 评分流程：先查已有评分，提交时按有无决定创建还是更新
// 聚合平均分从不在本地计算，提交成功后由页面重新拉取电影详情
type RatingService struct {
	repos *repository.Repositories
}

func NewRatingService(repos *repository.Repositories) *RatingService {
	return &RatingService{repos: repos}
}

// Existing 查询用户对电影的已有评分，没有评分返回 (nil, nil)
func (s *RatingService) Existing(movieID, username string, cookies []*http.Cookie) (*model.Rating, error) {
	return s.repos.Rating.UserRating(movieID, username, cookies)
}

// Submit 提交评分，(user, movie) 维度的 upsert
func (s *RatingService) Submit(movieID, username string, score int, comment string, cookies []*http.Cookie) (*model.Rating, error) {
	if score < 1 || score > 5 {
		return nil, errors.New("评分必须在 1 到 5 之间")
	}

	existing, err := s.repos.Rating.UserRating(movieID, username, cookies)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return s.repos.Rating.Update(movieID, username, score, comment, cookies)
	}
	return s.repos.Rating.Submit(movieID, username, score, comment, cookies)
}
