package repository

import (
	"net/http"
	"net/url"

	"github.com/user/cinebook/internal/model"
)

type RatingRepository struct {
	backend *Backend
}

func NewRatingRepository(backend *Backend) *RatingRepository {
	return &RatingRepository{backend: backend}
}

// MovieRatings 获取电影的全部评分与聚合
func (r *RatingRepository) MovieRatings(movieID string, cookies []*http.Cookie) (*model.RatingSummary, error) {
	var summary model.RatingSummary
	if err := r.backend.GetJSON("/movies/"+movieID+"/ratings/", nil, &summary, cookies); err != nil {
		return nil, err
	}
	return &summary, nil
}

// UserRating 获取某用户对某电影的评分
// 还没有评分时返回 (nil, nil)，属于正常空状态
func (r *RatingRepository) UserRating(movieID, username string, cookies []*http.Cookie) (*model.Rating, error) {
	query := url.Values{"username": {username}}
	var rating model.Rating
	err := r.backend.GetJSON("/movies/"+movieID+"/ratings/user/", query, &rating, cookies)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if rating.ID == "" && rating.Score == 0 {
		return nil, nil
	}
	return &rating, nil
}

type ratingPayload struct {
	Score    int    `json:"score"`
	Comment  string `json:"comment,omitempty"`
	Username string `json:"username,omitempty"`
}

// Submit 首次提交评分
func (r *RatingRepository) Submit(movieID, username string, score int, comment string, cookies []*http.Cookie) (*model.Rating, error) {
	var rating model.Rating
	body := ratingPayload{Score: score, Comment: comment, Username: username}
	if err := r.backend.PostJSON("/movies/"+movieID+"/ratings/", body, &rating, cookies); err != nil {
		return nil, err
	}
	return &rating, nil
}

// Update 更新已有评分（(user, movie) 维度的 upsert）
func (r *RatingRepository) Update(movieID, username string, score int, comment string, cookies []*http.Cookie) (*model.Rating, error) {
	var rating model.Rating
	body := ratingPayload{Score: score, Comment: comment, Username: username}
	if err := r.backend.PutJSON("/movies/"+movieID+"/ratings/", body, &rating, cookies); err != nil {
		return nil, err
	}
	return &rating, nil
}
