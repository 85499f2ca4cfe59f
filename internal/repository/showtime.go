package repository

import (
	"net/http"
	"net/url"

	"github.com/user/cinebook/internal/model"
)

type ShowtimeRepository struct {
	backend *Backend
}

func NewShowtimeRepository(backend *Backend) *ShowtimeRepository {
	return &ShowtimeRepository{backend: backend}
}

// List 按日期/电影过滤查询场次，两个条件都可为空
func (r *ShowtimeRepository) List(date, movieID string, cookies []*http.Cookie) ([]model.Showtime, error) {
	query := url.Values{}
	if date != "" {
		query.Set("date", date)
	}
	if movieID != "" {
		query.Set("movie_id", movieID)
	}
	var showtimes []model.Showtime
	if err := r.backend.GetJSON("/showtimes/", query, &showtimes, cookies); err != nil {
		return nil, err
	}
	return showtimes, nil
}

// Create 创建场次
func (r *ShowtimeRepository) Create(movieID, date, timeSlot string, capacity int, cookies []*http.Cookie) (*model.Showtime, error) {
	body := map[string]interface{}{
		"movie_id": movieID,
		"date":     date,
		"time":     timeSlot,
		"capacity": capacity,
	}
	var showtime model.Showtime
	if err := r.backend.PostJSON("/showtimes/create/", body, &showtime, cookies); err != nil {
		return nil, err
	}
	return &showtime, nil
}

// Delete 删除场次
func (r *ShowtimeRepository) Delete(id string, cookies []*http.Cookie) error {
	return r.backend.DeleteJSON("/showtimes/"+id+"/delete/", nil, nil, cookies)
}
