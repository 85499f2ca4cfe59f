package repository

import (
	"net/http"
	"net/url"

	"github.com/user/cinebook/internal/model"
)

type ReservationRepository struct {
	backend *Backend
}

func NewReservationRepository(backend *Backend) *ReservationRepository {
	return &ReservationRepository{backend: backend}
}

// CreateRequest 创建预订的请求体
// RequestID 是客户端生成的幂等键，后端据此吞掉重复提交
type CreateRequest struct {
	ShowtimeID  string `json:"showtime_id"`
	TicketCount int    `json:"ticket_count"`
	Username    string `json:"username"`
	Venue       string `json:"venue"`
	RequestID   string `json:"request_id"`
}

// Create 创建预订
func (r *ReservationRepository) Create(req CreateRequest, cookies []*http.Cookie) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := r.backend.PostJSON("/reservations/create/", req, &reservation, cookies); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListByUser 查询用户的全部预订
func (r *ReservationRepository) ListByUser(username string, cookies []*http.Cookie) ([]model.Reservation, error) {
	query := url.Values{"username": {username}}
	var reservations []model.Reservation
	if err := r.backend.GetJSON("/reservations/user/", query, &reservations, cookies); err != nil {
		return nil, err
	}
	return reservations, nil
}

// Cancel 取消预订，仅 upcoming 状态可取消，取消不可逆
func (r *ReservationRepository) Cancel(id, username string, cookies []*http.Cookie) error {
	body := map[string]string{"username": username}
	return r.backend.DeleteJSON("/reservations/"+id+"/cancel/", body, nil, cookies)
}
