package service

import (
	"github.com/user/cinebook/internal/model"
)

// SplitReservations 把预订列表分成未到场次和历史两组
// 历史包含已完成和已取消
func SplitReservations(reservations []model.Reservation) (upcoming, past []model.Reservation) {
	for _, r := range reservations {
		if r.Status == model.ReservationUpcoming {
			upcoming = append(upcoming, r)
		} else {
			past = append(past, r)
		}
	}
	return upcoming, past
}
