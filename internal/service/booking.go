package service

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/user/cinebook/internal/model"
	"github.com/user/cinebook/internal/repository"
)

// 票价在本客户端固定为 $12.00，单次预订最多 10 张
const (
	TicketPrice        = 12.00
	MaxTicketsPerOrder = 10
)

// FlowState 预订流程状态
type FlowState string

const (
	StateBrowsing          FlowState = "browsing"
	StateShowtimeSelected  FlowState = "showtime_selected"
	StateConfirmingTickets FlowState = "confirming_tickets"
	StateCollectingPayment FlowState = "collecting_payment"
	StateProcessingPayment FlowState = "processing_payment"
	StateDone              FlowState = "done"
)

// ErrBadTransition 非法的状态流转
var ErrBadTransition = errors.New("当前步骤不允许该操作")

// BookingFlow 一次预订流程的全部状态，保存在会话里（gob 注册）
// 卡片字段从不落入该结构，支付失败后表单由页面自行保留
type BookingFlow struct {
	State          FlowState
	MovieID        string
	MovieTitle     string
	ShowtimeID     string
	Date           string
	Time           string
	Venue          string
	AvailableSeats int
	TicketCount    int
	// RequestID 进入支付步骤时生成的幂等键，重试复用同一个
	RequestID     string
	ReservationID string
	TotalPrice    float64
}

// PaymentForm 支付表单，只做格式校验，不做真实扣款
type PaymentForm struct {
	CardName   string `form:"card_name" validate:"required"`
	CardNumber string `form:"card_number" validate:"required,credit_card"`
	Expiry     string `form:"expiry" validate:"required"`
	CVC        string `form:"cvc" validate:"required,numeric,min=3,max=4"`
}

// BookingService 预订流程状态机
type BookingService struct {
	repos    *repository.Repositories
	validate *validator.Validate

	// 模拟支付处理耗时，测试中可设为 0
	ProcessingDelay time.Duration
}

func NewBookingService(repos *repository.Repositories) *BookingService {
	return &BookingService{
		repos:           repos,
		validate:        validator.New(),
		ProcessingDelay: 1500 * time.Millisecond,
	}
}

// MaxTickets 单次可选的张数上限：min(10, 剩余座位)
func MaxTickets(availableSeats int) int {
	if availableSeats < MaxTicketsPerOrder {
		return availableSeats
	}
	return MaxTicketsPerOrder
}

// SelectShowtime 流转 browsing -> showtimeSelected
// 登录校验是进入流程前的守卫，不属于状态机本身
func (s *BookingService) SelectShowtime(movie *model.Movie, showtimeID string) (*BookingFlow, error) {
	for _, st := range movie.Showtimes {
		if st.ID != showtimeID {
			continue
		}
		if st.AvailableSeats < 1 {
			return nil, errors.New("该场次已售罄")
		}
		venue := st.Venue
		if venue == "" {
			venue = "Main Hall"
		}
		return &BookingFlow{
			State:          StateShowtimeSelected,
			MovieID:        movie.ID,
			MovieTitle:     movie.Title,
			ShowtimeID:     st.ID,
			Date:           st.Date,
			Time:           st.Time,
			Venue:          venue,
			AvailableSeats: st.AvailableSeats,
			TicketCount:    1,
		}, nil
	}
	return nil, errors.New("场次不存在")
}

// ConfirmTickets 流转 showtimeSelected -> confirmingTickets
// 张数必须落在 [1, min(10, 剩余座位)]
func (s *BookingService) ConfirmTickets(flow *BookingFlow, count int) error {
	if flow.State != StateShowtimeSelected && flow.State != StateConfirmingTickets {
		return ErrBadTransition
	}
	max := MaxTickets(flow.AvailableSeats)
	if count < 1 || count > max {
		return fmt.Errorf("张数必须在 1 到 %d 之间", max)
	}
	flow.TicketCount = count
	flow.State = StateConfirmingTickets
	return nil
}

// OpenPayment 流转 confirmingTickets -> collectingPayment
// 纯本地流转，不发请求；首次进入时生成幂等键
func (s *BookingService) OpenPayment(flow *BookingFlow) error {
	if flow.State != StateConfirmingTickets && flow.State != StateCollectingPayment {
		return ErrBadTransition
	}
	if flow.RequestID == "" {
		flow.RequestID = uuid.NewString()
	}
	flow.State = StateCollectingPayment
	return nil
}

// Back 从 confirmingTickets / collectingPayment 回退一步
func (s *BookingService) Back(flow *BookingFlow) error {
	switch flow.State {
	case StateConfirmingTickets:
		flow.State = StateShowtimeSelected
	case StateCollectingPayment:
		flow.State = StateConfirmingTickets
	default:
		return ErrBadTransition
	}
	return nil
}

// SubmitPayment 流转 collectingPayment -> processingPayment -> done
// 校验卡字段格式、模拟处理延迟、携带幂等键创建预订
// 失败回到 collectingPayment，预订不会创建，也不留下半截状态
func (s *BookingService) SubmitPayment(flow *BookingFlow, form PaymentForm, username string, cookies []*http.Cookie) (*model.Reservation, error) {
	if flow.State != StateCollectingPayment {
		return nil, ErrBadTransition
	}
	if err := s.validate.Struct(form); err != nil {
		return nil, errors.New("请检查支付信息后重试")
	}
	if err := validateExpiry(form.Expiry); err != nil {
		return nil, err
	}

	flow.State = StateProcessingPayment
	time.Sleep(s.ProcessingDelay)

	reservation, err := s.repos.Reservation.Create(repository.CreateRequest{
		ShowtimeID:  flow.ShowtimeID,
		TicketCount: flow.TicketCount,
		Username:    username,
		Venue:       flow.Venue,
		RequestID:   flow.RequestID,
	}, cookies)
	if err != nil {
		flow.State = StateCollectingPayment
		return nil, err
	}

	flow.State = StateDone
	flow.ReservationID = reservation.ID
	flow.TotalPrice = float64(flow.TicketCount) * TicketPrice
	return reservation, nil
}

// validateExpiry 校验有效期格式 MM/YY 且不早于当月
func validateExpiry(expiry string) error {
	t, err := time.Parse("01/06", expiry)
	if err != nil {
		return errors.New("有效期格式应为 MM/YY")
	}
	now := time.Now()
	endOfMonth := t.AddDate(0, 1, 0)
	if !endOfMonth.After(now) {
		return errors.New("银行卡已过期")
	}
	return nil
}
