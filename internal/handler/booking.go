package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/user/cinebook/internal/service"
)

const bookingFlowKey = "booking_flow"

// flowFromSession 读取会话中的预订流程
func flowFromSession(c *gin.Context) (*service.BookingFlow, bool) {
	sess := sessions.Default(c)
	if v := sess.Get(bookingFlowKey); v != nil {
		if flow, ok := v.(service.BookingFlow); ok {
			return &flow, true
		}
	}
	return nil, false
}

func saveFlow(c *gin.Context, flow *service.BookingFlow) error {
	sess := sessions.Default(c)
	sess.Set(bookingFlowKey, *flow)
	return sess.Save()
}

func clearFlow(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Delete(bookingFlowKey)
	sess.Save()
}

// SelectShowtime 进入预订流程：browsing -> showtimeSelected
// 未登录直接引导到登录页，这是进入流程前的守卫
func (h *Handler) SelectShowtime(c *gin.Context) {
	movieID := c.PostForm("movie_id")
	showtimeID := c.PostForm("showtime_id")

	if !h.Session.IsAuthenticated(c) {
		c.Redirect(http.StatusFound, "/login?redirect=/movies/"+movieID)
		return
	}

	movie, err := h.Movies.Get(movieID, c.Request.Cookies())
	if err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	flow, err := h.Booking.SelectShowtime(movie, showtimeID)
	if err != nil {
		c.Redirect(http.StatusFound, "/movies/"+movieID+"?error="+url.QueryEscape(err.Error()))
		return
	}
	if err := saveFlow(c, flow); err != nil {
		c.Redirect(http.StatusFound, "/movies/"+movieID)
		return
	}
	c.Redirect(http.StatusFound, "/booking/tickets")
}

// TicketsPage 选择张数页面
func (h *Handler) TicketsPage(c *gin.Context) {
	flow, ok := flowFromSession(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	max := service.MaxTickets(flow.AvailableSeats)
	counts := make([]int, 0, max)
	for i := 1; i <= max; i++ {
		counts = append(counts, i)
	}

	c.HTML(http.StatusOK, "booking_tickets.html", h.RenderData(c, gin.H{
		"Title":  "选择张数 - " + h.Config.SiteName,
		"Flow":   flow,
		"Counts": counts,
		"Error":  c.Query("error"),
	}))
}

// ConfirmTickets 流转 showtimeSelected -> confirmingTickets -> collectingPayment
// 打开支付表单是纯本地流转，这里一并完成
func (h *Handler) ConfirmTickets(c *gin.Context) {
	flow, ok := flowFromSession(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	// 解析失败得到 0，交给状态机按越界拒绝
	count, _ := strconv.Atoi(c.PostForm("ticket_count"))
	if err := h.Booking.ConfirmTickets(flow, count); err != nil {
		saveFlow(c, flow)
		c.Redirect(http.StatusFound, "/booking/tickets?error="+url.QueryEscape(err.Error()))
		return
	}
	saveFlow(c, flow)
	c.Redirect(http.StatusFound, "/booking/payment")
}

// PaymentPage 支付信息页面，进入时流转到 collectingPayment
func (h *Handler) PaymentPage(c *gin.Context) {
	flow, ok := flowFromSession(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if err := h.Booking.OpenPayment(flow); err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	saveFlow(c, flow)

	c.HTML(http.StatusOK, "booking_payment.html", h.RenderData(c, gin.H{
		"Title":      "支付 - " + h.Config.SiteName,
		"Flow":       flow,
		"TotalPrice": float64(flow.TicketCount) * service.TicketPrice,
		"Error":      c.Query("error"),
	}))
}

// SubmitPayment 提交支付：collectingPayment -> processingPayment -> done
// 失败回到支付页并展示错误，预订不会创建
func (h *Handler) SubmitPayment(c *gin.Context) {
	flow, ok := flowFromSession(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	username := h.Session.Username(c)
	if username == "" {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	form := service.PaymentForm{
		CardName:   c.PostForm("card_name"),
		CardNumber: c.PostForm("card_number"),
		Expiry:     c.PostForm("expiry"),
		CVC:        c.PostForm("cvc"),
	}

	reservation, err := h.Booking.SubmitPayment(flow, form, username, c.Request.Cookies())
	if err != nil {
		saveFlow(c, flow)
		c.HTML(http.StatusOK, "booking_payment.html", h.RenderData(c, gin.H{
			"Title":      "支付 - " + h.Config.SiteName,
			"Flow":       flow,
			"TotalPrice": float64(flow.TicketCount) * service.TicketPrice,
			"Error":      errMessage(err, err.Error()),
			// 表单内容保留，便于修正后重新提交
			"Form": form,
		}))
		return
	}

	// 成功后清掉流程状态，确认页参数随重定向带过去
	clearFlow(c)
	query := url.Values{
		"reservation_id": {reservation.ID},
		"movie":          {flow.MovieTitle},
		"date":           {flow.Date},
		"time":           {flow.Time},
		"venue":          {flow.Venue},
		"tickets":        {strconv.Itoa(flow.TicketCount)},
	}
	c.Redirect(http.StatusFound, "/payment-success?"+query.Encode())
}

// BookingBack 回退一步
func (h *Handler) BookingBack(c *gin.Context) {
	flow, ok := flowFromSession(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if err := h.Booking.Back(flow); err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	saveFlow(c, flow)
	c.Redirect(http.StatusFound, "/booking/tickets")
}

// PaymentSuccess 预订确认页
func (h *Handler) PaymentSuccess(c *gin.Context) {
	tickets, err := strconv.Atoi(c.DefaultQuery("tickets", "1"))
	if err != nil || tickets < 1 {
		tickets = 1
	}

	c.HTML(http.StatusOK, "payment_success.html", h.RenderData(c, gin.H{
		"Title":         "预订成功 - " + h.Config.SiteName,
		"ReservationID": c.Query("reservation_id"),
		"MovieTitle":    c.Query("movie"),
		"Date":          c.Query("date"),
		"Time":          c.Query("time"),
		"Venue":         c.DefaultQuery("venue", "Main Hall"),
		"Tickets":       tickets,
		"TicketPrice":   service.TicketPrice,
		"TotalPrice":    float64(tickets) * service.TicketPrice,
	}))
}
