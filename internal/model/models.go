package model

// 所有实体的权威数据都在后端，这里只定义边界上的显式结构，
// 避免直接操作 map[string]interface{} 带来的字段缺失问题

// User 用户模型（后端返回）
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	IsAdmin    bool   `json:"is_admin"`
	DateJoined string `json:"date_joined,omitempty"`
}

// SessionUser 专门用于 Session 存储的用户信息结构
type SessionUser struct {
	ID       string
	Username string
	Email    string
	IsAdmin  bool
}

// Movie 电影模型（含嵌套场次与评分聚合）
type Movie struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Genre         string     `json:"genre"`
	Director      string     `json:"director"`
	Cast          []string   `json:"cast"`
	Duration      string     `json:"duration"`
	PosterImage   string     `json:"poster_image"`
	Showtimes     []Showtime `json:"showtimes"`
	AverageRating float64    `json:"average_rating"`
	RatingCount   int        `json:"rating_count"`
}

// Showtime 场次模型
type Showtime struct {
	ID             string `json:"id"`
	MovieID        string `json:"movie_id,omitempty"`
	MovieTitle     string `json:"movie_title,omitempty"`
	Venue          string `json:"venue,omitempty"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Capacity       int    `json:"capacity,omitempty"`
	ReservedSeats  int    `json:"reserved_seats,omitempty"`
	AvailableSeats int    `json:"available_seats"`
}

// 预订状态，流转由后端驱动：upcoming -> completed / cancelled
const (
	ReservationUpcoming  = "upcoming"
	ReservationCompleted = "completed"
	ReservationCancelled = "cancelled"
)

// Reservation 预订模型（冗余电影/日期/时间字段用于展示）
type Reservation struct {
	ID          string  `json:"id"`
	Username    string  `json:"username,omitempty"`
	ShowtimeID  string  `json:"showtime_id"`
	MovieTitle  string  `json:"movie_title"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Venue       string  `json:"venue"`
	TicketCount int     `json:"ticket_count"`
	TotalPrice  float64 `json:"total_price"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// Rating 评分模型，(user, movie) 维度最多一条
type Rating struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	Score     int    `json:"score"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// RatingSummary 某部电影的评分聚合
type RatingSummary struct {
	AverageRating float64  `json:"average_rating"`
	RatingCount   int      `json:"rating_count"`
	Ratings       []Rating `json:"ratings"`
}

// Venue 影院模型（只读参考数据）
type Venue struct {
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Capacity       int     `json:"capacity"`
	ScreenCount    int     `json:"screen_count"`
	WeeklyRevenue  float64 `json:"weekly_revenue"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	YearlyRevenue  float64 `json:"yearly_revenue"`
}

// DashboardStats 管理后台统计数据
type DashboardStats struct {
	MovieCount        int     `json:"movie_count"`
	UserCount         int     `json:"user_count"`
	TodayReservations int     `json:"today_reservations"`
	WeeklyRevenue     float64 `json:"weekly_revenue"`
}
