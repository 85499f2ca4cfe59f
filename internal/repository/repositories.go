package repository

// Repositories 仓库集合，统一对接后端 API
type Repositories struct {
	Backend     *Backend
	User        *UserRepository
	Movie       *MovieRepository
	Rating      *RatingRepository
	Showtime    *ShowtimeRepository
	Reservation *ReservationRepository
	Admin       *AdminRepository
}

func NewRepositories(backend *Backend) *Repositories {
	return &Repositories{
		Backend:     backend,
		User:        NewUserRepository(backend),
		Movie:       NewMovieRepository(backend),
		Rating:      NewRatingRepository(backend),
		Showtime:    NewShowtimeRepository(backend),
		Reservation: NewReservationRepository(backend),
		Admin:       NewAdminRepository(backend),
	}
}
