package repository

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestReservationCreate_PayloadCarriesIdempotencyKey(t *testing.T) {
	var got CreateRequest
	backend, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"r42","status":"upcoming","ticket_count":2,"total_price":24.0}`))
	}))

	repo := NewReservationRepository(backend)
	reservation, err := repo.Create(CreateRequest{
		ShowtimeID:  "s1",
		TicketCount: 2,
		Username:    "alice",
		Venue:       "Main Hall",
		RequestID:   "req-123",
	}, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if got.ShowtimeID != "s1" || got.TicketCount != 2 || got.Username != "alice" {
		t.Fatalf("unexpected request payload: %+v", got)
	}
	if got.RequestID != "req-123" {
		t.Fatalf("expected idempotency key in payload, got %q", got.RequestID)
	}
	if reservation.ID != "r42" {
		t.Fatalf("expected reservation id r42, got %q", reservation.ID)
	}
}

func TestReservationCancel_SendsUsername(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	backend, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))

	repo := NewReservationRepository(backend)
	if err := repo.Cancel("r7", "alice", nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotPath != "/reservations/r7/cancel/" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotBody["username"] != "alice" {
		t.Fatalf("expected username in body, got %+v", gotBody)
	}
}

func TestUserRating_AbsenceIsEmptyState(t *testing.T) {
	backend, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"rating not found"}`))
	}))

	repo := NewRatingRepository(backend)
	rating, err := repo.UserRating("m1", "alice", nil)
	if err != nil {
		t.Fatalf("expected absence to be a normal empty state, got error %v", err)
	}
	if rating != nil {
		t.Fatalf("expected nil rating, got %+v", rating)
	}
}

func TestUserRating_EmptyBodyIsEmptyState(t *testing.T) {
	backend, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))

	repo := NewRatingRepository(backend)
	rating, err := repo.UserRating("m1", "alice", nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if rating != nil {
		t.Fatalf("expected nil rating for empty body, got %+v", rating)
	}
}

func TestUserRating_BodylessSuccessIsEmptyState(t *testing.T) {
	backend, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 只有 Content-Type，没有响应体
		w.Header().Set("Content-Type", "application/json")
	}))

	repo := NewRatingRepository(backend)
	rating, err := repo.UserRating("m1", "alice", nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if rating != nil {
		t.Fatalf("expected nil rating for bodyless response, got %+v", rating)
	}
}
