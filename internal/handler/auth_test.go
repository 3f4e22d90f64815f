package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/alisoleah/qr-ordering-api/internal/auth"
	"github.com/alisoleah/qr-ordering-api/internal/database"
	"github.com/alisoleah/qr-ordering-api/internal/handler"
)

const testJWTSecret = "test-secret"

type mockAuthStore struct {
	users map[string]database.User // by email
}

func newMockAuthStore() *mockAuthStore {
	return &mockAuthStore{users: make(map[string]database.User)}
}

func (m *mockAuthStore) GetUserByEmail(_ context.Context, email string) (database.User, error) {
	u, ok := m.users[email]
	if !ok || !u.IsActive {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	for _, u := range m.users {
		if u.ID == id && u.IsActive {
			return u, nil
		}
	}
	return database.User{}, pgx.ErrNoRows
}

func (m *mockAuthStore) addUser(email, password, role string) database.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := database.User{
		ID:             uuid.New(),
		RestaurantID:   uuid.New(),
		Email:          email,
		HashedPassword: string(hash),
		FullName:       "Test User",
		Role:           role,
		IsActive:       true,
	}
	m.users[email] = u
	return u
}

func setupAuthRouter(store *mockAuthStore) *chi.Mux {
	h := handler.NewAuthHandler(store, testJWTSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestLogin_Success(t *testing.T) {
	store := newMockAuthStore()
	user := store.addUser("admin@example.com", "secret123", "ADMIN")
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "secret123",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["access_token"] == "" {
		t.Error("expected access_token in response")
	}
	if resp["refresh_token"] == "" {
		t.Error("expected refresh_token in response")
	}

	claims, err := auth.ValidateToken(testJWTSecret, resp["access_token"].(string))
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("token user ID: got %v, want %v", claims.UserID, user.ID)
	}
	if claims.Role != "ADMIN" {
		t.Errorf("token role: got %q, want ADMIN", claims.Role)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newMockAuthStore()
	store.addUser("admin@example.com", "secret123", "ADMIN")
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	router := setupAuthRouter(newMockAuthStore())

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "secret123",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	router := setupAuthRouter(newMockAuthStore())

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{"email": "a@b.c"})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRefresh_Success(t *testing.T) {
	store := newMockAuthStore()
	user := store.addUser("admin@example.com", "secret123", "ADMIN")
	router := setupAuthRouter(store)

	refreshToken, err := auth.GenerateRefreshToken(testJWTSecret, user.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["access_token"] == "" {
		t.Error("expected new access_token")
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	router := setupAuthRouter(newMockAuthStore())

	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": "garbage",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRefresh_UnknownUser(t *testing.T) {
	router := setupAuthRouter(newMockAuthStore())

	refreshToken, _ := auth.GenerateRefreshToken(testJWTSecret, uuid.New())
	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
