package controllers

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dcode-github/listing_analytics/models"
	"github.com/dcode-github/listing_analytics/repository"
	"github.com/dcode-github/listing_analytics/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (f *fakeUsers) FindByUserID(_ context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.UserID == u.UserID || existing.Email == u.Email {
			return repository.ErrUserExists
		}
	}
	if f.users == nil {
		f.users = make(map[string]models.User)
	}
	f.users[u.UserID] = *u
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	users := &fakeUsers{}
	tokens := utils.NewTokenIssuer("test-key", time.Minute)
	h := &Handler{Users: users, Tokens: tokens}

	rec := serve(h.RegisterUser(), "POST", "/register", `{"userID":"u1","email":"u1@example.com","password":"secret"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEqual(t, "secret", users.users["u1"].Password)

	rec = serve(h.RegisterUser(), "POST", "/register", `{"userID":"u2","email":"u1@example.com","password":"x"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(h.RegisterUser(), "POST", "/register", `{"userID":"u3"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.LoginUser(), "POST", "/login", `{"userID":"u1","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = serve(h.LoginUser(), "POST", "/login", `{"userID":"nobody","password":"secret"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h.LoginUser(), "POST", "/login", `{"userID":"u1","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decode(t, rec)["token"].(string)
	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}
