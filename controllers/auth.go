package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dcode-github/listing_analytics/models"
	"github.com/dcode-github/listing_analytics/repository"
	"github.com/dcode-github/listing_analytics/utils"
	"github.com/rs/zerolog/log"
)

func (h *Handler) RegisterUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		if err := decodeBody(r, &creds); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		creds.UserID = strings.TrimSpace(creds.UserID)
		creds.Email = strings.TrimSpace(creds.Email)
		if creds.UserID == "" || creds.Email == "" || creds.Password == "" {
			writeMessage(w, http.StatusBadRequest, "userID, email and password are required")
			return
		}

		hashedPwd, err := utils.HashPassword(creds.Password)
		if err != nil {
			h.fail(w, r, "hash password", err, "Failed to hash password")
			return
		}
		user := models.User{UserID: creds.UserID, Email: creds.Email, Password: hashedPwd}
		if err := h.Users.Create(r.Context(), &user); err != nil {
			if errors.Is(err, repository.ErrUserExists) {
				log.Info().Str("userID", creds.UserID).Msg("Registration refused, user exists")
				writeMessage(w, http.StatusConflict, "UserID or email already exists")
				return
			}
			h.fail(w, r, "register user", err, "Failed to create user")
			return
		}

		writeJSON(w, http.StatusCreated, Response{Message: "User registered successfully"})
	}
}

func (h *Handler) LoginUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		if err := decodeBody(r, &creds); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid payload")
			return
		}

		user, err := h.Users.FindByUserID(r.Context(), creds.UserID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && !utils.CheckPasswordHash(creds.Password, user.Password)) {
			log.Info().Str("userID", creds.UserID).Msg("Invalid credentials")
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if err != nil {
			h.fail(w, r, "login", err, "Login failed")
			return
		}

		token, err := h.Tokens.Generate(user.UserID)
		if err != nil {
			h.fail(w, r, "generate token", err, "Failed to generate token")
			return
		}
		writeJSON(w, http.StatusOK, Response{Message: "Login successful", Token: token})
	}
}
