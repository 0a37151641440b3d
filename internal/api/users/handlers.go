// internal/api/users/handlers.go
package users

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtbook/courtbook/internal/api/apiutil"
	"github.com/courtbook/courtbook/internal/auth"
	"github.com/courtbook/courtbook/internal/store"
)

var (
	userStore *store.Store
	storeOnce sync.Once
)

const usersQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *store.Store) {
	if s == nil {
		return
	}
	storeOnce.Do(func() {
		userStore = s
	})
}

// GET /api/v1/users
func HandleUsersList(w http.ResponseWriter, r *http.Request) {
	s := loadStore()
	if s == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireAdmin(w, r); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usersQueryTimeout)
	defer cancel()

	usersList, err := s.ListUsers(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, usersList); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write users response")
	}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"required,email"`
	Gender   string `json:"gender" validate:"required,oneof=male female"`
	Role     string `json:"role" validate:"required,oneof=user vendor admin"`
}

// POST /api/v1/users
func HandleUserCreate(w http.ResponseWriter, r *http.Request) {
	s := loadStore()
	if s == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireAdmin(w, r); !ok {
		return
	}

	var req createUserRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to hash password")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usersQueryTimeout)
	defer cancel()

	user, err := s.CreateUser(ctx, store.CreateUserParams{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		Gender:       req.Gender,
		Role:         req.Role,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("User created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, user); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write user response")
	}
}

type updateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Gender   *string `json:"gender" validate:"omitempty,oneof=male female"`
	Role     *string `json:"role" validate:"omitempty,oneof=user vendor admin"`
}

// PUT /api/v1/users/{id}
func HandleUserUpdate(w http.ResponseWriter, r *http.Request) {
	s := loadStore()
	if s == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireAdmin(w, r); !ok {
		return
	}

	id, err := apiutil.ParsePositiveInt64Field(r.PathValue("id"), "user id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req updateUserRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	params := store.UpdateUserParams{
		Username: req.Username,
		Email:    req.Email,
		Gender:   req.Gender,
		Role:     req.Role,
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Failed to hash password")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		params.Password = &hash
	}

	ctx, cancel := context.WithTimeout(r.Context(), usersQueryTimeout)
	defer cancel()

	user, err := s.UpdateUser(ctx, id, params)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, user); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write user response")
	}
}

// DELETE /api/v1/users/{id}
func HandleUserDelete(w http.ResponseWriter, r *http.Request) {
	s := loadStore()
	if s == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireAdmin(w, r); !ok {
		return
	}

	id, err := apiutil.ParsePositiveInt64Field(r.PathValue("id"), "user id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usersQueryTimeout)
	defer cancel()

	if err := s.DeleteUser(ctx, id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Int64("user_id", id).Msg("User deleted")
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/users/{id}/block and /unblock
func HandleUserBlock(w http.ResponseWriter, r *http.Request) {
	setBlocked(w, r, true)
}

func HandleUserUnblock(w http.ResponseWriter, r *http.Request) {
	setBlocked(w, r, false)
}

func setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	s := loadStore()
	if s == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireOperator(w, r); !ok {
		return
	}

	id, err := apiutil.ParsePositiveInt64Field(r.PathValue("id"), "user id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usersQueryTimeout)
	defer cancel()

	if err := s.SetUserBlocked(ctx, id, blocked); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Int64("user_id", id).Bool("blocked", blocked).Msg("User block state changed")
	w.WriteHeader(http.StatusNoContent)
}

func loadStore() *store.Store {
	return userStore
}
