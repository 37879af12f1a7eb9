package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard/internal/auth"
	"jobboard/internal/database"
	"jobboard/internal/serialize"
	"jobboard/internal/store"
	"jobboard/internal/validation"
)

// UserHandler 管理账号本身；档案由 EmployerHandler / ApplicantHandler 负责。
type UserHandler struct {
	store  *store.Store
	hasher *auth.Hasher
	logger *slog.Logger
}

func NewUserHandler(s *store.Store, hasher *auth.Hasher, logger *slog.Logger) *UserHandler {
	return &UserHandler{store: s, hasher: hasher, logger: logger}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.store.GetUser(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "user")
		return
	}
	c.JSON(http.StatusOK, serialize.Value(user))
}

type updateUserRequest struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Password        *string `json:"password"`
	CurrentPassword string  `json:"current_password"`
	addressRequest
}

// UpdateUser 部分更新账号；修改密码时必须提供当前密码。
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	logger := requestLogger(c, h.logger).With(slog.Uint64("user_id", uint64(id)))

	var wrongPassword bool
	user, err := h.store.UpdateUser(c.Request.Context(), id, func(u *database.User) error {
		if req.Username != nil {
			if err := u.SetUsername(*req.Username); err != nil {
				return err
			}
		}
		if req.Email != nil {
			if err := u.SetEmail(*req.Email); err != nil {
				return err
			}
		}
		if req.Phone != nil {
			if err := u.SetPhone(*req.Phone); err != nil {
				return err
			}
		}
		if err := u.SetAddress(req.toAddress()); err != nil {
			return err
		}
		if req.Password != nil {
			if !u.VerifyPassword(h.hasher, req.CurrentPassword) {
				wrongPassword = true
				return validation.Fail("current_password", "current password is incorrect")
			}
			return u.SetPassword(h.hasher, *req.Password)
		}
		return nil
	})
	if err != nil {
		if wrongPassword {
			logger.Info("password change rejected")
			Unauthorized(c)
			return
		}
		respondStoreError(c, logger, err, "user")
		return
	}

	logger.Info("user updated")
	c.JSON(http.StatusOK, serialize.Value(user))
}

// DeleteUser 删除账号及其全部档案数据。
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	logger := requestLogger(c, h.logger).With(slog.Uint64("user_id", uint64(id)))
	if err := h.store.DeleteUser(c.Request.Context(), id); err != nil {
		respondStoreError(c, logger, err, "user")
		return
	}
	logger.Info("user deleted")
	c.Status(http.StatusNoContent)
}
