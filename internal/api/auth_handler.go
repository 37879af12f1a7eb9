package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"jobboard/internal/auth"
	"jobboard/internal/database"
	"jobboard/internal/serialize"
	"jobboard/internal/store"
)

// AuthHandler 处理注册与口令校验；不签发任何令牌。
type AuthHandler struct {
	store                 *store.Store
	hasher                *auth.Hasher
	redis                 redis.UniversalClient
	logger                *slog.Logger
	loginRateLimitPerHour int
	loginLockThreshold    int
	loginLockTTL          time.Duration
}

// NewAuthHandler 构造认证处理器。
func NewAuthHandler(s *store.Store, hasher *auth.Hasher, redisClient redis.UniversalClient, logger *slog.Logger, loginRateLimitPerHour int, loginLockThreshold int, loginLockTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		store:                 s,
		hasher:                hasher,
		redis:                 redisClient,
		logger:                logger,
		loginRateLimitPerHour: loginRateLimitPerHour,
		loginLockThreshold:    loginLockThreshold,
		loginLockTTL:          loginLockTTL,
	}
}

type addressRequest struct {
	Street1 *string `json:"street_1"`
	Street2 *string `json:"street_2"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	ZipCode *string `json:"zip_code"`
}

func (r addressRequest) toAddress() database.Address {
	return database.Address{
		Street1: r.Street1,
		Street2: r.Street2,
		City:    r.City,
		State:   r.State,
		ZipCode: r.ZipCode,
	}
}

type employerProfileRequest struct {
	Name string `json:"name"`
}

type applicantProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Mobile    string `json:"mobile"`
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	addressRequest
	Employer  *employerProfileRequest  `json:"employer"`
	Applicant *applicantProfileRequest `json:"applicant"`
}

// Signup 创建用户，并可在同一事务内附带雇主或求职者档案。
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	logger := requestLogger(c, h.logger).With(slog.String("username", req.Username))

	user, err := database.NewUser(h.hasher, req.Username, req.Email, req.Password, req.Phone, req.toAddress())
	if err != nil {
		respondStoreError(c, logger, err, "user")
		return
	}
	if req.Employer != nil {
		if user.Employer, err = database.NewEmployer(0, req.Employer.Name); err != nil {
			respondStoreError(c, logger, err, "employer")
			return
		}
	}
	if req.Applicant != nil {
		if user.Applicant, err = database.NewApplicant(0, req.Applicant.FirstName, req.Applicant.LastName, req.Applicant.Mobile); err != nil {
			respondStoreError(c, logger, err, "applicant")
			return
		}
	}

	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		respondStoreError(c, logger, err, "user")
		return
	}

	logger.Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	c.JSON(http.StatusCreated, serialize.Value(user))
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验口令并返回账号信息。
func (h *AuthHandler) Login(c *gin.Context) {
	ip := c.ClientIP()
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	username := strings.ToLower(req.Username)
	logger := requestLogger(c, h.logger).With(slog.String("username", req.Username))

	// 速率限制：每 IP+用户名 每小时固定次数；Redis 不可用时放行。
	rateKey := "rate:login:" + ip + ":" + username + ":" + time.Now().UTC().Format("2006010215")
	count, err := incrWithTTL(ctx, h.redis, rateKey, time.Hour)
	if err != nil {
		count = 0
	}
	if count > int64(h.loginRateLimitPerHour) {
		TooManyRequests(c, "rate limit exceeded")
		return
	}

	ttl, err := h.redis.TTL(ctx, lockKey(username)).Result()
	if err != nil {
		ttl = 0
	}
	if ttl > 0 {
		TooManyRequests(c, "account temporarily locked")
		return
	}

	user, err := h.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if store.IsNotFound(err) {
			logger.Info("login failed: user not found")
			_ = h.incrementLoginFail(ctx, username)
			Unauthorized(c)
			return
		}
		logger.Error("login query failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if !user.VerifyPassword(h.hasher, req.Password) {
		logger.Info("login failed: password mismatch", slog.Uint64("user_id", uint64(user.ID)))
		_ = h.incrementLoginFail(ctx, username)
		Unauthorized(c)
		return
	}

	_ = h.redis.Del(ctx, failKey(username)).Err()

	logger.Info("login succeeded", slog.Uint64("user_id", uint64(user.ID)))
	c.JSON(http.StatusOK, serialize.Value(user))
}

func lockKey(username string) string { return "lock:login:" + username }

func failKey(username string) string { return "lock:login:fail:" + username }

func (h *AuthHandler) incrementLoginFail(ctx context.Context, username string) error {
	count, err := incrWithTTL(ctx, h.redis, failKey(username), h.loginLockTTL)
	if err != nil {
		return err
	}
	if count >= int64(h.loginLockThreshold) {
		_ = h.redis.Set(ctx, lockKey(username), "1", h.loginLockTTL).Err()
	}
	return nil
}
