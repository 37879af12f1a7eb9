package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard/internal/database"
	"jobboard/internal/serialize"
	"jobboard/internal/store"
)

// ProfileHandler 负责雇主与求职者档案，以及求职者的申请和收藏。
type ProfileHandler struct {
	store  *store.Store
	logger *slog.Logger
}

func NewProfileHandler(s *store.Store, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{store: s, logger: logger}
}

type createEmployerRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Name   string `json:"name"`
}

func (h *ProfileHandler) CreateEmployer(c *gin.Context) {
	var req createEmployerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	logger := requestLogger(c, h.logger).With(slog.Uint64("user_id", uint64(req.UserID)))

	employer, err := database.NewEmployer(req.UserID, req.Name)
	if err != nil {
		respondStoreError(c, logger, err, "employer")
		return
	}
	if err := h.store.CreateEmployer(c.Request.Context(), employer); err != nil {
		respondStoreError(c, logger, err, "employer")
		return
	}
	logger.Info("employer created", slog.Uint64("employer_id", uint64(employer.ID)))
	c.JSON(http.StatusCreated, serialize.Value(employer))
}

func (h *ProfileHandler) GetEmployer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	employer, err := h.store.GetEmployer(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "employer")
		return
	}
	c.JSON(http.StatusOK, serialize.Value(employer))
}

type updateEmployerRequest struct {
	Name *string `json:"name"`
}

func (h *ProfileHandler) UpdateEmployer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateEmployerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	employer, err := h.store.UpdateEmployer(c.Request.Context(), id, func(e *database.Employer) error {
		if req.Name == nil {
			return nil
		}
		return e.SetName(*req.Name)
	})
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "employer")
		return
	}
	c.JSON(http.StatusOK, serialize.Value(employer))
}

// DeleteEmployer 删除雇主及其发布的岗位。
func (h *ProfileHandler) DeleteEmployer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	logger := requestLogger(c, h.logger).With(slog.Uint64("employer_id", uint64(id)))
	if err := h.store.DeleteEmployer(c.Request.Context(), id); err != nil {
		respondStoreError(c, logger, err, "employer")
		return
	}
	logger.Info("employer deleted")
	c.Status(http.StatusNoContent)
}

type createApplicantRequest struct {
	UserID    uint   `json:"user_id" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Mobile    string `json:"mobile"`
}

func (h *ProfileHandler) CreateApplicant(c *gin.Context) {
	var req createApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	logger := requestLogger(c, h.logger).With(slog.Uint64("user_id", uint64(req.UserID)))

	applicant, err := database.NewApplicant(req.UserID, req.FirstName, req.LastName, req.Mobile)
	if err != nil {
		respondStoreError(c, logger, err, "applicant")
		return
	}
	if err := h.store.CreateApplicant(c.Request.Context(), applicant); err != nil {
		respondStoreError(c, logger, err, "applicant")
		return
	}
	logger.Info("applicant created", slog.Uint64("applicant_id", uint64(applicant.ID)))
	c.JSON(http.StatusCreated, serialize.Value(applicant))
}

func (h *ProfileHandler) GetApplicant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	applicant, err := h.store.GetApplicant(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "applicant")
		return
	}
	c.JSON(http.StatusOK, serialize.Value(applicant))
}

type updateApplicantRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Mobile    *string `json:"mobile"`
}

func (h *ProfileHandler) UpdateApplicant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	applicant, err := h.store.UpdateApplicant(c.Request.Context(), id, func(a *database.Applicant) error {
		if req.FirstName != nil || req.LastName != nil {
			first, last := a.FirstName, a.LastName
			if req.FirstName != nil {
				first = *req.FirstName
			}
			if req.LastName != nil {
				last = *req.LastName
			}
			if err := a.SetName(first, last); err != nil {
				return err
			}
		}
		if req.Mobile != nil {
			return a.SetMobile(*req.Mobile)
		}
		return nil
	})
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "applicant")
		return
	}
	c.JSON(http.StatusOK, serialize.Value(applicant))
}

// DeleteApplicant 删除求职者及其申请与收藏。
func (h *ProfileHandler) DeleteApplicant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	logger := requestLogger(c, h.logger).With(slog.Uint64("applicant_id", uint64(id)))
	if err := h.store.DeleteApplicant(c.Request.Context(), id); err != nil {
		respondStoreError(c, logger, err, "applicant")
		return
	}
	logger.Info("applicant deleted")
	c.Status(http.StatusNoContent)
}

// ListApplicantApplications 返回求职者的申请列表，每条附带岗位。
func (h *ProfileHandler) ListApplicantApplications(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	logger := requestLogger(c, h.logger)
	if _, err := h.store.GetApplicant(ctx, id); err != nil {
		respondStoreError(c, logger, err, "applicant")
		return
	}
	apps, err := h.store.ListApplicationsByApplicant(ctx, id)
	if err != nil {
		respondStoreError(c, logger, err, "job application")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": serialize.List(apps, "applicant")})
}

func (h *ProfileHandler) ListFavorites(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	logger := requestLogger(c, h.logger)
	if _, err := h.store.GetApplicant(ctx, id); err != nil {
		respondStoreError(c, logger, err, "applicant")
		return
	}
	favorites, err := h.store.ListFavorites(ctx, id)
	if err != nil {
		respondStoreError(c, logger, err, "favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": serialize.List(favorites, "applicant")})
}

type addFavoriteRequest struct {
	JobPostingID uint `json:"job_posting_id" binding:"required"`
}

func (h *ProfileHandler) AddFavorite(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req addFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	fav, err := h.store.AddFavorite(c.Request.Context(), id, req.JobPostingID)
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "favorite")
		return
	}
	c.JSON(http.StatusCreated, serialize.Value(fav))
}

func (h *ProfileHandler) RemoveFavorite(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	postingID, ok := parseID(c, "posting_id")
	if !ok {
		return
	}
	if err := h.store.RemoveFavorite(c.Request.Context(), id, postingID); err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "favorite")
		return
	}
	c.Status(http.StatusNoContent)
}
