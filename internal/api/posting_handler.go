package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobboard/internal/database"
	"jobboard/internal/serialize"
	"jobboard/internal/store"
)

// PostingHandler 负责岗位分类、岗位与申请。
type PostingHandler struct {
	store  *store.Store
	logger *slog.Logger
}

func NewPostingHandler(s *store.Store, logger *slog.Logger) *PostingHandler {
	return &PostingHandler{store: s, logger: logger}
}

func (h *PostingHandler) ListCategories(c *gin.Context) {
	categories, err := h.store.ListJobCategories(c.Request.Context())
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "job category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": serialize.List(categories, "job_postings")})
}

func (h *PostingHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	category, err := h.store.GetJobCategory(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "job category")
		return
	}
	c.JSON(http.StatusOK, serialize.Value(category))
}

type categoryRequest struct {
	Category string `json:"category"`
}

func (h *PostingHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	logger := requestLogger(c, h.logger)
	category, err := database.NewJobCategory(req.Category)
	if err != nil {
		respondStoreError(c, logger, err, "job category")
		return
	}
	if err := h.store.CreateJobCategory(c.Request.Context(), category); err != nil {
		respondStoreError(c, logger, err, "job category")
		return
	}
	logger.Info("job category created", slog.Uint64("job_category_id", uint64(category.ID)))
	c.JSON(http.StatusCreated, serialize.Value(category))
}

func (h *PostingHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	category, err := h.store.UpdateJobCategory(c.Request.Context(), id, func(jc *database.JobCategory) error {
		return jc.SetCategory(req.Category)
	})
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "job category")
		return
	}
	c.JSON(http.StatusOK, serialize.Value(category))
}

// DeleteCategory 删除分类及其下全部岗位。
func (h *PostingHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	logger := requestLogger(c, h.logger).With(slog.Uint64("job_category_id", uint64(id)))
	if err := h.store.DeleteJobCategory(c.Request.Context(), id); err != nil {
		respondStoreError(c, logger, err, "job category")
		return
	}
	logger.Info("job category deleted")
	c.Status(http.StatusNoContent)
}

// ListPostings 支持 category_id、employer_id、active 三个查询参数。
func (h *PostingHandler) ListPostings(c *gin.Context) {
	categoryID, ok := parseQueryID(c, "category_id")
	if !ok {
		return
	}
	employerID, ok := parseQueryID(c, "employer_id")
	if !ok {
		return
	}
	var activeOnly bool
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			BadRequest(c, "invalid active")
			return
		}
		activeOnly = v
	}

	postings, err := h.store.ListJobPostings(c.Request.Context(), store.PostingFilter{
		CategoryID: categoryID,
		EmployerID: employerID,
		ActiveOnly: activeOnly,
	})
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "job posting")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": serialize.List(postings)})
}

type postingRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Salary      *float64 `json:"salary"`
	JobType     *string  `json:"job_type"`
	Remote      *string  `json:"remote"`
	IsActive    *bool    `json:"is_active"`
	Location    *string  `json:"location"`
}

func (r postingRequest) fields() database.PostingFields {
	return database.PostingFields{
		Title:       r.Title,
		Description: r.Description,
		Salary:      r.Salary,
		JobType:     r.JobType,
		Remote:      r.Remote,
		IsActive:    r.IsActive,
		Location:    r.Location,
	}
}

type createPostingRequest struct {
	EmployerID    uint `json:"employer_id" binding:"required"`
	JobCategoryID uint `json:"job_category_id" binding:"required"`
	postingRequest
}

func (h *PostingHandler) CreatePosting(c *gin.Context) {
	var req createPostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	logger := requestLogger(c, h.logger).With(slog.Uint64("employer_id", uint64(req.EmployerID)))

	posting, err := database.NewJobPosting(req.EmployerID, req.JobCategoryID, req.fields())
	if err != nil {
		respondStoreError(c, logger, err, "job posting")
		return
	}
	if err := h.store.CreateJobPosting(c.Request.Context(), posting); err != nil {
		respondStoreError(c, logger, err, "job posting")
		return
	}
	logger.Info("job posting created", slog.Uint64("job_posting_id", uint64(posting.ID)))
	c.JSON(http.StatusCreated, serialize.Value(posting))
}

func (h *PostingHandler) GetPosting(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	posting, err := h.store.GetJobPosting(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "job posting")
		return
	}
	c.JSON(http.StatusOK, serialize.Value(posting))
}

func (h *PostingHandler) UpdatePosting(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req postingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	posting, err := h.store.UpdateJobPosting(c.Request.Context(), id, func(p *database.JobPosting) error {
		return p.Apply(req.fields())
	})
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "job posting")
		return
	}
	c.JSON(http.StatusOK, serialize.Value(posting))
}

// DeletePosting 删除岗位及其申请与收藏。
func (h *PostingHandler) DeletePosting(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	logger := requestLogger(c, h.logger).With(slog.Uint64("job_posting_id", uint64(id)))
	if err := h.store.DeleteJobPosting(c.Request.Context(), id); err != nil {
		respondStoreError(c, logger, err, "job posting")
		return
	}
	logger.Info("job posting deleted")
	c.Status(http.StatusNoContent)
}

type linkApplicantRequest struct {
	ApplicantID uint   `json:"applicant_id" binding:"required"`
	Status      string `json:"status"`
}

// LinkApplicant 把求职者挂到岗位上，生成一条申请记录。
func (h *PostingHandler) LinkApplicant(c *gin.Context) {
	postingID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req linkApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	logger := requestLogger(c, h.logger).With(
		slog.Uint64("job_posting_id", uint64(postingID)),
		slog.Uint64("applicant_id", uint64(req.ApplicantID)),
	)
	app, err := h.store.LinkApplicantToPosting(c.Request.Context(), req.ApplicantID, postingID, req.Status)
	if err != nil {
		respondStoreError(c, logger, err, "job application")
		return
	}
	logger.Info("applicant linked to posting", slog.Uint64("job_application_id", uint64(app.ID)))
	c.JSON(http.StatusCreated, serialize.Value(app))
}

type createApplicationRequest struct {
	ApplicantID  uint   `json:"applicant_id" binding:"required"`
	JobPostingID uint   `json:"job_posting_id" binding:"required"`
	Status       string `json:"status"`
	Education    string `json:"education"`
	Experience   string `json:"experience"`
	Certificate  string `json:"certificate"`
}

func (h *PostingHandler) CreateApplication(c *gin.Context) {
	var req createApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	logger := requestLogger(c, h.logger)
	app, err := database.NewJobApplication(req.ApplicantID, req.JobPostingID, req.Status, database.ApplicationDetails{
		Education:   req.Education,
		Experience:  req.Experience,
		Certificate: req.Certificate,
	})
	if err != nil {
		respondStoreError(c, logger, err, "job application")
		return
	}
	if err := h.store.CreateJobApplication(c.Request.Context(), app); err != nil {
		respondStoreError(c, logger, err, "job application")
		return
	}
	c.JSON(http.StatusCreated, serialize.Value(app))
}

func (h *PostingHandler) GetApplication(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	app, err := h.store.GetJobApplication(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "job application")
		return
	}
	c.JSON(http.StatusOK, serialize.Value(app))
}

type updateApplicationRequest struct {
	Status      *string `json:"status"`
	Education   *string `json:"education"`
	Experience  *string `json:"experience"`
	Certificate *string `json:"certificate"`
}

func (h *PostingHandler) UpdateApplication(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	app, err := h.store.UpdateJobApplication(c.Request.Context(), id, func(a *database.JobApplication) error {
		if req.Status != nil {
			if err := a.SetStatus(*req.Status); err != nil {
				return err
			}
		}
		if req.Education != nil {
			a.Education = *req.Education
		}
		if req.Experience != nil {
			a.Experience = *req.Experience
		}
		if req.Certificate != nil {
			a.Certificate = *req.Certificate
		}
		return nil
	})
	if err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "job application")
		return
	}
	c.JSON(http.StatusOK, serialize.Value(app))
}

func (h *PostingHandler) DeleteApplication(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteJobApplication(c.Request.Context(), id); err != nil {
		respondStoreError(c, requestLogger(c, h.logger), err, "job application")
		return
	}
	c.Status(http.StatusNoContent)
}
