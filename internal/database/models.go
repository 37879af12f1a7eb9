package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"jobboard/internal/validation"
)

// 求职申请状态。
const (
	StatusNew      = "new"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// 岗位工作方式。
const (
	RemoteOnSite = "On-Site"
	RemoteRemote = "Remote"
	RemoteHybrid = "Hybrid"
)

// 岗位类型，允许为空。
const (
	JobTypeFullTime = "Full time"
	JobTypePartTime = "Part time"
	JobTypeContract = "Contract"
)

// PasswordHasher 抽象密码哈希能力，由 auth.Hasher 实现。
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	CheckPasswordHash(password, hash string) bool
}

// Model 是各表共享的主键与时间戳。不使用软删除，删除即级联。
type Model struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User 表示系统中的账号信息，可选地拥有雇主与求职者两种档案。
type User struct {
	Model
	Username     string     `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Email        string     `gorm:"uniqueIndex;size:255;not null"`
	Phone        string     `gorm:"size:12"`
	Street1      string     `gorm:"column:street_1;size:255"`
	Street2      string     `gorm:"column:street_2;size:255"`
	City         string     `gorm:"size:128"`
	State        string     `gorm:"size:64"`
	ZipCode      string     `gorm:"size:5"`
	Employer     *Employer  `gorm:"constraint:OnDelete:CASCADE"`
	Applicant    *Applicant `gorm:"constraint:OnDelete:CASCADE"`
}

// Address 聚合用户的可选地址字段，nil 表示不修改。
type Address struct {
	Street1 *string
	Street2 *string
	City    *string
	State   *string
	ZipCode *string
}

// NewUser 构造用户并依次执行字段校验，密码只以哈希形式保存。
func NewUser(hasher PasswordHasher, username, email, password, phone string, addr Address) (*User, error) {
	u := &User{}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	if err := u.SetEmail(email); err != nil {
		return nil, err
	}
	if err := u.SetPhone(phone); err != nil {
		return nil, err
	}
	if err := u.SetAddress(addr); err != nil {
		return nil, err
	}
	if err := u.SetPassword(hasher, password); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) SetUsername(username string) error {
	if err := validation.Required("username", username); err != nil {
		return err
	}
	u.Username = username
	return nil
}

func (u *User) SetEmail(email string) error {
	if err := validation.Email(email); err != nil {
		return err
	}
	u.Email = email
	return nil
}

func (u *User) SetPhone(phone string) error {
	if err := validation.Phone("phone", phone); err != nil {
		return err
	}
	u.Phone = phone
	return nil
}

func (u *User) SetZipCode(zip string) error {
	if err := validation.ZipCode(zip); err != nil {
		return err
	}
	u.ZipCode = zip
	return nil
}

// SetAddress 只修改非 nil 字段；邮编先校验，失败时不改动任何字段。
func (u *User) SetAddress(addr Address) error {
	if addr.ZipCode != nil {
		if err := u.SetZipCode(*addr.ZipCode); err != nil {
			return err
		}
	}
	if addr.Street1 != nil {
		u.Street1 = *addr.Street1
	}
	if addr.Street2 != nil {
		u.Street2 = *addr.Street2
	}
	if addr.City != nil {
		u.City = *addr.City
	}
	if addr.State != nil {
		u.State = *addr.State
	}
	return nil
}

// MaxPasswordBytes 是 bcrypt 可接受的明文上限，按字节计。
const MaxPasswordBytes = 72

// SetPassword 对明文做 bcrypt 哈希后保存，明文不落库。
func (u *User) SetPassword(hasher PasswordHasher, password string) error {
	if password == "" {
		return validation.Fail("password", "password is required")
	}
	if len(password) > MaxPasswordBytes {
		return validation.Fail("password", fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	}
	hash, err := hasher.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// VerifyPassword 使用常量时间比较校验明文密码。
func (u *User) VerifyPassword(hasher PasswordHasher, password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return hasher.CheckPasswordHash(password, u.PasswordHash)
}

// Validate 复核所有受约束字段，供 BeforeSave 兜底。
func (u *User) Validate() error {
	var zipErr error
	if u.ZipCode != "" {
		zipErr = validation.ZipCode(u.ZipCode)
	}
	if u.PasswordHash == "" {
		return validation.Fail("password", "password is required")
	}
	return validation.First(
		validation.Required("username", u.Username),
		validation.Email(u.Email),
		validation.Phone("phone", u.Phone),
		zipErr,
	)
}

func (u *User) BeforeSave(*gorm.DB) error { return u.Validate() }

// Employer 表示雇主档案，与 User 一对一，拥有多个岗位。
type Employer struct {
	Model
	Name        string       `gorm:"size:255;not null"`
	UserID      uint         `gorm:"uniqueIndex;not null"`
	User        *User        `gorm:"constraint:OnDelete:CASCADE"`
	JobPostings []JobPosting `gorm:"constraint:OnDelete:CASCADE"`
}

func NewEmployer(userID uint, name string) (*Employer, error) {
	e := &Employer{UserID: userID}
	if err := e.SetName(name); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Employer) SetName(name string) error {
	if err := validation.Required("name", name); err != nil {
		return err
	}
	e.Name = name
	return nil
}

func (e *Employer) Validate() error { return validation.Required("name", e.Name) }

func (e *Employer) BeforeSave(*gorm.DB) error { return e.Validate() }

// Applicant 表示求职者档案，与 User 一对一，拥有申请与收藏。
type Applicant struct {
	Model
	FirstName       string           `gorm:"size:128;not null"`
	LastName        string           `gorm:"size:128;not null"`
	Mobile          string           `gorm:"size:12"`
	UserID          uint             `gorm:"uniqueIndex;not null"`
	User            *User            `gorm:"constraint:OnDelete:CASCADE"`
	JobApplications []JobApplication `gorm:"constraint:OnDelete:CASCADE"`
	Favorites       []Favorite       `gorm:"constraint:OnDelete:CASCADE"`
}

func NewApplicant(userID uint, firstName, lastName, mobile string) (*Applicant, error) {
	a := &Applicant{UserID: userID}
	if err := a.SetName(firstName, lastName); err != nil {
		return nil, err
	}
	if err := a.SetMobile(mobile); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Applicant) SetName(firstName, lastName string) error {
	if err := validation.First(
		validation.Required("first_name", firstName),
		validation.Required("last_name", lastName),
	); err != nil {
		return err
	}
	a.FirstName = firstName
	a.LastName = lastName
	return nil
}

func (a *Applicant) SetMobile(mobile string) error {
	if err := validation.Phone("mobile", mobile); err != nil {
		return err
	}
	a.Mobile = mobile
	return nil
}

// JobPostings 返回已加载申请所对应的岗位，即求职者与岗位的多对多视图。
func (a *Applicant) JobPostings() []*JobPosting {
	postings := make([]*JobPosting, 0, len(a.JobApplications))
	for i := range a.JobApplications {
		if p := a.JobApplications[i].JobPosting; p != nil {
			postings = append(postings, p)
		}
	}
	return postings
}

func (a *Applicant) Validate() error {
	return validation.First(
		validation.Required("first_name", a.FirstName),
		validation.Required("last_name", a.LastName),
		validation.Phone("mobile", a.Mobile),
	)
}

func (a *Applicant) BeforeSave(*gorm.DB) error { return a.Validate() }

// JobCategory 表示岗位分类。
type JobCategory struct {
	Model
	Category    string       `gorm:"size:128;not null"`
	JobPostings []JobPosting `gorm:"constraint:OnDelete:CASCADE"`
}

func NewJobCategory(category string) (*JobCategory, error) {
	c := &JobCategory{}
	if err := c.SetCategory(category); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *JobCategory) SetCategory(category string) error {
	if err := validation.Required("category", category); err != nil {
		return err
	}
	c.Category = category
	return nil
}

func (c *JobCategory) Validate() error { return validation.Required("category", c.Category) }

func (c *JobCategory) BeforeSave(*gorm.DB) error { return c.Validate() }

// JobPosting 表示雇主发布的岗位。
type JobPosting struct {
	Model
	Title           string           `gorm:"size:255;not null"`
	Description     string           `gorm:"type:text"`
	Salary          float64          `gorm:"not null"`
	JobType         string           `gorm:"size:32"`
	Remote          string           `gorm:"size:16;not null"`
	IsActive        bool             `gorm:"not null"`
	Location        string           `gorm:"size:255"`
	JobCategoryID   uint             `gorm:"index;not null"`
	JobCategory     *JobCategory     `gorm:"constraint:OnDelete:CASCADE"`
	EmployerID      uint             `gorm:"index;not null"`
	Employer        *Employer        `gorm:"constraint:OnDelete:CASCADE"`
	JobApplications []JobApplication `gorm:"constraint:OnDelete:CASCADE"`
	Favorites       []Favorite       `gorm:"constraint:OnDelete:CASCADE"`
}

// PostingFields 是岗位的可写字段集合，nil 表示不修改。
type PostingFields struct {
	Title       *string
	Description *string
	Salary      *float64
	JobType     *string
	Remote      *string
	IsActive    *bool
	Location    *string
}

// NewJobPosting 构造岗位，Title/Salary/Remote 为必填。
func NewJobPosting(employerID, categoryID uint, fields PostingFields) (*JobPosting, error) {
	if fields.Title == nil {
		return nil, validation.Fail("title", "title is required")
	}
	if fields.Salary == nil {
		return nil, validation.Fail("salary", "salary is required")
	}
	if fields.Remote == nil {
		return nil, validation.Fail("remote", "remote is required")
	}
	p := &JobPosting{EmployerID: employerID, JobCategoryID: categoryID, IsActive: true}
	if err := p.Apply(fields); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply 先整体校验再写入，任何字段失败都不会留下部分修改。
func (p *JobPosting) Apply(fields PostingFields) error {
	var errs []error
	if fields.Title != nil {
		errs = append(errs, validation.Required("title", *fields.Title))
	}
	if fields.Salary != nil {
		errs = append(errs, validation.NonNegative("salary", *fields.Salary))
	}
	if fields.JobType != nil {
		errs = append(errs, validateJobType(*fields.JobType))
	}
	if fields.Remote != nil {
		errs = append(errs, validateRemote(*fields.Remote))
	}
	if err := validation.First(errs...); err != nil {
		return err
	}

	if fields.Title != nil {
		p.Title = *fields.Title
	}
	if fields.Description != nil {
		p.Description = *fields.Description
	}
	if fields.Salary != nil {
		p.Salary = *fields.Salary
	}
	if fields.JobType != nil {
		p.JobType = *fields.JobType
	}
	if fields.Remote != nil {
		p.Remote = *fields.Remote
	}
	if fields.IsActive != nil {
		p.IsActive = *fields.IsActive
	}
	if fields.Location != nil {
		p.Location = *fields.Location
	}
	return nil
}

func (p *JobPosting) SetRemote(remote string) error {
	if err := validateRemote(remote); err != nil {
		return err
	}
	p.Remote = remote
	return nil
}

func (p *JobPosting) SetJobType(jobType string) error {
	if err := validateJobType(jobType); err != nil {
		return err
	}
	p.JobType = jobType
	return nil
}

// Applicants 返回已加载申请对应的求职者。
func (p *JobPosting) Applicants() []*Applicant {
	applicants := make([]*Applicant, 0, len(p.JobApplications))
	for i := range p.JobApplications {
		if a := p.JobApplications[i].Applicant; a != nil {
			applicants = append(applicants, a)
		}
	}
	return applicants
}

func (p *JobPosting) Validate() error {
	return validation.First(
		validation.Required("title", p.Title),
		validation.NonNegative("salary", p.Salary),
		validateJobType(p.JobType),
		validateRemote(p.Remote),
	)
}

func (p *JobPosting) BeforeSave(*gorm.DB) error { return p.Validate() }

func validateRemote(remote string) error {
	return validation.OneOf("remote", remote, RemoteOnSite, RemoteRemote, RemoteHybrid)
}

func validateJobType(jobType string) error {
	if jobType == "" {
		return nil
	}
	return validation.OneOf("job_type", jobType, JobTypeFullTime, JobTypePartTime, JobTypeContract)
}

// JobApplication 是求职者与岗位多对多关系的连接实体。
type JobApplication struct {
	Model
	Education    string      `gorm:"type:text"`
	Experience   string      `gorm:"type:text"`
	Certificate  string      `gorm:"type:text"`
	Status       string      `gorm:"size:16;not null"`
	JobPostingID uint        `gorm:"index;not null"`
	JobPosting   *JobPosting `gorm:"constraint:OnDelete:CASCADE"`
	ApplicantID  uint        `gorm:"index;not null"`
	Applicant    *Applicant  `gorm:"constraint:OnDelete:CASCADE"`
}

// ApplicationDetails 是申请附带的履历信息。
type ApplicationDetails struct {
	Education   string
	Experience  string
	Certificate string
}

// NewJobApplication 构造申请；status 为空时取 StatusNew。
func NewJobApplication(applicantID, postingID uint, status string, details ApplicationDetails) (*JobApplication, error) {
	if status == "" {
		status = StatusNew
	}
	a := &JobApplication{
		ApplicantID:  applicantID,
		JobPostingID: postingID,
		Education:    details.Education,
		Experience:   details.Experience,
		Certificate:  details.Certificate,
	}
	if err := a.SetStatus(status); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *JobApplication) SetStatus(status string) error {
	if err := validateStatus(status); err != nil {
		return err
	}
	a.Status = status
	return nil
}

func (a *JobApplication) Validate() error { return validateStatus(a.Status) }

func (a *JobApplication) BeforeSave(*gorm.DB) error { return a.Validate() }

func validateStatus(status string) error {
	return validation.OneOf("status", status, StatusNew, StatusAccepted, StatusRejected)
}

// Favorite 记录求职者对岗位的收藏，同一对只允许一条。
type Favorite struct {
	Model
	ApplicantID  uint        `gorm:"uniqueIndex:idx_favorites_applicant_posting;not null"`
	Applicant    *Applicant  `gorm:"constraint:OnDelete:CASCADE"`
	JobPostingID uint        `gorm:"uniqueIndex:idx_favorites_applicant_posting;not null"`
	JobPosting   *JobPosting `gorm:"constraint:OnDelete:CASCADE"`
}

func NewFavorite(applicantID, postingID uint) *Favorite {
	return &Favorite{ApplicantID: applicantID, JobPostingID: postingID}
}

// AllModels 按依赖顺序列出需要迁移的模型。
func AllModels() []any {
	return []any{
		&User{},
		&Employer{},
		&Applicant{},
		&JobCategory{},
		&JobPosting{},
		&JobApplication{},
		&Favorite{},
	}
}
