package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"

	"jobboard/internal/auth"
	"jobboard/internal/database"
	"jobboard/internal/validation"
)

var hasher = auth.NewHasher(bcrypt.MinCost)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	db, err := database.Open(sqlite.Open(dsn), logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return New(db)
}

func ptr[T any](v T) *T { return &v }

type fixture struct {
	employerUser  *database.User
	employer      *database.Employer
	applicantUser *database.User
	applicant     *database.Applicant
	category      *database.JobCategory
	posting       *database.JobPosting
}

func seed(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()

	employerUser, err := database.NewUser(hasher, "acme", "hr@acme.test", "secret", "", database.Address{})
	require.NoError(t, err)
	employerUser.Employer, err = database.NewEmployer(0, "Acme")
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(ctx, employerUser))

	applicantUser, err := database.NewUser(hasher, "jane", "jane@test", "secret", "555)123-4567", database.Address{ZipCode: ptr("12345")})
	require.NoError(t, err)
	applicantUser.Applicant, err = database.NewApplicant(0, "Jane", "Doe", "")
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(ctx, applicantUser))

	category, err := database.NewJobCategory("Retail")
	require.NoError(t, err)
	require.NoError(t, s.CreateJobCategory(ctx, category))

	posting, err := database.NewJobPosting(employerUser.Employer.ID, category.ID, database.PostingFields{
		Title:  ptr("Cashier"),
		Salary: ptr(15.5),
		Remote: ptr(database.RemoteOnSite),
	})
	require.NoError(t, err)
	require.NoError(t, s.CreateJobPosting(ctx, posting))

	return fixture{
		employerUser:  employerUser,
		employer:      employerUser.Employer,
		applicantUser: applicantUser,
		applicant:     applicantUser.Applicant,
		category:      category,
		posting:       posting,
	}
}

func count[T any](t *testing.T, s *Store) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB().Model(new(T)).Count(&n).Error)
	return n
}

func TestCreateUserWithProfiles(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	got, err := s.GetUser(ctx, f.employerUser.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Employer)
	assert.Equal(t, "Acme", got.Employer.Name)
	assert.Nil(t, got.Applicant)
	assert.NotEqual(t, "secret", got.PasswordHash)
	assert.True(t, got.VerifyPassword(hasher, "secret"))
	assert.False(t, got.VerifyPassword(hasher, "wrong"))

	byName, err := s.GetUserByUsername(ctx, "jane")
	require.NoError(t, err)
	require.NotNil(t, byName.Applicant)
	assert.Equal(t, "12345", byName.ZipCode)
}

func TestDuplicateUsernameOrEmailIsIntegrityError(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	dupName, err := database.NewUser(hasher, "jane", "other@test", "secret", "", database.Address{})
	require.NoError(t, err)
	err = s.CreateUser(ctx, dupName)
	require.Error(t, err)
	assert.True(t, IsIntegrityError(err), "got %v", err)
	assert.False(t, IsValidationError(err))

	dupEmail, err := database.NewUser(hasher, "janet", "jane@test", "secret", "", database.Address{})
	require.NoError(t, err)
	err = s.CreateUser(ctx, dupEmail)
	require.Error(t, err)
	assert.True(t, IsIntegrityError(err), "got %v", err)
}

func TestSecondEmployerProfileForUserFails(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)

	again, err := database.NewEmployer(f.employerUser.ID, "Acme Two")
	require.NoError(t, err)
	err = s.CreateEmployer(context.Background(), again)
	assert.True(t, IsIntegrityError(err), "got %v", err)
}

func TestUpdateUserRejectsInvalidFieldsWithoutWriting(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	_, err := s.UpdateUser(ctx, f.applicantUser.ID, func(u *database.User) error {
		if err := u.SetEmail("new@test"); err != nil {
			return err
		}
		return u.SetZipCode("1234a")
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "zip_code", verr.Field)

	got, err := s.GetUser(ctx, f.applicantUser.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@test", got.Email)

	updated, err := s.UpdateUser(ctx, f.applicantUser.ID, func(u *database.User) error {
		return u.SetPhone("")
	})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Phone)
}

func TestUpdateReturnsLoadedRelations(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	user, err := s.UpdateUser(ctx, f.applicantUser.ID, func(u *database.User) error {
		return u.SetEmail("jane2@test")
	})
	require.NoError(t, err)
	require.NotNil(t, user.Applicant)
	assert.Equal(t, f.applicant.ID, user.Applicant.ID)
	assert.Nil(t, user.Employer)

	posting, err := s.UpdateJobPosting(ctx, f.posting.ID, func(p *database.JobPosting) error {
		return p.Apply(database.PostingFields{Title: ptr("Head Cashier")})
	})
	require.NoError(t, err)
	assert.Equal(t, "Head Cashier", posting.Title)
	require.NotNil(t, posting.JobCategory)
	assert.Equal(t, "Retail", posting.JobCategory.Category)
	require.NotNil(t, posting.Employer)
	assert.Equal(t, "Acme", posting.Employer.Name)

	applicant, err := s.UpdateApplicant(ctx, f.applicant.ID, func(a *database.Applicant) error {
		return a.SetMobile("555)987-6543")
	})
	require.NoError(t, err)
	require.NotNil(t, applicant.User)
	assert.Equal(t, "jane", applicant.User.Username)
}

func TestBeforeSaveRejectsDirectFieldWrites(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)

	_, err := s.UpdateApplicant(context.Background(), f.applicant.ID, func(a *database.Applicant) error {
		a.Mobile = "123-456-7890"
		return nil
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "mobile", verr.Field)
}

func TestLinkApplicantToPostingCreatesOneApplication(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	app, err := s.LinkApplicantToPosting(ctx, f.applicant.ID, f.posting.ID, "")
	require.NoError(t, err)
	assert.Equal(t, database.StatusNew, app.Status)

	apps, err := s.ListApplicationsByApplicant(ctx, f.applicant.ID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, f.posting.ID, apps[0].JobPostingID)
	require.NotNil(t, apps[0].JobPosting)
	assert.Equal(t, "Cashier", apps[0].JobPosting.Title)

	applicant, err := s.GetApplicant(ctx, f.applicant.ID)
	require.NoError(t, err)
	postings := applicant.JobPostings()
	require.Len(t, postings, 1)
	assert.Equal(t, f.posting.ID, postings[0].ID)

	posting, err := s.GetJobPosting(ctx, f.posting.ID)
	require.NoError(t, err)
	require.Len(t, posting.Applicants(), 1)
	assert.Equal(t, "Jane", posting.Applicants()[0].FirstName)
}

func TestLinkApplicantToPostingValidation(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	_, err := s.LinkApplicantToPosting(ctx, f.applicant.ID, f.posting.ID, "hired")
	assert.True(t, IsValidationError(err), "got %v", err)

	_, err = s.LinkApplicantToPosting(ctx, f.applicant.ID, 9999, "")
	assert.True(t, IsNotFound(err), "got %v", err)

	assert.Equal(t, int64(0), count[database.JobApplication](t, s))
}

func TestUpdateApplicationStatus(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	app, err := s.LinkApplicantToPosting(ctx, f.applicant.ID, f.posting.ID, database.StatusNew)
	require.NoError(t, err)

	updated, err := s.UpdateJobApplication(ctx, app.ID, func(a *database.JobApplication) error {
		return a.SetStatus(database.StatusAccepted)
	})
	require.NoError(t, err)
	assert.Equal(t, database.StatusAccepted, updated.Status)

	_, err = s.UpdateJobApplication(ctx, app.ID, func(a *database.JobApplication) error {
		return a.SetStatus("declined")
	})
	assert.True(t, IsValidationError(err))
}

func TestDeleteEmployerCascades(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	_, err := s.LinkApplicantToPosting(ctx, f.applicant.ID, f.posting.ID, "")
	require.NoError(t, err)
	_, err = s.AddFavorite(ctx, f.applicant.ID, f.posting.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteEmployer(ctx, f.employer.ID))

	assert.Equal(t, int64(0), count[database.Employer](t, s))
	assert.Equal(t, int64(0), count[database.JobPosting](t, s))
	assert.Equal(t, int64(0), count[database.JobApplication](t, s))
	assert.Equal(t, int64(0), count[database.Favorite](t, s))
	assert.Equal(t, int64(1), count[database.Applicant](t, s))
	assert.Equal(t, int64(2), count[database.User](t, s))

	assert.True(t, IsNotFound(s.DeleteEmployer(ctx, f.employer.ID)))
}

func TestDeleteJobCategoryCascades(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	_, err := s.LinkApplicantToPosting(ctx, f.applicant.ID, f.posting.ID, "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteJobCategory(ctx, f.category.ID))

	assert.Equal(t, int64(0), count[database.JobPosting](t, s))
	assert.Equal(t, int64(0), count[database.JobApplication](t, s))
	assert.Equal(t, int64(1), count[database.Employer](t, s))
}

func TestDeleteApplicantCascades(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	_, err := s.LinkApplicantToPosting(ctx, f.applicant.ID, f.posting.ID, "")
	require.NoError(t, err)
	_, err = s.AddFavorite(ctx, f.applicant.ID, f.posting.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteApplicant(ctx, f.applicant.ID))

	assert.Equal(t, int64(0), count[database.JobApplication](t, s))
	assert.Equal(t, int64(0), count[database.Favorite](t, s))
	assert.Equal(t, int64(1), count[database.JobPosting](t, s))
}

func TestDeleteJobPostingCascades(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	_, err := s.LinkApplicantToPosting(ctx, f.applicant.ID, f.posting.ID, "")
	require.NoError(t, err)
	_, err = s.AddFavorite(ctx, f.applicant.ID, f.posting.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteJobPosting(ctx, f.posting.ID))

	assert.Equal(t, int64(0), count[database.JobApplication](t, s))
	assert.Equal(t, int64(0), count[database.Favorite](t, s))
	assert.Equal(t, int64(1), count[database.Applicant](t, s))
}

func TestDeleteUserCascadesThroughProfiles(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	_, err := s.LinkApplicantToPosting(ctx, f.applicant.ID, f.posting.ID, "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, f.employerUser.ID))
	assert.Equal(t, int64(0), count[database.Employer](t, s))
	assert.Equal(t, int64(0), count[database.JobPosting](t, s))
	assert.Equal(t, int64(0), count[database.JobApplication](t, s))

	require.NoError(t, s.DeleteUser(ctx, f.applicantUser.ID))
	assert.Equal(t, int64(0), count[database.Applicant](t, s))
	assert.Equal(t, int64(0), count[database.User](t, s))
}

func TestFavorites(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	fav, err := s.AddFavorite(ctx, f.applicant.ID, f.posting.ID)
	require.NoError(t, err)
	assert.NotZero(t, fav.ID)

	_, err = s.AddFavorite(ctx, f.applicant.ID, f.posting.ID)
	assert.True(t, IsIntegrityError(err), "got %v", err)

	favs, err := s.ListFavorites(ctx, f.applicant.ID)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	require.NotNil(t, favs[0].JobPosting)
	assert.Equal(t, "Cashier", favs[0].JobPosting.Title)

	require.NoError(t, s.RemoveFavorite(ctx, f.applicant.ID, f.posting.ID))
	assert.True(t, IsNotFound(s.RemoveFavorite(ctx, f.applicant.ID, f.posting.ID)))
}

func TestListJobPostingsFilter(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	closed, err := database.NewJobPosting(f.employer.ID, f.category.ID, database.PostingFields{
		Title:    ptr("Stocker"),
		Salary:   ptr(14.0),
		Remote:   ptr(database.RemoteOnSite),
		IsActive: ptr(false),
		Location: ptr("Denver, CO"),
	})
	require.NoError(t, err)
	require.NoError(t, s.CreateJobPosting(ctx, closed))

	all, err := s.ListJobPostings(ctx, PostingFilter{EmployerID: f.employer.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := s.ListJobPostings(ctx, PostingFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Cashier", active[0].Title)
	require.NotNil(t, active[0].Employer)
	assert.Equal(t, "Acme", active[0].Employer.Name)
}

func TestCreateJobPostingWithMissingCategory(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)

	orphan, err := database.NewJobPosting(f.employer.ID, 9999, database.PostingFields{
		Title:  ptr("Ghost"),
		Salary: ptr(1.0),
		Remote: ptr(database.RemoteRemote),
	})
	require.NoError(t, err)
	err = s.CreateJobPosting(context.Background(), orphan)
	assert.True(t, IsIntegrityError(err), "got %v", err)
}

func TestSeedCategoriesIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	created, err := database.SeedCategories(s.DB(), []string{"Driver", "Retail"})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = database.SeedCategories(s.DB(), []string{"Driver", "Healthcare"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	categories, err := s.ListJobCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Driver", categories[0].Category)
}
