package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/grievance-service/internal/config"
	"github.com/campus-ops/grievance-service/internal/domain"
	apperrors "github.com/campus-ops/grievance-service/pkg/util"
)

func newAuthFixture() (*AuthService, *mockUserRepo, *mockStaffRepo) {
	users := newMockUserRepo()
	staff := newMockStaffRepo()
	resets := newMockResetRepo()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTLMinutes:   60,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              4,
		},
		Workflow: config.WorkflowConfig{MasterAdminID: testMasterID},
	}
	svc := NewAuthService(cfg, AuthDependencies{
		UserRepo:          users,
		StaffRepo:         staff,
		PasswordResetRepo: resets,
	})
	return svc, users, staff
}

func registerAccount(t *testing.T, svc *AuthService, email string) *domain.User {
	t.Helper()
	user, _, _, err := svc.RegisterUser(context.Background(), RegisterInput{
		FullName: "Test Account",
		Email:    email,
		Password: "correct horse",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	registerAccount(t, svc, "stu1@uni.example.edu")

	user, token, _, err := svc.LoginUser(context.Background(), "stu1@uni.example.edu", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "stu1@uni.example.edu", user.Email)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeUser, claims.Subject)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()
	registerAccount(t, svc, "stu1@uni.example.edu")

	_, _, _, err := svc.RegisterUser(context.Background(), RegisterInput{
		FullName: "Other",
		Email:    "stu1@uni.example.edu",
		Password: "pw",
	})
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	registerAccount(t, svc, "stu1@uni.example.edu")

	_, _, _, err := svc.LoginUser(context.Background(), "stu1@uni.example.edu", "nope")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestStaffLoginRequiresStanding(t *testing.T) {
	svc, _, staff := newAuthFixture()
	user := registerAccount(t, svc, "stf1@uni.example.edu")

	// a plain account cannot log in as staff
	_, _, _, err := svc.LoginStaff(context.Background(), "stf1@uni.example.edu", "correct horse")
	assert.True(t, apperrors.IsCode(err, "PERMISSION_DENIED"))

	// with a directory record it can
	staff.put(domain.StaffRecord{ID: user.ID, FullName: user.FullName})
	_, token, _, err := svc.LoginStaff(context.Background(), "stf1@uni.example.edu", "correct horse")
	require.NoError(t, err)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeStaff, claims.Subject)
}

func TestTokenCarriesNoRoleFlags(t *testing.T) {
	svc, _, staff := newAuthFixture()
	user := registerAccount(t, svc, "adm1@uni.example.edu")
	staff.put(domain.StaffRecord{ID: user.ID, AdminDepartment: "Hostel", IsDeptAdmin: true})

	_, token, _, err := svc.LoginStaff(context.Background(), "adm1@uni.example.edu", "correct horse")
	require.NoError(t, err)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	// only identity and subject kind: authority is re-derived from the
	// directory on every privileged call
	assert.Equal(t, user.ID, claims.SubjectID)
	assert.Equal(t, domain.SubjectTypeStaff, claims.Subject)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, _ := newAuthFixture()
	registerAccount(t, svc, "stu1@uni.example.edu")

	_, err := svc.RequestPasswordReset(context.Background(), "nobody@uni.example.edu")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	token, err := svc.RequestPasswordReset(context.Background(), "stu1@uni.example.edu")
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmPasswordReset(context.Background(), token.Token, "fresh password"))

	_, _, _, err = svc.LoginUser(context.Background(), "stu1@uni.example.edu", "fresh password")
	assert.NoError(t, err)

	// tokens are single use
	err = svc.ConfirmPasswordReset(context.Background(), token.Token, "another one")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	user := registerAccount(t, svc, "stu1@uni.example.edu")

	err := svc.ChangePassword(context.Background(), user.ID, "wrong", "new password")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	err = svc.ChangePassword(context.Background(), user.ID, "correct horse", "new password")
	require.NoError(t, err)

	_, _, _, err = svc.LoginUser(context.Background(), "stu1@uni.example.edu", "new password")
	assert.NoError(t, err)
}
