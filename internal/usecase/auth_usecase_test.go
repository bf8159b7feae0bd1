package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/usecase"
)

func authTestConfig() config.Config {
	return config.Config{
		JWTSecret:     "test-secret",
		FEURL:         "https://shop.example.com",
		AdminEmail:    "owner@example.com",
		AdminPassword: "master-pass",
	}
}

func newAuthUsecase() (*usecase.AuthUsecase, *UserRepoMock, *MailerMock) {
	users := new(UserRepoMock)
	mailer := new(MailerMock)
	uc := usecase.NewAuthUsecase(authTestConfig(), users, mailer, new(ImageStoreMock))
	return uc, users, mailer
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

// =====================
// Signup / Login
// =====================

func TestAuthUsecase_Signup_RejectsShortPassword(t *testing.T) {
	uc, _, _ := newAuthUsecase()

	_, err := uc.Signup(context.Background(), usecase.SignupInput{
		Name: "Rahima", Email: "rahima@example.com", Password: "12345",
	})
	assertErrContains(t, err, "at least 6 characters")
}

func TestAuthUsecase_Signup_ConflictOnExistingEmail(t *testing.T) {
	uc, users, _ := newAuthUsecase()

	users.On("FindByEmail", mock.Anything, "rahima@example.com").Return(model.User{ID: 1}, true, nil)

	_, err := uc.Signup(context.Background(), usecase.SignupInput{
		Name: "Rahima", Email: "Rahima@Example.com", Password: "secret123",
	})
	assertErrContains(t, err, "email already registered")
}

func TestAuthUsecase_Signup_HashesPasswordAndIssuesToken(t *testing.T) {
	uc, users, _ := newAuthUsecase()

	users.On("FindByEmail", mock.Anything, "rahima@example.com").Return(model.User{}, false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		//平文は保存しない
		return u.PasswordHash != "secret123" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")) == nil &&
			u.Role == model.RoleUser
	})).Return(model.User{ID: 2, Name: "Rahima", Email: "rahima@example.com", Role: model.RoleUser}, nil)

	out, err := uc.Signup(context.Background(), usecase.SignupInput{
		Name: "Rahima", Email: "rahima@example.com", Password: "secret123",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, int64(2), out.User.ID)

	users.AssertExpectations(t)
}

func TestAuthUsecase_Login_InvalidPassword(t *testing.T) {
	uc, users, _ := newAuthUsecase()

	users.On("FindByEmail", mock.Anything, "rahima@example.com").Return(model.User{
		ID: 1, Email: "rahima@example.com", PasswordHash: mustHash(t, "right-pass"),
	}, true, nil)

	_, err := uc.Login(context.Background(), usecase.LoginInput{Email: "rahima@example.com", Password: "wrong-pass"})
	assertErrContains(t, err, "Invalid email or password")
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	uc, users, _ := newAuthUsecase()

	users.On("FindByEmail", mock.Anything, "rahima@example.com").Return(model.User{
		ID: 1, Name: "Rahima", Email: "rahima@example.com", Role: model.RoleUser,
		PasswordHash: mustHash(t, "secret123"),
	}, true, nil)

	out, err := uc.Login(context.Background(), usecase.LoginInput{Email: "rahima@example.com", Password: "secret123"})
	assert.NoError(t, err)
	assert.NotEmpty(t, out.Token)
}

// マスター資格情報で管理者が居なければ作る
func TestAuthUsecase_Login_MasterAdminAutoCreated(t *testing.T) {
	uc, users, _ := newAuthUsecase()

	users.On("FindByEmail", mock.Anything, "owner@example.com").Return(model.User{}, false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Email == "owner@example.com" && u.Role == model.RoleAdmin && u.Name == "Admin"
	})).Return(model.User{ID: 9, Name: "Admin", Email: "owner@example.com", Role: model.RoleAdmin}, nil)

	out, err := uc.Login(context.Background(), usecase.LoginInput{Email: "owner@example.com", Password: "master-pass"})
	assert.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, out.User.Role)

	users.AssertExpectations(t)
}

// =====================
// OTPによるパスワード再設定
// =====================

func TestAuthUsecase_ForgotPassword_UserNotFound(t *testing.T) {
	uc, users, mailer := newAuthUsecase()

	users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(model.User{}, false, nil)

	err := uc.ForgotPassword(context.Background(), "nobody@example.com")
	assertErrContains(t, err, "User not found")

	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 発行から照合までの往復。メール本文のOTPで再設定できる
func TestAuthUsecase_ForgotThenResetPassword(t *testing.T) {
	uc, users, mailer := newAuthUsecase()

	user := model.User{ID: 1, Name: "Rahima", Email: "rahima@example.com", PasswordHash: mustHash(t, "old-pass")}
	users.On("FindByEmail", mock.Anything, "rahima@example.com").Return(user, true, nil).Once()

	//保存されたOTPハッシュ付きユーザーを捕まえる
	var stored model.User
	users.On("Update", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.ResetOTPHash != "" && u.ResetOTPExpiresAt != nil
	})).Run(func(args mock.Arguments) {
		stored = args.Get(1).(model.User)
	}).Return(nil).Once()

	//メール本文からOTPを取り出す
	var otp string
	mailer.On("Send", mock.Anything, "rahima@example.com", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		body := args.String(3)
		const marker = "code is: "
		i := strings.Index(body, marker)
		if i >= 0 {
			otp = body[i+len(marker) : i+len(marker)+6]
		}
	}).Return(nil).Once()

	err := uc.ForgotPassword(context.Background(), "rahima@example.com")
	assert.NoError(t, err)
	assert.Len(t, otp, 6)
	assert.NotEqual(t, otp, stored.ResetOTPHash, "OTPは平文で保存しない")

	//再設定。保存済みのユーザーを返す
	users.On("FindByEmail", mock.Anything, "rahima@example.com").Return(stored, true, nil).Once()
	users.On("Update", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		//使用済みOTPは消える。新パスワードはハッシュ保存
		return u.ResetOTPHash == "" && u.ResetOTPExpiresAt == nil &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("new-pass-1")) == nil
	})).Return(nil).Once()

	err = uc.ResetPassword(context.Background(), usecase.ResetPasswordInput{
		Email: "rahima@example.com", OTP: otp, NewPassword: "new-pass-1",
	})
	assert.NoError(t, err)

	users.AssertExpectations(t)
}

func TestAuthUsecase_ResetPassword_WrongOTP(t *testing.T) {
	uc, users, mailer := newAuthUsecase()

	user := model.User{ID: 1, Email: "rahima@example.com"}
	users.On("FindByEmail", mock.Anything, "rahima@example.com").Return(user, true, nil).Once()
	users.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		user = args.Get(1).(model.User)
	}).Return(nil).Once()
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	assert.NoError(t, uc.ForgotPassword(context.Background(), "rahima@example.com"))

	users.On("FindByEmail", mock.Anything, "rahima@example.com").Return(user, true, nil).Once()

	err := uc.ResetPassword(context.Background(), usecase.ResetPasswordInput{
		Email: "rahima@example.com", OTP: "not-the-code", NewPassword: "new-pass-1",
	})
	assertErrContains(t, err, "invalid or expired OTP")
}

// =====================
// Googleログイン
// =====================

func TestAuthUsecase_LoginWithGoogle_CreatesNewUser(t *testing.T) {
	uc, users, _ := newAuthUsecase()

	users.On("FindByGoogleID", mock.Anything, "g-123").Return(model.User{}, false, nil)
	users.On("FindByEmail", mock.Anything, "rahima@example.com").Return(model.User{}, false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.GoogleID == "g-123" && u.Email == "rahima@example.com" && u.Role == model.RoleUser
	})).Return(model.User{ID: 5, GoogleID: "g-123", Email: "rahima@example.com"}, nil)

	out, err := uc.LoginWithGoogle(context.Background(), usecase.GoogleProfile{
		GoogleID: "g-123", Email: "Rahima@example.com", Name: "Rahima", Picture: "https://pic/1.jpg",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	users.AssertExpectations(t)
}

// 同じemailの既存アカウントにはGoogleを紐付ける
func TestAuthUsecase_LoginWithGoogle_LinksExistingAccount(t *testing.T) {
	uc, users, _ := newAuthUsecase()

	existing := model.User{ID: 5, Email: "rahima@example.com", PasswordHash: "hash"}

	users.On("FindByGoogleID", mock.Anything, "g-123").Return(model.User{}, false, nil)
	users.On("FindByEmail", mock.Anything, "rahima@example.com").Return(existing, true, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.ID == 5 && u.GoogleID == "g-123"
	})).Return(nil)

	out, err := uc.LoginWithGoogle(context.Background(), usecase.GoogleProfile{
		GoogleID: "g-123", Email: "rahima@example.com", Name: "Rahima",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), out.User.ID)
	users.AssertExpectations(t)
}
