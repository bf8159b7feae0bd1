package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"app/internal/config"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

// accesstokenの有効期限
const accessTokenTTL = 7 * 24 * time.Hour

// パスワード再設定OTPの有効期限
const resetOTPTTL = 10 * time.Minute

// Mailer はOTPメールの送信口
type Mailer interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

// Google側で検証済みのプロフィール
type GoogleProfile struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ログイン成功時の返却（tokenと最小限のユーザー情報）
type AuthResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type AuthUsecase struct {
	cfg    config.Config
	users  repo.UserRepository
	mailer Mailer
	images ImageStore
}

func NewAuthUsecase(
	cfg config.Config,
	users repo.UserRepository,
	mailer Mailer,
	images ImageStore,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:    cfg,
		users:  users,
		mailer: mailer,
		images: images,
	}
}

func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return AuthResult{}, NewHTTPError(http.StatusBadRequest, "name, email and password are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return AuthResult{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if len(in.Password) < 6 {
		return AuthResult{}, NewHTTPError(http.StatusBadRequest, "password must be at least 6 characters")
	}

	if _, found, err := u.users.FindByEmail(ctx, in.Email); err != nil {
		return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	} else if found {
		return AuthResult{}, NewHTTPError(http.StatusConflict, "email already registered")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user, err := u.users.Create(ctx, model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(pwHash),
		Role:         model.RoleUser,
	})
	if err != nil {
		return AuthResult{}, NewHTTPError(http.StatusConflict, "email already registered")
	}

	return u.issueResult(user)
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Email == "" || in.Password == "" {
		return AuthResult{}, NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	//マスター管理者。環境変数の資格情報に一致したら
	//adminユーザーを引き当てる（無ければ作る）
	if u.cfg.AdminEmail != "" && in.Email == strings.ToLower(u.cfg.AdminEmail) && in.Password == u.cfg.AdminPassword {
		return u.loginAsMasterAdmin(ctx)
	}

	user, found, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !found || user.PasswordHash == "" {
		return AuthResult{}, NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return AuthResult{}, NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	return u.issueResult(user)
}

func (u *AuthUsecase) loginAsMasterAdmin(ctx context.Context) (AuthResult, error) {
	email := strings.ToLower(u.cfg.AdminEmail)

	user, found, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !found {
		pwHash, err := bcrypt.GenerateFromPassword([]byte(u.cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		user, err = u.users.Create(ctx, model.User{
			Name:         "Admin",
			Email:        email,
			PasswordHash: string(pwHash),
			Role:         model.RoleAdmin,
		})
		if err != nil {
			return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	//過去に一般ユーザーとして登録されていても昇格させる
	if user.Role != model.RoleAdmin {
		user.Role = model.RoleAdmin
		if err := u.users.Update(ctx, user); err != nil {
			return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	return u.issueResult(user)
}

// LoginWithGoogle はOAuthコールバック後の引き当て。
// GoogleID→Email→新規作成の順で解決する。
func (u *AuthUsecase) LoginWithGoogle(ctx context.Context, p GoogleProfile) (AuthResult, error) {
	if p.GoogleID == "" || p.Email == "" {
		return AuthResult{}, NewHTTPError(http.StatusBadRequest, "incomplete google profile")
	}

	email := strings.ToLower(p.Email)

	user, found, err := u.users.FindByGoogleID(ctx, p.GoogleID)
	if err != nil {
		return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !found {
		//同じemailの既存アカウントがあればGoogleを紐付ける
		user, found, err = u.users.FindByEmail(ctx, email)
		if err != nil {
			return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			user.GoogleID = p.GoogleID
			if user.ProfilePic == "" {
				user.ProfilePic = p.Picture
			}
			if err := u.users.Update(ctx, user); err != nil {
				return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else {
			user, err = u.users.Create(ctx, model.User{
				Name:       p.Name,
				Email:      email,
				GoogleID:   p.GoogleID,
				ProfilePic: p.Picture,
				Role:       model.RoleUser,
			})
			if err != nil {
				return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
	}

	return u.issueResult(user)
}

// ForgotPassword はOTPを発行してメールする。
// DBには平文ではなくhashを保存する。
func (u *AuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return NewHTTPError(http.StatusBadRequest, "email is required")
	}

	user, found, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !found {
		return NewHTTPError(http.StatusNotFound, "User not found")
	}

	otp, err := newOTP()
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	expires := time.Now().Add(resetOTPTTL)
	user.ResetOTPHash = hashOTP(otp)
	user.ResetOTPExpiresAt = &expires

	if err := u.users.Update(ctx, user); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	subject := "Password Reset OTP"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour password reset code is: %s\nIt expires in %d minutes.\n\nIf you did not request this, you can ignore this email.",
		user.Name, otp, int(resetOTPTTL.Minutes()),
	)
	if err := u.mailer.Send(ctx, user.Email, subject, body); err != nil {
		log.Printf("failed to send otp mail to %s: %v", user.Email, err)
		return NewHTTPError(http.StatusInternalServerError, "failed to send email")
	}

	return nil
}

type ResetPasswordInput struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

func (u *AuthUsecase) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Email == "" || in.OTP == "" || in.NewPassword == "" {
		return NewHTTPError(http.StatusBadRequest, "email, otp and newPassword are required")
	}
	if len(in.NewPassword) < 6 {
		return NewHTTPError(http.StatusBadRequest, "password must be at least 6 characters")
	}

	user, found, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !found {
		return NewHTTPError(http.StatusNotFound, "User not found")
	}

	if user.ResetOTPHash == "" || user.ResetOTPExpiresAt == nil {
		return NewHTTPError(http.StatusBadRequest, "invalid or expired OTP")
	}
	if time.Now().After(*user.ResetOTPExpiresAt) {
		return NewHTTPError(http.StatusBadRequest, "invalid or expired OTP")
	}
	if hashOTP(in.OTP) != user.ResetOTPHash {
		return NewHTTPError(http.StatusBadRequest, "invalid or expired OTP")
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//使用済みOTPは必ず無効化する
	user.PasswordHash = string(pwHash)
	user.ResetOTPHash = ""
	user.ResetOTPExpiresAt = nil

	if err := u.users.Update(ctx, user); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

func (u *AuthUsecase) GetUser(ctx context.Context, userID int64) (model.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if err == repo.ErrNotFound {
			return model.User{}, NewHTTPError(http.StatusNotFound, "User not found")
		}
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return user, nil
}

func (u *AuthUsecase) UpdateProfilePic(ctx context.Context, userID int64, file ImageFile) (model.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if err == repo.ErrNotFound {
			return model.User{}, NewHTTPError(http.StatusNotFound, "User not found")
		}
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//古い画像の破棄はベストエフォート
	if user.ProfilePicPublicID != "" {
		if err := u.images.Destroy(ctx, user.ProfilePicPublicID); err != nil {
			log.Printf("failed to destroy old profile pic %s: %v", user.ProfilePicPublicID, err)
		}
	}

	picURL, publicID, err := u.images.Upload(ctx, file.Reader, "profile_pics")
	if err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "image upload failed")
	}

	user.ProfilePic = picURL
	user.ProfilePicPublicID = publicID

	if err := u.users.Update(ctx, user); err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return user, nil
}

// FrontendRedirectURL はGoogleログイン後にtokenを載せて戻す先。
func (u *AuthUsecase) FrontendRedirectURL(token string) string {
	return fmt.Sprintf("%s/auth/callback?token=%s", strings.TrimRight(u.cfg.FEURL, "/"), url.QueryEscape(token))
}

func (u *AuthUsecase) issueResult(user model.User) (AuthResult, error) {
	token, err := u.issueAccessToken(user)
	if err != nil {
		return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return AuthResult{Token: token, User: user}, nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user model.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"name": user.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(u.cfg.JWTSecret))
}

// 6桁の数字OTP
func newOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashOTP(otp string) string {
	sum := sha256.Sum256([]byte(otp))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
