package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/crypto/bcrypt"

	"funquizz/internal/apperr"
	"funquizz/internal/otp"
	"funquizz/internal/token"
	"funquizz/internal/user"
)

const (
	bcryptCost             = 10
	passwordMinEntropyBits = 30
)

// OTPMailer delivers one-time codes. The SMTP sender implements it; tests
// substitute a sink.
type OTPMailer interface {
	SendVerificationOTP(to, code string) error
	SendPasswordResetOTP(to, code string) error
}

// Service composes the credential store, the code issuer, the token
// service, and the mailer into the register/login/verify/reset lifecycle.
type Service struct {
	users  *user.Repository
	otp    *otp.Service
	tokens *token.Service
	mailer OTPMailer
}

func NewService(users *user.Repository, otpService *otp.Service, tokens *token.Service, mailer OTPMailer) *Service {
	return &Service{
		users:  users,
		otp:    otpService,
		tokens: tokens,
		mailer: mailer,
	}
}

func validEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}

func checkPasswordStrength(password string) error {
	if err := passwordvalidator.Validate(password, passwordMinEntropyBits); err != nil {
		return apperr.BadRequest(fmt.Sprintf("Password is not strong enough: %v", err))
	}
	return nil
}

// Register creates an unverified account, emails a verification code, and
// logs the caller in right away; verification happens afterwards.
func (s *Service) Register(ctx context.Context, email, username, password string) (*user.User, *token.Pair, error) {
	if !validEmail(email) {
		return nil, nil, apperr.BadRequest("Invalid email address")
	}
	if err := checkPasswordStrength(password); err != nil {
		return nil, nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, nil, apperr.Conflict("User with this email already exists")
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, nil, apperr.Internal("failed to check email", err)
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, nil, apperr.Conflict("Username already taken")
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, nil, apperr.Internal("failed to check username", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, nil, apperr.Internal("failed to hash password", err)
	}

	newUser := &user.User{
		Email:    email,
		Username: username,
		Password: string(hash),
		IsActive: true,
	}
	if err := s.users.Create(ctx, newUser); err != nil {
		return nil, nil, apperr.Internal("failed to create user", err)
	}

	if err := s.sendVerificationOTP(ctx, email); err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(ctx, newUser.ID)
	if err != nil {
		return nil, nil, apperr.Internal("failed to issue tokens", err)
	}

	return newUser, pair, nil
}

// Login accepts an email address or a username as the identifier. Unknown
// identifier and wrong password report the same message so the response
// never reveals which one was wrong.
func (s *Service) Login(ctx context.Context, identifier, password string) (*user.User, *token.Pair, error) {
	var (
		u   *user.User
		err error
	)
	if validEmail(identifier) {
		u, err = s.users.FindByEmail(ctx, identifier)
	} else {
		u, err = s.users.FindByUsername(ctx, identifier)
	}
	if errors.Is(err, user.ErrNotFound) {
		return nil, nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, nil, apperr.Internal("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, nil, apperr.Unauthorized("Invalid credentials")
	}

	if !u.IsActive {
		return nil, nil, apperr.Unauthorized("Account is deactivated")
	}

	pair, err := s.tokens.IssuePair(ctx, u.ID)
	if err != nil {
		return nil, nil, apperr.Internal("failed to issue tokens", err)
	}

	return u, pair, nil
}

func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperr.NotFound("User with this email does not exist")
		}
		return apperr.Internal("failed to look up user", err)
	}

	code, err := s.otp.Issue(ctx, email, otp.PurposePasswordReset)
	if err != nil {
		return apperr.Internal("failed to issue otp", err)
	}
	if err := s.mailer.SendPasswordResetOTP(email, code); err != nil {
		return apperr.Internal("failed to send otp email", err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	ok, err := s.otp.Verify(ctx, email, code, otp.PurposePasswordReset)
	if err != nil {
		return apperr.Internal("failed to verify otp", err)
	}
	if !ok {
		return apperr.BadRequest("Invalid or expired OTP")
	}

	if err := checkPasswordStrength(newPassword); err != nil {
		return err
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("failed to look up user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		return apperr.Internal("failed to update password", err)
	}

	if err := s.otp.Consume(ctx, email, otp.PurposePasswordReset); err != nil {
		return apperr.Internal("failed to consume otp", err)
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(currentPassword)); err != nil {
		return apperr.BadRequest("Current password is incorrect")
	}

	if err := checkPasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

func (s *Service) VerifyEmail(ctx context.Context, email, code string) error {
	ok, err := s.otp.Verify(ctx, email, code, otp.PurposeEmailVerification)
	if err != nil {
		return apperr.Internal("failed to verify otp", err)
	}
	if !ok {
		return apperr.BadRequest("Invalid or expired OTP")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("failed to look up user", err)
	}

	if err := s.users.MarkVerified(ctx, u.ID); err != nil {
		return apperr.Internal("failed to mark user verified", err)
	}

	if err := s.otp.Consume(ctx, email, otp.PurposeEmailVerification); err != nil {
		return apperr.Internal("failed to consume otp", err)
	}
	return nil
}

func (s *Service) ResendVerification(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperr.NotFound("User with this email does not exist")
		}
		return apperr.Internal("failed to look up user", err)
	}

	if u.IsVerified {
		return apperr.BadRequest("Email is already verified")
	}

	return s.sendVerificationOTP(ctx, email)
}

// RefreshToken rotates the pair. Every underlying failure collapses to
// Unauthorized so the response never tells an attacker why a token was
// rejected.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*token.Pair, error) {
	pair, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}
	return pair, nil
}

func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return apperr.Internal("failed to revoke refresh token", err)
	}
	return nil
}

// VerifyAccess exposes access-token verification to the middleware.
func (s *Service) VerifyAccess(tokenString string) (string, error) {
	claims, err := s.tokens.VerifyAccess(tokenString)
	if err != nil {
		return "", apperr.Unauthorized("Invalid token")
	}
	return claims.UserID, nil
}

func (s *Service) sendVerificationOTP(ctx context.Context, email string) error {
	code, err := s.otp.Issue(ctx, email, otp.PurposeEmailVerification)
	if err != nil {
		return apperr.Internal("failed to issue otp", err)
	}
	if err := s.mailer.SendVerificationOTP(email, code); err != nil {
		return apperr.Internal("failed to send otp email", err)
	}
	return nil
}
