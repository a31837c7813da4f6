package service

import (
	"context"
	"errors"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/rithlabs/rith/internal/rith/store"
)

var (
	ErrInvalidTOTPCode   = errors.New("invalid TOTP code")
	ErrMFANotEnrolled    = errors.New("MFA not enrolled")
	ErrMFAAlreadyEnabled = errors.New("MFA already enabled")
)

type MFAService struct {
	Store  store.Store
	Issuer string
}

// MFAEnrollment is handed to the user so they can load the secret into an
// authenticator app. MFA stays off until VerifyTOTP confirms a code.
type MFAEnrollment struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

// EnrollTOTP generates and stores a pending TOTP secret for the user.
func (s *MFAService) EnrollTOTP(ctx context.Context, userID, email string) (MFAEnrollment, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return MFAEnrollment{}, err
	}
	if user.MFAEnabled != nil {
		return MFAEnrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return MFAEnrollment{}, err
	}

	if err := s.Store.Users().UpdateMFASecret(ctx, userID, key.Secret()); err != nil {
		return MFAEnrollment{}, err
	}

	return MFAEnrollment{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

// VerifyTOTP checks a code against the pending secret and, on success, turns
// MFA on for the account.
func (s *MFAService) VerifyTOTP(ctx context.Context, userID, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.MFASecret == nil || *user.MFASecret == "" {
		return ErrMFANotEnrolled
	}
	if user.MFAEnabled != nil {
		return ErrMFAAlreadyEnabled
	}
	if !totp.Validate(code, *user.MFASecret) {
		return ErrInvalidTOTPCode
	}
	return s.Store.Users().EnableMFA(ctx, userID, time.Now().UTC())
}
