// Package auth signs console users in and out of the leave API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/phillip-england/leavedesk/internal/apiclient"
	"github.com/phillip-england/leavedesk/internal/session"
)

// Failures are reported without saying which field was wrong.
var (
	ErrAuthentication = errors.New("unable to sign in, check your credentials")
	ErrRegistration   = errors.New("unable to register, check your details")
)

var validate = validator.New()

type Store interface {
	Set(session.Snapshot) error
	Clear(session.Reason) (session.Navigation, error)
}

type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	UID   string `json:"uid"`
}

type Service struct {
	client *apiclient.Client
	store  Store
	log    *zap.Logger
}

func NewService(client *apiclient.Client, store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, store: store, log: log}
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signInResponse struct {
	Data *Profile `json:"data"`
	Profile
}

func (s *Service) Login(ctx context.Context, email, password string) (Profile, error) {
	in := signInRequest{Email: strings.TrimSpace(email), Password: password}
	if err := validate.Struct(in); err != nil {
		return Profile{}, ErrAuthentication
	}

	resp, err := s.client.Send(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/sign_in",
		JSON:   in,
	})
	if err != nil {
		s.log.Info("sign in rejected", zap.Int("status", apiclient.StatusOf(err)))
		return Profile{}, ErrAuthentication
	}
	if !resp.Rotated {
		s.log.Warn("sign in response carried no credential headers")
		return Profile{}, ErrAuthentication
	}

	var body signInResponse
	if err := resp.Decode(&body); err != nil {
		return Profile{}, ErrAuthentication
	}
	profile := body.Profile
	if body.Data != nil {
		profile = *body.Data
	}

	snap := session.Snapshot{Credential: resp.Credential, DisplayName: profile.Name}
	if err := s.store.Set(snap); err != nil {
		return Profile{}, fmt.Errorf("store session: %w", err)
	}
	return profile, nil
}

// Register creates an account. It never signs the new user in.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	in := registerRequest{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email), Password: password}
	if err := validate.Struct(in); err != nil {
		return ErrRegistration
	}

	_, err := s.client.Send(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/auth",
		JSON:   in,
	})
	if err != nil {
		s.log.Info("registration rejected", zap.Int("status", apiclient.StatusOf(err)))
		return ErrRegistration
	}
	return nil
}

func (s *Service) Logout() (session.Navigation, error) {
	return s.store.Clear(session.ReasonLogout)
}
