// Package checkout creates sessions with the external hosted payment page.
// The provider protocol itself is out of scope: the session carries enough
// state for the success redirect to create the booking.
package checkout

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yash-miyani/natours/internal/core/domain"
)

// Config captures the hosted-checkout settings.
type Config struct {
	// BaseURL is the provider's hosted page, e.g. https://checkout.example.com.
	BaseURL string
	// SuccessURL is where the provider redirects after payment; session
	// state is appended as query parameters.
	SuccessURL string
}

// SessionCreator builds hosted checkout sessions.
type SessionCreator struct {
	cfg Config
	log zerolog.Logger
}

func NewSessionCreator(cfg Config, log zerolog.Logger) *SessionCreator {
	return &SessionCreator{cfg: cfg, log: log}
}

// CreateSession creates a session for one tour and one user. The success
// redirect carries tour, user, and price so the booking can be created when
// it lands; the provider signs nothing here, matching the hosted-checkout
// flow this replaces.
func (s *SessionCreator) CreateSession(_ context.Context, tour *domain.Tour, user *domain.User) (*domain.CheckoutSession, error) {
	id := uuid.NewString()

	success, err := url.Parse(s.cfg.SuccessURL)
	if err != nil {
		return nil, fmt.Errorf("checkout success url: %w", err)
	}
	q := success.Query()
	q.Set("tour", tour.ID.Hex())
	q.Set("user", user.ID.Hex())
	q.Set("price", fmt.Sprintf("%g", tour.Price))
	success.RawQuery = q.Encode()

	hosted, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("checkout base url: %w", err)
	}
	hq := hosted.Query()
	hq.Set("session", id)
	hq.Set("name", fmt.Sprintf("%s Tour", tour.Name))
	hq.Set("amount", fmt.Sprintf("%g", tour.Price))
	hq.Set("success_url", success.String())
	hosted.RawQuery = hq.Encode()

	s.log.Info().Str("session_id", id).Str("tour", tour.ID.Hex()).Msg("checkout session created")

	return &domain.CheckoutSession{
		ID:         id,
		URL:        hosted.String(),
		SuccessURL: success.String(),
		TourID:     tour.ID.Hex(),
		UserID:     user.ID.Hex(),
		Amount:     tour.Price,
	}, nil
}
