package checkout

import (
	"context"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yash-miyani/natours/internal/core/domain"
)

func TestCreateSession(t *testing.T) {
	creator := NewSessionCreator(Config{
		BaseURL:    "https://checkout.example.com",
		SuccessURL: "http://localhost:3000/",
	}, zerolog.Nop())

	tour := &domain.Tour{ID: primitive.NewObjectID(), Name: "The Forest Hiker", Price: 497}
	user := &domain.User{ID: primitive.NewObjectID(), Email: "alice@example.com"}

	session, err := creator.CreateSession(context.Background(), tour, user)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.ID == "" {
		t.Fatalf("expected a session id")
	}
	if session.Amount != 497 {
		t.Fatalf("unexpected amount: %v", session.Amount)
	}

	hosted, err := url.Parse(session.URL)
	if err != nil {
		t.Fatalf("hosted url: %v", err)
	}
	hq := hosted.Query()
	if hq.Get("session") != session.ID {
		t.Fatalf("session id missing from hosted url: %s", session.URL)
	}
	if hq.Get("name") != "The Forest Hiker Tour" {
		t.Fatalf("unexpected name: %q", hq.Get("name"))
	}

	success, err := url.Parse(hq.Get("success_url"))
	if err != nil {
		t.Fatalf("success url: %v", err)
	}
	sq := success.Query()
	if sq.Get("tour") != tour.ID.Hex() || sq.Get("user") != user.ID.Hex() || sq.Get("price") != "497" {
		t.Fatalf("success redirect missing booking state: %s", hq.Get("success_url"))
	}
}

func TestCreateSession_DistinctIDs(t *testing.T) {
	creator := NewSessionCreator(Config{
		BaseURL:    "https://checkout.example.com",
		SuccessURL: "http://localhost:3000/",
	}, zerolog.Nop())

	tour := &domain.Tour{ID: primitive.NewObjectID(), Price: 100}
	user := &domain.User{ID: primitive.NewObjectID()}

	a, _ := creator.CreateSession(context.Background(), tour, user)
	b, _ := creator.CreateSession(context.Background(), tour, user)
	if a.ID == b.ID {
		t.Fatalf("session ids must be unique")
	}
}
