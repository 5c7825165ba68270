package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/relaychat/relay/internal/api"
	"github.com/relaychat/relay/internal/chat"
	"github.com/relaychat/relay/internal/handlers"
)

type nopTransport struct{}

func (nopTransport) Send(connID, event string, payload any) {}

func newTestRouter() http.Handler {
	coord := chat.New(chat.Config{
		DefaultRooms:  []string{"General"},
		AvatarBaseURL: "https://avatars.test/svg",
	}, nopTransport{}, zerolog.Nop())

	stub := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSwitchingProtocols)
	})
	return api.NewRouter(zerolog.Nop(), handlers.NewHandler(coord), stub)
}

func TestRoutesRespond(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/", "/health", "/rooms", "/stats", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: unexpected status %d", path, rec.Code)
		}
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("missing nosniff header, got %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("missing frame options header, got %q", got)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
