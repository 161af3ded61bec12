package terminology

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/somnolink/somnolink/pkg/logging"
)

func newICDTestServer(t *testing.T, tokenCalls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			atomic.AddInt32(tokenCalls, 1)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"test-token","expires_in":3600}`))
		case "/search":
			if r.Header.Get("Authorization") != "Bearer test-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if r.Header.Get("Accept-Language") != "fr" {
				t.Errorf("expected French results, got %q", r.Header.Get("Accept-Language"))
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"destinationEntities":[{"theCode":"7A40","title":"Apnée <em class='found'>obstructive</em> du sommeil"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestICDClientSearchesWithCachedToken(t *testing.T) {
	var tokenCalls int32
	srv := newICDTestServer(t, &tokenCalls)
	defer srv.Close()

	client := NewICDClient("id", "secret", srv.URL+"/token", srv.URL+"/search", 5*time.Second, logging.Default())

	for i := 0; i < 2; i++ {
		results, err := client.Search(context.Background(), "apnée")
		if err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
		if len(results) != 1 || results[0].Code != "7A40" {
			t.Fatalf("unexpected results %+v", results)
		}
		if results[0].Label != "Apnée obstructive du sommeil" {
			t.Errorf("markup must be stripped, got %q", results[0].Label)
		}
	}
	if atomic.LoadInt32(&tokenCalls) != 1 {
		t.Errorf("expected one token fetch, got %d", tokenCalls)
	}
}

func TestICDClientClassifiesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewICDClient("id", "secret", srv.URL+"/token", srv.URL+"/search", 50*time.Millisecond, logging.Default())

	if _, err := client.Search(context.Background(), "apnée"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestICDClientUpstreamErrorIsNotTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewICDClient("id", "secret", srv.URL+"/token", srv.URL+"/search", time.Second, logging.Default())

	_, err := client.Search(context.Background(), "apnée")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("upstream failure must not classify as timeout")
	}
}
