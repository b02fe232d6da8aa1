package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"spoils/pkg/api"
)

func TestStatusCommand_Success(t *testing.T) {
	resetViper()

	lastError := "nutrition search request failed"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET method, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/api/jobs/42") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		json.NewEncoder(w).Encode(api.JobResponse{
			ID:         42,
			TaskType:   "create_ingredient",
			Status:     "retrying",
			Attempts:   1,
			MaxRetries: 3,
			NotBefore:  time.Now().Add(time.Minute),
			LastError:  &lastError,
			CreatedAt:  time.Now().Add(-2 * time.Minute),
			UpdatedAt:  time.Now(),
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	output := execute(t, "status", "42")

	for _, want := range []string{"42", "create_ingredient", "retrying", "1 / 4", lastError} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestStatusCommand_NotFound(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	output := execute(t, "status", "999")
	if !strings.Contains(output, "Status failed (404)") {
		t.Errorf("expected API error in output, got: %s", output)
	}
}

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{24 * time.Hour, "1 day"},
		{72 * time.Hour, "3 days"},
	}

	for _, tt := range tests {
		if got := relativeTime(time.Now().Add(-tt.ago)); got != tt.want {
			t.Errorf("relativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{2500 * time.Millisecond, "2.5s"},
		{90 * time.Second, "1m 30s"},
		{90 * time.Minute, "1h 30m"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
