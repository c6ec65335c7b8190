package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractURLFromMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "schemed url mid-sentence",
			message: "analyze https://www.youtube.com/watch?v=abc123 please",
			want:    "https://www.youtube.com/watch?v=abc123",
		},
		{
			name:    "trailing punctuation stripped",
			message: "check this out https://tiktok.com/@x/video/1!",
			want:    "https://tiktok.com/@x/video/1",
		},
		{
			name:    "bare youtube link gets scheme",
			message: "here youtube.com/watch?v=dQw4w9WgXcQ thanks",
			want:    "https://youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:    "bare youtu.be short link",
			message: "youtu.be/dQw4w9WgXcQ",
			want:    "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name:    "bare instagram link",
			message: "see instagram.com/reel/xyz.",
			want:    "https://instagram.com/reel/xyz",
		},
		{
			name:    "http scheme preserved",
			message: "http://tiktok.com/@user/video/2",
			want:    "http://tiktok.com/@user/video/2",
		},
		{
			name:    "multiple urls takes first",
			message: "https://youtube.com/watch?v=a and https://tiktok.com/@b",
			want:    "https://youtube.com/watch?v=a",
		},
		{
			name:    "no url present",
			message: "hello, can you find leads for me?",
			want:    "",
		},
		{
			name:    "empty message",
			message: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractURLFromMessage(tt.message); got != tt.want {
				t.Errorf("ExtractURLFromMessage(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc", PlatformYouTube},
		{"https://youtu.be/abc", PlatformYouTube},
		{"https://www.tiktok.com/@user/video/123", PlatformTikTok},
		{"https://instagram.com/reel/xyz", PlatformInstagram},
		{"https://vimeo.com/12345", PlatformUnknown},
		{"", PlatformUnknown},
	}

	for _, tt := range tests {
		if got := DetectPlatform(tt.url); got != tt.want {
			t.Errorf("DetectPlatform(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSendURLToWebhook(t *testing.T) {
	t.Run("forwards url as query params", func(t *testing.T) {
		var gotQuery map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			gotQuery = map[string]string{
				"url":             q.Get("url"),
				"platform":        q.Get("platform"),
				"originalMessage": q.Get("originalMessage"),
			}
			if r.Method != http.MethodGet {
				t.Errorf("expected GET, got %s", r.Method)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		gw := NewGateway(server.URL)
		result := gw.SendURLToWebhook(context.Background(), "check https://youtube.com/watch?v=abc")

		if !result.Success {
			t.Fatalf("expected success, got %+v", result)
		}
		if result.Platform != PlatformYouTube {
			t.Errorf("platform = %q, want %q", result.Platform, PlatformYouTube)
		}
		if gotQuery["url"] != "https://youtube.com/watch?v=abc" {
			t.Errorf("url param = %q", gotQuery["url"])
		}
		if gotQuery["platform"] != PlatformYouTube {
			t.Errorf("platform param = %q", gotQuery["platform"])
		}
		if gotQuery["originalMessage"] != "check https://youtube.com/watch?v=abc" {
			t.Errorf("originalMessage param = %q", gotQuery["originalMessage"])
		}
	})

	t.Run("non-2xx is a failed result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		gw := NewGateway(server.URL)
		result := gw.SendURLToWebhook(context.Background(), "https://tiktok.com/@x/video/1")

		if result.Success {
			t.Fatal("expected failure on 500")
		}
		if result.Platform != PlatformTikTok || result.URL != "https://tiktok.com/@x/video/1" {
			t.Errorf("result should still carry platform and url, got %+v", result)
		}
	})

	t.Run("unknown platform is not forwarded", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		gw := NewGateway(server.URL)
		result := gw.SendURLToWebhook(context.Background(), "https://vimeo.com/12345")

		if called {
			t.Error("webhook should not be called for unknown platforms")
		}
		if result.Success {
			t.Error("expected failure for unknown platform")
		}
		if result.URL != "https://vimeo.com/12345" {
			t.Errorf("result should carry the extracted url, got %q", result.URL)
		}
	})

	t.Run("message without url", func(t *testing.T) {
		gw := NewGateway("http://127.0.0.1:0")
		result := gw.SendURLToWebhook(context.Background(), "just chatting, no links")

		if result.Success || result.URL != "" || result.Platform != "" {
			t.Errorf("expected empty failed result, got %+v", result)
		}
	})

	t.Run("transport error is a failed result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		gw := NewGateway(server.URL)
		result := gw.SendURLToWebhook(context.Background(), "https://instagram.com/reel/xyz")

		if result.Success {
			t.Fatal("expected failure when the webhook endpoint is down")
		}
		if result.Platform != PlatformInstagram {
			t.Errorf("platform = %q, want %q", result.Platform, PlatformInstagram)
		}
	})
}
