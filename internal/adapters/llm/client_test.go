package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/okian/gridiron/internal/adapters/llm"
	"github.com/okian/gridiron/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type captured struct {
	mu        sync.Mutex
	path      string
	auth      string
	requestID string
	body      map[string]any
}

func completionServer(status int, reply string, delay time.Duration, got *captured) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		got.mu.Lock()
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		got.requestID = r.Header.Get("X-Request-ID")
		_ = json.Unmarshal(raw, &got.body)
		got.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "llama3-70b-8192",
			"choices": []any{map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	}))
}

func TestGenerate(t *testing.T) {
	Convey("Given a chat completions backend", t, func() {
		got := &captured{}

		Convey("When the backend answers", func() {
			srv := completionServer(http.StatusOK, "Patrick Mahomes leads the league. Based on official NFL data.", 0, got)
			defer srv.Close()
			c := llm.NewClient(llm.Config{
				BaseURL: srv.URL + "/openai/v1", APIKey: "gsk-test", Model: "llama3-70b-8192",
				Temperature: 0.7, MaxTokens: 512, Timeout: 5 * time.Second,
			})
			ctx := logger.WithRequestID(context.Background(), "req-7")
			answer := c.Generate(ctx, "Who are the top quarterbacks this season?", `{"teams":[]}`)

			Convey("Then the answer text is returned", func() {
				So(c.Configured(), ShouldBeTrue)
				So(answer, ShouldEqual, "Patrick Mahomes leads the league. Based on official NFL data.")
			})

			Convey("Then the request carries prompt, context and parameters", func() {
				got.mu.Lock()
				defer got.mu.Unlock()
				So(got.path, ShouldEqual, "/openai/v1/chat/completions")
				So(got.auth, ShouldEqual, "Bearer gsk-test")
				So(got.requestID, ShouldEqual, "req-7")
				So(got.body["model"], ShouldEqual, "llama3-70b-8192")
				So(got.body["temperature"], ShouldEqual, 0.7)
				So(got.body["max_tokens"], ShouldEqual, 512.0)

				msgs := got.body["messages"].([]any)
				So(msgs, ShouldHaveLength, 3)
				So(msgs[0].(map[string]any)["role"], ShouldEqual, "system")
				So(msgs[0].(map[string]any)["content"], ShouldEqual, llm.SystemPrompt)
				So(msgs[1].(map[string]any)["content"], ShouldEqual, llm.ContextPreamble+`{"teams":[]}`)
				So(msgs[2].(map[string]any)["role"], ShouldEqual, "user")
			})
		})

		Convey("When the backend rejects the call", func() {
			srv := completionServer(http.StatusUnauthorized, "", 0, got)
			defer srv.Close()
			c := llm.NewClient(llm.Config{BaseURL: srv.URL, APIKey: "bad", Model: "m", Timeout: 5 * time.Second})

			Convey("Then the fallback answer is returned", func() {
				So(c.Generate(context.Background(), "q", ""), ShouldEqual, llm.FallbackAnswer)
			})
		})

		Convey("When the backend is slower than the timeout", func() {
			srv := completionServer(http.StatusOK, "late", 500*time.Millisecond, got)
			defer srv.Close()
			c := llm.NewClient(llm.Config{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: 50 * time.Millisecond})

			Convey("Then the fallback answer is returned promptly", func() {
				start := time.Now()
				So(c.Generate(context.Background(), "q", ""), ShouldEqual, llm.FallbackAnswer)
				So(time.Since(start), ShouldBeLessThan, 450*time.Millisecond)
			})
		})

		Convey("When the backend returns empty content", func() {
			srv := completionServer(http.StatusOK, "  ", 0, got)
			defer srv.Close()
			c := llm.NewClient(llm.Config{BaseURL: srv.URL, APIKey: "k", Model: "m"})

			Convey("Then the fallback answer is returned", func() {
				So(c.Generate(context.Background(), "q", ""), ShouldEqual, llm.FallbackAnswer)
			})
		})

		Convey("When no API key is configured", func() {
			c := llm.NewClient(llm.Config{Model: "m"})

			Convey("Then no call is made and the fallback is returned", func() {
				So(c.Configured(), ShouldBeFalse)
				So(c.Generate(context.Background(), "q", "ctx"), ShouldEqual, llm.FallbackAnswer)
			})
		})
	})
}

func TestMessages(t *testing.T) {
	Convey("Given an empty context", t, func() {
		msgs := llm.Messages("Which teams are playing this weekend?", "")

		Convey("Then only the system prompt and question are sent", func() {
			So(msgs, ShouldHaveLength, 2)
		})
	})
}
