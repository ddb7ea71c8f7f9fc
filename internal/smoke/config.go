// Package smoke drives a running gridiron service with the canonical NFL
// questions and checks that every answer is well formed.
package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Questions  []string      // Questions to ask; DefaultQuestions when empty
	Rounds     int           // Times each question is asked
	Workers    int           // Concurrent requests
	Timeout    time.Duration // HTTP request timeout
	ClearFirst bool          // Clear the service cache before the first round
	OutputFile string        // Where answers are written; skipped when empty
	Verbose    bool          // Log every answer
}

// DefaultQuestions are the example questions the service was built around.
func DefaultQuestions() []string {
	return []string{
		"Who are the top quarterbacks this season?",
		"What's the injury status for the Chiefs this week?",
		"Show me the Packers' upcoming schedule",
		"What's the depth chart for the Cowboys?",
		"Which teams are playing this weekend?",
	}
}

// QueryRequest mirrors the body of POST /nfl/query.
type QueryRequest struct {
	Query string `json:"query"`
}

// Answer mirrors the service response.
type Answer struct {
	Query       string   `json:"query"`
	Answer      string   `json:"answer"`
	DataSources []string `json:"data_sources"`
}

// Result records one question/answer exchange.
type Result struct {
	Round    int           `json:"round"`
	Question string        `json:"question"`
	Status   int           `json:"status"`
	Answer   Answer        `json:"answer"`
	Latency  time.Duration `json:"latency_ns"`
	Error    string        `json:"error,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	Asked     int
	Answered  int
	Fallbacks int
	Failed    int
	Cleared   int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// FallbackAnswer is what the service says when generation is unavailable.
const FallbackAnswer = "Sorry, I couldn't process your request at the moment."
