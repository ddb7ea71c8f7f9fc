// Package types contains wire types shared by the query pipeline and the API.
package types

import "strings"

// QueryRequest is the body of POST /nfl/query.
type QueryRequest struct {
	Query string `json:"query"`
}

// Normalized returns the question with surrounding whitespace removed.
func (r QueryRequest) Normalized() string {
	return strings.TrimSpace(r.Query)
}

// AnswerResponse is the assembled answer for one question.
type AnswerResponse struct {
	Query       string   `json:"query"`
	Answer      string   `json:"answer"`
	DataSources []string `json:"data_sources"`
}

// CacheClearResponse is returned by DELETE /nfl/cache.
type CacheClearResponse struct {
	Message string `json:"message"`
	Cleared int    `json:"cleared"`
}
