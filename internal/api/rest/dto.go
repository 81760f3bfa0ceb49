package rest

import (
	"time"
)

type SubmitRunRequest struct {
	Pipeline string   `json:"pipeline"`
	Nodes    []string `json:"nodes,omitempty"`
}

type SubmitRunResponse struct {
	RunID       string    `json:"run_id"`
	Pipeline    string    `json:"pipeline"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	Links       Links     `json:"links"`
}

type Links struct {
	Self string `json:"self"`
}

type GetRunResponse struct {
	RunID      string         `json:"run_id"`
	Pipeline   string         `json:"pipeline"`
	Status     string         `json:"status"`
	Nodes      []string       `json:"nodes"`
	Progress   ProgressInfo   `json:"progress"`
	Outputs    []string       `json:"outputs"`
	Timestamps TimestampsInfo `json:"timestamps"`
	Error      string         `json:"error,omitempty"`
}

type ProgressInfo struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

type TimestampsInfo struct {
	Submitted time.Time  `json:"submitted"`
	Started   *time.Time `json:"started"`
	Completed *time.Time `json:"completed"`
}

type ListRunsResponse struct {
	Runs       []RunSummary `json:"runs"`
	Total      int          `json:"total"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
	NextOffset *int         `json:"next_offset,omitempty"`
}

type RunSummary struct {
	RunID       string     `json:"run_id"`
	Pipeline    string     `json:"pipeline"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type ListPipelinesResponse struct {
	Pipelines []PipelineSummary `json:"pipelines"`
}

type PipelineSummary struct {
	Name   string   `json:"name"`
	Nodes  []string `json:"nodes"`
	Inputs []string `json:"inputs"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
