// Package web provides the HTTP surface of the workflow runner: manual run
// requests, execution history reads, and the scheduled batch endpoint.
package web

import "github.com/orbitflows/orbit/pkg/scheduler"

// RunWorkflowRequest is the body of a manual run request. The user id is the
// caller's identity as resolved by the fronting auth proxy.
type RunWorkflowRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// BatchResponse summarizes one cron sweep.
type BatchResponse struct {
	Ran       int                     `json:"ran"`
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
	Results   []scheduler.BatchResult `json:"results"`
}
