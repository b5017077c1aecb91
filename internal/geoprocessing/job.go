// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package geoprocessing

import (
	"fmt"
	"time"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
)

// JobState is the runner-side lifecycle state of a submitted job.
type JobState string

const (
	JobStateSubmitted JobState = "submitted"
	JobStatePolling   JobState = "polling"
	JobStateTerminal  JobState = "terminal"
	JobStateCancelled JobState = "cancelled"
)

// jobTransitions lists the legal moves out of each state.
var jobTransitions = map[JobState][]JobState{
	JobStateSubmitted: {JobStatePolling, JobStateCancelled, JobStateTerminal},
	JobStatePolling:   {JobStatePolling, JobStateTerminal, JobStateCancelled},
}

// IsFinal reports whether no further transitions are possible.
func (s JobState) IsFinal() bool {
	return s == JobStateTerminal || s == JobStateCancelled
}

// Job is a snapshot of one submitted job.
type Job struct {
	ID          string                      `json:"job_id"`
	TaskURL     string                      `json:"task_url"`
	State       JobState                    `json:"state"`
	Status      arcgis.JobStatus            `json:"status"`
	Polls       int                         `json:"polls"`
	Messages    []arcgis.GPMessage          `json:"messages,omitempty"`
	Results     map[string]arcgis.ResultRef `json:"results,omitempty"`
	Error       string                      `json:"error,omitempty"`
	SubmittedAt time.Time                   `json:"submitted_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// job is the mutable tracking record. All fields are guarded by Runner.mu.
type job struct {
	id     string
	state  JobState
	status arcgis.JobStatus
	polls  int
	// pollFailures counts consecutive failed status requests.
	pollFailures int
	info         *arcgis.JobInfo
	err          error
	timer        Timer
	submittedAt  time.Time
	updatedAt    time.Time
}

// transition moves the job to next, rejecting moves the state machine does
// not allow.
func (j *job) transition(next JobState, now time.Time) error {
	for _, allowed := range jobTransitions[j.state] {
		if allowed == next {
			j.state = next
			j.updatedAt = now
			return nil
		}
	}
	return fmt.Errorf("job %s: illegal transition %s -> %s", j.id, j.state, next)
}

func (j *job) snapshot(taskURL string) Job {
	snap := Job{
		ID:          j.id,
		TaskURL:     taskURL,
		State:       j.state,
		Status:      j.status,
		Polls:       j.polls,
		SubmittedAt: j.submittedAt,
		UpdatedAt:   j.updatedAt,
	}
	if j.info != nil {
		snap.Messages = append([]arcgis.GPMessage(nil), j.info.Messages...)
		if len(j.info.Results) > 0 {
			snap.Results = make(map[string]arcgis.ResultRef, len(j.info.Results))
			for k, v := range j.info.Results {
				snap.Results[k] = v
			}
		}
	}
	if j.err != nil {
		snap.Error = j.err.Error()
	}
	return snap
}
