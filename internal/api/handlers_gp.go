// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/arcgis-catalog/internal/geoprocessing"
)

// ExecuteTask runs a synchronous geoprocessing task and returns its results.
// The request blocks until the task completes or the execute timeout elapses.
func (h *Handler) ExecuteTask(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	runner, req, ok := h.resolveTask(rw, r)
	if !ok {
		return
	}

	result, err := runner.Execute(r.Context(), req.Parameters)
	if err != nil {
		respondError(rw, r, err)
		return
	}
	rw.Success(result)
}

// SubmitJob submits an asynchronous geoprocessing job and responds 202 with
// the job snapshot. Polling continues after the request returns.
func (h *Handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	runner, req, ok := h.resolveTask(rw, r)
	if !ok {
		return
	}

	jobID, err := runner.SubmitJob(r.Context(), req.Parameters)
	if err != nil {
		respondError(rw, r, err)
		return
	}

	job, ok := runner.Job(jobID)
	if !ok {
		// Closed between submit and lookup.
		respondError(rw, r, fmt.Errorf("%w: %s", geoprocessing.ErrUnknownJob, jobID))
		return
	}
	rw.Accepted(job)
}

// ListJobs returns the jobs still being polled, across all tasks.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.runners.ActiveJobs()
	if jobs == nil {
		jobs = []geoprocessing.Job{}
	}
	NewResponseWriter(w, r).Success(jobs)
}

// GetJob returns a snapshot of an active or recently finished job.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	_, job, ok := h.findJob(rw, r)
	if !ok {
		return
	}
	rw.Success(job)
}

// CancelJob stops polling a job. ArcGIS Server is not asked to cancel it.
// Cancelling a finished job succeeds without effect.
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	runner, job, ok := h.findJob(rw, r)
	if !ok {
		return
	}
	if err := runner.CancelJob(job.ID); err != nil {
		respondError(rw, r, err)
		return
	}
	if latest, ok := runner.Job(job.ID); ok {
		job = latest
	}
	rw.Success(job)
}

// GetJobResult fetches one output parameter of a job.
func (h *Handler) GetJobResult(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := ResultRequest{
		JobID: chi.URLParam(r, "jobID"),
		Param: chi.URLParam(r, "param"),
	}
	if !validateRequest(rw, &req) {
		return
	}
	runner, _, ok := h.findJob(rw, r)
	if !ok {
		return
	}

	value, err := runner.GetResultData(r.Context(), req.JobID, req.Param)
	if err != nil {
		respondError(rw, r, err)
		return
	}
	rw.Success(value)
}

// GetJobResultImage fetches one output parameter of a job rendered as a map
// image. Query: bbox=xmin,ymin,xmax,ymax, bbox_sr, width, height, format,
// dpi, transparent, image_sr.
func (h *Handler) GetJobResultImage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query := r.URL.Query()
	bbox, err := parseBBox(query.Get("bbox"), getIntParam(r, "bbox_sr", 0))
	if err != nil {
		rw.ValidationError(err.Error(), map[string]interface{}{"field": "bbox"})
		return
	}

	req := ResultImageQuery{
		ResultRequest: ResultRequest{
			JobID: chi.URLParam(r, "jobID"),
			Param: chi.URLParam(r, "param"),
		},
		BBox:        bbox,
		Width:       getIntParam(r, "width", 0),
		Height:      getIntParam(r, "height", 0),
		Format:      query.Get("format"),
		DPI:         getIntParam(r, "dpi", 0),
		Transparent: query.Get("transparent") == "true",
		ImageSR:     getIntParam(r, "image_sr", 0),
	}
	if !validateRequest(rw, &req) {
		return
	}
	runner, _, ok := h.findJob(rw, r)
	if !ok {
		return
	}

	image, err := runner.GetResultImage(r.Context(), req.JobID, req.Param, req.imageParameters())
	if err != nil {
		respondError(rw, r, err)
		return
	}
	rw.Success(image)
}

// resolveTask decodes a TaskRequest and returns the runner for its task.
// Returns false if a response was written.
func (h *Handler) resolveTask(rw *ResponseWriter, r *http.Request) (*geoprocessing.Runner, TaskRequest, bool) {
	var req TaskRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return nil, req, false
	}
	if !validateRequest(rw, &req) {
		return nil, req, false
	}
	if req.Parameters == nil {
		req.Parameters = geoprocessing.Parameters{}
	}

	runner, err := h.runners.Runner(r.Context(), req.TaskURL)
	if err != nil {
		respondError(rw, r, err)
		return nil, req, false
	}
	return runner, req, true
}

// findJob locates the {jobID} path parameter. Returns false if a response was written.
func (h *Handler) findJob(rw *ResponseWriter, r *http.Request) (*geoprocessing.Runner, geoprocessing.Job, bool) {
	jobID := chi.URLParam(r, "jobID")
	runner, job, ok := h.runners.FindJob(jobID)
	if !ok {
		rw.NotFound(fmt.Sprintf("job %q is not tracked", jobID))
		return nil, geoprocessing.Job{}, false
	}
	return runner, job, true
}
