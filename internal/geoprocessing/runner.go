// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package geoprocessing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/cache"
	"github.com/tomtom215/arcgis-catalog/internal/hydrator"
	"github.com/tomtom215/arcgis-catalog/internal/logging"
	"github.com/tomtom215/arcgis-catalog/internal/metrics"
)

var (
	// ErrUnknownJob is returned for job IDs the runner is not tracking.
	ErrUnknownJob = errors.New("unknown job")

	// ErrNoJobID is returned when submitJob answers without a job ID.
	ErrNoJobID = errors.New("submitJob response carried no job id")

	// ErrRunnerClosed is returned by operations on a closed runner.
	ErrRunnerClosed = errors.New("runner closed")
)

// DefaultPollInterval is the job status poll interval.
const DefaultPollInterval = time.Second

// DefaultMaxPollFailures is how many consecutive failed status requests a
// job survives.
const DefaultMaxPollFailures = 3

// Settings configure a Runner.
type Settings struct {
	PollInterval   time.Duration
	MaxURLLength   int
	ExecuteTimeout time.Duration // zero leaves the caller's deadline alone
	Scheduler      Scheduler

	// MaxPollFailures consecutive failed status requests end tracking of a
	// job. A successful poll resets the count.
	MaxPollFailures int

	// FinishedJobs bounds how many finished jobs stay queryable, for FinishedTTL.
	FinishedJobs int
	FinishedTTL  time.Duration
}

// Runner executes one geoprocessing task.
//
// Thread Safety: Safe for concurrent use. Job state is guarded by a mutex;
// observers are notified outside of it.
type Runner struct {
	service  *arcgis.GeoprocessingService
	task     *arcgis.GPTask
	hydrator hydrator.Hydrator
	observer Observer
	settings Settings

	// ctx outlives individual requests; polls run under it and Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	jobs     map[string]*job
	finished *cache.LRU[Job]
	closed   bool
	now      func() time.Time
}

// NewRunner creates a runner for task, a task of service. Requests carry the
// service's proxy and current token, so a token refreshed in the catalog
// cache is picked up by the next request.
func NewRunner(service *arcgis.GeoprocessingService, task *arcgis.GPTask, h hydrator.Hydrator, observer Observer, settings Settings) *Runner {
	if settings.PollInterval <= 0 {
		settings.PollInterval = DefaultPollInterval
	}
	if settings.MaxURLLength <= 0 {
		settings.MaxURLLength = DefaultMaxURLLength
	}
	if settings.Scheduler == nil {
		settings.Scheduler = SystemScheduler
	}
	if settings.MaxPollFailures <= 0 {
		settings.MaxPollFailures = DefaultMaxPollFailures
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		service:  service,
		task:     task,
		hydrator: h,
		observer: observer,
		settings: settings,
		ctx:      ctx,
		cancel:   cancel,
		jobs:     make(map[string]*job),
		finished: cache.NewLRU[Job](settings.FinishedJobs, settings.FinishedTTL),
		now:      time.Now,
	}
}

// Task returns the task this runner executes.
func (r *Runner) Task() *arcgis.GPTask {
	return r.task
}

// Execute runs the task synchronously. The result is also delivered as
// EventExecuteCompleted; failures as EventTaskFailed.
func (r *Runner) Execute(ctx context.Context, params Parameters) (*arcgis.ExecuteResult, error) {
	if err := r.checkOpen(); err != nil {
		return nil, r.fail(ctx, OpExecute, "", err)
	}
	if err := ValidateParameters(r.task, params); err != nil {
		return nil, r.fail(ctx, OpExecute, "", err)
	}

	req, err := BuildRequest(r.task.URL+"/execute", params, r.proxy(), r.token(), r.settings.MaxURLLength)
	if err != nil {
		return nil, r.fail(ctx, OpExecute, "", err)
	}

	if r.settings.ExecuteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.settings.ExecuteTimeout)
		defer cancel()
	}

	result, err := hydrator.Hydrate[arcgis.ExecuteResult](ctx, r.hydrator, req)
	if err != nil {
		return nil, r.fail(ctx, OpExecute, "", err)
	}

	r.notify(ctx, Event{Kind: EventExecuteCompleted, Execute: result})
	return result, nil
}

// SubmitJob submits the task as an asynchronous job and starts polling it.
// Status changes arrive as EventJobStatus and the terminal status as a single
// EventJobCompleted.
func (r *Runner) SubmitJob(ctx context.Context, params Parameters) (string, error) {
	if err := r.checkOpen(); err != nil {
		return "", r.fail(ctx, OpSubmitJob, "", err)
	}
	if err := ValidateParameters(r.task, params); err != nil {
		return "", r.fail(ctx, OpSubmitJob, "", err)
	}

	req, err := BuildRequest(r.task.URL+"/submitJob", params, r.proxy(), r.token(), r.settings.MaxURLLength)
	if err != nil {
		return "", r.fail(ctx, OpSubmitJob, "", err)
	}

	info, err := hydrator.Hydrate[arcgis.JobInfo](ctx, r.hydrator, req)
	if err != nil {
		return "", r.fail(ctx, OpSubmitJob, "", err)
	}
	if info.JobID == "" {
		return "", r.fail(ctx, OpSubmitJob, "", ErrNoJobID)
	}

	now := r.now()
	j := &job{
		id:          info.JobID,
		state:       JobStateSubmitted,
		status:      info.JobStatus,
		info:        info,
		submittedAt: now,
		updatedAt:   now,
	}

	ctx = logging.ContextWithJob(ctx, r.task.URL, j.id)
	pollCtx := r.pollContext(ctx, j.id)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", r.fail(ctx, OpSubmitJob, info.JobID, ErrRunnerClosed)
	}
	r.jobs[j.id] = j
	r.schedule(pollCtx, j)
	r.mu.Unlock()

	metrics.GPActiveJobs.Inc()
	logging.Ctx(ctx).Info().Str("task", r.task.Name).Msg("Geoprocessing job submitted")
	r.notify(ctx, Event{Kind: EventJobSubmitted, JobID: j.id, Status: info.JobStatus, Job: info})

	return j.id, nil
}

// CancelJob marks a job cancelled. The next scheduled tick removes it without
// polling again.
func (r *Runner) CancelJob(jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[jobID]
	if !ok {
		if _, done := r.finished.Get(jobID); done {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
	}
	if j.state.IsFinal() {
		return nil
	}
	return j.transition(JobStateCancelled, r.now())
}

// Job returns a snapshot of an active or recently finished job.
func (r *Runner) Job(jobID string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if j, ok := r.jobs[jobID]; ok {
		return j.snapshot(r.task.URL), true
	}
	return r.finished.Get(jobID)
}

// ActiveJobs returns snapshots of the jobs still being tracked, oldest first.
func (r *Runner) ActiveJobs() []Job {
	r.mu.Lock()
	jobs := make([]Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		jobs = append(jobs, j.snapshot(r.task.URL))
	}
	r.mu.Unlock()

	sort.Slice(jobs, func(a, b int) bool {
		return jobs[a].SubmittedAt.Before(jobs[b].SubmittedAt)
	})
	return jobs
}

// GetResultData fetches an output parameter of a finished job.
func (r *Runner) GetResultData(ctx context.Context, jobID, paramName string) (*arcgis.ResultValue, error) {
	if err := r.checkResultRequest(jobID, paramName); err != nil {
		return nil, r.fail(ctx, OpResultData, jobID, err)
	}

	req := hydrator.Get(r.resultURL(jobID, paramName)+"?f=json", r.proxy(), r.token())
	result, err := hydrator.Hydrate[arcgis.ResultValue](ctx, r.hydrator, req)
	if err != nil {
		return nil, r.fail(ctx, OpResultData, jobID, err)
	}

	r.notify(ctx, Event{Kind: EventResultData, JobID: jobID, Result: result})
	return result, nil
}

// GetResultImage fetches an output parameter of a finished job rendered as a map image.
func (r *Runner) GetResultImage(ctx context.Context, jobID, paramName string, image ImageParameters) (*MapImage, error) {
	if err := r.checkResultRequest(jobID, paramName); err != nil {
		return nil, r.fail(ctx, OpResultImage, jobID, err)
	}

	query := image.Values()
	query.Set("f", "json")
	req := hydrator.Get(r.resultURL(jobID, paramName)+"?"+query.Encode(), r.proxy(), r.token())

	result, err := hydrator.Hydrate[resultImage](ctx, r.hydrator, req)
	if err != nil {
		return nil, r.fail(ctx, OpResultImage, jobID, err)
	}
	if result.Value.MapImage.Href == "" {
		return nil, r.fail(ctx, OpResultImage, jobID, fmt.Errorf("result %s is not a map image", paramName))
	}

	img := result.Value.MapImage
	r.notify(ctx, Event{Kind: EventResultImage, JobID: jobID, Image: &img})
	return &img, nil
}

// Close stops polling every active job. Closed runners reject new work.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	active := len(r.jobs)
	for id, j := range r.jobs {
		if j.timer != nil {
			j.timer.Stop()
		}
		delete(r.jobs, id)
	}
	r.mu.Unlock()

	r.cancel()
	metrics.GPActiveJobs.Sub(float64(active))
}

// poll is one scheduler tick for jobID.
func (r *Runner) poll(ctx context.Context, jobID string) {
	r.mu.Lock()
	j, ok := r.jobs[jobID]
	if !ok {
		r.mu.Unlock()
		return
	}
	if j.state == JobStateCancelled {
		r.retire(j)
		r.mu.Unlock()
		logging.Ctx(ctx).Info().Msg("Geoprocessing job cancelled, polling stopped")
		return
	}
	if err := j.transition(JobStatePolling, r.now()); err != nil {
		r.mu.Unlock()
		logging.Ctx(ctx).Error().Err(err).Msg("Job state machine rejected poll")
		return
	}
	j.polls++
	r.mu.Unlock()

	metrics.GPJobPolls.Inc()
	req := hydrator.Get(r.task.URL+"/jobs/"+url.PathEscape(jobID)+"?f=json", r.proxy(), r.token())
	info, err := hydrator.Hydrate[arcgis.JobInfo](ctx, r.hydrator, req)

	r.mu.Lock()
	if j.state == JobStateCancelled || r.closed {
		// Cancelled while the poll was in flight.
		if !r.closed {
			r.retire(j)
		}
		r.mu.Unlock()
		return
	}
	if err != nil {
		j.pollFailures++
		if j.pollFailures < r.settings.MaxPollFailures {
			failures := j.pollFailures
			r.schedule(ctx, j)
			r.mu.Unlock()
			logging.Ctx(ctx).Warn().Err(err).
				Int("failures", failures).
				Int("max_failures", r.settings.MaxPollFailures).
				Msg("Job status request failed, retrying")
			return
		}
		j.err = err
		_ = j.transition(JobStateTerminal, r.now())
		r.retire(j)
		r.mu.Unlock()
		r.fail(ctx, OpJobStatus, jobID, err)
		return
	}

	j.pollFailures = 0
	j.info = info
	j.status = info.JobStatus
	j.updatedAt = r.now()
	terminal := info.JobStatus.IsTerminal()
	if terminal {
		_ = j.transition(JobStateTerminal, r.now())
		r.retire(j)
	} else {
		r.schedule(ctx, j)
	}
	r.mu.Unlock()

	r.notify(ctx, Event{Kind: EventJobStatus, JobID: jobID, Status: info.JobStatus, Job: info})
	if terminal {
		logging.Ctx(ctx).Info().Str("status", string(info.JobStatus)).Msg("Geoprocessing job finished")
		r.notify(ctx, Event{Kind: EventJobCompleted, JobID: jobID, Status: info.JobStatus, Job: info})
	}
}

// schedule arms the next tick for j. Caller holds r.mu.
func (r *Runner) schedule(ctx context.Context, j *job) {
	id := j.id
	j.timer = r.settings.Scheduler.AfterFunc(r.settings.PollInterval, func() {
		r.poll(ctx, id)
	})
}

// retire moves j from the active table to the finished jobs. Caller holds r.mu.
func (r *Runner) retire(j *job) {
	if j.timer != nil {
		j.timer.Stop()
		j.timer = nil
	}
	delete(r.jobs, j.id)
	r.finished.Add(j.id, j.snapshot(r.task.URL))
	metrics.GPActiveJobs.Dec()
}

// pollContext detaches polling from the submitting request while keeping its
// correlation ID and job fields for logs.
func (r *Runner) pollContext(ctx context.Context, jobID string) context.Context {
	pollCtx := r.ctx
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		pollCtx = logging.ContextWithCorrelationID(pollCtx, id)
	}
	return logging.ContextWithJob(pollCtx, r.task.URL, jobID)
}

func (r *Runner) checkOpen() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRunnerClosed
	}
	return nil
}

func (r *Runner) checkResultRequest(jobID, paramName string) error {
	if strings.TrimSpace(jobID) == "" {
		return fmt.Errorf("%w: empty job id", ErrUnknownJob)
	}
	if _, ok := r.task.Parameter(paramName); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, paramName)
	}
	return nil
}

func (r *Runner) resultURL(jobID, paramName string) string {
	return r.task.URL + "/jobs/" + url.PathEscape(jobID) + "/results/" + url.PathEscape(paramName)
}

func (r *Runner) proxy() string {
	if r.service == nil {
		return ""
	}
	return r.service.ProxyURL
}

func (r *Runner) token() string {
	if r.service == nil {
		return ""
	}
	return r.service.Token().Value
}

// fail reports err as EventTaskFailed and returns it.
func (r *Runner) fail(ctx context.Context, op, jobID string, err error) error {
	logging.Ctx(logging.ContextWithJob(ctx, r.task.URL, jobID)).Warn().Err(err).Str("operation", op).Msg("Geoprocessing task failed")
	r.notify(ctx, Event{Kind: EventTaskFailed, Operation: op, JobID: jobID, Err: err})
	return err
}

func (r *Runner) notify(ctx context.Context, ev Event) {
	ev.TaskURL = r.task.URL
	if ev.Time.IsZero() {
		ev.Time = r.now()
	}
	metrics.GPEvents.WithLabelValues(string(ev.Kind)).Inc()
	if r.observer != nil {
		r.observer.Notify(ctx, ev)
	}
}
