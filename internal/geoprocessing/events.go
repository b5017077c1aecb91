// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package geoprocessing

import (
	"context"
	"time"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
)

// EventKind identifies a runner signal.
type EventKind string

const (
	EventExecuteCompleted EventKind = "execute_completed"
	EventJobSubmitted     EventKind = "job_submitted"
	EventJobStatus        EventKind = "job_status"
	EventJobCompleted     EventKind = "job_completed"
	EventResultData       EventKind = "result_data"
	EventResultImage      EventKind = "result_image"
	EventTaskFailed       EventKind = "task_failed"
)

// Operation names carried by failure events.
const (
	OpExecute     = "execute"
	OpSubmitJob   = "submitJob"
	OpJobStatus   = "jobStatus"
	OpResultData  = "resultData"
	OpResultImage = "resultImage"
)

// Event is one signal raised by a Runner. Only the fields relevant to Kind are set.
type Event struct {
	Kind      EventKind
	TaskURL   string
	Operation string
	JobID     string
	Status    arcgis.JobStatus
	Execute   *arcgis.ExecuteResult
	Job       *arcgis.JobInfo
	Result    *arcgis.ResultValue
	Image     *MapImage
	Err       error
	Time      time.Time
}

// Observer receives runner events. Notify is called synchronously from the
// goroutine that produced the event and must not block for long.
type Observer interface {
	Notify(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

// Notify calls f.
func (f ObserverFunc) Notify(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// Observers fans an event out to several observers in order.
type Observers []Observer

// Notify delivers ev to every non-nil observer.
func (o Observers) Notify(ctx context.Context, ev Event) {
	for _, obs := range o {
		if obs != nil {
			obs.Notify(ctx, ev)
		}
	}
}
