// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

/*
Package geoprocessing runs ArcGIS geoprocessing tasks.

A Runner wraps one hydrated task. Tasks run either synchronously through
Execute or as server-side jobs through SubmitJob, after which the runner polls
the job until it reaches a terminal status:

	runner := geoprocessing.NewRunner(service, task, client, observer, settings)
	jobID, err := runner.SubmitJob(ctx, geoprocessing.Parameters{"Input_Features": features})

Every outcome is reported to the Observer as an Event, including failures
(EventTaskFailed). The synchronous return values mirror the events for
callers that wait on the result directly.

# Requests

Parameters are form-encoded. Requests whose GET URL would exceed
Settings.MaxURLLength (2000 characters by default) are sent as a POST to the
bare operation URL with the parameters in the body.

# Job State Machine

Each submitted job moves through explicit states:

	Submitted -> Polling -> Terminal
	    |           |
	    +-----------+----> Cancelled

Polls are driven by a Scheduler (time.AfterFunc in production, a manual
scheduler in tests) at Settings.PollInterval. A job leaves the active table
when it reaches Terminal or when the first tick after cancellation observes
the Cancelled state. Cancellation is cooperative, so at most one further poll
may already be in flight.

Finished jobs are kept in a bounded LRU for status and result lookups.

# Validation

Required input parameters must be present (non-nil) before any network call is
made; a missing one fails with ErrMissingRequiredParameter.
*/
package geoprocessing
