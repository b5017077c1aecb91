// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package arcgis

// Execution types reported by GPServer and task endpoints.
const (
	ExecutionTypeSynchronous  = "esriExecutionTypeSynchronous"
	ExecutionTypeAsynchronous = "esriExecutionTypeAsynchronous"
)

// Parameter directions and kinds.
const (
	ParameterDirectionInput  = "esriGPParameterDirectionInput"
	ParameterDirectionOutput = "esriGPParameterDirectionOutput"

	ParameterTypeRequired = "esriGPParameterTypeRequired"
	ParameterTypeOptional = "esriGPParameterTypeOptional"
	ParameterTypeDerived  = "esriGPParameterTypeDerived"
)

// GPParameterInfo is one entry of a task's parameter schema.
type GPParameterInfo struct {
	Name          string   `json:"name"`
	DataType      string   `json:"dataType"`
	DisplayName   string   `json:"displayName"`
	Description   string   `json:"description,omitempty"`
	Direction     string   `json:"direction"`
	ParameterType string   `json:"parameterType"`
	Category      string   `json:"category,omitempty"`
	DefaultValue  any      `json:"defaultValue,omitempty"`
	Choices       []string `json:"choiceList,omitempty"`
}

// IsRequiredInput reports whether callers must supply the parameter.
func (p GPParameterInfo) IsRequiredInput() bool {
	return p.Direction == ParameterDirectionInput && p.ParameterType == ParameterTypeRequired
}

// GPTask is a hydrated geoprocessing task endpoint.
type GPTask struct {
	URL           string            `json:"url"`
	Name          string            `json:"name"`
	DisplayName   string            `json:"displayName"`
	Category      string            `json:"category,omitempty"`
	HelpURL       string            `json:"helpUrl,omitempty"`
	ExecutionType string            `json:"executionType"`
	Parameters    []GPParameterInfo `json:"parameters"`
}

// IsAsynchronous reports whether the task runs as a submitted job.
func (t *GPTask) IsAsynchronous() bool {
	return t.ExecutionType == ExecutionTypeAsynchronous
}

// Parameter looks up a declared parameter by name.
func (t *GPTask) Parameter(name string) (GPParameterInfo, bool) {
	for _, p := range t.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return GPParameterInfo{}, false
}

// RequiredInputs returns the names of all required input parameters in schema order.
func (t *GPTask) RequiredInputs() []string {
	var names []string
	for _, p := range t.Parameters {
		if p.IsRequiredInput() {
			names = append(names, p.Name)
		}
	}
	return names
}

// JobStatus is the esriJob* status reported for a submitted job.
type JobStatus string

const (
	JobStatusNew        JobStatus = "esriJobNew"
	JobStatusSubmitted  JobStatus = "esriJobSubmitted"
	JobStatusWaiting    JobStatus = "esriJobWaiting"
	JobStatusExecuting  JobStatus = "esriJobExecuting"
	JobStatusSucceeded  JobStatus = "esriJobSucceeded"
	JobStatusFailed     JobStatus = "esriJobFailed"
	JobStatusTimedOut   JobStatus = "esriJobTimedOut"
	JobStatusCancelling JobStatus = "esriJobCancelling"
	JobStatusCancelled  JobStatus = "esriJobCancelled"
	JobStatusDeleting   JobStatus = "esriJobDeleting"
	JobStatusDeleted    JobStatus = "esriJobDeleted"
)

// IsTerminal reports whether polling should stop at s.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed, JobStatusTimedOut, JobStatusCancelled, JobStatusDeleted:
		return true
	default:
		return false
	}
}

// GPMessage is a progress or diagnostic message attached to a job or execute result.
type GPMessage struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ResultRef points at one output parameter of a finished job.
type ResultRef struct {
	ParamURL string `json:"paramUrl"`
}

// JobInfo is the payload of submitJob and job status endpoints.
type JobInfo struct {
	JobID     string               `json:"jobId"`
	JobStatus JobStatus            `json:"jobStatus"`
	Messages  []GPMessage          `json:"messages,omitempty"`
	Results   map[string]ResultRef `json:"results,omitempty"`
	Inputs    map[string]ResultRef `json:"inputs,omitempty"`
}

// ResultValue is one output parameter value.
type ResultValue struct {
	ParamName string `json:"paramName"`
	DataType  string `json:"dataType"`
	Value     any    `json:"value"`
}

// ExecuteResult is the payload of a synchronous execute call.
type ExecuteResult struct {
	Results  []ResultValue `json:"results"`
	Messages []GPMessage   `json:"messages,omitempty"`
}
