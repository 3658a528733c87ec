package models

// RunStatus is the outcome of a report run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// DataSource names an upstream API.
type DataSource string

const (
	SourceHDX      DataSource = "hdx"
	SourceMixpanel DataSource = "mixpanel"
)
