package events

import "time"

// DelegationStart is emitted when a gateway field begins delegating its
// selection to a subschema.
type DelegationStart struct {
	FieldName     string
	OperationType string
}

// DelegationFinish is emitted when a delegated execution returns.
type DelegationFinish struct {
	FieldName     string
	OperationType string
	Errors        []error
	Duration      time.Duration
}

// SubschemaRequestStart is emitted before a remote subschema HTTP request.
type SubschemaRequestStart struct {
	Endpoint string
	Query    string
}

// SubschemaRequestFinish is emitted after a remote subschema HTTP request.
type SubschemaRequestFinish struct {
	Endpoint   string
	Query      string
	StatusCode int
	Err        error
	Duration   time.Duration
}
