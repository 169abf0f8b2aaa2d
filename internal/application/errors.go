package application

import "errors"

var (
	ErrInvalidFeed      = errors.New("url did not return a readable feed")
	ErrInvalidSource    = errors.New("invalid source")
	ErrInvalidSetting   = errors.New("invalid setting")
	ErrInvalidKeyword   = errors.New("invalid keyword")
	ErrCycleInProgress  = errors.New("ingestion cycle already in progress")
	ErrSchedulerStarted = errors.New("scheduler already started")
)
