package services

import "errors"

var (
	// ErrRefreshInProgress is returned when a refresh is requested while another is running
	ErrRefreshInProgress = errors.New("data refresh already in progress")
)
