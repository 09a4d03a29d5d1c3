package tui

import "github.com/vito/progrock"

// MsgPlan lists the scenarios about to run and their active conditions.
type MsgPlan struct {
	Scenarios  []string
	Conditions map[string][]string
}

// MsgTapeUpdate wraps a raw update from the recorder.
type MsgTapeUpdate struct {
	Update *progrock.StatusUpdate
}

// MsgTapeEnded is sent when the tape stream has ended.
type MsgTapeEnded struct{}
