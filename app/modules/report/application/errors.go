package reportservice

import "errors"

// ErrRecordStore marks a failure to persist a report or nickname. Grid
// failures arrive as *gridservice.SyncFailure instead.
var ErrRecordStore = errors.New("record store failure")
