package shard

//
//Copyright 2019 Telenor Digital AS
//
//Licensed under the Apache License, Version 2.0 (the "License");
//you may not use this file except in compliance with the License.
//You may obtain a copy of the License at
//
//http://www.apache.org/licenses/LICENSE-2.0
//
//Unless required by applicable law or agreed to in writing, software
//distributed under the License is distributed on an "AS IS" BASIS,
//WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//See the License for the specific language governing permissions and
//limitations under the License.
//
import (
	"errors"
	"fmt"
	"time"
)

// Stable error codes for routing and scatter-gather errors. The codes are
// plain strings so they can be used directly as labels in logs and metrics
// without any string parsing on the caller side.
const (
	CodeShardKeyEmpty        = "shard_key_empty"
	CodeShardNotFound        = "shard_not_found"
	CodeNoMatchingRange      = "no_matching_range"
	CodeRangeOverlap         = "range_overlap"
	CodeRegionNotFound       = "region_not_found"
	CodeFallbackCycle        = "fallback_cycle"
	CodeDirectoryKeyMissing  = "directory_key_missing"
	CodeCompoundKeyMismatch  = "compound_key_mismatch"
	CodeScatterTimeout       = "scatter_gather_timeout"
	CodePartialFailure       = "scatter_gather_partial_failure"
	CodeNoHealthyReplica     = "no_healthy_replica"
	CodeInvalidConfiguration = "invalid_configuration"
)

// Error is the error type used throughout the library. It carries a stable
// code plus the structured context (shard ID, key, elapsed time) so callers
// can log and branch on errors without parsing the message.
type Error struct {
	Code    string
	Message string
	ShardID string
	Key     string
	Elapsed time.Duration
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ShardID != "" {
		msg += fmt.Sprintf(" (shard=%s)", e.ShardID)
	}
	if e.Key != "" {
		msg += fmt.Sprintf(" (key=%s)", e.Key)
	}
	return msg
}

// Is matches errors by code so sentinel-style checks with errors.Is work
// on errors created at different call sites.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Code == e.Code
}

// NewError creates a new error with the given code.
func NewError(code string, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithShard returns a copy of the error tagged with a shard ID.
func (e *Error) WithShard(shardID string) *Error {
	ret := *e
	ret.ShardID = shardID
	return &ret
}

// WithKey returns a copy of the error tagged with the shard key that was
// being resolved.
func (e *Error) WithKey(key string) *Error {
	ret := *e
	ret.Key = key
	return &ret
}

// ErrorCode returns the code for an error created by this library, or an
// empty string for other errors.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
