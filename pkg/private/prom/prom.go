// Copyright 2017 ETH Zurich
// Copyright 2018 ETH Zurich, Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package prom contains the label names and values shared by the prometheus
// metrics of this module.
package prom

import (
	"context"
	"errors"

	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
)

// Common label values.
const (
	// LabelResult is the label for result classifications.
	LabelResult = "result"
	// LabelOperation is the label for the name of an executed operation.
	LabelOperation = "op"
)

// Common result values.
const (
	// Success is no error.
	Success = "ok_success"
	// ErrNotClassified is an error that is not further classified.
	ErrNotClassified = "err_not_classified"
	// ErrParse failed to parse the input.
	ErrParse = "err_parse"
	// ErrProcess is an error during processing.
	ErrProcess = "err_process"
	// ErrTimeout is a timeout error.
	ErrTimeout = "err_timeout"
	// ErrDB is used for db related errors.
	ErrDB = "err_db"
	// ErrNetwork is used for errors when sending something over the network.
	ErrNetwork = "err_network"
	// Skipped is used for work that was not necessary.
	Skipped = "skipped"
)

var (
	// DefaultLatencyBuckets 10ms, 20ms, 40ms, ... 5.12s, 10.24s.
	DefaultLatencyBuckets = []float64{0.01, 0.02, 0.04, 0.08, 0.16, 0.32, 0.64,
		1.28, 2.56, 5.12, 10.24}
)

// Result returns Success for a nil error, ErrTimeout for timeouts and
// fallback otherwise.
func Result(err error, fallback string) string {
	switch {
	case err == nil:
		return Success
	case serrors.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	default:
		return fallback
	}
}
