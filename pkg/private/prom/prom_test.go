// Copyright 2026 The unisencoder Authors
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

package prom_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/periscope-ps/unisencoder/pkg/private/prom"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
)

func TestResult(t *testing.T) {
	assert.Equal(t, prom.Success, prom.Result(nil, prom.ErrParse))
	assert.Equal(t, prom.ErrParse, prom.Result(serrors.New("bad"), prom.ErrParse))
	assert.Equal(t, prom.ErrTimeout,
		prom.Result(serrors.Wrap("posting", context.DeadlineExceeded), prom.ErrNetwork))
}
