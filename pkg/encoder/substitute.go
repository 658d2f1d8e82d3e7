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

package encoder

import (
	"github.com/google/uuid"

	"github.com/periscope-ps/unisencoder/pkg/metrics"
)

const tokenPrefix = "unisencoder:ref:"

type pending struct {
	key   Key
	query string
}

func (st *State) newToken() string {
	return tokenPrefix + uuid.NewString()
}

// substitute replaces every registered token in v, which must be a tree of
// maps, slices and scalars, and returns the number of references left as
// query expressions. Only whole string values equal to a token are replaced.
func (st *State) substitute(v any) int {
	unresolved := 0
	var walk func(v any) any
	walk = func(v any) any {
		switch x := v.(type) {
		case map[string]any:
			for k, val := range x {
				x[k] = walk(val)
			}
		case []any:
			for i, val := range x {
				x[i] = walk(val)
			}
		case string:
			p, ok := st.pending[x]
			if !ok {
				return x
			}
			if ptr, ok := st.pointers[p.key]; ok {
				metrics.CounterInc(st.opts.metrics.references(resolvedPointer))
				return ptr
			}
			metrics.CounterInc(st.opts.metrics.references(resolvedQuery))
			unresolved++
			return p.query
		}
		return v
	}
	walk(v)
	return unresolved
}
