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

package config

const encoderSample = `
# UNIS schema version of the output (20120709|20140214) (default 20120709)
schema_version = "20120709"

# Fail on elements without a handler instead of reporting them.
# (default false)
fail_on_unhandled = false

# Size of the reference lookup cache. (default 1024)
lookup_cache_size = 1024

# Indentation of the JSON output. (default 2)
indent = 2

# Number of files encoded concurrently by encode and summary. (default 4)
workers = 4
`

const unisSample = `
# Base URL of the UNIS service. (default http://localhost:8888)
url = "http://localhost:8888"

# Collection the documents are posted to. (default topologies)
endpoint = "topologies"

# Timeout of a single upload. (default 10s)
timeout = "10s"
`

const dispatchSample = `
# Ledger of uploaded files. (default unisencoder.ledger.db)
ledger = "unisencoder.ledger.db"

# Number of files dispatched concurrently. (default 4)
workers = 4
`

const metricsSample = `
# File the metrics are written to, in the prometheus text format. Empty
# disables the export. (default "")
textfile = "/var/lib/node_exporter/unisencoder.prom"
`
