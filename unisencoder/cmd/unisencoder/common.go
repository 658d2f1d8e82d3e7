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

package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"github.com/periscope-ps/unisencoder/pkg/encoder"
	"github.com/periscope-ps/unisencoder/pkg/encoder/perfsonar"
	"github.com/periscope-ps/unisencoder/pkg/encoder/rspec"
	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/log"
	"github.com/periscope-ps/unisencoder/pkg/metrics"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/private/credential"
	"github.com/periscope-ps/unisencoder/unisencoder/config"
)

// stdinPath is the file argument that reads the document from stdin.
const stdinPath = "-"

// appEnv holds the state shared by the subcommands. It is populated by setup
// once the flags are parsed.
type appEnv struct {
	viper *viper.Viper

	cfg      *config.Config
	registry *prometheus.Registry
	metrics  *encoder.Metrics
}

// setup loads the configuration, applies the flag and environment overrides
// and initializes logging.
func (e *appEnv) setup() error {
	cfg, err := config.Load(e.viper.GetString("config"))
	if err != nil {
		return err
	}
	if lvl := e.viper.GetString("log.console.level"); lvl != "" {
		cfg.Logging.Console.Level = lvl
	}
	if u := e.viper.GetString("unis.url"); u != "" {
		cfg.UNIS.URL = u
	}
	if err := cfg.Validate(); err != nil {
		return serrors.Wrap("validating overrides", err)
	}
	e.registry = prometheus.NewRegistry()
	counter := log.NewEntriesCounter(e.registry)
	if err := log.Setup(cfg.Logging, log.WithEntriesCounter(counter)); err != nil {
		return serrors.Wrap("initializing logging", err)
	}
	e.metrics = encoder.NewMetrics(metrics.WithRegistry(e.registry))
	e.cfg = cfg
	return nil
}

// exportMetrics writes the collected metrics to the configured textfile.
func (e *appEnv) exportMetrics() {
	if e.cfg == nil || e.cfg.Metrics.Textfile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(e.cfg.Metrics.Textfile, e.registry); err != nil {
		log.Error("Exporting metrics failed", "file", e.cfg.Metrics.Textfile, "err", err)
	}
}

func (e *appEnv) newEncoder(kind string) (*encoder.Encoder, error) {
	opts := append(e.cfg.Encoder.Options(), encoder.WithMetrics(e.metrics))
	switch kind {
	case rspec.Name:
		return rspec.New(opts...), nil
	case perfsonar.Name:
		return perfsonar.New(opts...), nil
	default:
		return nil, serrors.New("unsupported input type", "type", kind,
			"supported", []string{rspec.Name, perfsonar.Name})
	}
}

// inputFlags are the flags describing the input documents.
type inputFlags struct {
	kind     string
	sliceURN string
	cred     string
	cm       string
}

func (f *inputFlags) register(flags *pflag.FlagSet) {
	flags.StringVarP(&f.kind, "type", "t", "",
		"Input type (rspec3|ps)")
	flags.StringVar(&f.sliceURN, "slice-urn", "",
		"URN of the slice a manifest belongs to")
	flags.StringVar(&f.cred, "slice-cred", "",
		"Slice credential file (XML) to read the slice URN and UUID from")
	flags.StringVarP(&f.cm, "component-manager-id", "m", "",
		"URN of the component manager of an advertisement")
}

// params returns the encoding parameters. The slice identity is read from
// the credential if one is given.
func (f *inputFlags) params() (encoder.Params, error) {
	if f.sliceURN != "" && f.cred != "" {
		return encoder.Params{}, serrors.New("only one of --slice-urn and --slice-cred allowed")
	}
	p := encoder.Params{
		SliceURN:           f.sliceURN,
		ComponentManagerID: f.cm,
	}
	if f.cred != "" {
		s, err := credential.LoadFile(f.cred)
		if err != nil {
			return encoder.Params{}, err
		}
		p.SliceURN, p.SliceUUID = s.URN, s.UUID
	}
	return p, nil
}

// encoded is the outcome of encoding one input file.
type encoded struct {
	path   string
	result *encoder.Result
	err    error
}

// encodeAll encodes paths concurrently. Results are in the order of paths.
// Failures are reported per file.
func encodeAll(ctx context.Context, enc *encoder.Encoder, paths []string,
	params encoder.Params, workers int, stdin io.Reader) []encoded {

	out := make([]encoded, len(paths))
	var g errgroup.Group
	g.SetLimit(max(1, workers))
	for i, path := range paths {
		g.Go(func() error {
			defer log.HandlePanic()
			res, err := encodeFile(ctx, enc, path, params, stdin)
			out[i] = encoded{path: path, result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func encodeFile(ctx context.Context, enc *encoder.Encoder, path string,
	params encoder.Params, stdin io.Reader) (*encoder.Result, error) {

	var tree *source.Tree
	var err error
	if path == stdinPath {
		tree, err = source.Parse(stdin)
	} else {
		tree, err = source.ParseFile(path)
	}
	if err != nil {
		return nil, serrors.Wrap("reading input", err, "file", path)
	}
	ctx, logger := log.WithLabels(ctx, "file", path)
	res, err := enc.Encode(ctx, tree, params)
	if err != nil {
		return nil, serrors.Wrap("encoding", err, "file", path)
	}
	for _, d := range res.Diagnostics {
		logger.Debug("Diagnostic", "kind", d.Kind, "element", d.Element, "path", d.Path,
			"detail", d.Detail)
	}
	return res, nil
}

// writeDocument writes doc to w in the given format.
func writeDocument(w io.Writer, doc unis.Object, format string, indent int) error {
	var raw []byte
	var err error
	switch format {
	case "json":
		if indent > 0 {
			raw, err = json.MarshalIndent(doc, "", strings.Repeat(" ", indent))
		} else {
			raw, err = json.Marshal(doc)
		}
	case "yaml":
		raw, err = yaml.Marshal(doc)
	default:
		return serrors.New("output format not supported", "format", format)
	}
	if err != nil {
		return serrors.Wrap("marshalling document", err, "format", format)
	}
	if len(raw) == 0 || raw[len(raw)-1] != '\n' {
		raw = append(raw, '\n')
	}
	_, err = w.Write(raw)
	return err
}

// outputPath returns the file the document encoded from input is written to
// in dir.
func outputPath(dir, input, format string) string {
	base := "stdin"
	if input != stdinPath {
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	return filepath.Join(dir, base+"."+format)
}

func writeFile(path string, doc unis.Object, format string, indent int) error {
	f, err := os.Create(path)
	if err != nil {
		return serrors.Wrap("creating output file", err)
	}
	if err := writeDocument(f, doc, format, indent); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// argsOrStdin returns args, or the stdin marker if there are none.
func argsOrStdin(args []string) []string {
	if len(args) == 0 {
		return []string{stdinPath}
	}
	return args
}
