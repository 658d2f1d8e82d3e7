// Copyright 2019 Anapaya Systems
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

package serrors_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
)

type testErrType struct {
	msg string
}

func (e *testErrType) Error() string {
	return e.msg
}

type testToTempErr struct {
	msg     string
	timeout bool
	cause   error
}

func (e *testToTempErr) Error() string   { return e.msg }
func (e *testToTempErr) Timeout() bool   { return e.timeout }
func (e *testToTempErr) Temporary() bool { return e.timeout }
func (e *testToTempErr) Unwrap() error   { return e.cause }

func TestIsTimeout(t *testing.T) {
	assert.False(t, serrors.IsTimeout(serrors.New("no timeout")))
	wrapped := serrors.Wrap("timeout", &testToTempErr{msg: "to", timeout: true})
	assert.True(t, serrors.IsTimeout(wrapped))
	assert.True(t, serrors.IsTemporary(wrapped))
	notTimeout := serrors.Wrap("notimeout", &testToTempErr{
		msg:   "non timeout wraps timeout",
		cause: &testToTempErr{msg: "timeout", timeout: true},
	})
	assert.False(t, serrors.IsTimeout(notTimeout))
}

func TestWrap(t *testing.T) {
	testCases := map[string]func(string, error, ...any) error{
		"stack":    serrors.Wrap,
		"no stack": serrors.WrapNoStack,
	}
	for name, wrap := range testCases {
		t.Run(name, func(t *testing.T) {
			base := serrors.New("simple err")
			err := wrap("error", base, "someCtx", "someValue")
			assert.ErrorIs(t, err, base)
			assert.ErrorIs(t, err, err)
			assert.Equal(t, "error {someCtx=someValue}: simple err", err.Error())

			typed := &testErrType{msg: "test err"}
			var errAs *testErrType
			require.True(t, errors.As(wrap("error", typed), &errAs))
			assert.Equal(t, typed, errAs)
		})
	}
}

func TestJoin(t *testing.T) {
	sentinel := errors.New("sentinel")
	cause := &testErrType{msg: "cause"}
	err := serrors.JoinNoStack(sentinel, cause, "b", 2, "a", 1)
	assert.ErrorIs(t, err, sentinel)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "sentinel {a=1; b=2}: cause", err.Error())

	assert.Nil(t, serrors.Join(nil, nil))
	onlyBase := serrors.Join(sentinel, nil)
	assert.ErrorIs(t, onlyBase, sentinel)
	assert.Equal(t, "sentinel", onlyBase.Error())
}

func TestNew(t *testing.T) {
	err1 := serrors.New("err msg", "someCtx", "value")
	err2 := serrors.New("err msg", "someCtx", "value")
	assert.ErrorIs(t, err1, err1)
	assert.False(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err2, err1))
}

func TestList(t *testing.T) {
	var list serrors.List
	assert.Nil(t, list.ToError())
	list = serrors.List{serrors.New("err1"), errors.New("err2")}
	require.Error(t, list.ToError())
	assert.Equal(t, "[ err1; err2 ]", list.Error())
}

func TestAtMostOneStacktrace(t *testing.T) {
	err := errors.New("core")
	for i := range [10]int{} {
		err = serrors.Wrap("wrap", err, "level", i)
	}

	var b bytes.Buffer
	logger := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{MessageKey: "msg"}),
		zapcore.AddSync(&b),
		zapcore.DebugLevel,
	))
	logger.Sugar().Infow("Failed to do thing", "err", err)

	assert.Equal(t, 1, bytes.Count(b.Bytes(), []byte("stacktrace")))
}
