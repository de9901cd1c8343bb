// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// Code 返回 err 的错误码，nil 为 0，非本包错误为 errUnexpected 的错误码。
func Code(err error) int32 {
	if err == nil {
		return 0
	}
	if e, ok := errors.Cause(err).(stasisError); ok {
		return e.code
	}
	return errUnexpected.code
}

func IsRetryableErr(err error) bool {
	e, ok := errors.Cause(err).(stasisError)
	return ok && e.retriable
}

func GetErrorType(err error) ErrorType {
	if e, ok := errors.Cause(err).(stasisError); ok {
		return e.kind
	}
	return SystemError
}

// WrapErrAsInputError 把本包错误标记为输入错误，其他错误原样返回。
func WrapErrAsInputError(err error) error {
	if e, ok := err.(stasisError); ok {
		e.kind = InputError
		return e
	}
	return err
}

func WrapErrSerializerNotFound(typ any, msg ...string) error {
	return annotate(ErrSerializerNotFound, msg, kv("type", typ))
}

func WrapErrSerializerIndexOutOfRange(index uint32, size int, msg ...string) error {
	return annotate(ErrSerializerIndexOutOfRange, msg, outOfRange(index, size))
}

func WrapErrSerializerTypeMismatch(expected, actual any, msg ...string) error {
	return annotate(ErrSerializerTypeMismatch, msg, kv("expected", expected), kv("actual", actual))
}

func WrapErrReferenceDangling(ref uint32, registered int, msg ...string) error {
	return annotate(ErrReferenceDangling, msg, outOfRange(ref, registered))
}

func WrapErrReferenceTooDeep(depth int, msg ...string) error {
	return annotate(ErrReferenceTooDeep, msg, kv("depth", depth))
}

func WrapErrMalformedVarint(bits int, msg ...string) error {
	return annotate(ErrMalformedVarint, msg, kv("bits", bits))
}

func WrapErrDecodedLengthMismatch(expected, actual int, msg ...string) error {
	return annotate(ErrDecodedLengthMismatch, msg, kv("expected", expected), kv("actual", actual))
}

func WrapErrEnumOrdinalOutOfRange(enum any, ordinal uint32, size int) error {
	return annotate(ErrEnumOrdinalOutOfRange, nil, kv("enum", enum), outOfRange(ordinal, size))
}

func WrapErrStreamLengthInvalid(what string, length uint64, limit uint64) error {
	return annotate(ErrStreamLengthInvalid, nil, kv(what, length), fmt.Sprintf("limit=%d", limit))
}

func WrapErrSessionClosed(session string, msg ...string) error {
	return annotate(ErrSessionClosed, msg, kv("session", session))
}

func WrapErrPoolReleaseRejected(object any, msg ...string) error {
	return annotate(ErrPoolReleaseRejected, msg, kv("object", fmt.Sprintf("%T", object)))
}

// WrapErrIoFailed 包装底层读写错误，EOF 与 ErrUnexpectedEOF 归为 ErrIoUnexpectEOF。
// err 为 nil 时返回 nil。
func WrapErrIoFailed(err error, msg ...string) error {
	if err == nil {
		return nil
	}
	base := ErrIoFailed
	if errors.IsAny(err, io.EOF, io.ErrUnexpectedEOF) {
		base = ErrIoUnexpectEOF
	}
	base.msg += ": " + err.Error()
	return annotate(base, msg)
}

func WrapErrParameterInvalid[T any](expected, actual T, msg ...string) error {
	return annotate(ErrParameterInvalid, msg, kv("expected", expected), kv("actual", actual))
}

func WrapErrParameterInvalidMsg(format string, args ...any) error {
	return errors.Wrapf(ErrParameterInvalid, format, args...)
}

// annotate 把字段追加到错误信息的方括号中，msg 非空时再以 "->" 连接后包一层。
func annotate(base stasisError, msg []string, fields ...string) error {
	for _, f := range fields {
		base.msg += "[" + f + "]"
	}
	if len(msg) == 0 {
		return base
	}
	return errors.Wrap(base, strings.Join(msg, "->"))
}

func kv(name string, v any) string {
	return fmt.Sprintf("%s=%v", name, v)
}

func outOfRange(v any, upper int) string {
	return fmt.Sprintf("%v out of range [0, %d)", v, upper)
}
