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
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// ErrorType 区分调用方输入（损坏的流、非法参数）引起的错误与自身错误。
type ErrorType int32

const (
	SystemError ErrorType = iota
	InputError
)

func (t ErrorType) String() string {
	if t == InputError {
		return "input_error"
	}
	return "system_error"
}

// 错误码按类别分段：1xx 注册表，2xx 引用，3xx 线格式，4xx 会话，5xx 对象池，
// 10xx IO，11xx 参数。新增前先确认现有错误是否够用。
var (
	ErrSerializerNotFound        = define(100, "no serializer found", SystemError)
	ErrSerializerIndexOutOfRange = define(101, "serializer index out of range", InputError)
	ErrSerializerTypeMismatch    = define(102, "serializer type mismatch", SystemError)

	ErrReferenceDangling = define(200, "dangling reference", InputError)
	ErrReferenceTooDeep  = define(201, "object graph too deep or self-referencing", SystemError)

	ErrMalformedVarint       = define(300, "malformed varint", InputError)
	ErrDecodedLengthMismatch = define(301, "decoded length mismatch", InputError)
	ErrEnumOrdinalOutOfRange = define(302, "enum ordinal out of range", InputError)
	ErrStreamLengthInvalid   = define(303, "invalid length in stream", InputError)

	ErrSessionClosed = define(400, "session closed", SystemError)

	ErrPoolReleaseRejected = define(500, "pool rejected released object", SystemError)

	ErrIoFailed      = define(1001, "IO failed", SystemError)
	ErrIoUnexpectEOF = define(1002, "unexpected EOF", InputError)

	ErrParameterInvalid = define(1100, "invalid parameter", InputError)

	// 仅用于把未知错误映射为错误码，不导出。
	errUnexpected = define(1<<16-1, "unexpected error", SystemError)
)

// stasisError 以错误码判等，msg 可以携带上下文字段而不影响 errors.Is。
type stasisError struct {
	code      int32
	msg       string
	kind      ErrorType
	retriable bool
}

func define(code int32, msg string, kind ErrorType) stasisError {
	return stasisError{code: code, msg: msg, kind: kind}
}

func (e stasisError) Error() string { return e.msg }

func (e stasisError) Is(target error) bool {
	other, ok := errors.Cause(target).(stasisError)
	return ok && other.code == e.code
}

// multiErrors 的 Unwrap 链依次指向后面的错误，最后一个视为根因。
type multiErrors []error

func (m multiErrors) Error() string {
	msg := m[0].Error()
	for _, err := range m[1:] {
		msg += ": " + err.Error()
	}
	return msg
}

func (m multiErrors) Unwrap() error {
	switch len(m) {
	case 0, 1:
		return nil
	case 2:
		return m[1]
	default:
		return m[1:]
	}
}

func (m multiErrors) Is(target error) bool {
	return lo.ContainsBy(m, func(err error) bool { return errors.Is(err, target) })
}

// Combine 合并多个错误并跳过 nil，全部为 nil 时返回 nil。
func Combine(errs ...error) error {
	errs = lo.Compact(errs)
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return multiErrors(errs)
	}
}
