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
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := errors.Wrap(WrapErrSerializerNotFound("main.Foo"), "resolve")
	s.ErrorIs(err, ErrSerializerNotFound)
	s.Equal(int32(100), Code(err))
	s.Equal(errUnexpected.code, Code(errors.New("plain")))
	s.Equal(int32(0), Code(nil))

	renamed := define(ErrSerializerNotFound.code, "renamed", SystemError)
	s.True(renamed.Is(ErrSerializerNotFound))
	s.False(renamed.Is(ErrSessionClosed))
}

func (s *ErrSuite) TestWrap() {
	cases := []struct {
		err  error
		base error
	}{
		{WrapErrSerializerNotFound("main.Foo", "write"), ErrSerializerNotFound},
		{WrapErrSerializerIndexOutOfRange(7, 3), ErrSerializerIndexOutOfRange},
		{WrapErrSerializerTypeMismatch("int32", "string"), ErrSerializerTypeMismatch},
		{WrapErrReferenceDangling(4, 2), ErrReferenceDangling},
		{WrapErrReferenceTooDeep(1025), ErrReferenceTooDeep},
		{WrapErrMalformedVarint(32), ErrMalformedVarint},
		{WrapErrDecodedLengthMismatch(3, 2), ErrDecodedLengthMismatch},
		{WrapErrEnumOrdinalOutOfRange("Color", 9, 3), ErrEnumOrdinalOutOfRange},
		{WrapErrStreamLengthInvalid("bytes", 10, 5), ErrStreamLengthInvalid},
		{WrapErrSessionClosed("writer"), ErrSessionClosed},
		{WrapErrPoolReleaseRejected([]byte{}), ErrPoolReleaseRejected},
		{WrapErrParameterInvalid(1, 2), ErrParameterInvalid},
		{WrapErrParameterInvalidMsg("bad %s", "thing"), ErrParameterInvalid},
	}
	for _, c := range cases {
		s.ErrorIs(c.err, c.base)
	}

	s.NotErrorIs(WrapErrSessionClosed("reader"), ErrSerializerNotFound)
	s.Contains(WrapErrSerializerIndexOutOfRange(7, 3).Error(), "7 out of range [0, 3)")
	s.Contains(WrapErrSerializerNotFound("main.Foo", "write", "field").Error(), "write->field")
	s.Contains(WrapErrStreamLengthInvalid("bytes", 10, 5).Error(), "[bytes=10][limit=5]")
}

func (s *ErrSuite) TestIoFailed() {
	s.Nil(WrapErrIoFailed(nil))
	s.ErrorIs(WrapErrIoFailed(io.EOF), ErrIoUnexpectEOF)
	s.ErrorIs(WrapErrIoFailed(io.ErrUnexpectedEOF, "read header"), ErrIoUnexpectEOF)

	err := WrapErrIoFailed(errors.New("disk on fire"))
	s.ErrorIs(err, ErrIoFailed)
	s.NotErrorIs(err, ErrIoUnexpectEOF)
	s.Contains(err.Error(), "disk on fire")
}

func (s *ErrSuite) TestRetriable() {
	s.False(IsRetryableErr(WrapErrMalformedVarint(64)))
	s.False(IsRetryableErr(WrapErrReferenceDangling(1, 0)))
	s.False(IsRetryableErr(errors.New("plain")))
}

func (s *ErrSuite) TestErrorType() {
	s.Equal(SystemError, GetErrorType(ErrSessionClosed))
	s.Equal(InputError, GetErrorType(errors.Wrap(WrapErrMalformedVarint(32), "read header")))
	s.Equal(InputError, GetErrorType(WrapErrIoFailed(io.EOF)))
	s.Equal(SystemError, GetErrorType(errors.New("plain")))

	s.Equal(InputError, GetErrorType(WrapErrAsInputError(ErrSerializerNotFound)))
	s.Equal(SystemError, GetErrorType(ErrSerializerNotFound))
	s.Equal("input_error", InputError.String())
	s.Equal("system_error", SystemError.String())
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  = errors.New("third")
	)

	s.Nil(Combine(nil, nil))
	s.Equal(errFirst, Combine(nil, errFirst))

	err := Combine(errFirst, errSecond)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.False(errors.Is(err, errThird))

	err = Combine(errFirst, nil, errSecond, errThird)
	s.True(errors.Is(err, errThird))
	s.Equal("first: second: third", err.Error())
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}
