package log

import (
	"bytes"

	"go.uber.org/zap/zaptest"
)

// testingWriter 把每条日志转给 t.Log。
type testingWriter struct {
	t        zaptest.TestingT
	markFail bool
}

func (w testingWriter) failing() testingWriter {
	w.markFail = true
	return w
}

func (w testingWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", bytes.TrimRight(p, "\n"))
	if w.markFail {
		w.t.Fail()
	}
	return len(p), nil
}

func (w testingWriter) Sync() error { return nil }
