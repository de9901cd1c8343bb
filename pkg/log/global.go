package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logAt 使用全局 logger 输出，调用位置指向 Debug/Info 等函数的调用方。
func logAt(lvl zapcore.Level, msg string, fields []zap.Field) {
	if ce := L().WithOptions(zap.AddCallerSkip(2)).Check(lvl, msg); ce != nil {
		ce.Write(fields...)
	}
}

func Debug(msg string, fields ...zap.Field) { logAt(zap.DebugLevel, msg, fields) }

func Info(msg string, fields ...zap.Field) { logAt(zap.InfoLevel, msg, fields) }

func Warn(msg string, fields ...zap.Field) { logAt(zap.WarnLevel, msg, fields) }

func Error(msg string, fields ...zap.Field) { logAt(zap.ErrorLevel, msg, fields) }

// RatedDebug 在全局限流器允许时输出 Debug 日志。
func RatedDebug(cost float64, msg string, fields ...zap.Field) bool {
	if !R().CheckCredit(cost) {
		return false
	}
	logAt(zap.DebugLevel, msg, fields)
	return true
}

// With 基于当前全局 logger 创建 MLogger。
func With(fields ...zap.Field) *MLogger {
	return &MLogger{Logger: L().With(fields...)}
}
