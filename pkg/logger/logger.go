package logger

import (
	"cryptograph/conf"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 基于zap的日志封装，文件输出走lumberjack滚动

var (
	l      *zap.Logger
	s      *zap.SugaredLogger
	mu     sync.Mutex
	inited bool
)

func init() {
	// 未初始化时兜底到控制台，避免测试里空指针
	l, _ = zap.NewDevelopment(zap.AddCallerSkip(1))
	s = l.Sugar()
}

func InitLogger(cfg *conf.LogConfig, appName string) {
	mu.Lock()
	defer mu.Unlock()
	if inited {
		return
	}

	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	if cfg.TimeFormat != "" {
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)
	} else {
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var cores []zapcore.Core
	if cfg.FileName != "" {
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FileName,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  cfg.LocalTime,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, level))
	}
	if cfg.Console || cfg.FileName == "" {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stdout), level))
	}

	l = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)).
		With(zap.String("app", appName))
	s = l.Sugar()
	inited = true
}

// Pair 构造一个结构化字段
func Pair(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}

func Debug(msg string, fields ...zap.Field) { l.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { l.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { l.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { l.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { l.Fatal(msg, fields...) }

func Debugf(format string, args ...interface{}) { s.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { s.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { s.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { s.Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { s.Fatalf(format, args...) }

// Sync flush缓冲的日志
func Sync() {
	_ = l.Sync()
}
