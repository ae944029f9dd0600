package params

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Logger(level string) (*zap.SugaredLogger, error) {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.DisableCaller = true
	zcfg.DisableStacktrace = true
	zcfg.Sampling = nil
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	loglevel := zapcore.InfoLevel
	if level != "" {
		if err := loglevel.Set(level); err != nil {
			return nil, fmt.Errorf("invalid log level: %s", level)
		}
	}
	zcfg.Level.SetLevel(loglevel)
	l, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize zap logger: %s", err)
	}
	return l.Sugar(), nil
}
