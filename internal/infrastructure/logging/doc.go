// Package logging wraps log/slog for Lumen Core: JSON or text output,
// level filtering, and default service/version fields on every entry,
// all driven by the logging section of config.yaml.
//
// Components take the shared *Logger (or a small interface over it) and
// tag their stream with With:
//
//	logger := logging.New(cfg.Logging, version)
//	bridgeLog := logger.With("component", "mqttlight")
//	bridgeLog.Info("bridge started", "qos", 1)
//
// Never log secrets: API tokens, vendor passwords, and JWT secrets stay
// out of log fields.
package logging
