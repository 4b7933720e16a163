package logger

import "strings"

// Level names as they appear in the level field.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

var allowedLevels = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

// closedEnums lists fields whose values come from a fixed set.
var closedEnums = map[string]map[string]string{
	"outcome": {
		"ok":           "ok",
		"fail":         "fail",
		"cancelled":    "cancelled",
		"rate_limited": "rate_limited",
	},
	"mode": {
		"order":    "order",
		"admin":    "admin",
		"longpoll": "longpoll",
		"polling":  "longpoll",
		"webhook":  "webhook",
	},
}

func normalizeLevel(level string) string {
	if level == "" {
		return LevelInfo
	}
	if mapped, ok := allowedLevels[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

// normalizeStatus lowercases s. Unlike closed enums, unknown statuses are kept.
func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func lookupEnum(allowed map[string]string, v string) (string, bool) {
	val, ok := allowed[strings.ToLower(strings.TrimSpace(v))]
	return val, ok
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"mode",
	"state",
	"next_state",
	"op",
	"cb_key",
	"outcome",
	"duration_ms",
	"order_id",
	"order_ref",
	"direction",
	"car",
	"name",
	"count",
	"messages",
	"kb",
	"payload",
	"username",
	"listen",
	"public_url",
	"http_code",
	"db",
	"db_driver",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
	"rate_limited",
	"queued",
}
