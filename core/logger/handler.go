package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

var errNoWriter = errors.New("logger: writer not initialized")

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders every record as one flat line: nested groups
// become dotted keys and well-known keys lead in keyOrder.
type structuredHandler struct {
	cfg    handlerConfig
	prefix string
	attrs  []slog.Attr
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errNoWriter
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC()

	rec := record{
		"ts":    ts.Truncate(time.Millisecond).Format(timeFormatMillis),
		"level": normalizeLevel(r.Level.String()),
	}
	if h.cfg.format == formatJSON {
		rec["ts_unix_nano"] = ts.UnixNano()
	}
	for _, a := range h.attrs {
		rec.add(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.add(h.scoped(a))
		return true
	})
	addContextFields(ctx, rec)
	rec.finish(r.Message, h.cfg.format == formatJSON)

	var line []byte
	if h.cfg.format == formatJSON {
		var err error
		if line, err = rec.json(h.cfg.keyOrder); err != nil {
			return err
		}
	} else {
		line = rec.kv(h.cfg.keyOrder)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, h.scoped(a))
	}
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// scoped qualifies a with the handler's open groups.
func (h *structuredHandler) scoped(a slog.Attr) slog.Attr {
	if h.prefix == "" {
		return a
	}
	if a.Key == "" {
		a.Key = strings.TrimSuffix(h.prefix, ".")
		return a
	}
	a.Key = h.prefix + a.Key
	return a
}

// record holds one log line while it is being assembled.
type record map[string]any

// add flattens a into r; group members are joined with dots.
func (r record) add(a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			if a.Key != "" {
				child.Key = a.Key + "." + child.Key
			}
			r.add(child)
		}
		return
	}
	if a.Key == "" {
		return
	}
	key, val, ok := plainValue(a.Key, v)
	if ok {
		r[key] = val
	}
}

// finish fills event and component defaults, compacts the rid, normalizes
// enumerations and drops empty values.
func (r record) finish(msg string, keepFullRID bool) {
	if rid := r.str("rid"); rid != "" {
		if compact := CompactRID(rid); compact != rid {
			if _, ok := r["rid_full"]; keepFullRID && !ok {
				r["rid_full"] = rid
			}
			r["rid"] = compact
		}
	}
	if r.str("event") == "" {
		r["event"] = firstNonEmpty(msg, "unknown")
	}
	if r.str("component") == "" {
		r["component"] = "app"
	}

	r["level"] = normalizeLevel(r.str("level"))
	if s := r.str("status"); s != "" {
		r["status"] = normalizeStatus(s)
	}
	// Unknown values of closed sets are dropped rather than logged verbatim.
	for key, allowed := range closedEnums {
		v := r.str(key)
		if v == "" {
			continue
		}
		if known, ok := lookupEnum(allowed, v); ok {
			r[key] = known
		} else {
			delete(r, key)
		}
	}

	for k, v := range r {
		if v == nil || v == "" {
			delete(r, k)
		}
	}
}

func (r record) str(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func plainValue(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}

	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case time.Duration:
		return durationKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return key, x.String(), true
	default:
		return key, fmt.Sprint(x), true
	}
}

// durationKey renames a duration attr so its unit shows: duration becomes
// duration_ms and lock_wait becomes lock_wait_ms.
func durationKey(key string) string {
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
