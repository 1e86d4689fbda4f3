package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/estimates-backend/api/responses"
	pkgerrors "github.com/angelmondragon/estimates-backend/pkg/errors"
	"github.com/angelmondragon/estimates-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/estimates-backend/pkg/redis"
)

const (
	idempotencyHeader      = "Idempotency-Key"
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
	idempotencyLockTTL     = 30 * time.Second
)

type routeMatcher func(string) bool

type idempotencyRule struct {
	method   string
	matcher  routeMatcher
	critical bool
}

// Operations that allocate a reference number. Replaying them would burn a
// second number, so they require an Idempotency-Key.
var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matcher: matchExact("/api/v1/estimates")},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/estimates/", "/duplicate")},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/estimates/", "/convert"), critical: true},
}

type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        []byte            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// replayedHeaders are copied from the original response into the record.
var replayedHeaders = []string{"Content-Type", "Location"}

// Idempotency replays the stored response of a previous request carrying the
// same Idempotency-Key. ttl bounds how long responses are kept; critical
// routes keep theirs for at least a week.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	g := &idempotencyGuard{store: store, logg: logg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := routeRule(r.Method, r.URL.Path)
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			recordTTL := ttl
			if rule.critical && recordTTL < criticalIdempotencyTTL {
				recordTTL = criticalIdempotencyTTL
			}
			g.serve(w, r, next, recordTTL)
		})
	}
}

type idempotencyGuard struct {
	store pkgredis.IdempotencyStore
	logg  *logger.Logger
}

func (g *idempotencyGuard) serve(w http.ResponseWriter, r *http.Request, next http.Handler, ttl time.Duration) {
	ctx := r.Context()
	clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if clientKey == "" {
		responses.WriteError(ctx, g.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		responses.WriteError(ctx, g.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	hash := hashBody(body)
	key := g.store.IdempotencyKey(r.Method+"|"+r.URL.Path, clientKey)

	if g.replayStored(ctx, w, key, hash) {
		return
	}

	lockKey := g.store.LockKey(key)
	acquired, err := g.store.SetNX(ctx, lockKey, hash, idempotencyLockTTL)
	if err != nil {
		responses.WriteError(ctx, g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock idempotency key"))
		return
	}
	if !acquired {
		responses.WriteError(ctx, g.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is in progress"))
		return
	}
	defer func() {
		if err := g.store.Del(context.WithoutCancel(ctx), lockKey); err != nil {
			g.logError(ctx, "idempotency.unlock_failed", err)
		}
	}()

	// A concurrent request may have finished between the lookup and the lock.
	if g.replayStored(ctx, w, key, hash) {
		return
	}

	capture := &responseCapture{ResponseWriter: w}
	next.ServeHTTP(capture, r)

	// Server failures are retryable, so they are not pinned to the key.
	if capture.statusCode() >= http.StatusInternalServerError {
		return
	}
	g.persist(ctx, key, capture.record(hash), ttl)
}

// replayStored answers from a stored record when one exists for key and
// reports whether the response was written.
func (g *idempotencyGuard) replayStored(ctx context.Context, w http.ResponseWriter, key, hash string) bool {
	record, err := g.lookup(ctx, key)
	if err != nil {
		responses.WriteError(ctx, g.logg, w, err)
		return true
	}
	if record == nil {
		return false
	}
	if record.RequestHash != hash {
		responses.WriteError(ctx, g.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return true
	}
	record.replay(w)
	return true
}

func (g *idempotencyGuard) lookup(ctx context.Context, key string) (*idempotencyRecord, error) {
	stored, err := g.store.Get(ctx, key)
	if errors.Is(err, redis.Nil) || (err == nil && stored == "") {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return &record, nil
}

func (g *idempotencyGuard) persist(ctx context.Context, key string, record idempotencyRecord, ttl time.Duration) {
	payload, err := json.Marshal(record)
	if err != nil {
		g.logError(ctx, "idempotency.encode_failed", err)
		return
	}
	if _, err := g.store.SetNX(ctx, key, string(payload), ttl); err != nil {
		g.logError(ctx, "idempotency.persist_failed", err)
	}
}

func (g *idempotencyGuard) logError(ctx context.Context, msg string, err error) {
	if g.logg != nil {
		g.logg.Error(ctx, msg, err)
	}
}

func (rec *idempotencyRecord) replay(w http.ResponseWriter) {
	for name, value := range rec.Headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(rec.Status)
	_, _ = w.Write(rec.Body)
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func routeRule(method, path string) (idempotencyRule, bool) {
	if path == "" {
		return idempotencyRule{}, false
	}
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.matcher(path) {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

func matchExact(path string) routeMatcher {
	return func(value string) bool {
		return strings.TrimSuffix(value, "/") == path
	}
}

func matchPrefixSuffix(prefix, suffix string) routeMatcher {
	return func(value string) bool {
		return strings.HasPrefix(value, prefix) && strings.HasSuffix(value, suffix)
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (r *responseCapture) record(hash string) idempotencyRecord {
	rec := idempotencyRecord{
		Status:      r.statusCode(),
		Body:        append([]byte(nil), r.body.Bytes()...),
		RequestHash: hash,
	}
	for _, name := range replayedHeaders {
		if v := r.Header().Get(name); v != "" {
			if rec.Headers == nil {
				rec.Headers = map[string]string{}
			}
			rec.Headers[name] = v
		}
	}
	return rec
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
