package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/utulok/shelter-backend/api/responses"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// AuthRateLimitPolicy is the fixed-window throttle configuration for one
// auth endpoint. The email limit tracks a hash of the submitted address so
// a credential-stuffing run against one account trips before the IP limit.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewAuthRateLimitPolicy builds a policy with the supplied window and limits.
func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		name:       strings.ToLower(strings.TrimSpace(name)),
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// counterKey scopes window counters per policy so login and register
// attempts never share a bucket.
func (p AuthRateLimitPolicy) counterKey(scope, subject string) string {
	name := p.name
	if name == "" {
		name = "auth"
	}
	return fmt.Sprintf("shl:rl:%s:%s:%s", name, scope, subject)
}

// AuthRateLimit throttles an auth endpoint per client IP and per submitted
// email. When the counter store is unreachable the request passes through:
// locking every user out because Redis is down is worse than a brief window
// without throttling.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			type check struct {
				scope   string
				subject string
				limit   int
			}

			checks := make([]check, 0, 2)
			if policy.ipLimit > 0 {
				if ip := remoteIP(r); ip != "" {
					checks = append(checks, check{scope: "ip", subject: ip, limit: policy.ipLimit})
				}
			}
			if policy.emailLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if digest := emailDigest(body); digest != "" {
					checks = append(checks, check{scope: "email", subject: digest, limit: policy.emailLimit})
				}
			}

			for _, c := range checks {
				count, err := store.IncrWithTTL(ctx, policy.counterKey(c.scope, c.subject), policy.window)
				if err != nil {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy": policy.name,
							"scope":  c.scope,
						}), "auth.rate_limit.store_unavailable")
					}
					continue
				}
				if count > int64(c.limit) {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":         policy.name,
							"scope":          c.scope,
							"subject":        c.subject,
							"attempts":       count,
							"limit":          c.limit,
							"window_seconds": int(policy.window.Seconds()),
						}), "auth.rate_limit.blocked")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Seconds())))
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// remoteIP prefers proxy headers over the socket address so limits follow
// the real client behind the load balancer.
func remoteIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// emailDigest hashes the email field of a JSON auth payload so raw
// addresses never land in Redis keys. Returns "" when no email is present.
func emailDigest(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
