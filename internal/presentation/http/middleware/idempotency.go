package middleware

import (
	"bytes"
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/repository"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/handler"
	"github.com/bumisubur/pos-gateway/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	Log  *logrus.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST that carries an
// Idempotency-Key the session already used. Only 2xx responses are stored,
// so a failed submission can be retried with the same key.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		token := handler.GetToken(c)
		if c.Request.Method != "POST" || key == "" || token == "" {
			c.Next()
			return
		}
		digest := utils.TokenDigest(token)

		existing, err := config.Repo.GetByKey(c.Request.Context(), key, digest)
		if err != nil {
			config.Log.WithError(err).Warn("Failed to look up idempotency key")
			c.Next()
			return
		}
		if existing != nil && !existing.IsExpired() {
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		ikey := &entity.IdempotencyKey{
			Key:           key,
			SessionDigest: digest,
			Endpoint:      c.Request.Method + " " + c.FullPath(),
			ResponseCode:  c.Writer.Status(),
			ResponseBody:  blw.body.String(),
			ExpiresAt:     time.Now().Add(IdempotencyKeyTTL),
		}
		if err := config.Repo.Create(c.Request.Context(), ikey); err != nil {
			config.Log.WithError(err).Warn("Failed to store idempotency key")
		}
	}
}
