package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotency-Replayed"
	callerHeader      = "X-Caller-ID"
	idempotencyTTL    = 24 * time.Hour
)

// replayRecord stores the first response observed for an idempotency key so
// retried trip creations and status advances return the original outcome
// instead of charging an account twice.
type replayRecord struct {
	StatusCode  int             `json:"status_code"`
	Body        json.RawMessage `json:"body"`
	ContentType string          `json:"content_type"`
}

// captureWriter wraps gin.ResponseWriter to capture the response body.
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware returns middleware that replays stored responses for
// repeated mutating requests carrying the same Idempotency-Key. Keys are
// scoped per caller so two callers reusing the same key never see each
// other's responses.
func IdempotencyMiddleware(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := "idempotency:" + c.GetHeader(callerHeader) + ":" + key

		record, err := getReplayRecord(ctx, redisClient, cacheKey)
		if err != nil && err != redis.Nil {
			// Redis unavailable. Proceed without replay protection.
			c.Next()
			return
		}

		if record != nil {
			c.Header(replayedHeader, "true")
			c.Data(record.StatusCode, record.ContentType, record.Body)
			c.Abort()
			return
		}

		w := &captureWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		// Server errors are retryable and never recorded.
		if c.Writer.Status() >= 200 && c.Writer.Status() < 500 {
			record := replayRecord{
				StatusCode:  c.Writer.Status(),
				Body:        w.body.Bytes(),
				ContentType: c.Writer.Header().Get("Content-Type"),
			}
			_ = setReplayRecord(ctx, redisClient, cacheKey, &record, idempotencyTTL)
		}
	}
}

// getReplayRecord retrieves a stored response from Redis.
func getReplayRecord(ctx context.Context, client *redis.Client, key string) (*replayRecord, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var record replayRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

// setReplayRecord stores a response in Redis.
func setReplayRecord(ctx context.Context, client *redis.Client, key string, record *replayRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return client.Set(ctx, key, data, ttl).Err()
}
