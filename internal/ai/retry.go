package ai

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   3 * time.Second,
	}
}

// RetryingGenerator wraps a Generator with bounded exponential backoff. The
// retry budget is deliberately small: the caller has a template fallback, so
// a slow retry loop is worse than giving up.
type RetryingGenerator struct {
	inner  Generator
	config RetryConfig
	logger *logrus.Logger
}

func WithRetry(inner Generator, config RetryConfig, logger *logrus.Logger) *RetryingGenerator {
	return &RetryingGenerator{
		inner:  inner,
		config: config,
		logger: logger,
	}
}

func (g *RetryingGenerator) GenerateAnswer(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var result *GenerateResponse
	err := g.retryOperation(ctx, func() error {
		var err error
		result, err = g.inner.GenerateAnswer(ctx, req)
		return err
	})
	return result, err
}

func (g *RetryingGenerator) retryOperation(ctx context.Context, operation func() error) error {
	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := operation()
		if err == nil {
			return nil
		}

		if attempt == g.config.MaxRetries {
			return fmt.Errorf("operation failed after %d retries: %w", g.config.MaxRetries, err)
		}

		delay := time.Duration(float64(g.config.BaseDelay) * math.Pow(1.5, float64(attempt)))
		if delay > g.config.MaxDelay {
			delay = g.config.MaxDelay
		}

		g.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"delay":   delay,
			"error":   err.Error(),
		}).Warn("Retrying answer generation")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil
}
