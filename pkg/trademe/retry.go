package trademe

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds the exponential backoff applied to retryable failures
// (network errors, 429 and 5xx). Requests are rebuilt and re-signed for every
// attempt so each carries a fresh nonce and timestamp.
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy is a conservative policy suitable for interactive use.
var DefaultRetryPolicy = RetryPolicy{
	MaxTries:        3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
	MaxElapsedTime:  30 * time.Second,
}

// withDefaults fills zero fields from DefaultRetryPolicy. backoff treats a
// zero MaxTries or MaxElapsedTime as unlimited, which a zero RetryPolicy
// must never mean.
func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxTries == 0 {
		p.MaxTries = DefaultRetryPolicy.MaxTries
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = DefaultRetryPolicy.MaxInterval
	}
	if p.MaxElapsedTime <= 0 {
		p.MaxElapsedTime = DefaultRetryPolicy.MaxElapsedTime
	}
	return p
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	return b
}

// withRetry runs op under the policy. Errors other than retryable transport
// errors stop the loop immediately.
func withRetry(
	ctx context.Context,
	p *RetryPolicy,
	notify func(error, time.Duration),
	op func() ([]byte, error),
) ([]byte, error) {
	if p == nil {
		return op()
	}
	policy := p.withDefaults()

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		body, err := op()
		if err == nil {
			return body, nil
		}
		var te *TransportError
		if errors.As(err, &te) && te.Retryable() && !errors.Is(err, context.Canceled) &&
			!errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	},
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxTries(policy.MaxTries),
		backoff.WithMaxElapsedTime(policy.MaxElapsedTime),
		backoff.WithNotify(notify),
	)

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	return body, err
}
