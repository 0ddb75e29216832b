package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"hackverse-mindmap/internal/config"
)

var testSettings = config.CircuitBreaker{
	Enabled:      true,
	MaxRequests:  1,
	Interval:     time.Minute,
	Timeout:      time.Minute,
	FailureRatio: 0.5,
	MinRequests:  2,
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	b := New("test", testSettings, zap.NewNop(), nil, nil)
	boom := errors.New("boom")
	fail := func() (interface{}, error) { return nil, boom }

	_, err := b.Execute(fail)
	assert.ErrorIs(t, err, boom)
	_, err = b.Execute(fail)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, gobreaker.StateOpen, b.State())
	called := false
	_, err = b.Execute(func() (interface{}, error) { called = true; return nil, nil })
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, called)
}

func TestBreaker_IgnoredErrorsDoNotTrip(t *testing.T) {
	clientErr := errors.New("bad request")
	b := New("test", testSettings, zap.NewNop(), nil, func(err error) bool { return errors.Is(err, clientErr) })

	for i := 0; i < 5; i++ {
		_, err := b.Execute(func() (interface{}, error) { return nil, clientErr })
		assert.ErrorIs(t, err, clientErr)
	}

	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_Disabled(t *testing.T) {
	b := New("test", config.CircuitBreaker{}, nil, nil, nil)

	out, err := b.Execute(func() (interface{}, error) { return 42, nil })

	assert.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
