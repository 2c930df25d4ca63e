package mpd

import (
	"time"

	"github.com/pior/mpd/protocol"
	"github.com/sony/gobreaker/v2"
)

// NewCircuitBreakerConfig returns a function that creates a circuit breaker
// for a daemon address, for use as Config.NewCircuitBreaker.
//
// The breaker trips when at least 3 requests were seen in the interval and
// 60% of them failed. ACK responses count as successes: the daemon answered.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(string) *gobreaker.CircuitBreaker[struct{}] {
	return func(addr string) *gobreaker.CircuitBreaker[struct{}] {
		settings := gobreaker.Settings{
			Name:        addr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: func(err error) bool {
				return !protocol.ShouldCloseConnection(err)
			},
		}
		return gobreaker.NewCircuitBreaker[struct{}](settings)
	}
}
