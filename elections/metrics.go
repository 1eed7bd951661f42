// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elections

import "github.com/prometheus/client_golang/prometheus"

const (
	voteAccepted = "accepted"
	voteConflict = "conflict"
	voteRejected = "rejected"
	voteUpstream = "upstream_failed"
	voteError    = "error"
)

var promVotes = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "athena_votes_total",
	Help: "vote registrations by outcome",
}, []string{"outcome"})

// Collectors returns the engine metrics for registration
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{promVotes}
}

func voteOutcome(err error) string {
	switch KindOf(err) {
	case KindConflict:
		return voteConflict
	case KindUpstream:
		return voteUpstream
	case KindNotFound, KindBadRequest:
		return voteRejected
	default:
		return voteError
	}
}
