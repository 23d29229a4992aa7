// Package search defines the core types for X/Twitter search queries and
// results, independent of which backend (Bird CLI or xAI API) serves them.
package search

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for query date bounds.
const DateLayout = "2006-01-02"

// DefaultWindowDays is how far back a query reaches when no start date is given.
const DefaultWindowDays = 30

// Depth controls how exhaustive a search is.
type Depth string

const (
	DepthQuick   Depth = "quick"
	DepthDefault Depth = "default"
	DepthDeep    Depth = "deep"
)

// ErrEmptyTopic is returned when a query has no topic.
var ErrEmptyTopic = errors.New("search topic is required")

// ParseDepth maps a user-supplied depth string to a Depth.
// An empty string means DepthDefault.
func ParseDepth(s string) (Depth, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(DepthDefault):
		return DepthDefault, nil
	case string(DepthQuick):
		return DepthQuick, nil
	case string(DepthDeep):
		return DepthDeep, nil
	default:
		return "", fmt.Errorf("unknown search depth %q (want quick, default, or deep)", s)
	}
}

// MaxResults returns the result budget for the depth.
func (d Depth) MaxResults() int {
	switch d {
	case DepthQuick:
		return 10
	case DepthDeep:
		return 50
	default:
		return 25
	}
}

// Query is a validated search request.
type Query struct {
	Topic string
	From  time.Time
	To    time.Time
	Depth Depth
}

// NewQuery validates raw tool arguments into a Query. Empty dates default
// to a 30-day window ending at now; an empty depth defaults to "default".
func NewQuery(topic, from, to, depth string, now time.Time) (Query, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Query{}, ErrEmptyTopic
	}

	d, err := ParseDepth(depth)
	if err != nil {
		return Query{}, err
	}

	toT := now
	if to != "" {
		toT, err = time.Parse(DateLayout, to)
		if err != nil {
			return Query{}, fmt.Errorf("invalid to_date %q: want YYYY-MM-DD", to)
		}
	}

	fromT := now.AddDate(0, 0, -DefaultWindowDays)
	if from != "" {
		fromT, err = time.Parse(DateLayout, from)
		if err != nil {
			return Query{}, fmt.Errorf("invalid from_date %q: want YYYY-MM-DD", from)
		}
	}

	if fromT.After(toT) {
		return Query{}, fmt.Errorf("from_date %s is after to_date %s",
			fromT.Format(DateLayout), toT.Format(DateLayout))
	}

	return Query{Topic: topic, From: fromT, To: toT, Depth: d}, nil
}

// FromDate returns the start bound in wire format.
func (q Query) FromDate() string { return q.From.Format(DateLayout) }

// ToDate returns the end bound in wire format.
func (q Query) ToDate() string { return q.To.Format(DateLayout) }
