package slack

import (
	"context"
	"strconv"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"

	"slackwatch/internal/types"
)

// historyScanLimit caps how many messages a fallback history scan reads.
const historyScanLimit = 200

// Correlator maps (channel, service name) to the timestamp of the most
// recent top-level message for that service, so related detail messages
// become thread replies instead of new top-level threads.
//
// Lookup order: the in-process cache, then a scan of the channel's history
// from the start of the current calendar day for the first message whose
// text contains the service name as a substring. Substring matching is
// intentionally loose; service names are short distinguishing tokens.
//
// A warm Lambda container reuses the Correlator across invocations, so
// cache entries are stamped with the calendar day they were recorded on.
// An entry from an earlier day is treated as a miss; without the stamp a
// container alive across midnight would keep threading new alerts under
// the previous day's message.
//
// This is best-effort: overlapping invocations for the same service can
// race the read-then-write and create two top-level threads in the same
// window. No cross-invocation locking exists; callers tolerate duplicate
// threads as a known limitation.
type Correlator struct {
	client ChatClient
	clock  types.Clock
	logger types.Logger
	cache  map[threadKey]threadEntry
}

type threadKey struct {
	channel string
	service string
}

// threadEntry pairs a thread timestamp with the Unix seconds of midnight
// on the day it was recorded.
type threadEntry struct {
	ts  string
	day int64
}

// NewCorrelator creates a Correlator. The clock determines the start of
// the current calendar day for the history scan window.
func NewCorrelator(client ChatClient, clock types.Clock, logger types.Logger) *Correlator {
	return &Correlator{
		client: client,
		clock:  clock,
		logger: logger,
		cache:  make(map[threadKey]threadEntry),
	}
}

// Thread returns the timestamp of the running thread for a service in a
// channel, or false when none exists and the caller should post a new
// top-level message. History-scan failures are logged and reported as a
// miss rather than failing the invocation.
func (c *Correlator) Thread(ctx context.Context, channelID, serviceName string) (string, bool) {
	key := threadKey{channel: channelID, service: serviceName}
	startOfDay := c.startOfToday()
	if entry, ok := c.cache[key]; ok && entry.day == startOfDay {
		return entry.ts, true
	}

	resp, err := c.client.GetConversationHistoryContext(ctx, &slackapi.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    strconv.FormatInt(startOfDay, 10) + ".000000",
		Limit:     historyScanLimit,
	})
	if err != nil {
		c.logger.Error("channel history scan failed",
			"channel", channelID,
			"service", serviceName,
			"error", err.Error(),
		)
		return "", false
	}

	for _, msg := range resp.Messages {
		if strings.Contains(msg.Text, serviceName) {
			c.cache[key] = threadEntry{ts: msg.Timestamp, day: startOfDay}
			return msg.Timestamp, true
		}
	}

	return "", false
}

// Record stores the thread timestamp after a new top-level post, stamped
// with the current calendar day. The entry is never deleted; a later
// top-level post for the same service supersedes it, and a day rollover
// invalidates it.
func (c *Correlator) Record(channelID, serviceName, ts string) {
	c.cache[threadKey{channel: channelID, service: serviceName}] = threadEntry{
		ts:  ts,
		day: c.startOfToday(),
	}
}

// startOfToday returns the Unix seconds of midnight on the current
// calendar day. The config loader pins the process to UTC so this window
// does not move with the host locale.
func (c *Correlator) startOfToday() int64 {
	now := c.clock.Now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).Unix()
}
