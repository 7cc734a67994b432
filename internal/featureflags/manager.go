// Package featureflags evaluates rollout flags configured as a
// comma-separated list, e.g. "realtime_messages=on,new_feed=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// RealtimeMessages gates websocket delivery of direct messages.
const RealtimeMessages = "realtime_messages"

// rule is a parsed flag value. percent is 0..100; 100 means on for everyone.
type rule struct {
	raw     string
	percent int
}

// Manager holds the parsed flags. A nil Manager reports every flag off.
type Manager struct {
	rules map[string]rule
}

// NewManager parses raw. Malformed entries and unknown values are skipped.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" {
			continue
		}
		if pct, ok := parseValue(value); ok {
			rules[key] = rule{raw: value, percent: pct}
		}
	}
	return &Manager{rules: rules}
}

func parseValue(v string) (int, bool) {
	switch v {
	case "on", "true", "1":
		return 100, true
	case "off", "false", "0":
		return 0, true
	}
	pctRaw, ok := strings.CutSuffix(v, "%")
	if !ok {
		return 0, false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil {
		return 0, false
	}
	return min(max(pct, 0), 100), true
}

// Enabled reports whether name is on for userID. Partial rollouts bucket
// users deterministically and are off for anonymous callers (userID 0).
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	switch {
	case !ok || r.percent == 0:
		return false
	case r.percent == 100:
		return true
	case userID == 0:
		return false
	}
	return bucket(name, userID) < r.percent
}

// Raw returns the configured values keyed by flag name.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string)
	if m == nil {
		return out
	}
	for k, r := range m.rules {
		out[k] = r.raw
	}
	return out
}

// Snapshot evaluates every configured flag for userID.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool)
	if m == nil {
		return out
	}
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
