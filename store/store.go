// Package store keeps per-user records: access level, bounded conversation
// history, and the personality label. All backings guarantee atomic
// read-modify-write per user ID.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MaxHistory bounds the per-user history ring; the oldest entry is evicted
// when an append would exceed it.
const MaxHistory = 10

type Tier string

const (
	TierFree   Tier = "Free"
	TierBronze Tier = "Bronze"
	TierSilver Tier = "Silver"
	TierGold   Tier = "Gold"
	TierOwner  Tier = "Owner"
)

var tierRanks = map[Tier]int{
	TierFree:   1,
	TierBronze: 2,
	TierSilver: 3,
	TierGold:   4,
	TierOwner:  5,
}

func (t Tier) Valid() bool {
	_, ok := tierRanks[t]
	return ok
}

func (t Tier) Rank() int { return tierRanks[t] }

// ParseTier accepts a tier name case-insensitively.
func ParseTier(s string) (Tier, bool) {
	for t := range tierRanks {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}

const DefaultPersonality = "unknown"

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

type HistoryEntry struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type User struct {
	ID          int64          `json:"id"`
	Level       Tier           `json:"level"`
	Personality string         `json:"personality"`
	History     []HistoryEntry `json:"history"`
}

// NewUser is the lazily-materialized default record for a first interaction.
func NewUser(id int64) User {
	return User{ID: id, Level: TierFree, Personality: DefaultPersonality}
}

// Store is the keyed user-record abstraction. Update applies mutate under a
// per-key (or stricter) lock so concurrent turns for the same user cannot
// lose writes. A missing record is materialized with NewUser defaults before
// mutate runs.
type Store interface {
	Get(ctx context.Context, id int64) (User, bool, error)
	Update(ctx context.Context, id int64, mutate func(*User)) (User, error)
	List(ctx context.Context) ([]User, error)
}

// AppendHistory pushes an entry onto the user's history ring.
func AppendHistory(u *User, role Role, text string, at time.Time) {
	u.History = append(u.History, HistoryEntry{Role: role, Text: text, Timestamp: at})
	if n := len(u.History); n > MaxHistory {
		u.History = append(u.History[:0], u.History[n-MaxHistory:]...)
	}
}

// SetPersonality records the derived personality label, falling back to
// the default when cleared.
func SetPersonality(u *User, label string) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultPersonality
	}
	u.Personality = label
}

// SetLevel assigns a tier; invalid tiers are ignored.
func SetLevel(u *User, tier Tier) {
	if tier.Valid() {
		u.Level = tier
	}
}

// RecentAsText renders the history ring as role-tagged lines, newest last,
// for inclusion in the next model prompt.
func RecentAsText(u User) string {
	if len(u.History) == 0 {
		return ""
	}
	lines := make([]string, 0, len(u.History))
	for _, e := range u.History {
		lines = append(lines, fmt.Sprintf("[%s]: %s", e.Role, e.Text))
	}
	return strings.Join(lines, "\n")
}

func cloneUser(u User) User {
	out := u
	if len(u.History) > 0 {
		out.History = append([]HistoryEntry(nil), u.History...)
	}
	return out
}

func normalizeUser(u *User, id int64) {
	u.ID = id
	if !u.Level.Valid() {
		u.Level = TierFree
	}
	if strings.TrimSpace(u.Personality) == "" {
		u.Personality = DefaultPersonality
	}
	if n := len(u.History); n > MaxHistory {
		u.History = append(u.History[:0], u.History[n-MaxHistory:]...)
	}
}
