package group

import (
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/types"
)

// Group is an admin-owned shared subscription. Members gain access for
// as long as the group is unexpired; no per-member payment is collected
// here. Membership is a flat list scanned linearly, so MaxMembers is
// expected to stay small.
type Group struct {
	types.Entity
	ID         id.GroupID `json:"id"`
	AdminID    string     `json:"admin_id"`
	PlanCode   string     `json:"plan_code"`
	ExpiresAt  int64      `json:"expires_at"` // unix seconds
	Members    []string   `json:"members"`
	MaxMembers int        `json:"max_members"`
}

// HasMember reports whether the user is currently in the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether the group has reached its member cap.
func (g *Group) IsFull() bool {
	return len(g.Members) >= g.MaxMembers
}

// RemoveMember deletes the user from the member list, reporting whether
// the user was present.
func (g *Group) RemoveMember(userID string) bool {
	for i, m := range g.Members {
		if m == userID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return true
		}
	}
	return false
}

// Active reports whether the group subscription grants access now.
func (g *Group) Active(now int64) bool {
	return now < g.ExpiresAt
}
