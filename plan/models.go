package plan

import (
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/types"
)

// Plan is a priced, fixed-duration subscription tier owned by an admin
// identity. Plans are unique per (AdminID, Code) and immutable once
// created: there is no update or delete operation.
type Plan struct {
	types.Entity
	ID       id.PlanID    `json:"id"`
	AdminID  string       `json:"admin_id"`
	Code     string       `json:"code"`
	Duration int64        `json:"duration"` // seconds
	Price    types.Amount `json:"price"`
}

// DurationDays returns the plan duration in whole days.
func (p *Plan) DurationDays() int64 {
	return p.Duration / 86400
}
