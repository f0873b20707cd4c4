package execution

import (
	"sync/atomic"

	"quantsim/pkg/common"
)

// IDCounter hands out order ids. One counter is shared by every executor of a
// session so ids are unique and strictly increasing across styles.
type IDCounter struct {
	ctr atomic.Int64
}

func NewIDCounter() *IDCounter {
	return &IDCounter{}
}

func (c *IDCounter) Next() common.OrderId {
	return c.ctr.Add(1)
}
