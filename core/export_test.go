package core

import "sync/atomic"

// SetTicksForTest lets external tests start the counter near its reset point
func SetTicksForTest(v uint32) {
	atomic.StoreUint32(&tickCount, v)
}
