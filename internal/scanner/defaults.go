package scanner

import "time"

const (
	fetchDelay        = 500 * time.Millisecond
	mempoolCycleDelay = 10 * time.Second
	blockCycleDelay   = 30 * time.Second
)
