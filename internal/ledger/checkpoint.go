package ledger

import (
	"sync"
	"time"
)

// Checkpoint is a (block height, epoch height, timestamp) triple taken from a Clock.
type Checkpoint struct {
	BlockHeight uint64
	EpochHeight uint64
	Timestamp   time.Time
}

// Clock supplies the current checkpoint.
type Clock interface {
	Now() Checkpoint
}

// EpochClock derives block and epoch heights from wall time.
type EpochClock struct {
	genesis     time.Time
	blockTime   time.Duration
	epochLength uint64
	now         func() time.Time
}

func NewEpochClock(genesis time.Time, blockTime time.Duration, epochLength uint64) *EpochClock {
	return &EpochClock{
		genesis:     genesis,
		blockTime:   blockTime,
		epochLength: epochLength,
		now:         time.Now,
	}
}

func (c *EpochClock) Now() Checkpoint {
	now := c.now().UTC()
	var height uint64
	if elapsed := now.Sub(c.genesis); elapsed > 0 && c.blockTime > 0 {
		height = uint64(elapsed / c.blockTime)
	}
	var epoch uint64
	if c.epochLength > 0 {
		epoch = height / c.epochLength
	}
	return Checkpoint{
		BlockHeight: height,
		EpochHeight: epoch,
		Timestamp:   now,
	}
}

// ManualClock is a Clock advanced explicitly. It is used by local venues and tests.
type ManualClock struct {
	mu sync.Mutex
	cp Checkpoint
}

func NewManualClock(cp Checkpoint) *ManualClock {
	return &ManualClock{cp: cp}
}

func (c *ManualClock) Now() Checkpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cp
}

// AdvanceEpochs moves the clock forward by n epochs, one block each.
func (c *ManualClock) AdvanceEpochs(n uint64) Checkpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cp.EpochHeight += n
	c.cp.BlockHeight += n
	c.cp.Timestamp = c.cp.Timestamp.Add(time.Duration(n) * time.Second)
	return c.cp
}
