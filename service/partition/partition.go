package partition

import (
	"github.com/viant/simrun/model"
)

// Shard represents one unit's portion of a run.
type Shard struct {
	Index      int
	Iterations int
	Config     *model.SimConfig
}

// Seed returns the shard seed, or zero for unseeded runs.
func (s *Shard) Seed() int64 {
	if s.Config == nil {
		return 0
	}
	return s.Config.RngSeed
}

// Count returns the iteration share of unit index for the supplied total.
// Shares are ceiling-style: the first total%pool units get one extra iteration.
func Count(total, pool, index int) int {
	if pool <= 0 || total <= 0 || index < 0 || index >= pool {
		return 0
	}
	return (total + pool - 1 - index) / pool
}

// Counts returns the iteration share of every unit, including empty ones.
func Counts(total, pool int) []int {
	if pool <= 0 {
		return nil
	}
	ret := make([]int, pool)
	for i := range ret {
		ret[i] = Count(total, pool, i)
	}
	return ret
}

// Partition returns the non-empty shards of the request ordered by unit index.
func Partition(request *model.Request) []*Shard {
	if request == nil {
		return nil
	}
	var shards []*Shard
	consumed := int64(0)
	for i, count := range Counts(request.Iterations, request.PoolSize) {
		if count == 0 {
			continue
		}
		config := request.Config.Clone()
		if config == nil {
			config = &model.SimConfig{}
		}
		if request.Config.Seeded() {
			config.RngSeed = request.Config.RngSeed + consumed
		}
		consumed += int64(count)
		shards = append(shards, &Shard{Index: i, Iterations: count, Config: config})
	}
	return shards
}
