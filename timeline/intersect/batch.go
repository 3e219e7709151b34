package intersect

import (
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/tpcopeland/survtime/internal/util"
	"github.com/tpcopeland/survtime/logger"
)

// Rough working-set estimate per person during a combination step:
// every input's intervals plus the accumulated joint intervals.
const bytesPerPerson = 64 * 1024

const (
	fallbackBatchSize = 10_000
	minBatchSize      = 1_000
	maxBatchSize      = 1_000_000
)

// defaultBatchSize sizes person batches from available memory, spending
// at most a quarter of it on the working set.
func defaultBatchSize() int {
	vm, err := mem.VirtualMemory()
	if err != nil {
		logger.Debugw("memory probe failed, using fallback batch size", "error", err)
		return fallbackBatchSize
	}
	n := int64(vm.Available / 4 / bytesPerPerson)
	n = util.MaxDay(n, minBatchSize)
	n = util.MinDay(n, maxBatchSize)
	return int(n)
}
