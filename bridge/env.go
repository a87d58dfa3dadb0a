package bridge

import "time"

const OneGigaGas uint64 = 1_000_000_000

// MinGasSimpleNFTTransfer is the fixed budget attached to a plain NFT
// transfer with no chained callback.
const MinGasSimpleNFTTransfer = 10 * OneGigaGas

const (
	PromiseResultNotReady = iota
	PromiseResultSuccessful
	PromiseResultFailed
)

// Env is the call environment handed to every contract entry point: who
// invoked it, the results of the asynchronous operations it was chained
// behind, and resource-budget telemetry for logging.
type Env struct {
	Predecessor string
	Results     []int
	UsedGas     uint64
	PrepaidGas  uint64
}

func (env *Env) PromiseResult(index int) int {
	if index < 0 || index >= len(env.Results) {
		return PromiseResultNotReady
	}
	return env.Results[index]
}

func gasSpent(start time.Time) uint64 {
	return uint64(time.Since(start))
}
