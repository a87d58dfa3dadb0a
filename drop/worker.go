package drop

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/dropzone-protocol/dropzone/bridge"
)

// RegistrarWorker feeds drained NFT deposits into registration. Deposits the
// drop rejects are bounced back to their sender with a plain transfer.
type RegistrarWorker struct {
	dz        *DropZone
	initiator Initiator
}

func NewRegistrarWorker(dz *DropZone, initiator Initiator) *RegistrarWorker {
	return &RegistrarWorker{
		dz:        dz,
		initiator: initiator,
	}
}

func (rw *RegistrarWorker) ProcessDeposit(ctx context.Context, dep *bridge.Deposit) {
	dropId, err := strconv.ParseUint(strings.TrimSpace(dep.Memo), 10, 64)
	if err != nil {
		logger.Printf("RegistrarWorker deposit %s invalid memo %q\n", dep.DepositId, dep.Memo)
		rw.bounce(ctx, dep)
		return
	}

	env := &bridge.Env{Predecessor: dep.Contract}
	returnToken, err := rw.dz.NFTOnTransfer(ctx, env, dep.TokenId, dep.Sender, dropId)
	if err != nil {
		logger.Printf("RegistrarWorker deposit %s rejected: %v\n", dep.DepositId, err)
	}
	// the draining checkpoint may replay a deposit after a restart, so a
	// token already in the drop inventory is an ack, never a bounce that
	// would send out a token the drop still counts
	if errors.Is(err, ErrTokenIdRegistered) {
		return
	}
	if returnToken {
		rw.bounce(ctx, dep)
	}
}

func (rw *RegistrarWorker) bounce(ctx context.Context, dep *bridge.Deposit) {
	t := &bridge.Transfer{
		TraceId:   bridge.UniqueTraceId(dep.DepositId, "bounce"),
		Contract:  dep.Contract,
		Receiver:  dep.Sender,
		TokenIds:  []string{dep.TokenId},
		Memo:      "Linkdrop registration rejected",
		GasBudget: bridge.MinGasSimpleNFTTransfer,
		Callback:  bridge.CallbackNone,
	}
	err := rw.initiator.BuildTransfer(ctx, t)
	if err != nil {
		logger.Printf("RegistrarWorker bounce %s => %v\n", dep.DepositId, err)
	}
}
