package drop

import (
	"context"

	"github.com/dropzone-protocol/dropzone/bridge"
)

type Store interface {
	ReadDrop(id uint64) (*Drop, error)
	WriteDrop(drop *Drop) error
	NextDropId() (uint64, error)
}

// Initiator queues an outbound asynchronous transfer. Its result is observed
// only through the resolution callback the transfer names.
type Initiator interface {
	BuildTransfer(ctx context.Context, t *bridge.Transfer) error
}
