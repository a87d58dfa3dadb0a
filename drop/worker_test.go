package drop

import (
	"context"
	"testing"
	"time"

	"github.com/dropzone-protocol/dropzone/bridge"
	"github.com/stretchr/testify/require"
)

func TestRegistrarWorker(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	dz, ms, fi := newTestZone()
	dropId := newTestDrop(t, dz)
	rw := NewRegistrarWorker(dz, fi)

	dep := &bridge.Deposit{
		DepositId: "dep-1",
		TokenId:   "tok1",
		Sender:    testSender,
		Contract:  testContract,
		Memo:      " 1 ",
		CreatedAt: time.Now(),
	}
	rw.ProcessDeposit(ctx, dep)
	require.Len(fi.transfers, 0)
	drop, err := ms.ReadDrop(dropId)
	require.NoError(err)
	require.Equal(uint64(1), drop.NumClaimsRegistered)

	// the same deposit replayed after a restart is an ack: no bounce, the
	// drop keeps holding and counting the token
	dep2 := &bridge.Deposit{
		DepositId: "dep-1",
		TokenId:   "tok1",
		Sender:    testSender,
		Contract:  testContract,
		Memo:      "1",
		CreatedAt: time.Now(),
	}
	rw.ProcessDeposit(ctx, dep2)
	require.Len(fi.transfers, 0)
	drop, err = ms.ReadDrop(dropId)
	require.NoError(err)
	require.Equal(uint64(1), drop.NumClaimsRegistered)
	data, err := drop.NFTData()
	require.NoError(err)
	require.Equal([]string{"tok1"}, data.TokenIds.Ids)

	// a memo that does not name a drop bounces without a registration attempt
	dep3 := &bridge.Deposit{
		DepositId: "dep-3",
		TokenId:   "tok2",
		Sender:    testSender,
		Contract:  testContract,
		Memo:      "not-a-drop",
		CreatedAt: time.Now(),
	}
	rw.ProcessDeposit(ctx, dep3)
	require.Len(fi.transfers, 1)
	bounce := fi.transfers[0]
	require.Equal(testContract, bounce.Contract)
	require.Equal(testSender, bounce.Receiver)
	require.Equal([]string{"tok2"}, bounce.TokenIds)
	require.Equal(bridge.CallbackNone, bounce.Callback)
	require.Equal(bridge.UniqueTraceId("dep-3", "bounce"), bounce.TraceId)

	// a deposit from the wrong sender still bounces
	dep4 := &bridge.Deposit{
		DepositId: "dep-4",
		TokenId:   "tok3",
		Sender:    "mallory.sender",
		Contract:  testContract,
		Memo:      "1",
		CreatedAt: time.Now(),
	}
	rw.ProcessDeposit(ctx, dep4)
	require.Len(fi.transfers, 2)
	require.Equal("mallory.sender", fi.transfers[1].Receiver)
	drop, err = ms.ReadDrop(dropId)
	require.NoError(err)
	require.Equal(uint64(1), drop.NumClaimsRegistered)
}
