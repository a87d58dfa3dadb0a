package drop

import (
	"context"
	"testing"

	"github.com/dropzone-protocol/dropzone/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNFTOnTransferValidation(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	dz, ms, _ := newTestZone()
	dropId := newTestDrop(t, dz)

	returnToken, err := dz.NFTOnTransfer(ctx, registerEnv(), "tok1", testSender, dropId+999)
	require.True(returnToken)
	require.ErrorIs(err, ErrDropNotFound)

	returnToken, err = dz.NFTOnTransfer(ctx, registerEnv(), "tok1", "mallory.sender", dropId)
	require.True(returnToken)
	require.ErrorIs(err, ErrSenderMismatch)

	returnToken, err = dz.NFTOnTransfer(ctx, &bridge.Env{Predecessor: "other.nft"}, "tok1", testSender, dropId)
	require.True(returnToken)
	require.ErrorIs(err, ErrSenderMismatch)

	returnToken, err = dz.NFTOnTransfer(ctx, registerEnv(), "tokenAAA-too-long", testSender, dropId)
	require.True(returnToken)
	require.ErrorIs(err, ErrTokenIdTooLong)

	drop, err := ms.ReadDrop(dropId)
	require.NoError(err)
	require.Equal(uint64(0), drop.NumClaimsRegistered)
	data, err := drop.NFTData()
	require.NoError(err)
	require.Equal(0, data.TokenIds.Len())

	returnToken, err = dz.NFTOnTransfer(ctx, registerEnv(), "tok1", testSender, dropId)
	require.False(returnToken)
	require.NoError(err)

	returnToken, err = dz.NFTOnTransfer(ctx, registerEnv(), "tok1", testSender, dropId)
	require.True(returnToken)
	require.ErrorIs(err, ErrTokenIdRegistered)

	drop, err = ms.ReadDrop(dropId)
	require.NoError(err)
	require.Equal(uint64(1), drop.NumClaimsRegistered)
	data, err = drop.NFTData()
	require.NoError(err)
	require.Equal([]string{"tok1"}, data.TokenIds.Ids)
}

func TestNFTOnTransferClamp(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	dz, ms, _ := newTestZone()
	dropId := newTestDrop(t, dz)

	for _, id := range []string{"tok1", "tok2", "tok3"} {
		returnToken, err := dz.NFTOnTransfer(ctx, registerEnv(), id, testSender, dropId)
		require.False(returnToken)
		require.NoError(err)
	}

	// two keys, one claim per key, so the third admission is counted at the
	// quota while its token stays in the inventory
	drop, err := ms.ReadDrop(dropId)
	require.NoError(err)
	require.Equal(uint64(2), drop.NumClaimsRegistered)
	data, err := drop.NFTData()
	require.NoError(err)
	require.Equal([]string{"tok1", "tok2", "tok3"}, data.TokenIds.Ids)
}

func TestResolveRefund(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	dz, ms, _ := newTestZone()
	dropId := newTestDrop(t, dz)
	for _, id := range []string{"tok1", "tok2", "tok3"} {
		returnToken, err := dz.NFTOnTransfer(ctx, registerEnv(), id, testSender, dropId)
		require.False(returnToken)
		require.NoError(err)
	}

	_, err := dz.ResolveRefund(ctx, resolveEnv("mallory.account", true), dropId, []string{"tok1"})
	require.ErrorIs(err, ErrPrivateMethod)

	// a failed refund re-credits the quota without touching the inventory,
	// even past the clamp ceiling
	settled, err := dz.ResolveRefund(ctx, resolveEnv(testAccount, false), dropId, []string{"tok1"})
	require.NoError(err)
	require.False(settled)
	drop, err := ms.ReadDrop(dropId)
	require.NoError(err)
	require.Equal(uint64(3), drop.NumClaimsRegistered)
	data, err := drop.NFTData()
	require.NoError(err)
	require.Equal([]string{"tok1", "tok2", "tok3"}, data.TokenIds.Ids)

	settled, err = dz.ResolveRefund(ctx, resolveEnv(testAccount, true), dropId, []string{"tok2"})
	require.NoError(err)
	require.True(settled)
	drop, err = ms.ReadDrop(dropId)
	require.NoError(err)
	require.Equal(uint64(3), drop.NumClaimsRegistered)
	data, err = drop.NFTData()
	require.NoError(err)
	require.Equal([]string{"tok1", "tok3"}, data.TokenIds.Ids)

	// replaying a settled refund removes nothing the second time
	settled, err = dz.ResolveRefund(ctx, resolveEnv(testAccount, true), dropId, []string{"tok2"})
	require.NoError(err)
	require.True(settled)
	drop, err = ms.ReadDrop(dropId)
	require.NoError(err)
	data, err = drop.NFTData()
	require.NoError(err)
	require.Equal([]string{"tok1", "tok3"}, data.TokenIds.Ids)
}

func TestResolveTransfer(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()

	dz, ms, fi := newTestZone()
	dropId := newTestDrop(t, dz)
	returnToken, err := dz.NFTOnTransfer(ctx, registerEnv(), "tok1", testSender, dropId)
	require.False(returnToken)
	require.NoError(err)

	_, err = dz.ResolveTransfer(ctx, resolveEnv("mallory.account", true), "tok1", testSender, testContract)
	require.ErrorIs(err, ErrPrivateMethod)

	settled, err := dz.ResolveTransfer(ctx, resolveEnv(testAccount, true), "tok1", testSender, testContract)
	require.NoError(err)
	require.True(settled)
	require.Len(fi.transfers, 0)

	settled, err = dz.ResolveTransfer(ctx, resolveEnv(testAccount, false), "tok1", testSender, testContract)
	require.NoError(err)
	require.False(settled)
	require.Len(fi.transfers, 1)
	back := fi.transfers[0]
	assert.Equal(testContract, back.Contract)
	assert.Equal(testSender, back.Receiver)
	assert.Equal([]string{"tok1"}, back.TokenIds)
	assert.Equal(NFTRefundMemo, back.Memo)
	assert.Equal(bridge.CallbackNone, back.Callback)
	assert.Equal(bridge.MinGasSimpleNFTTransfer, back.GasBudget)
	assert.Equal(bridge.UniqueTraceId(testContract+":tok1", testSender), back.TraceId)

	// resolution of the claimant transfer never touches the drop itself
	drop, err := ms.ReadDrop(dropId)
	require.NoError(err)
	require.Equal(uint64(1), drop.NumClaimsRegistered)
}
