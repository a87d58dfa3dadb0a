package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MixinNetwork/mixin/logger"
)

var ErrInvalidTransfer = errors.New("bridge: invalid transfer")

type Group struct {
	client   Client
	store    Store
	clock    *Clock
	workers  []Worker
	resolver Resolver

	account    string
	prepaidGas uint64
	batch      int
}

func BuildGroup(ctx context.Context, store Store, client Client, conf *Configuration) (*Group, error) {
	if conf.App.AccountId == "" {
		return nil, fmt.Errorf("bridge: empty account id")
	}
	clock, err := NewClock(store)
	if err != nil {
		return nil, err
	}
	grp := &Group{
		client:     client,
		store:      store,
		clock:      clock,
		account:    conf.App.AccountId,
		prepaidGas: uint64(conf.Group.GasBudget) * OneGigaGas,
		batch:      conf.Group.Batch,
	}
	if grp.prepaidGas == 0 {
		grp.prepaidGas = 100 * OneGigaGas
	}
	if grp.batch <= 0 {
		grp.batch = 100
	}
	return grp, nil
}

func (grp *Group) AddWorker(wkr Worker) {
	grp.workers = append(grp.workers, wkr)
}

func (grp *Group) SetResolver(r Resolver) {
	grp.resolver = r
}

func (grp *Group) AccountId() string {
	return grp.account
}

func (grp *Group) Run(ctx context.Context) {
	for ctx.Err() == nil {
		grp.drainDeposits(ctx, grp.batch)
		if !grp.dispatchTransfers(ctx) {
			time.Sleep(time.Second)
		}
	}
}

// dispatchTransfers sends one queued transfer, turns its settlement into a
// promise result, and hands that to the resolver before deleting the record.
// A transient transport error leaves the record queued for the next pass.
func (grp *Group) dispatchTransfers(ctx context.Context) bool {
	txs, err := grp.store.ListTransfers(TransferStateInitial, 1)
	if err != nil || len(txs) != 1 {
		return false
	}
	t := txs[0]

	start := time.Now()
	err = grp.client.Transfer(ctx, t.Request())
	result := PromiseResultSuccessful
	var fe *TransferFailedError
	switch {
	case err == nil:
	case errors.As(err, &fe):
		result = PromiseResultFailed
		logger.Printf("Group.dispatchTransfers(%s) settled failed: %s\n", t.TraceId, fe.Reason)
	default:
		logger.Printf("Group.dispatchTransfers(%s) transient error %v\n", t.TraceId, err)
		time.Sleep(3 * time.Second)
		return true
	}

	env := &Env{
		Predecessor: grp.account,
		Results:     []int{result},
		UsedGas:     gasSpent(start),
		PrepaidGas:  t.GasBudget,
	}
	grp.resolve(ctx, env, t)

	err = grp.store.DeleteTransfer(t)
	if err != nil {
		logger.Printf("Group.dispatchTransfers(%s) delete %v\n", t.TraceId, err)
	}
	return true
}

func (grp *Group) resolve(ctx context.Context, env *Env, t *Transfer) {
	if grp.resolver == nil || t.Callback == CallbackNone {
		return
	}
	switch t.Callback {
	case CallbackResolveRefund:
		ok, err := grp.resolver.ResolveRefund(ctx, env, t.DropId, t.TokenIds)
		logger.Verbosef("Group.resolve(%s) refund => %t %v\n", t.TraceId, ok, err)
	case CallbackResolveTransfer:
		ok, err := grp.resolver.ResolveTransfer(ctx, env, t.TokenIds[0], t.TokenSender, t.Contract)
		logger.Verbosef("Group.resolve(%s) transfer => %t %v\n", t.TraceId, ok, err)
	default:
		panic(t.Callback)
	}
}
