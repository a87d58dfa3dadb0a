package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransferStateInitial  = 10
	TransferStateResolved = 11
)

const (
	CallbackNone = iota
	CallbackResolveRefund
	CallbackResolveTransfer
)

const MemoSizeLimit = 256

// MinTransferDeposit is the nominal deposit attached to every outbound
// transfer when the caller does not specify one.
const MinTransferDeposit = "0.00000001"

type Transfer struct {
	TraceId     string
	State       int
	Contract    string
	Receiver    string
	TokenIds    []string
	ApprovalId  *uint64
	Memo        string
	Deposit     string
	GasBudget   uint64
	Callback    int
	DropId      uint64
	TokenSender string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Transfer) Request() *TransferRequest {
	return &TransferRequest{
		TraceId:    t.TraceId,
		Contract:   t.Contract,
		Receiver:   t.Receiver,
		TokenIds:   t.TokenIds,
		ApprovalId: t.ApprovalId,
		Memo:       t.Memo,
		Deposit:    t.Deposit,
		GasBudget:  t.GasBudget,
	}
}

func (t *Transfer) StateName() string {
	switch t.State {
	case TransferStateInitial:
		return "initial"
	case TransferStateResolved:
		return "resolved"
	}
	panic(t.State)
}

// TransferFailedError marks a definitive settlement failure, as opposed to a
// transient transport error that will be retried.
type TransferFailedError struct {
	Reason string
}

func (e *TransferFailedError) Error() string {
	return "transfer failed: " + e.Reason
}

var traceNamespace = uuid.Must(uuid.FromString("c6d0c728-2624-429b-8e0d-d9d19b6592fa"))

// UniqueTraceId derives a deterministic trace id from two seeds, so that the
// same logical transfer always lands on the same queue entry.
func UniqueTraceId(a, b string) string {
	return uuid.NewV5(traceNamespace, a+":"+b).String()
}

// the caller should decide a unique trace id so that the group will not
// dispatch the same transfer twice
func (grp *Group) BuildTransfer(ctx context.Context, t *Transfer) error {
	if id, err := uuid.FromString(t.TraceId); err != nil || id == uuid.Nil {
		return fmt.Errorf("%w: trace id %q", ErrInvalidTransfer, t.TraceId)
	}
	if t.Contract == "" || t.Receiver == "" {
		return fmt.Errorf("%w: contract %q receiver %q", ErrInvalidTransfer, t.Contract, t.Receiver)
	}
	if len(t.TokenIds) == 0 {
		return fmt.Errorf("%w: empty token ids", ErrInvalidTransfer)
	}
	for _, id := range t.TokenIds {
		if id == "" {
			return fmt.Errorf("%w: empty token id", ErrInvalidTransfer)
		}
	}
	if t.Callback == CallbackResolveTransfer && (len(t.TokenIds) != 1 || t.TokenSender == "") {
		return fmt.Errorf("%w: malformed transfer callback", ErrInvalidTransfer)
	}
	if len(t.Memo) > MemoSizeLimit {
		return fmt.Errorf("%w: memo size %d", ErrInvalidTransfer, len(t.Memo))
	}
	if t.Deposit == "" {
		t.Deposit = MinTransferDeposit
	}
	amt, err := decimal.NewFromString(t.Deposit)
	min, _ := decimal.NewFromString(MinTransferDeposit)
	if err != nil || amt.Cmp(min) < 0 {
		return fmt.Errorf("%w: deposit %s", ErrInvalidTransfer, t.Deposit)
	}
	if t.GasBudget == 0 {
		t.GasBudget = grp.prepaidGas
	}

	old, err := grp.store.ReadTransfer(t.TraceId)
	if err != nil || old != nil {
		return err
	}
	t.State = TransferStateInitial
	t.CreatedAt = grp.clock.Now()
	t.UpdatedAt = t.CreatedAt
	return grp.store.WriteTransfer(t)
}
