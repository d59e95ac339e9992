package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type txKey struct{}

// recordingUoW logs the calls it receives and marks the context it hands
// out so tests can check fn ran inside the transaction.
type recordingUoW struct {
	calls     []string
	beginErr  error
	commitErr error
}

func (u *recordingUoW) Begin(ctx context.Context) (context.Context, error) {
	u.calls = append(u.calls, "begin")
	if u.beginErr != nil {
		return nil, u.beginErr
	}
	return context.WithValue(ctx, txKey{}, true), nil
}

func (u *recordingUoW) Commit(ctx context.Context) error {
	u.calls = append(u.calls, "commit")
	return u.commitErr
}

func (u *recordingUoW) Rollback(ctx context.Context) error {
	u.calls = append(u.calls, "rollback")
	return errors.New("rollback noise")
}

func TestWithUnitOfWork(t *testing.T) {
	errFn := errors.New("slot taken")
	errBegin := errors.New("pool exhausted")
	errCommit := errors.New("serialization failure")

	tests := []struct {
		name      string
		uow       *recordingUoW
		fnErr     error
		wantErr   error
		wantCalls []string
	}{
		{"commits on success", &recordingUoW{}, nil, nil, []string{"begin", "commit"}},
		{"rolls back and keeps fn error", &recordingUoW{}, errFn, errFn, []string{"begin", "rollback"}},
		{"begin failure skips fn", &recordingUoW{beginErr: errBegin}, nil, errBegin, []string{"begin"}},
		{"commit failure is returned", &recordingUoW{commitErr: errCommit}, nil, errCommit, []string{"begin", "commit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := false
			err := WithUnitOfWork(context.Background(), tt.uow, func(ctx context.Context) error {
				ran = true
				assert.Equal(t, true, ctx.Value(txKey{}))
				return tt.fnErr
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.uow.beginErr == nil, ran)
			assert.Equal(t, tt.wantCalls, tt.uow.calls)
		})
	}
}

func TestWithUnitOfWork_RollsBackOnPanic(t *testing.T) {
	uow := &recordingUoW{}

	assert.PanicsWithValue(t, "boom", func() {
		_ = WithUnitOfWork(context.Background(), uow, func(context.Context) error {
			panic("boom")
		})
	})
	assert.Equal(t, []string{"begin", "rollback"}, uow.calls)
}
