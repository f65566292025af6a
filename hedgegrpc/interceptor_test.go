package hedgegrpc

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/North-Shore-AI/crucible-hedging/hedge"
	"github.com/North-Shore-AI/crucible-hedging/strategy"
)

func durPtr(d time.Duration) *time.Duration { return &d }

func fixedHedgeConfig(t *testing.T, delay time.Duration) hedge.Config {
	cfg, err := hedge.NewBuilder(strategy.Fixed).
		WithStrategyOptions(strategy.Options{DelayMs: durPtr(delay)}).
		WithMaxHedges(1).
		Build()
	assert.NoError(t, err)
	return cfg
}

func TestUnaryClientInterceptorRejectsNonProtoReply(t *testing.T) {
	interceptor := UnaryClientInterceptor(fixedHedgeConfig(t, 50*time.Millisecond))

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return nil
	}

	notAProto := &struct{ Msg string }{}
	err := interceptor(context.Background(), "/svc/Method", &emptypb.Empty{}, notAProto, nil, invoker)
	assert.Error(t, err)
}

func TestUnaryClientInterceptorFastPrimaryWins(t *testing.T) {
	interceptor := UnaryClientInterceptor(fixedHedgeConfig(t, 50*time.Millisecond))

	calls := 0
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		calls++
		out := reply.(*wrapperspb.StringValue)
		out.Value = "primary-reply"
		return nil
	}

	reply := &wrapperspb.StringValue{}
	err := interceptor(context.Background(), "/svc/Method", &emptypb.Empty{}, reply, nil, invoker)

	assert.NoError(t, err)
	assert.Equal(t, "primary-reply", reply.Value)
	assert.Equal(t, 1, calls)
}

func TestUnaryClientInterceptorBackupWinsAndSplicesReply(t *testing.T) {
	interceptor := UnaryClientInterceptor(fixedHedgeConfig(t, 10*time.Millisecond))

	var calls int32
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		out := reply.(*wrapperspb.StringValue)
		if atomic.AddInt32(&calls, 1) > 1 {
			out.Value = "backup-reply"
			return nil
		}
		select {
		case <-time.After(300 * time.Millisecond):
			out.Value = "primary-reply"
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// The first call into invoker is the primary and takes 300ms; the
	// backup fired after 10ms answers at once, so the call returns well
	// before the primary would and the caller's reply holds the backup's.
	start := time.Now()
	reply := &wrapperspb.StringValue{}
	err := interceptor(context.Background(), "/svc/Method", &emptypb.Empty{}, reply, nil, invoker)
	elapsed := time.Since(start)

	assert.NoError(t, err)
	assert.Equal(t, "backup-reply", reply.Value)
	assert.Less(t, elapsed, 300*time.Millisecond)
}

func TestUnaryClientInterceptorPropagatesInvokerError(t *testing.T) {
	interceptor := UnaryClientInterceptor(fixedHedgeConfig(t, 100*time.Millisecond))

	boom := errors.New("unavailable")
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return boom
	}

	reply := &wrapperspb.StringValue{}
	err := interceptor(context.Background(), "/svc/Method", &emptypb.Empty{}, reply, nil, invoker)
	assert.Error(t, err)
}
