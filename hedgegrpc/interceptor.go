// Package hedgegrpc adapts the hedging executor to gRPC's unary client
// interceptor chain, grounded on failsafegrpc's UnaryClientInterceptor but
// generalized from "wrap one failsafe.Executor" to "race a primary RPC
// against delayed backups and splice the winner's response back into the
// caller's reply."
package hedgegrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"

	"github.com/North-Shore-AI/crucible-hedging/hedge"
)

// UnaryClientInterceptor returns a gRPC unary client interceptor that
// hedges the call per cfg. Each attempt invokes against its own cloned
// reply message (gRPC unmarshals into reply in place, so concurrent
// attempts cannot safely share one), and the winning attempt's reply is
// merged back into the caller's original reply on success.
func UnaryClientInterceptor(cfg hedge.Config) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		target, ok := reply.(proto.Message)
		if !ok {
			return fmt.Errorf("hedgegrpc: reply for %s does not implement proto.Message", method)
		}

		attempt := func(attemptCtx context.Context) (proto.Message, error) {
			attemptReply := proto.Clone(target)
			proto.Reset(attemptReply)
			if err := invoker(attemptCtx, method, req, attemptReply, cc, opts...); err != nil {
				return nil, err
			}
			return attemptReply, nil
		}

		winner, _, err := hedge.Request[proto.Message](ctx, attempt, cfg)
		if err != nil {
			return err
		}

		proto.Reset(target)
		proto.Merge(target, winner)
		return nil
	}
}
