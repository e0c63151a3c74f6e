package spawnpick

import (
	"context"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Outcome is what the fault injector does to a call.
type Outcome int

const (
	OutcomePass Outcome = 1
	OutcomeSlow Outcome = 2
	OutcomeFail Outcome = 3
)

// NewFaultSelector returns a selector over outcomes with the given weights.
func NewFaultSelector(pass, slow, fail int, opts ...SelectorOption) *Selector[Outcome] {
	s := NewSelector[Outcome](opts...)
	s.AddChoice(OutcomePass, pass)
	s.AddChoice(OutcomeSlow, slow)
	s.AddChoice(OutcomeFail, fail)
	return s
}

// GRPCFaultInjector returns an interceptor that picks an outcome for every
// call. Failed calls return codes.Unavailable without reaching the server,
// slow calls are held for delay first. An empty selector passes every call.
func GRPCFaultInjector(sel *Selector[Outcome], delay time.Duration) grpc.UnaryClientInterceptor {
	var mu sync.Mutex
	return func(ctx context.Context,
		method string, req, reply interface{},
		cc *grpc.ClientConn, invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		mu.Lock()
		outcome := sel.Choose()
		mu.Unlock()

		switch outcome {
		case OutcomeFail:
			service, _ := splitMethodName(method)
			return status.Errorf(codes.Unavailable, "injected failure calling %s", service)
		case OutcomeSlow:
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				return status.FromContextError(ctx.Err()).Err()
			}
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func splitMethodName(fullMethodName string) (string, string) {
	fullMethodName = strings.TrimPrefix(fullMethodName, "/") // remove leading slash
	if i := strings.Index(fullMethodName, "/"); i >= 0 {
		return fullMethodName[:i], fullMethodName[i+1:]
	}
	return "unknown", "unknown"
}
