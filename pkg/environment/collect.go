package environment

import (
	"context"
	"runtime"

	"github.com/gammazero/workerpool"
	"github.com/hashicorp/go-multierror"
)

type result struct {
	info Info
	err  error
}

// Collect runs all providers concurrently and merges the info they provide.
// Info of providers that succeeded is returned even when others failed.
func Collect(ctx context.Context, providers ...Provider) (Info, error) {
	var (
		info  = Info{}
		chRes = make(chan result)
		wp    = workerpool.New(runtime.NumCPU())
	)

	for _, provider := range providers {
		p := provider
		wp.Submit(func() {
			i, err := p.Provide(ctx)
			chRes <- result{info: i, err: err}
		})
	}

	go func() {
		wp.StopWait()
		close(chRes)
	}()

	var mErr *multierror.Error
	for res := range chRes {
		if res.err != nil {
			mErr = multierror.Append(mErr, res.err)
			continue
		}
		info.Merge(res.info)
	}
	return info, mErr.ErrorOrNil()
}
