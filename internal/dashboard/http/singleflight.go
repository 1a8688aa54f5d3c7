package dashboardhttp

import (
	"context"

	"golang.org/x/sync/singleflight"
)

var chartBuildGroup singleflight.Group

// singleflightBuild collapses concurrent renders of the same chart. The caller
// stops waiting when ctx ends but the shared render keeps running.
func singleflightBuild(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error, bool) {
	resultChan := chartBuildGroup.DoChan(key, func() (interface{}, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
