package gate

import "context"

// Policy decides whether user may perform action on resource. For list and
// create checks resource may be nil.
type Policy[U any] interface {
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) bool

// Can calls f.
func (f PolicyFunc[U]) Can(ctx context.Context, user U, action Action, resource any) bool {
	return f(ctx, user, action, resource)
}
