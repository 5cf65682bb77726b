package workspace

import "context"

// mutation is one optimistic change: apply a tentative local state, make the
// authoritative call, then either commit the server's answer over the
// tentative state or roll it back.
type mutation[T any] struct {
	apply    func()
	call     func(ctx context.Context) (T, error)
	commit   func(T)
	rollback func()
}

func optimistic[T any](ctx context.Context, m mutation[T]) Result[T] {
	if m.apply != nil {
		m.apply()
	}
	v, err := m.call(ctx)
	if err != nil {
		if m.rollback != nil {
			m.rollback()
		}
		return Err[T](err)
	}
	if m.commit != nil {
		m.commit(v)
	}
	return Ok(v)
}
