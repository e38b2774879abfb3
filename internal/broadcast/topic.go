package broadcast

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Topic fans messages of type T out to its subscribers in subscription order.
type Topic[T any] struct {
	name   string
	nextID uint64
	subs   []subscriber[T]
}

func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name}
}

func (t *Topic[T]) Name() string { return t.name }

// Len returns the number of live subscriptions.
func (t *Topic[T]) Len() int { return len(t.subs) }

// Subscribe registers fn until the returned subscription is closed.
func (t *Topic[T]) Subscribe(fn func(T)) *Subscription {
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscriber[T]{id: id, fn: fn})
	return &Subscription{cancel: func() { t.remove(id) }}
}

func (t *Topic[T]) remove(id uint64) {
	for i, s := range t.subs {
		if s.id == id {
			t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers msg to every subscriber registered when Publish was
// called and returns how many were invoked. Subscribers may subscribe or
// close during delivery; that only affects later publishes.
func (t *Topic[T]) Publish(msg T) int {
	subs := t.subs
	for _, s := range subs {
		s.fn(msg)
	}
	return len(subs)
}

// Subscription ties a subscriber's lifetime to its owner. Close is
// idempotent, so owners can defer it unconditionally.
type Subscription struct {
	cancel func()
}

func (s *Subscription) Close() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}
