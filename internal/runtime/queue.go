package runtime

import "github.com/aretw0/boardwalk/pkg/domain"

// Queue is the ordered list of in-flight movements. A token appears at most once:
// queuing a new destination for it replaces the old one in place.
type Queue struct {
	items []domain.Movement
}

// Upsert queues m, replacing any movement of the same token. It reports whether a
// movement was replaced.
func (q *Queue) Upsert(m domain.Movement) bool {
	for i := range q.items {
		if q.items[i].Token == m.Token {
			q.items[i].To = m.To
			return true
		}
	}
	q.items = append(q.items, m)
	return false
}

// Remove drops the movement of a token, keeping the order of the rest.
func (q *Queue) Remove(id domain.TokenID) bool {
	for i := range q.items {
		if q.items[i].Token == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the queued movement of a token.
func (q *Queue) Get(id domain.TokenID) (domain.Movement, bool) {
	for _, m := range q.items {
		if m.Token == id {
			return m, true
		}
	}
	return domain.Movement{}, false
}

// Len returns the number of queued movements.
func (q *Queue) Len() int {
	return len(q.items)
}

// Items returns a copy of the queue in order.
func (q *Queue) Items() []domain.Movement {
	out := make([]domain.Movement, len(q.items))
	copy(out, q.items)
	return out
}
