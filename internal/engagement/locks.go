package engagement

import "sync"

// lockTable выдает мьютекс на каждый пост; записи разных постов не конкурируют.
// Запись удаляется, когда ее больше никто не держит и не ждет.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*postLock
}

type postLock struct {
	mu   sync.Mutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*postLock)}
}

// Lock захватывает мьютекс поста и возвращает функцию освобождения
func (t *lockTable) Lock(postID string) func() {
	t.mu.Lock()
	l, ok := t.locks[postID]
	if !ok {
		l = &postLock{}
		t.locks[postID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, postID)
		}
		t.mu.Unlock()
	}
}

func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
