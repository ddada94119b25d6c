package store

// acquire 占用某实体id的队列槽位，先到先得
// 返回的释放函数必须调用，否则后续同实体变更永久阻塞
func (s *Store) acquire(id string) func() {
	s.queueMu.Lock()
	prev := s.queueTail[id]
	slot := make(chan struct{})
	s.queueTail[id] = slot
	s.queueMu.Unlock()

	if prev != nil {
		<-prev
	}

	return func() {
		s.queueMu.Lock()
		if s.queueTail[id] == slot {
			delete(s.queueTail, id)
		}
		s.queueMu.Unlock()
		close(slot)
	}
}
