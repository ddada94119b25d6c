package store

import (
	"strings"

	"github.com/google/uuid"

	"github.com/firsthash/console/dispatch"
	"github.com/firsthash/console/errors"
	"github.com/firsthash/console/logger"
)

const tempPrefix = "temp_"

// tempID 乐观创建的临时id，成功后换成后端下发的真实id
func tempID() string {
	return tempPrefix + uuid.NewString()
}

// IsTempID 是否临时id
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempPrefix)
}

// mutation 乐观变更
// apply在锁内同步生效并返回回滚闭包；call是网络挂起点；reconcile在成功后锁内执行
type mutation struct {
	entity    string
	id        string
	apply     func() func()
	call      func() error
	reconcile func()
}

// run 变更协议：快照→本地生效→网络→成功对账/失败精确回滚
// 同一实体id的变更经FIFO队列串行，杜绝同实体的网络阶段交错
func (s *Store) run(m mutation) error {
	release := s.acquire(m.id)
	defer release()

	s.mu.Lock()
	s.pending[m.id]++
	rollback := m.apply()
	s.mu.Unlock()

	err := m.call()

	s.mu.Lock()
	if s.pending[m.id] <= 1 {
		delete(s.pending, m.id)
	} else {
		s.pending[m.id]--
	}
	if err != nil {
		rollback()
		s.mu.Unlock()
		logger.Warnf(map[string]interface{}{"entity": m.entity, "id": m.id}, logger.ROLLBACKWARN, err.Error())
		s.events.Dispatch(dispatch.Command{
			Kind:    dispatch.KindRolledBack,
			Entity:  m.entity,
			ID:      m.id,
			Message: userMessage(err),
		})
		return err
	}
	if m.reconcile != nil {
		m.reconcile()
	}
	s.mu.Unlock()
	s.events.Dispatch(dispatch.Command{Kind: dispatch.KindApplied, Entity: m.entity, ID: m.id})
	return nil
}

// userMessage 界面提示，优先用后端下发的消息
func userMessage(err error) string {
	if e, ok := errors.AsAPIError(err); ok {
		return e.UserMessage()
	}
	if err != nil {
		return err.Error()
	}
	return "操作失败，请重试"
}
