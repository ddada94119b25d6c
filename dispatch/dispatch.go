// Package dispatch 页面层的命令总线，取代逐层传递的回调
package dispatch

import (
	"sync"
	"time"
)

// 命令类型
const (
	KindApplied    = "applied"     // 乐观变更已确认
	KindRolledBack = "rolled_back" // 变更失败已回滚，Message为用户提示
	KindRefreshed  = "refreshed"   // 集合已全量刷新
)

// Command 状态变化通知
type Command struct {
	Kind    string
	Entity  string
	ID      string
	Message string
}

type (
	Subscriber chan Command
	TopicFunc  func(Command) bool
)

// Dispatcher 命令分发器
type Dispatcher struct {
	// subscribers 订阅者都注册在这里，分发消息时从这里开始
	subscribers map[Subscriber]TopicFunc
	buffer      int           // 订阅者的缓冲区长度
	timeout     time.Duration // 分发消息的超时时间
	// m 保护 subscribers
	m sync.RWMutex
}

func NewDispatcher(timeout time.Duration, buffer int) *Dispatcher {
	return &Dispatcher{
		buffer:      buffer,
		timeout:     timeout,
		subscribers: make(map[Subscriber]TopicFunc),
	}
}

func (p *Dispatcher) Subscribe() Subscriber {
	return p.SubscribeTopic(nil)
}

// SubscribeTopic 订阅并按topic过滤
func (p *Dispatcher) SubscribeTopic(topic TopicFunc) Subscriber {
	ch := make(Subscriber, p.buffer)
	p.m.Lock()
	p.subscribers[ch] = topic
	p.m.Unlock()

	return ch
}

// SubscribeEntity 只订阅某类实体的命令
func (p *Dispatcher) SubscribeEntity(entity string) Subscriber {
	return p.SubscribeTopic(func(c Command) bool {
		return c.Entity == entity
	})
}

// Evict 删除掉某个订阅者
func (p *Dispatcher) Evict(sub Subscriber) {
	p.m.Lock()
	defer p.m.Unlock()

	delete(p.subscribers, sub)
	close(sub)
}

// Dispatch 向所有订阅者分发命令，订阅者用topic过滤
func (p *Dispatcher) Dispatch(c Command) {
	p.m.RLock()
	defer p.m.RUnlock()

	var wg sync.WaitGroup
	for sub, topic := range p.subscribers {
		wg.Add(1)
		go p.send(sub, topic, c, &wg)
	}

	wg.Wait()
}

// Close 关闭分发器，删除所有订阅者
func (p *Dispatcher) Close() {
	p.m.Lock()
	defer p.m.Unlock()

	for sub := range p.subscribers {
		delete(p.subscribers, sub)
		close(sub)
	}
}

func (p *Dispatcher) send(sub Subscriber, topic TopicFunc, c Command, wg *sync.WaitGroup) {
	defer wg.Done()

	if topic != nil && !topic(c) {
		return
	}

	select {
	case sub <- c:
	case <-time.After(p.timeout):
	}
}
