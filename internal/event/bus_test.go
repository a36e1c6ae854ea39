package event

import (
	"sync"
	"sync/atomic"
	"testing"
)

// TestNewBus 测试创建新的事件总线
func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("NewBus() 返回 nil")
	}
	if bus.handlers == nil {
		t.Fatal("NewBus() handlers map 未初始化")
	}
}

// TestSubscribeAndPublish 测试订阅和发布事件（同步派发）
func TestSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	var received any
	bus.Subscribe(EventLanded, func(event any) {
		received = event
	})

	bus.Publish(EventLanded, LandedEvent{ImpactSpeed: 4})

	got, ok := received.(LandedEvent)
	if !ok || got.ImpactSpeed != 4 {
		t.Errorf("handler 收到 %v, 期望 LandedEvent{4}", received)
	}
}

// TestPublishNoSubscribers 测试发布无订阅者的事件不会 panic
func TestPublishNoSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish("nonexistent", "data")

	var nilBus *Bus
	nilBus.Publish(EventLanded, nil)
}

// TestHandlersRunInOrder 测试多个订阅者按订阅顺序执行
func TestHandlersRunInOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		bus.Subscribe("test", func(any) { order = append(order, i) })
	}

	bus.Publish("test", nil)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("执行顺序 %v, 期望 [1 2 3]", order)
	}
}

// TestUnsubscribe 测试取消订阅后不再收到事件
func TestUnsubscribe(t *testing.T) {
	bus := NewBus()
	var count int
	unsubscribe := bus.Subscribe(EventCrouchChanged, func(any) { count++ })
	keep := 0
	bus.Subscribe(EventCrouchChanged, func(any) { keep++ })

	bus.Publish(EventCrouchChanged, CrouchChangedEvent{Crouched: true})
	unsubscribe()
	unsubscribe()
	bus.Publish(EventCrouchChanged, CrouchChangedEvent{Crouched: false})

	if count != 1 {
		t.Errorf("取消订阅的 handler 被调用 %d 次, 期望 1 次", count)
	}
	if keep != 2 {
		t.Errorf("保留的 handler 被调用 %d 次, 期望 2 次", keep)
	}
	if n := bus.Subscribers(EventCrouchChanged); n != 1 {
		t.Errorf("订阅者数量 %d, 期望 1", n)
	}
}

// TestHandlerPanicIsRecovered 测试 handler panic 不影响其他 handler
func TestHandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus()
	called := false
	bus.Subscribe("test", func(any) { panic("boom") })
	bus.Subscribe("test", func(any) { called = true })

	bus.Publish("test", nil)

	if !called {
		t.Error("panic 之后的 handler 应该被调用")
	}
}

// TestConcurrentSubscribeAndPublish 测试并发订阅和发布的线程安全性
func TestConcurrentSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	var count atomic.Int64

	bus.Subscribe("test", func(event any) {
		count.Add(1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish("test", "data")
		}()
	}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsubscribe := bus.Subscribe("test", func(event any) {})
			unsubscribe()
		}()
	}
	wg.Wait()

	if count.Load() != 100 {
		t.Errorf("应该收到 100 次事件, 实际收到 %d 次", count.Load())
	}
}
