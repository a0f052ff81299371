// Package pool предоставляет обобщённый потокобезопасный пул ресурсов *T.
// Пул не блокирует вызывающего: если свободных ресурсов нет, новый создаётся фабрикой.
// Пример использования:
//
//	connPool := pool.NewWithFactory(func() (*Conn, error) { return dial() })
//	c, err := connPool.Take()
//	// использовать c
//	connPool.Put(c)
package pool

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Factory создаёт новый ресурс. Ошибка фабрики возвращается из Take без изменений.
type Factory[T any] func() (*T, error)

// Option настраивает пул при создании.
type Option func(*settings)

type settings struct {
	logger *zap.SugaredLogger
}

// WithLogger задаёт логгер пула. По умолчанию используется zap.NewNop().
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// Pool хранит свободные ресурсы типа *T.
// Ресурс, который вызывающий не вернул через Put, просто собирается GC.
type Pool[T any] struct {
	mu     sync.Mutex
	items  []*T
	pooled map[*T]struct{}

	factory Factory[T]
	logger  *zap.SugaredLogger

	hits          atomic.Int64
	created       atomic.Int64
	factoryErrors atomic.Int64
	returned      atomic.Int64
	rejected      atomic.Int64
}

// Stats содержит снимок счётчиков пула.
type Stats struct {
	Size          int
	Hits          int64
	Created       int64
	FactoryErrors int64
	Returned      int64
	Rejected      int64
}

// New создаёт пул без фабрики: Take на пустом пуле вернёт ErrUninitializedFactory.
func New[T any](opts ...Option) *Pool[T] {
	return NewWithFactory[T](nil, opts...)
}

// NewWithFactory создаёт пул, который при пустом списке ресурсов вызывает factory.
func NewWithFactory[T any](factory Factory[T], opts ...Option) *Pool[T] {
	s := settings{logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(&s)
	}

	return &Pool[T]{
		pooled:  make(map[*T]struct{}),
		factory: factory,
		logger:  s.logger,
	}
}

// Take возвращает свободный ресурс из пула (последний возвращённый).
// Если пул пуст, ресурс создаётся фабрикой вне блокировки,
// поэтому параллельные вызовы на пустом пуле могут создать несколько ресурсов.
func (p *Pool[T]) Take() (*T, error) {
	p.mu.Lock()
	n := len(p.items)
	if n > 0 {
		r := p.items[n-1]
		p.items[n-1] = nil
		p.items = p.items[:n-1]
		delete(p.pooled, r)
		p.mu.Unlock()

		p.hits.Inc()
		return r, nil
	}
	p.mu.Unlock()

	if p.factory == nil {
		return nil, ErrUninitializedFactory
	}

	p.logger.Debugw("Pool is empty, creating new resource")
	r, err := p.factory()
	if err != nil {
		p.factoryErrors.Inc()
		return nil, err
	}
	if r == nil {
		p.factoryErrors.Inc()
		return nil, fmt.Errorf("%w: factory returned nil", ErrInvalidResource)
	}

	p.created.Inc()
	return r, nil
}

// Put возвращает ресурс в пул. Состояние ресурса не проверяется и не сбрасывается.
func (p *Pool[T]) Put(r *T) error {
	if r == nil {
		p.rejected.Inc()
		p.logger.Debugw("Rejected nil resource")
		return ErrInvalidResource
	}

	p.mu.Lock()
	if _, ok := p.pooled[r]; ok {
		p.mu.Unlock()
		p.rejected.Inc()
		p.logger.Warnw("Rejected resource that is already pooled")
		return fmt.Errorf("%w: resource is already pooled", ErrInvalidResource)
	}
	p.items = append(p.items, r)
	p.pooled[r] = struct{}{}
	p.mu.Unlock()

	p.returned.Inc()
	return nil
}

// Size возвращает текущее число свободных ресурсов.
func (p *Pool[T]) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Drain забирает из пула все свободные ресурсы и освобождает те, что реализуют io.Closer.
// Ошибки закрытия объединяются, закрытие остальных ресурсов при этом продолжается.
// После Drain пул остаётся пригодным к использованию.
func (p *Pool[T]) Drain() error {
	p.mu.Lock()
	items := p.items
	p.items = nil
	p.pooled = make(map[*T]struct{})
	p.mu.Unlock()

	var err error
	for _, r := range items {
		if c, ok := any(r).(io.Closer); ok {
			err = errors.Join(err, c.Close())
		}
	}

	p.logger.Debugw("Pool drained", "released", len(items))
	return err
}

// Stats возвращает снимок счётчиков. Size читается под блокировкой,
// остальные поля независимы и могут быть несогласованы между собой.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Size:          p.Size(),
		Hits:          p.hits.Load(),
		Created:       p.created.Load(),
		FactoryErrors: p.factoryErrors.Load(),
		Returned:      p.returned.Load(),
		Rejected:      p.rejected.Load(),
	}
}
