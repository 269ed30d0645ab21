package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Bronny721/nadu-website/internal/domain"
)

// MemoryUserRepository is an in-process UserRepository for tests and local runs
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*domain.User
	orders OrderCounter
}

// OrderCounter lets the user store report order counts without owning orders
type OrderCounter interface {
	CountByUser(userID int64) int
}

// NewMemoryUserRepository creates an empty MemoryUserRepository
func NewMemoryUserRepository(orders OrderCounter) *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int64]*domain.User), orders: orders}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *MemoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *MemoryUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Name = user.Name
	u.Phone = user.Phone
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) SetRoleByEmails(ctx context.Context, emails []string, role domain.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(emails))
	for _, e := range emails {
		want[e] = true
	}
	var n int64
	for _, u := range r.users {
		if want[u.Email] && u.Role != role {
			u.Role = role
			n++
		}
	}
	return n, nil
}

// Delete removes a user; only tests need this since accounts are never deleted by the API
func (r *MemoryUserRepository) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

func (r *MemoryUserRepository) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customers := make([]*domain.Customer, 0, len(r.users))
	for _, u := range r.users {
		c := &domain.Customer{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, CreatedAt: u.CreatedAt}
		if r.orders != nil {
			c.OrderCount = r.orders.CountByUser(u.ID)
		}
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool {
		if customers[i].CreatedAt.Equal(customers[j].CreatedAt) {
			return customers[i].ID > customers[j].ID
		}
		return customers[i].CreatedAt.After(customers[j].CreatedAt)
	})
	return customers, nil
}

// MemoryOrderRepository is an in-process OrderRepository honoring the conditional update contract
type MemoryOrderRepository struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*domain.Order
	outbox *MemoryOutboxRepository
	topic  string
}

// NewMemoryOrderRepository creates an empty MemoryOrderRepository writing events to outbox
func NewMemoryOrderRepository(outbox *MemoryOutboxRepository) *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[int64]*domain.Order),
		outbox: outbox,
		topic:  domain.DefaultOrderTopic,
	}
}

func (r *MemoryOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	order.ID = r.nextID
	r.orders[order.ID] = cloneOrder(order)
	return r.emit(order, "")
}

func (r *MemoryOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Order{}
	for _, o := range r.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryOrderRepository) UpdateStatus(ctx context.Context, change *domain.StatusChange) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[change.OrderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if o.Status != change.From {
		return nil, domain.ErrStatusConflict
	}
	updated := o.Apply(change, time.Now())
	r.orders[o.ID] = updated
	if change.From != change.To {
		if err := r.emit(updated, change.From); err != nil {
			return nil, err
		}
	}
	return cloneOrder(updated), nil
}

func (r *MemoryOrderRepository) Stats(ctx context.Context) (*OrderStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &OrderStats{ByStatus: make(map[domain.OrderStatus]int)}
	for _, s := range domain.OrderStatuses {
		stats.ByStatus[s] = 0
	}
	for _, o := range r.orders {
		stats.Count++
		stats.ByStatus[o.Status]++
		if o.Status != domain.OrderStatusCancelled {
			stats.Revenue += o.Total
		}
	}
	return stats, nil
}

// CountByUser implements OrderCounter
func (r *MemoryOrderRepository) CountByUser(userID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n
}

func (r *MemoryOrderRepository) emit(order *domain.Order, previous domain.OrderStatus) error {
	if r.outbox == nil {
		return nil
	}
	msg, err := domain.OrderOutboxEvent(order, previous, r.topic)
	if err != nil {
		return err
	}
	r.outbox.Add(msg)
	return nil
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp
}

// MemoryProductRepository is an in-process ProductRepository
type MemoryProductRepository struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]*domain.Product
}

// NewMemoryProductRepository creates an empty MemoryProductRepository
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[int64]*domain.Product)}
}

func (r *MemoryProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(product)
	return nil
}

func (r *MemoryProductRepository) CreateBatch(ctx context.Context, products []*domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		r.insert(p)
	}
	return nil
}

func (r *MemoryProductRepository) insert(p *domain.Product) {
	r.nextID++
	p.ID = r.nextID
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	r.products[p.ID] = &cp
}

func (r *MemoryProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Product{}
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemoryProductRepository) Update(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.products[product.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *MemoryProductRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products), nil
}

// MemoryOutboxRepository is an in-process OutboxRepository
type MemoryOutboxRepository struct {
	mu       sync.Mutex
	messages []*domain.OutboxMessage
}

// NewMemoryOutboxRepository creates an empty MemoryOutboxRepository
func NewMemoryOutboxRepository() *MemoryOutboxRepository {
	return &MemoryOutboxRepository{}
}

// Add appends a message
func (r *MemoryOutboxRepository) Add(msg *domain.OutboxMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a snapshot of every stored message
func (r *MemoryOutboxRepository) Messages() []domain.OutboxMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.OutboxMessage, 0, len(r.messages))
	for _, m := range r.messages {
		out = append(out, *m)
	}
	return out
}

func (r *MemoryOutboxRepository) GetPendingMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	return r.filter(limit, func(m *domain.OutboxMessage) bool { return m.Status == domain.OutboxStatusPending }), nil
}

func (r *MemoryOutboxRepository) GetFailedMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	return r.filter(limit, func(m *domain.OutboxMessage) bool { return m.CanRetry() }), nil
}

func (r *MemoryOutboxRepository) filter(limit int, keep func(*domain.OutboxMessage) bool) []*domain.OutboxMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.OutboxMessage
	for _, m := range r.messages {
		if len(out) == limit {
			break
		}
		if keep(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out
}

func (r *MemoryOutboxRepository) MarkAsPublished(ctx context.Context, id string) error {
	return r.update(id, func(m *domain.OutboxMessage) {
		now := time.Now()
		m.Status = domain.OutboxStatusPublished
		m.ProcessedAt = &now
		m.PublishedAt = &now
	})
}

func (r *MemoryOutboxRepository) MarkAsFailed(ctx context.Context, id string, errMsg string) error {
	return r.update(id, func(m *domain.OutboxMessage) { fail(m, errMsg, domain.OutboxStatusFailed) })
}

func (r *MemoryOutboxRepository) MarkAsDead(ctx context.Context, id string, errMsg string) error {
	return r.update(id, func(m *domain.OutboxMessage) { fail(m, errMsg, domain.OutboxStatusDead) })
}

func fail(m *domain.OutboxMessage, errMsg string, status domain.OutboxStatus) {
	now := time.Now()
	m.Status = status
	m.LastError = errMsg
	m.RetryCount++
	m.ProcessedAt = &now
}

func (r *MemoryOutboxRepository) update(id string, fn func(*domain.OutboxMessage)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			fn(m)
			return nil
		}
	}
	return fmt.Errorf("outbox message %s not found", id)
}

func (r *MemoryOutboxRepository) DeletePublished(ctx context.Context, olderThanDays int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	kept := r.messages[:0]
	var n int64
	for _, m := range r.messages {
		if m.Status == domain.OutboxStatusPublished && m.PublishedAt != nil && m.PublishedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.messages = kept
	return n, nil
}

var (
	_ UserRepository    = (*MemoryUserRepository)(nil)
	_ OrderRepository   = (*MemoryOrderRepository)(nil)
	_ ProductRepository = (*MemoryProductRepository)(nil)
	_ OutboxRepository  = (*MemoryOutboxRepository)(nil)
)
