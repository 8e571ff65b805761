package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/naturlife/storefront/internal/auth"
	"github.com/naturlife/storefront/internal/domain/job"
	"github.com/naturlife/storefront/internal/domain/order"
	"github.com/naturlife/storefront/internal/domain/product"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/jobs"
	"github.com/naturlife/storefront/internal/repo/memory"
	"github.com/naturlife/storefront/internal/repo/postgres"
	"github.com/naturlife/storefront/internal/security"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789abcdef0123456789"

func newTokens() *auth.Manager {
	return auth.NewManager(testSecret, time.Hour)
}

func newGuard(tokens *auth.Manager) *Guard {
	return NewGuard(auth.NewGate(tokens), nil)
}

// seedUser stores a user with the given role and returns it with a signed token.
func seedUser(t *testing.T, users *memory.UsersRepo, tokens *auth.Manager, email string, role user.Role) (user.User, string) {
	t.Helper()

	hash, err := security.HashPassword("secret123")
	require.NoError(t, err)

	u, err := users.Create(context.Background(), user.NewUser{
		Email:        email,
		PasswordHash: hash,
		Name:         "Test " + string(role),
		Role:         role,
	})
	require.NoError(t, err)

	tok, err := tokens.Issue(u.ID, u.Email, u.Role)
	require.NoError(t, err)
	return u, tok
}

type fakeJobs struct {
	mu      sync.Mutex
	created []job.CreateRequest
	err     error
}

func (f *fakeJobs) Create(_ context.Context, req job.CreateRequest) (job.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return job.Job{}, f.err
	}
	f.created = append(f.created, req)
	return job.New(req), nil
}

func (f *fakeJobs) CreateTx(ctx context.Context, _ pgx.Tx, req job.CreateRequest) (job.Job, error) {
	return f.Create(ctx, req)
}

func (f *fakeJobs) types() []jobs.JobType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]jobs.JobType, 0, len(f.created))
	for _, r := range f.created {
		out = append(out, jobs.JobType(r.Type))
	}
	return out
}

// fakeProducts is a map-backed catalog that counts reads.
type fakeProducts struct {
	mu    sync.Mutex
	items map[string]product.Product
	reads int
}

func newFakeProducts(items ...product.Product) *fakeProducts {
	f := &fakeProducts{items: make(map[string]product.Product)}
	for _, p := range items {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) List(_ context.Context, flt product.ListFilter) ([]product.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++

	out := make([]product.Product, 0, len(f.items))
	for _, p := range f.items {
		if flt.OnlyActive && p.Status != product.StatusActive {
			continue
		}
		if flt.Promo && p.Discount <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++

	p, ok := f.items[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

func (f *fakeProducts) Create(_ context.Context, req product.CreateRequest) (product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := product.New(req, uuid.NewString(), time.Now().UTC())
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProducts) Update(_ context.Context, id string, req product.UpdateRequest) (product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.items[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	p = p.Apply(req, time.Now().UTC())
	f.items[id] = p
	return p, nil
}

func (f *fakeProducts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return product.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeProducts) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func activeProduct(name string, priceCents int64, stock int) product.Product {
	return product.Product{
		ID:         uuid.NewString(),
		Name:       name,
		PriceCents: priceCents,
		Stock:      stock,
		Category:   "herbs",
		Status:     product.StatusActive,
	}
}

// fakeOrders places orders against fakeProducts the way the Postgres store does:
// lock, check, decrement, then run the after hook.
type fakeOrders struct {
	products *fakeProducts
	placed   []order.Order
	afterErr error
}

func (f *fakeOrders) Place(ctx context.Context, p order.Placement, after postgres.AfterPlace) (order.Order, error) {
	if len(p.Lines) == 0 {
		return order.Order{}, order.ErrEmptyOrder
	}

	f.products.mu.Lock()
	defer f.products.mu.Unlock()

	o := order.Order{
		ID:              uuid.NewString(),
		UserID:          p.UserID,
		Status:          order.StatusPending,
		ShippingAddress: p.ShippingAddress,
		PaymentMethod:   p.PaymentMethod,
		CreatedAt:       time.Now().UTC(),
	}
	for _, l := range p.Lines {
		prod, ok := f.products.items[l.ProductID]
		if !ok || prod.Status != product.StatusActive {
			return order.Order{}, product.ErrNotFound
		}
		if prod.Stock < l.Quantity {
			return order.Order{}, product.ErrInsufficientStock
		}
		o.Items = append(o.Items, order.Item{
			ID:             uuid.NewString(),
			OrderID:        o.ID,
			ProductID:      prod.ID,
			ProductName:    prod.Name,
			Quantity:       l.Quantity,
			UnitPriceCents: prod.PriceCents,
		})
	}
	o.TotalCents = order.Total(o.Items)

	if after != nil {
		if err := after(ctx, nil, o); err != nil {
			return order.Order{}, err
		}
	}

	for _, it := range o.Items {
		prod := f.products.items[it.ProductID]
		prod.Stock -= it.Quantity
		f.products.items[it.ProductID] = prod
	}
	f.placed = append(f.placed, o)
	return o, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	out := make([]order.Order, 0)
	for _, o := range f.placed {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}
