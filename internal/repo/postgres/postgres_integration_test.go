package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naturlife/storefront/internal/db"
	"github.com/naturlife/storefront/internal/domain/delivery"
	"github.com/naturlife/storefront/internal/domain/job"
	"github.com/naturlife/storefront/internal/domain/order"
	"github.com/naturlife/storefront/internal/domain/product"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/jobs"
	"github.com/naturlife/storefront/internal/repo/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a disposable database: TEST_DB_DSN=postgres://... go test ./internal/repo/postgres
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	return pool
}

func createUser(t *testing.T, repo *postgres.UsersRepo) user.User {
	t.Helper()
	u, err := repo.Create(context.Background(), user.NewUser{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Name:         "Buyer",
		Role:         user.RoleUser,
	})
	require.NoError(t, err)
	return u
}

func createProduct(t *testing.T, repo *postgres.ProductsRepo, price int64, stock int) product.Product {
	t.Helper()
	p, err := repo.Create(context.Background(), product.CreateRequest{
		Name:       "Rosehip oil " + uuid.NewString()[:8],
		PriceCents: price,
		Stock:      stock,
		Category:   "oils",
	})
	require.NoError(t, err)
	return p
}

func TestUsersRepo_DuplicateEmail(t *testing.T) {
	pool := testPool(t)
	users := postgres.NewUsersRepo(pool, nil)
	ctx := context.Background()

	u := createUser(t, users)

	_, err := users.Create(ctx, user.NewUser{Email: u.Email, PasswordHash: "x", Name: "Dup", Role: user.RoleUser})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	got, err := users.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, users.UpdateRole(ctx, u.ID, user.RoleAdmin))
	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, got.Role)

	require.NoError(t, users.Delete(ctx, u.ID))
	_, err = users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestOrdersRepo_PlaceAndCancel(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	users := postgres.NewUsersRepo(pool, nil)
	products := postgres.NewProductsRepo(pool, nil)
	orders := postgres.NewOrdersRepo(pool, nil)
	jobsRepo := postgres.NewJobsRepo(pool, nil)

	buyer := createUser(t, users)
	p := createProduct(t, products, 1250, 5)

	var enqueued job.Job
	o, err := orders.Place(ctx, order.Placement{
		UserID:          buyer.ID,
		Lines:           []order.LineRequest{{ProductID: p.ID, Quantity: 2}},
		ShippingAddress: "1 Garden Row",
		PaymentMethod:   order.PaymentCard,
	}, func(ctx context.Context, tx pgx.Tx, o order.Order) error {
		payload := jobs.OrderConfirmationPayload{OrderID: o.ID, UserID: o.UserID, Email: buyer.Email, Name: buyer.Name, TotalCents: o.TotalCents, ItemCount: 2}
		req, err := jobs.NewCreateRequest(jobs.JobOrderConfirmation, payload, payload.IdempotencyKey())
		if err != nil {
			return err
		}
		enqueued, err = jobsRepo.CreateTx(ctx, tx, req)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), o.TotalCents)

	stored, err := jobsRepo.GetByID(ctx, enqueued.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusPending, stored.Status)

	after, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Stock)

	cancelled, err := orders.UpdateStatus(ctx, o.ID, order.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	restored, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, restored.Stock)

	_, err = orders.UpdateStatus(ctx, o.ID, order.StatusShipped)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
}

func TestOrdersRepo_InsufficientStockRollsBack(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	users := postgres.NewUsersRepo(pool, nil)
	products := postgres.NewProductsRepo(pool, nil)
	orders := postgres.NewOrdersRepo(pool, nil)

	buyer := createUser(t, users)
	plenty := createProduct(t, products, 500, 10)
	scarce := createProduct(t, products, 700, 1)

	_, err := orders.Place(ctx, order.Placement{
		UserID: buyer.ID,
		Lines: []order.LineRequest{
			{ProductID: plenty.ID, Quantity: 3},
			{ProductID: scarce.ID, Quantity: 2},
		},
		ShippingAddress: "1 Garden Row",
		PaymentMethod:   order.PaymentCard,
	}, nil)
	require.ErrorIs(t, err, product.ErrInsufficientStock)

	got, err := products.GetByID(ctx, plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)

	mine, err := orders.ListByUser(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestOrdersRepo_AfterPlaceErrorAbortsOrder(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	users := postgres.NewUsersRepo(pool, nil)
	products := postgres.NewProductsRepo(pool, nil)
	orders := postgres.NewOrdersRepo(pool, nil)

	buyer := createUser(t, users)
	p := createProduct(t, products, 500, 4)

	boom := errors.New("enqueue failed")
	_, err := orders.Place(ctx, order.Placement{
		UserID:          buyer.ID,
		Lines:           []order.LineRequest{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: "1 Garden Row",
		PaymentMethod:   order.PaymentCard,
	}, func(context.Context, pgx.Tx, order.Order) error { return boom })
	require.ErrorIs(t, err, boom)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)
}

func TestJobsRepo_ClaimRescheduleFail(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewJobsRepo(pool, nil)

	// drain anything runnable left by other tests
	for {
		j, err := repo.ClaimNext(ctx, "drain")
		if errors.Is(err, job.ErrJobNotFound) {
			break
		}
		require.NoError(t, err)
		require.NoError(t, repo.MarkDone(ctx, j.ID))
	}

	payload := jobs.WelcomeEmailPayload{UserID: uuid.NewString(), Email: "w@example.com", Name: "W"}
	req, err := jobs.NewCreateRequest(jobs.JobWelcomeEmail, payload, payload.IdempotencyKey())
	require.NoError(t, err)
	created, err := repo.Create(ctx, req)
	require.NoError(t, err)

	claimed, err := repo.ClaimNext(ctx, "w-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, claimed.ID)
	assert.Equal(t, job.StatusProcessing, claimed.Status)

	_, err = repo.ClaimNext(ctx, "w-2")
	assert.ErrorIs(t, err, job.ErrJobNotFound)

	require.NoError(t, repo.Reschedule(ctx, claimed.ID, time.Now().Add(time.Hour), "later"))
	_, err = repo.ClaimNext(ctx, "w-2")
	assert.ErrorIs(t, err, job.ErrJobNotFound)

	require.NoError(t, repo.MarkFailed(ctx, claimed.ID, "gave up"))
	require.NoError(t, repo.Retry(ctx, claimed.ID))

	err = repo.Retry(ctx, claimed.ID)
	assert.ErrorIs(t, err, job.ErrJobNotFailed)
}

func TestNotificationDeliveries_Dedupe(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewNotificationDeliveriesRepo(pool, nil)

	subject := uuid.NewString()

	require.NoError(t, repo.TryStart(ctx, delivery.KindOrderConfirmation, subject, uuid.NewString(), "a@x.com"))
	assert.ErrorIs(t, repo.TryStart(ctx, delivery.KindOrderConfirmation, subject, uuid.NewString(), "a@x.com"), delivery.ErrInProgress)

	require.NoError(t, repo.MarkFailed(ctx, delivery.KindOrderConfirmation, subject, "smtp"))
	require.NoError(t, repo.TryStart(ctx, delivery.KindOrderConfirmation, subject, uuid.NewString(), "a@x.com"))

	id := "provider-1"
	require.NoError(t, repo.MarkSent(ctx, delivery.KindOrderConfirmation, subject, &id))
	assert.ErrorIs(t, repo.TryStart(ctx, delivery.KindOrderConfirmation, subject, uuid.NewString(), "a@x.com"), delivery.ErrAlreadySent)
}
