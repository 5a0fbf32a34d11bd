package repository_test

import (
	"database/sql"
	"math"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartapi/internal/domain"
	"github.com/nikolayk812/cartapi/internal/port"
	"github.com/nikolayk812/cartapi/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"golang.org/x/text/currency"
)

// cartRepositorySuite holds the store-independent cases; the embedding suites provide repo and deleteAll.
type cartRepositorySuite struct {
	suite.Suite

	repo      port.CartRepository
	deleteAll func()
}

type postgresCartRepositorySuite struct {
	cartRepositorySuite

	container testcontainers.Container
	pool      *pgxpool.Pool
}

type sqliteCartRepositorySuite struct {
	cartRepositorySuite

	db *sql.DB
}

// entry point to run the tests in the suite
func TestPostgresCartRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	suite.Run(t, new(postgresCartRepositorySuite))
}

func TestSQLiteCartRepositorySuite(t *testing.T) {
	suite.Run(t, new(sqliteCartRepositorySuite))
}

// before all tests in the suite
func (suite *postgresCartRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	container, pool, err := startPostgres(ctx)
	suite.container = container
	suite.Require().NoError(err)
	suite.pool = pool

	suite.repo, err = repository.NewCart(suite.pool)
	suite.Require().NoError(err)

	suite.deleteAll = func() {
		_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE cart_items, carts")
		suite.NoError(err)
	}
}

// after all tests in the suite
func (suite *postgresCartRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(testcontainers.TerminateContainer(suite.container))
	}
}

func (suite *sqliteCartRepositorySuite) SetupSuite() {
	var err error

	suite.db, err = repository.OpenSQLite(suite.T().Context(), ":memory:")
	suite.Require().NoError(err)

	suite.repo, err = repository.NewSQLiteCart(suite.db)
	suite.Require().NoError(err)

	suite.deleteAll = func() {
		for _, table := range []string{"cart_items", "carts"} {
			_, err := suite.db.ExecContext(suite.T().Context(), "DELETE FROM "+table)
			suite.NoError(err)
		}
	}
}

func (suite *sqliteCartRepositorySuite) TearDownSuite() {
	if suite.db != nil {
		suite.NoError(suite.db.Close())
	}
}

func (suite *cartRepositorySuite) TestSave() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		cart      domain.Cart
		wantError string
	}{
		{
			name: "save empty cart: ok",
			cart: randomCart(0),
		},
		{
			name: "save cart with items: ok",
			cart: randomCart(3),
		},
		{
			name: "save cart with zero price item: ok",
			cart: func() domain.Cart {
				cart := randomCart(1)
				cart.Items[0].Price = decimal.Zero
				cart.TotalAmount = cart.Total()
				return cart
			}(),
		},
		{
			name: "save cart with invalid ID: error",
			cart: func() domain.Cart {
				cart := randomCart(0)
				cart.ID = "not-a-uuid"
				return cart
			}(),
			wantError: "cart id[not-a-uuid] is not valid",
		},
		{
			name: "save cart with invalid item ID: error",
			cart: func() domain.Cart {
				cart := randomCart(1)
				cart.Items[0].ID = "bad"
				return cart
			}(),
			wantError: "item id[bad] is not valid",
		},
		{
			name: "save cart with largest amounts: ok",
			cart: func() domain.Cart {
				cart := randomCart(1)
				cart.Items[0].Price = decimal.RequireFromString("999999999999999.9999")
				cart.Items[0].Quantity = 1
				cart.TotalAmount = cart.Total()
				return cart
			}(),
		},
		{
			name: "save cart with quantity above int32: error",
			cart: func() domain.Cart {
				cart := randomCart(1)
				cart.Items[0].Quantity = int(int64(math.MaxInt32) + 1)
				return cart
			}(),
			wantError: "quantity[2147483648] is out of range",
		},
		{
			name: "save cart with five decimal price: error",
			cart: func() domain.Cart {
				cart := randomCart(1)
				cart.Items[0].Price = decimal.RequireFromString("0.00005")
				cart.TotalAmount = cart.Total()
				return cart
			}(),
			wantError: "price[0.00005] is out of range",
		},
		{
			name: "save cart with total too large: error",
			cart: func() domain.Cart {
				cart := randomCart(1)
				cart.Items[0].Price = decimal.RequireFromString("100000000000000")
				cart.Items[0].Quantity = 100
				cart.TotalAmount = cart.Total()
				return cart
			}(),
			wantError: "total amount[10000000000000000] is out of range",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			saved, err := suite.repo.Save(ctx, tt.cart)
			if tt.wantError != "" {
				require.ErrorContains(t, err, tt.wantError)

				_, ok, err := suite.repo.FindByID(ctx, tt.cart.ID)
				require.NoError(t, err)
				assert.False(t, ok, "rejected cart must not be stored")
				return
			}
			require.NoError(t, err)
			assert.False(t, saved.CreatedAt.IsZero())
			assert.False(t, saved.UpdatedAt.IsZero())

			// Verify the round trip
			found, ok, err := suite.repo.FindByID(ctx, tt.cart.ID)
			require.NoError(t, err)
			require.True(t, ok)

			assertCart(t, tt.cart, found)
		})
	}
}

func (suite *cartRepositorySuite) TestSave_ReplacesItems() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	cart := randomCart(3)
	first, err := suite.repo.Save(ctx, cart)
	require.NoError(t, err)

	// drop the middle item, append a new one
	cart.Items = append([]domain.CartItem{cart.Items[0], cart.Items[2]}, randomCartItem(cart.ID))
	cart.TotalAmount = cart.Total()

	second, err := suite.repo.Save(ctx, cart)
	require.NoError(t, err)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt), "created_at is kept on update")

	found, ok, err := suite.repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	require.True(t, ok)

	assertCart(t, cart, found)
}

func (suite *cartRepositorySuite) TestFindByID() {
	defer suite.deleteAll()

	existing := randomCart(2)
	_, err := suite.repo.Save(suite.T().Context(), existing)
	suite.Require().NoError(err)

	tests := []struct {
		name      string
		cartID    string
		wantFound bool
	}{
		{
			name:      "existing cart: found",
			cartID:    existing.ID,
			wantFound: true,
		},
		{
			name:      "upper case ID: found",
			cartID:    strings.ToUpper(existing.ID),
			wantFound: true,
		},
		{
			name:   "unknown cart: not found",
			cartID: gofakeit.UUID(),
		},
		{
			name:   "non UUID ID: not found",
			cartID: "abc",
		},
		{
			name:   "empty ID: not found",
			cartID: "",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()

			cart, found, err := suite.repo.FindByID(t.Context(), tt.cartID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)

			if tt.wantFound {
				assertCart(t, existing, cart)
			}
		})
	}
}

func (suite *cartRepositorySuite) TestDelete() {
	defer suite.deleteAll()

	tests := []struct {
		name        string
		setup       bool
		cartID      string
		wantDeleted bool
	}{
		{
			name:        "delete existing cart with items: ok",
			setup:       true,
			wantDeleted: true,
		},
		{
			name:        "delete unknown cart: not deleted",
			cartID:      gofakeit.UUID(),
			wantDeleted: false,
		},
		{
			name:        "delete non UUID cart: not deleted",
			cartID:      "abc",
			wantDeleted: false,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			cartID := tt.cartID
			if tt.setup {
				cart := randomCart(2)
				_, err := suite.repo.Save(ctx, cart)
				require.NoError(t, err)
				cartID = cart.ID
			}

			deleted, err := suite.repo.Delete(ctx, cartID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, deleted)

			_, found, err := suite.repo.FindByID(ctx, cartID)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func (suite *cartRepositorySuite) TestPing() {
	suite.NoError(suite.repo.Ping(suite.T().Context()))
}

func (suite *postgresCartRepositorySuite) TestDelete_CascadesItems() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	cart := randomCart(3)
	_, err := suite.repo.Save(ctx, cart)
	require.NoError(t, err)

	deleted, err := suite.repo.Delete(ctx, cart.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	var count int
	err = suite.pool.QueryRow(ctx, "SELECT COUNT(*) FROM cart_items WHERE cart_id = $1", uuid.MustParse(cart.ID)).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func (suite *postgresCartRepositorySuite) TestMigratePostgres_Idempotent() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	cart := randomCart(2)
	_, err := suite.repo.Save(ctx, cart)
	require.NoError(t, err)

	require.NoError(t, repository.MigratePostgres(ctx, suite.pool))

	found, ok, err := suite.repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	require.True(t, ok, "rerun keeps existing rows")
	assertCart(t, cart, found)
}

func (suite *postgresCartRepositorySuite) TestWithTx_Rollback() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	tx, err := suite.pool.Begin(ctx)
	require.NoError(t, err)

	txRepo, err := repository.NewCartWithTx(tx)
	require.NoError(t, err)

	cart := randomCart(1)
	_, err = txRepo.Save(ctx, cart)
	require.NoError(t, err)

	_, found, err := txRepo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, found, "visible inside the transaction")
	require.NoError(t, txRepo.Ping(ctx))

	require.NoError(t, tx.Rollback(ctx))

	_, found, err = suite.repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.False(t, found, "gone after rollback")
}

func (suite *sqliteCartRepositorySuite) TestOpenSQLite_EmptyPath() {
	_, err := repository.OpenSQLite(suite.T().Context(), "")
	suite.EqualError(err, "path is empty")
}

func TestNewCart_Nil(t *testing.T) {
	_, err := repository.NewCart(nil)
	require.EqualError(t, err, "pool is nil")

	_, err = repository.NewCartWithTx(nil)
	require.EqualError(t, err, "tx is nil")

	_, err = repository.NewSQLiteCart(nil)
	require.EqualError(t, err, "db is nil")
}

func randomCart(itemCount int) domain.Cart {
	cart := domain.Cart{
		ID:       uuid.NewString(),
		UserID:   gofakeit.UUID(),
		Status:   domain.StatusActive,
		Currency: randomCurrency(),
		Items:    []domain.CartItem{},
	}

	for range itemCount {
		cart.Items = append(cart.Items, randomCartItem(cart.ID))
	}
	cart.TotalAmount = cart.Total()

	return cart
}

func randomCartItem(cartID string) domain.CartItem {
	return domain.CartItem{
		ID:          uuid.NewString(),
		CartID:      cartID,
		ProductID:   gofakeit.UUID(),
		ProductName: gofakeit.ProductName(),
		Price:       decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
		Quantity:    gofakeit.IntRange(1, 10),
	}
}

func randomCurrency() currency.Unit {
	var (
		result currency.Unit
		err    error
	)

	for {
		// tag is not a recognized currency
		result, err = currency.ParseISO(gofakeit.CurrencyShort())
		if err == nil {
			break
		}
	}

	return result
}

func assertCart(t *testing.T, expected, actual domain.Cart) {
	t.Helper()

	currencyComparer := cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	})

	// timestamps are owned by the store
	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Cart{}, "CreatedAt", "UpdatedAt"),
		cmpopts.EquateEmpty(),
		currencyComparer,
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)

	assert.False(t, actual.CreatedAt.IsZero())
}
