//go:build integration

package pgdb

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/onlinestore/internal/cfg"
	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/onlinestore/internal/testutil"
	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/DRSN-tech/onlinestore/pkg/postgres"
	"github.com/DRSN-tech/onlinestore/pkg/tr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

type PostgresSuite struct {
	suite.Suite
	db       *postgres.PgDatabase
	products *ProductRepo
	users    *UserRepo
	outbox   *OutboxEventRepo
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	host, port := testutil.StartPostgres(s.T())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		db  *postgres.PgDatabase
		err error
	)
	// Порт открывается раньше, чем postgres начинает принимать соединения.
	require.Eventually(s.T(), func() bool {
		db, err = postgres.Connect(ctx, &cfg.PGDBCfg{
			Host:           host,
			Port:           port,
			User:           "postgres",
			Password:       "postgres",
			DBName:         "onlinestore",
			SSLMode:        "disable",
			MigrationsPath: "../../../db/migrations",
		})
		return err == nil
	}, 20*time.Second, 500*time.Millisecond)
	s.Require().NoError(db.RunMigrations(nopLogger{}))

	s.db = db
	s.products = NewProductRepo(db.Pool, converter.NewProductConverter(), converter.NewCategoryConverter())
	s.users = NewUserRepo(db.Pool, converter.NewUserConverter())
	s.outbox = NewOutboxEventRepo(db.Pool, converter.NewOutboxEventConverter())
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.db.Pool.Exec(context.Background(), `TRUNCATE products, users, outbox_events RESTART IDENTITY`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) createProduct(name, category, brand string, price int64) *domain.Product {
	p := domain.NewProduct(name, price, 5, category, []string{"http://cdn/" + name + ".png"})
	p.Brand = brand

	ctx := context.Background()
	tx, err := s.db.Pool.Begin(ctx)
	s.Require().NoError(err)
	created, err := s.products.Create(tr.WithTx(ctx, tx), p)
	s.Require().NoError(err)
	s.Require().NoError(tx.Commit(ctx))
	return created
}

func (s *PostgresSuite) TestListSearchAndFilters() {
	ctx := context.Background()
	s.createProduct("Red Phone", "electronics", "Acme", 59999)
	s.createProduct("Blue Phone", "electronics", "Acme", 49999)
	s.createProduct("Cook Book", "books", "Press", 1500)

	found, total, err := s.products.List(ctx, &usecase.ListProductsReq{Page: 1, Limit: 10, Search: "phone", SortBy: "price", SortOrder: "asc"})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Require().Len(found, 2)
	s.Equal("Blue Phone", found[0].Name)

	minPrice := int64(50000)
	found, total, err = s.products.List(ctx, &usecase.ListProductsReq{Page: 1, Limit: 10, Category: "electronics", MinPrice: &minPrice})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("Red Phone", found[0].Name)

	found, total, err = s.products.List(ctx, &usecase.ListProductsReq{Page: 2, Limit: 2, SortBy: "name", SortOrder: "asc"})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(found, 1)
	s.Equal("Red Phone", found[0].Name)

	cats, err := s.products.Categories(ctx)
	s.Require().NoError(err)
	s.Equal([]domain.Category{{Name: "books", ProductCount: 1}, {Name: "electronics", ProductCount: 2}}, cats)
}

func (s *PostgresSuite) TestRateRunningAverage() {
	ctx := context.Background()
	p := s.createProduct("Lamp", "home", "", 2500)

	_, err := s.products.Rate(ctx, p.ID, 5)
	s.Require().NoError(err)
	rated, err := s.products.Rate(ctx, p.ID, 2)
	s.Require().NoError(err)

	s.InDelta(3.5, rated.Rating, 1e-9)
	s.Equal(2, rated.NumReviews)

	_, err = s.products.Rate(ctx, p.ID+100, 5)
	s.ErrorIs(err, e.ErrProductNotFound)
}

func (s *PostgresSuite) TestUsersUniqueEmail() {
	ctx := context.Background()

	_, err := s.users.Create(ctx, domain.NewUser(uuid.NewString(), "ann@example.com", "Ann"))
	s.Require().NoError(err)

	_, err = s.users.Create(ctx, domain.NewUser(uuid.NewString(), "ann@example.com", "Other"))
	s.ErrorIs(err, e.ErrEmailTaken)
}

func (s *PostgresSuite) TestOutboxLifecycle() {
	ctx := context.Background()

	tx, err := s.db.Pool.Begin(ctx)
	s.Require().NoError(err)
	_, err = s.outbox.Create(tr.WithTx(ctx, tx), &usecase.OutboxEvent{
		EventID:   uuid.NewString(),
		EventType: usecase.ProductCreated,
		ProductID: 1,
		Payload:   []byte(`{"productId":1}`),
		Status:    usecase.Pending,
	})
	s.Require().NoError(err)
	s.Require().NoError(tx.Commit(ctx))

	events, err := s.outbox.GetAndMarkAsProcessing(ctx, 10, time.Minute)
	s.Require().NoError(err)
	s.Require().Len(events, 1)

	again, err := s.outbox.GetAndMarkAsProcessing(ctx, 10, time.Minute)
	s.Require().NoError(err)
	s.Empty(again)

	s.Require().NoError(s.outbox.MarkAsProcessed(ctx, events[0].ID))
}
