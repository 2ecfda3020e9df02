package offerrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/offerrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// OfferRepositoryIntegrationTestSuite verifies offer persistence and, most
// importantly, the atomicity of the conditional status update under
// concurrent resolution attempts.
type OfferRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *offerrepo.GormOfferRepository
	tracker    *MockAggregateTracker
}

func (suite *OfferRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&offerrepo.OfferDTO{}))
}

func (suite *OfferRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE offers").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = offerrepo.NewGormOfferRepository(suite.db, suite.tracker)
}

func (suite *OfferRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OfferRepositoryIntegrationTestSuite) newOffer(ttl time.Duration) *offer.Offer {
	o, err := offer.NewOffer(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), time.Now().UTC(), ttl)
	suite.Require().NoError(err)
	return o
}

func (suite *OfferRepositoryIntegrationTestSuite) TestAddAndGet_Roundtrip() {
	ctx := context.Background()
	original := suite.newOffer(time.Minute)

	suite.Require().NoError(suite.repository.Add(ctx, original))

	retrieved, err := suite.repository.Get(ctx, original.ID())
	suite.Require().NoError(err)
	suite.True(retrieved.IsEqual(original))
	suite.Equal(offer.Offered, retrieved.Status())
	suite.True(retrieved.DeliveryID().IsEqual(original.DeliveryID()))
	suite.True(retrieved.CourierID().IsEqual(original.CourierID()))
	suite.WithinDuration(original.ExpiresAt(), retrieved.ExpiresAt(), time.Millisecond)
}

func (suite *OfferRepositoryIntegrationTestSuite) TestGet_UnknownOffer_NotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OfferRepositoryIntegrationTestSuite) TestUpdateStatusIf_MatchingStatus_Applies() {
	ctx := context.Background()
	outstanding := suite.newOffer(time.Minute)
	suite.Require().NoError(suite.repository.Add(ctx, outstanding))

	err := suite.repository.UpdateStatusIf(ctx, outstanding.ID(), offer.Offered, offer.Accepted)
	suite.Require().NoError(err)

	retrieved, err := suite.repository.Get(ctx, outstanding.ID())
	suite.Require().NoError(err)
	suite.Equal(offer.Accepted, retrieved.Status())
}

func (suite *OfferRepositoryIntegrationTestSuite) TestUpdateStatusIf_StatusMoved_Conflict() {
	ctx := context.Background()
	outstanding := suite.newOffer(time.Minute)
	suite.Require().NoError(suite.repository.Add(ctx, outstanding))

	suite.Require().NoError(
		suite.repository.UpdateStatusIf(ctx, outstanding.ID(), offer.Offered, offer.Declined))

	err := suite.repository.UpdateStatusIf(ctx, outstanding.ID(), offer.Offered, offer.Accepted)
	suite.Require().ErrorIs(err, errs.ErrInvalidState)

	retrieved, err := suite.repository.Get(ctx, outstanding.ID())
	suite.Require().NoError(err)
	suite.Equal(offer.Declined, retrieved.Status())
}

func (suite *OfferRepositoryIntegrationTestSuite) TestUpdateStatusIf_ConcurrentResolutions_ExactlyOneWins() {
	ctx := context.Background()
	outstanding := suite.newOffer(time.Minute)
	suite.Require().NoError(suite.repository.Add(ctx, outstanding))

	targets := []offer.Status{offer.Accepted, offer.Declined, offer.Expired}
	results := make([]error, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target offer.Status) {
			defer wg.Done()
			results[i] = suite.repository.UpdateStatusIf(ctx, outstanding.ID(), offer.Offered, target)
		}(i, target)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			suite.Require().ErrorIs(err, errs.ErrInvalidState)
		}
	}
	suite.Equal(1, winners)

	retrieved, err := suite.repository.Get(ctx, outstanding.ID())
	suite.Require().NoError(err)
	suite.NotEqual(offer.Offered, retrieved.Status())
}

func (suite *OfferRepositoryIntegrationTestSuite) TestGetAllForDelivery_ReturnsHistoryInCreationOrder() {
	ctx := context.Background()
	deliveryID := kernel.NewUUID()

	first, err := offer.NewOffer(
		kernel.NewUUID(), deliveryID, kernel.NewUUID(),
		time.Now().UTC().Add(-2*time.Minute), time.Minute)
	suite.Require().NoError(err)
	second, err := offer.NewOffer(
		kernel.NewUUID(), deliveryID, kernel.NewUUID(), time.Now().UTC(), time.Minute)
	suite.Require().NoError(err)
	unrelated := suite.newOffer(time.Minute)

	suite.Require().NoError(suite.repository.Add(ctx, second))
	suite.Require().NoError(suite.repository.Add(ctx, first))
	suite.Require().NoError(suite.repository.Add(ctx, unrelated))

	history, err := suite.repository.GetAllForDelivery(ctx, deliveryID)
	suite.Require().NoError(err)
	suite.Require().Len(history, 2)
	suite.True(history[0].IsEqual(first))
	suite.True(history[1].IsEqual(second))
}

func (suite *OfferRepositoryIntegrationTestSuite) TestGetAllExpiredOutstanding() {
	ctx := context.Background()
	now := time.Now().UTC()

	overdue, err := offer.NewOffer(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		now.Add(-2*time.Minute), time.Minute)
	suite.Require().NoError(err)
	fresh := suite.newOffer(time.Minute)
	resolved, err := offer.NewOffer(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		now.Add(-2*time.Minute), time.Minute)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repository.Add(ctx, overdue))
	suite.Require().NoError(suite.repository.Add(ctx, fresh))
	suite.Require().NoError(suite.repository.Add(ctx, resolved))
	suite.Require().NoError(
		suite.repository.UpdateStatusIf(ctx, resolved.ID(), offer.Offered, offer.Declined))

	expired, err := suite.repository.GetAllExpiredOutstanding(ctx, now)
	suite.Require().NoError(err)
	suite.Require().Len(expired, 1)
	suite.True(expired[0].IsEqual(overdue))
}

func TestOfferRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(OfferRepositoryIntegrationTestSuite))
}
