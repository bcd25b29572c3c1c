package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/reciclamais/waste-service/internal/config"
	"github.com/reciclamais/waste-service/internal/domain"
	"github.com/reciclamais/waste-service/internal/events"
	"github.com/reciclamais/waste-service/internal/observability"
	"github.com/reciclamais/waste-service/internal/repository"
	apperrors "github.com/reciclamais/waste-service/pkg/util/errorutil"
)

type fixture struct {
	users      *repository.MemoryUserRepository
	wastes     *repository.MemoryWasteRepository
	revoked    *repository.MemoryTokenRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	auth       *AuthService
	waste      *WasteService
	dashboard  *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	f := &fixture{
		users:      repository.NewMemoryUserRepository(),
		wastes:     repository.NewMemoryWasteRepository(),
		revoked:    repository.NewMemoryTokenRepository(),
		dispatcher: events.NewInMemoryDispatcher(logger),
		metrics:    observability.NewMetrics(),
	}

	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            bcrypt.MinCost,
	}}
	f.auth = NewAuthService(cfg, AuthDependencies{
		UserRepo:   f.users,
		TokenRepo:  f.revoked,
		Dispatcher: f.dispatcher,
		Logger:     logger,
	})
	f.waste = NewWasteService(WasteDependencies{
		WasteRepo:  f.wastes,
		UserRepo:   f.users,
		Dispatcher: f.dispatcher,
		Logger:     logger,
	})
	f.dashboard = NewDashboardService(f.waste, f.metrics, logger)
	NewActivityService(f.dispatcher, f.metrics, logger).RegisterHandlers()
	return f
}

func (f *fixture) register(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user, _, _, err := f.auth.RegisterUser(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret123"})
	require.NoError(t, err)
	return user
}

func counterTotal(t *testing.T, metrics *observability.Metrics, name string) float64 {
	t.Helper()
	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRegisterUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, signed, token, err := f.auth.RegisterUser(ctx, RegisterInput{Name: "Maria Silva", Email: " Maria@Example.com ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEmpty(t, signed)
	assert.Equal(t, user.ID, token.UserID)

	_, _, _, err = f.auth.RegisterUser(ctx, RegisterInput{Name: "Maria Again", Email: "maria@example.com", Password: "secret123"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	_, _, _, err = f.auth.RegisterUser(ctx, RegisterInput{Name: "Jo", Email: "not-an-email", Password: "123"})
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
	assert.Contains(t, domainErr.Details, "name")
	assert.Contains(t, domainErr.Details, "email")
	assert.Contains(t, domainErr.Details, "password")

	assert.Equal(t, 1.0, counterTotal(t, f.metrics, "waste_service_users_registered_total"))
}

func TestLoginAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "Maria Silva", "maria@example.com")

	_, _, _, err := f.auth.LoginUser(ctx, "maria@example.com", "wrong-password")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, _, _, err = f.auth.LoginUser(ctx, "nobody@example.com", "secret123")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	user, signed, token, err := f.auth.LoginUser(ctx, "MARIA@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, signed)

	require.NoError(t, f.auth.Logout(ctx, token))
	revoked, err := f.revoked.IsRevoked(ctx, token.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "Maria Silva", "maria@example.com")

	err := f.auth.ChangePassword(ctx, user.ID, "wrong-password", "newsecret")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	err = f.auth.ChangePassword(ctx, user.ID, "secret123", "123")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	require.NoError(t, f.auth.ChangePassword(ctx, user.ID, "secret123", "newsecret"))
	_, _, _, err = f.auth.LoginUser(ctx, "maria@example.com", "newsecret")
	assert.NoError(t, err)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := config.BootstrapConfig{AdminEmail: "admin@reciclamais.com", AdminInitialPassword: "admin123", SeedTestUser: true}

	require.NoError(t, f.auth.Bootstrap(ctx, cfg))
	require.NoError(t, f.auth.Bootstrap(ctx, cfg))

	count, err := f.users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	admin, err := f.users.GetByEmail(ctx, "admin@reciclamais.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}

func TestSaveWaste(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Maria Silva", "maria@example.com")

	waste := &domain.Waste{
		Type:        domain.WastePlastic,
		Weight:      2.5,
		Date:        time.Date(2024, time.March, 3, 18, 30, 0, 0, time.UTC),
		Recycled:    true,
		Description: "garrafas pet da semana",
	}
	require.NoError(t, f.waste.Save(ctx, waste, "Maria@Example.com"))
	assert.NotEmpty(t, waste.ID)
	assert.Equal(t, owner.ID, waste.UserID)
	assert.Equal(t, "Maria Silva", waste.UserName)
	assert.Equal(t, date(2024, time.March, 3), waste.Date)

	assert.Equal(t, 1.0, counterTotal(t, f.metrics, "waste_service_waste_records_total"))
	assert.Equal(t, 2.5, counterTotal(t, f.metrics, "waste_service_waste_weight_kg_total"))
}

func TestSaveWasteRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Maria Silva", "maria@example.com")

	valid := func() *domain.Waste {
		return &domain.Waste{Type: domain.WastePaper, Weight: 1, Date: date(2024, time.January, 1)}
	}

	tests := []struct {
		name  string
		email string
		edit  func(*domain.Waste)
		code  string
	}{
		{name: "empty owner email", email: "  ", edit: func(*domain.Waste) {}, code: apperrors.CodeValidation},
		{name: "unknown owner", email: "ghost@example.com", edit: func(*domain.Waste) {}, code: apperrors.CodeNotFound},
		{name: "zero weight", email: "maria@example.com", edit: func(w *domain.Waste) { w.Weight = 0 }, code: apperrors.CodeValidation},
		{name: "negative weight", email: "maria@example.com", edit: func(w *domain.Waste) { w.Weight = -3 }, code: apperrors.CodeValidation},
		{name: "missing type", email: "maria@example.com", edit: func(w *domain.Waste) { w.Type = "" }, code: apperrors.CodeValidation},
		{name: "unknown type", email: "maria@example.com", edit: func(w *domain.Waste) { w.Type = "WOOD" }, code: apperrors.CodeValidation},
		{name: "missing date", email: "maria@example.com", edit: func(w *domain.Waste) { w.Date = time.Time{} }, code: apperrors.CodeValidation},
		{name: "short description", email: "maria@example.com", edit: func(w *domain.Waste) { w.Description = "short" }, code: apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			waste := valid()
			tt.edit(waste)
			err := f.waste.Save(ctx, waste, tt.email)
			assert.True(t, apperrors.IsCode(err, tt.code), "got %v", err)
		})
	}

	all, err := f.waste.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestScopedReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Maria Silva", "maria@example.com")
	f.register(t, "Bruno Costa", "bruno@example.com")

	save := func(email string, d time.Time, weight float64) {
		require.NoError(t, f.waste.Save(ctx, &domain.Waste{Type: domain.WasteGlass, Weight: weight, Date: d}, email))
	}
	save("maria@example.com", date(2024, time.January, 10), 1)
	save("bruno@example.com", date(2024, time.February, 1), 2)
	save("maria@example.com", date(2024, time.February, 29), 3)
	save("bruno@example.com", date(2024, time.March, 1), 4)

	inFeb, err := f.waste.FindByPeriod(ctx, date(2024, time.February, 1), date(2024, time.February, 29))
	require.NoError(t, err)
	require.Len(t, inFeb, 2)
	assert.Equal(t, 2.0, inFeb[0].Weight)
	assert.Equal(t, 3.0, inFeb[1].Weight)

	_, err = f.waste.FindByPeriod(ctx, date(2024, time.March, 1), date(2024, time.February, 1))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	maria, err := f.waste.FindByUser(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Len(t, maria, 2)

	_, err = f.waste.FindByUser(ctx, "ghost@example.com")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestGenerateDemoData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Maria Silva", "maria@example.com")
	f.waste.now = func() time.Time { return time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC) }

	created, err := f.waste.GenerateDemoData(ctx, "maria@example.com")
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, date(2024, time.May, 15), created[0].Date)
	assert.Equal(t, date(2024, time.April, 15), created[1].Date)
	assert.Equal(t, date(2024, time.March, 15), created[2].Date)
	for _, w := range created {
		assert.True(t, w.Recycled)
	}

	_, err = f.waste.GenerateDemoData(ctx, "ghost@example.com")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestDashboardBuild(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Maria Silva", "maria@example.com")
	f.register(t, "Bruno Costa", "bruno@example.com")

	save := func(email string, wasteType domain.WasteType, d time.Time, weight float64, recycled bool) {
		require.NoError(t, f.waste.Save(ctx, &domain.Waste{Type: wasteType, Weight: weight, Date: d, Recycled: recycled}, email))
	}
	save("maria@example.com", domain.WastePlastic, date(2024, time.January, 5), 10, true)
	save("bruno@example.com", domain.WastePaper, date(2024, time.February, 5), 15, false)
	save("bruno@example.com", domain.WastePlastic, date(2024, time.February, 20), 5, true)

	fixed := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	f.dashboard.now = func() time.Time { return fixed }

	dashboard, err := f.dashboard.Build(ctx, Period{})
	require.NoError(t, err)
	assert.Equal(t, 30.0, dashboard.TotalWaste)
	assert.Equal(t, 15.0, dashboard.WasteRecycled)
	assert.InDelta(t, 50.0, dashboard.RecyclingRate, 1e-9)
	assert.Equal(t, 3, dashboard.RecordCount)
	assert.Equal(t, fixed, dashboard.GeneratedAt)

	require.Len(t, dashboard.TypeBreakdown, 2)
	assert.Equal(t, domain.WastePaper, dashboard.TypeBreakdown[0].Type)
	assert.Equal(t, domain.WastePlastic, dashboard.TypeBreakdown[1].Type)
	assert.Equal(t, 15, dashboard.TypeBreakdown[1].Quantity)
	assert.InDelta(t, 50.0, dashboard.TypeBreakdown[1].Percentage, 1e-9)

	require.Len(t, dashboard.UserRankings, 2)
	assert.Equal(t, "Maria Silva", dashboard.UserRankings[0].Name)
	assert.Equal(t, 10.0, dashboard.UserRankings[0].TotalRecycled)

	assert.InDelta(t, 30.0, dashboard.Forecast.PredictedAmount, 1e-9)
	assert.InDelta(t, 1.0, dashboard.Forecast.Confidence, 1e-9)
	assert.Equal(t, "2024-03", dashboard.Forecast.Month)

	from := date(2024, time.February, 1)
	scoped, err := f.dashboard.Build(ctx, Period{From: &from})
	require.NoError(t, err)
	assert.Equal(t, 2, scoped.RecordCount)
	assert.Equal(t, 20.0, scoped.TotalWaste)
	assert.Zero(t, scoped.Forecast.PredictedAmount)

	forecast, err := f.dashboard.Forecast(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Forecast, forecast)
}

func TestDashboardEmpty(t *testing.T) {
	f := newFixture(t)

	dashboard, err := f.dashboard.Build(context.Background(), Period{})
	require.NoError(t, err)
	assert.Zero(t, dashboard.TotalWaste)
	assert.Zero(t, dashboard.RecyclingRate)
	assert.Empty(t, dashboard.TypeBreakdown)
	assert.Empty(t, dashboard.UserRankings)
	assert.Zero(t, dashboard.Forecast.PredictedAmount)
}

func TestSearchCombinesOwnerAndPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Maria Silva", "maria@example.com")
	f.register(t, "Bruno Costa", "bruno@example.com")
	f.waste.now = func() time.Time { return time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC) }

	save := func(email string, d time.Time) {
		require.NoError(t, f.waste.Save(ctx, &domain.Waste{Type: domain.WasteMetal, Weight: 1, Date: d}, email))
	}
	save("maria@example.com", date(2024, time.January, 15))
	save("maria@example.com", date(2024, time.March, 2))
	save("bruno@example.com", date(2024, time.March, 3))

	from := date(2024, time.March, 1)
	mine, err := f.waste.Search(ctx, WasteQuery{OwnerEmail: "maria@example.com", Period: Period{From: &from}})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, date(2024, time.March, 2), mine[0].Date)

	everyone, err := f.waste.Search(ctx, WasteQuery{Period: Period{From: &from}})
	require.NoError(t, err)
	assert.Len(t, everyone, 2)

	all, err := f.waste.Search(ctx, WasteQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	to := date(2024, time.February, 1)
	_, err = f.waste.Search(ctx, WasteQuery{OwnerEmail: "maria@example.com", Period: Period{From: &from, To: &to}})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

type failingWasteRepository struct {
	*repository.MemoryWasteRepository
	err error
}

func (r failingWasteRepository) Create(context.Context, *domain.Waste) error {
	return r.err
}

func (r failingWasteRepository) ListAll(context.Context) ([]domain.Waste, error) {
	return nil, r.err
}

func TestStoreFailuresBecomePersistenceErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Maria Silva", "maria@example.com")

	cause := errors.New("disk full")
	f.waste.wastes = failingWasteRepository{MemoryWasteRepository: f.wastes, err: cause}

	err := f.waste.Save(ctx, &domain.Waste{Type: domain.WastePaper, Weight: 1, Date: date(2024, time.January, 1)}, "maria@example.com")
	assert.True(t, apperrors.IsCode(err, apperrors.CodePersistence), "got %v", err)
	assert.ErrorIs(t, err, cause)

	_, err = f.waste.FindAll(ctx)
	assert.True(t, apperrors.IsCode(err, apperrors.CodePersistence), "got %v", err)
	assert.ErrorIs(t, err, cause)

	_, err = f.dashboard.Build(ctx, Period{})
	assert.True(t, apperrors.IsCode(err, apperrors.CodePersistence), "got %v", err)
	assert.ErrorIs(t, err, cause)

	assert.Zero(t, counterTotal(t, f.metrics, "waste_service_waste_records_total"))
}

func TestRejectedSaveLeavesRecordUntouched(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Maria Silva", "maria@example.com")

	submitted := time.Date(2024, time.March, 3, 18, 30, 0, 0, time.UTC)
	waste := &domain.Waste{Type: domain.WastePlastic, Weight: 0, Date: submitted, Description: "  garrafas pet  "}
	err := f.waste.Save(context.Background(), waste, "maria@example.com")
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidation), "got %v", err)

	assert.Equal(t, submitted, waste.Date)
	assert.Equal(t, "  garrafas pet  ", waste.Description)
	assert.Empty(t, waste.ID)
	assert.Empty(t, waste.UserID)
}

func TestOpenUpperBoundIncludesFutureRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Maria Silva", "maria@example.com")
	f.waste.now = func() time.Time { return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, f.waste.Save(ctx, &domain.Waste{Type: domain.WasteGlass, Weight: 2, Date: date(2024, time.February, 10)}, "maria@example.com"))
	require.NoError(t, f.waste.Save(ctx, &domain.Waste{Type: domain.WasteGlass, Weight: 3, Date: date(2024, time.June, 1)}, "maria@example.com"))

	from := date(2024, time.February, 1)
	everyone, err := f.waste.Search(ctx, WasteQuery{Period: Period{From: &from}})
	require.NoError(t, err)
	assert.Len(t, everyone, 2)

	mine, err := f.waste.Search(ctx, WasteQuery{OwnerEmail: "maria@example.com", Period: Period{From: &from}})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	dashboard, err := f.dashboard.Build(ctx, Period{From: &from})
	require.NoError(t, err)
	assert.Equal(t, 5.0, dashboard.TotalWaste)
	assert.Nil(t, dashboard.To)
}
