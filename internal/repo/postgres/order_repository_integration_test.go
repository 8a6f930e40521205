//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/orderflow/internal/domain"
	pgrepo "github.com/Gunvolt24/orderflow/internal/repo/postgres"
	"github.com/Gunvolt24/orderflow/internal/testutil"
)

// 1) Сохранение и получение заказа (по id и по tracking id)
func TestRepo_SaveAndGet_TC(t *testing.T) {
	t.Parallel()

	// длинный контекст — только на подъём контейнера
	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	defer func() { _ = stopPG(context.Background()) }()

	// миграции
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	// короткий контекст — на сами БД-операции
	ctxTest, cancelTest := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelTest()

	pool, err := pgxpool.New(ctxTest, pg.DSN)
	require.NoError(t, err)
	defer pool.Close()

	repo := pgrepo.NewOrderRepository(pool)

	ord := testutil.MakeOrder() // генерит валидный инициализированный заказ
	require.NoError(t, repo.Save(ctxTest, &ord))

	got, err := repo.GetByID(ctxTest, ord.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, ord.ID, got.ID)
	require.Equal(t, domain.StatusPending, got.Status)
	require.True(t, got.Price.Equal(ord.Price))
	require.Len(t, got.Items, len(ord.Items))

	byTracking, err := repo.GetByTrackingID(ctxTest, ord.TrackingID)
	require.NoError(t, err)
	require.NotNil(t, byTracking)
	require.Equal(t, ord.ID, byTracking.ID)
}

// 2) Повторный Save — апдейт статуса/причин отказа и полная замена позиций
func TestRepo_Save_UpsertAndItemsReplace_TC(t *testing.T) {
	t.Parallel()

	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	defer func() { _ = stopPG(context.Background()) }()
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, pg.DSN)
	require.NoError(t, err)
	defer pool.Close()

	repo := pgrepo.NewOrderRepository(pool)

	// 1-й Save: заказ с 2 позициями
	ord := testutil.MakeOrder(testutil.WithItems(2))
	require.NoError(t, repo.Save(ctx, &ord))

	// 2-й Save: оплата, затем отказ платёжного сервиса и одна позиция вместо двух
	require.NoError(t, ord.Pay())
	require.NoError(t, ord.InitCancel([]string{"payment refused"}))
	onlyPrice := domain.MustMoney("777.00")
	ord.Items = []domain.OrderItem{{
		ID:      1,
		OrderID: ord.ID,
		Product: domain.Product{
			ID:    ord.Items[0].Product.ID,
			Name:  "OnlyOne",
			Price: onlyPrice,
		},
		Quantity: 1,
		Price:    onlyPrice,
		SubTotal: onlyPrice,
	}}
	require.NoError(t, repo.Save(ctx, &ord))

	got, err := repo.GetByID(ctx, ord.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Equal(t, domain.StatusCancelling, got.Status)
	require.Equal(t, []string{"payment refused"}, got.FailureMessages)

	require.Len(t, got.Items, 1)
	require.Equal(t, "OnlyOne", got.Items[0].Product.Name)
	require.True(t, got.Items[0].Price.Equal(onlyPrice))
}

// 3) GetByID без записи — (nil, nil), без ошибки
func TestRepo_GetByID_NotFound_TC(t *testing.T) {
	t.Parallel()

	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	defer func() { _ = stopPG(context.Background()) }()
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, pg.DSN)
	require.NoError(t, err)
	defer pool.Close()

	repo := pgrepo.NewOrderRepository(pool)

	got, err := repo.GetByID(ctx, domain.NewOrderID())
	require.NoError(t, err)
	require.Nil(t, got)

	byTracking, err := repo.GetByTrackingID(ctx, domain.NewTrackingID())
	require.NoError(t, err)
	require.Nil(t, byTracking)
}

// 4) ListByCustomer — пагинация и сортировка по created_at DESC, затем id DESC
func TestRepo_ListByCustomer_PaginationAndOrder_TC(t *testing.T) {
	t.Parallel()

	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	defer func() { _ = stopPG(context.Background()) }()
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, pg.DSN)
	require.NoError(t, err)
	defer pool.Close()

	repo := pgrepo.NewOrderRepository(pool)

	cust := domain.CustomerID{UUID: domain.NewOrderID().UUID} // любой уникальный uuid
	base := time.Now().UTC().Add(-time.Hour)

	// Сохраняем 5 заказов одного клиента с контролируемыми датами + 1 другого клиента
	for i := 0; i < 5; i++ {
		o := testutil.MakeOrder(testutil.WithCustomer(cust))
		require.NoError(t, repo.Save(ctx, &o))
		_, err = pool.Exec(ctx, `UPDATE orders SET created_at = $1 WHERE id = $2`,
			base.Add(time.Duration(i)*time.Minute), o.ID) // возрастающее время
		require.NoError(t, err)
	}
	other := testutil.MakeOrder()
	require.NoError(t, repo.Save(ctx, &other))

	// Страница 1: limit=2 offset=0 → 2 последних заказа клиента
	page1, err := repo.ListByCustomer(ctx, cust, 2, 0)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.Equal(t, cust, page1[0].CustomerID)
	require.Equal(t, cust, page1[1].CustomerID)

	// Страница 2: limit=2 offset=2 → ещё 2
	page2, err := repo.ListByCustomer(ctx, cust, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)

	// Страница 3: limit=2 offset=4 → только 1 оставшийся
	page3, err := repo.ListByCustomer(ctx, cust, 2, 4)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	require.Equal(t, cust, page3[0].CustomerID)

	// Убедимся, что ни на одной странице нет заказов другого клиента
	// и у каждого заказа подгружены позиции
	for _, page := range [][]*domain.Order{page1, page2, page3} {
		for _, o := range page {
			require.Equal(t, cust, o.CustomerID)
			require.NotEmpty(t, o.Items)
		}
	}
}

// 5) LastN — возвращает последние N заказов и подгружает полные агрегаты
func TestRepo_LastN_ReturnsLatestFull_TC(t *testing.T) {
	t.Parallel()

	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	defer func() { _ = stopPG(context.Background()) }()
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, pg.DSN)
	require.NoError(t, err)
	defer pool.Close()

	repo := pgrepo.NewOrderRepository(pool)

	base := time.Now().UTC().Add(-time.Hour)
	var saved []domain.Order
	for i := 0; i < 4; i++ {
		o := testutil.MakeOrder()
		require.NoError(t, repo.Save(ctx, &o))
		_, err = pool.Exec(ctx, `UPDATE orders SET created_at = $1 WHERE id = $2`,
			base.Add(time.Duration(i)*time.Minute), o.ID)
		require.NoError(t, err)
		saved = append(saved, o)
	}

	latest3, err := repo.LastN(ctx, 3)
	require.NoError(t, err)
	require.Len(t, latest3, 3)

	// Сравним, что это действительно 3 самых поздних по created_at
	// saved[3] — самый поздний, затем [2], затем [1]
	expect := []domain.OrderID{saved[3].ID, saved[2].ID, saved[1].ID}
	actual := []domain.OrderID{latest3[0].ID, latest3[1].ID, latest3[2].ID}
	require.Equal(t, expect, actual)

	// И что подгружены позиции (MakeOrder создаёт хотя бы 1)
	for _, o := range latest3 {
		require.NotEmpty(t, o.Items)
		require.True(t, o.Items[0].Price.GreaterThanZero())
	}
}

// 6) Save — ошибки валидации входа (nil / пустые обязательные поля)
func TestRepo_Save_ValidationErrors_TC(t *testing.T) {
	t.Parallel()

	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	defer func() { _ = stopPG(context.Background()) }()
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, pg.DSN)
	require.NoError(t, err)
	defer pool.Close()

	repo := pgrepo.NewOrderRepository(pool)

	// nil
	require.Error(t, repo.Save(ctx, nil))

	// нулевой id (неинициализированный заказ)
	o1 := testutil.MakeOrder()
	o1.ID = domain.OrderID{}
	require.Error(t, repo.Save(ctx, &o1))

	// нулевой customer_id
	o2 := testutil.MakeOrder()
	o2.CustomerID = domain.CustomerID{}
	require.Error(t, repo.Save(ctx, &o2))
}

// 7) ShopRepository — магазин с каталогом и (nil, nil) для неизвестного id
func TestRepo_ShopGetByID_TC(t *testing.T) {
	t.Parallel()

	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	defer func() { _ = stopPG(context.Background()) }()
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, pg.DSN)
	require.NoError(t, err)
	defer pool.Close()

	shops := pgrepo.NewShopRepository(pool)

	ord := testutil.MakeOrder(testutil.WithItems(2))
	require.NoError(t, testutil.SeedShop(ctx, pool, ord.ShopID, true, ord.Items))

	shop, err := shops.GetByID(ctx, ord.ShopID)
	require.NoError(t, err)
	require.NotNil(t, shop)
	require.True(t, shop.Active)
	require.Len(t, shop.Products, 2)
	for _, item := range ord.Items {
		product, ok := shop.ProductByID(item.Product.ID)
		require.True(t, ok)
		require.True(t, product.Price.Equal(item.Product.Price))
	}

	// неизвестный магазин
	missing, err := shops.GetByID(ctx, domain.ShopID{UUID: domain.NewOrderID().UUID})
	require.NoError(t, err)
	require.Nil(t, missing)
}
