package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gavelworks/auctiondesk/pkg/db/models"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
)

var catalogDBSeq int

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	catalogDBSeq++
	dsn := fmt.Sprintf("file:catalog_test_%d?mode=memory&cache=shared", catalogDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Auction{}, &models.Item{}, &models.Bidder{}, &models.AuctionItem{}))
	return db
}

func seedAuctionWithItems(t *testing.T, db *gorm.DB, auctionID uint, items ...models.Item) {
	t.Helper()

	require.NoError(t, db.Create(&models.Auction{ID: auctionID, Description: "Spring Gala"}).Error)
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
		require.NoError(t, db.Create(&models.AuctionItem{AuctionID: auctionID, ItemID: items[i].ID}).Error)
	}
}

func TestSearchItemsExactIDRanksFirst(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedAuctionWithItems(t, db, 1,
		models.Item{ID: 14, Name: "Quilt", Quantity: 1},
		models.Item{ID: 20, Name: "14k Gold Necklace", Quantity: 1},
	)

	svc, err := NewService(NewRepository(db), 10)
	require.NoError(t, err)

	results, err := svc.SearchItems(context.Background(), 1, "14")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, uint(14), results[0].ID, "exact id match must rank first")
	assert.Equal(t, uint(20), results[1].ID)
}

func TestSearchItemsScopedToAuction(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedAuctionWithItems(t, db, 1, models.Item{ID: 5, Name: "Signed Baseball", Quantity: 1})

	// Item 6 exists globally but belongs to a different auction.
	require.NoError(t, db.Create(&models.Auction{ID: 2, Description: "Fall Gala"}).Error)
	require.NoError(t, db.Create(&models.Item{ID: 6, Name: "Signed Football", Quantity: 1}).Error)
	require.NoError(t, db.Create(&models.AuctionItem{AuctionID: 2, ItemID: 6}).Error)

	svc, err := NewService(NewRepository(db), 10)
	require.NoError(t, err)

	results, err := svc.SearchItems(context.Background(), 1, "signed")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint(5), results[0].ID)
}

func TestSearchItemsCapsResults(t *testing.T) {
	db := setupCatalogTestDB(t)
	items := make([]models.Item, 0, 15)
	for i := 1; i <= 15; i++ {
		items = append(items, models.Item{ID: uint(i), Name: fmt.Sprintf("Basket %02d", i), Quantity: 1})
	}
	seedAuctionWithItems(t, db, 1, items...)

	svc, err := NewService(NewRepository(db), 10)
	require.NoError(t, err)

	results, err := svc.SearchItems(context.Background(), 1, "basket")
	require.NoError(t, err)
	assert.Len(t, results, 10)
}

func TestSearchItemsRequiresAuctionAndTerm(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc, err := NewService(NewRepository(db), 10)
	require.NoError(t, err)

	_, err = svc.SearchItems(context.Background(), 0, "basket")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.SearchItems(context.Background(), 1, "   ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSearchBiddersExactIDRanksFirst(t *testing.T) {
	db := setupCatalogTestDB(t)
	require.NoError(t, db.Create(&models.Bidder{ID: 7, Name: "Alice Zhang"}).Error)
	require.NoError(t, db.Create(&models.Bidder{ID: 30, Name: "Lucky 7 Catering"}).Error)

	svc, err := NewService(NewRepository(db), 10)
	require.NoError(t, err)

	results, err := svc.SearchBidders(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, uint(7), results[0].ID)
	assert.Equal(t, uint(30), results[1].ID)
}

func TestResolveAuctionItemRejectsForeignItem(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedAuctionWithItems(t, db, 1, models.Item{ID: 5, Name: "Signed Baseball", Quantity: 1})
	require.NoError(t, db.Create(&models.Item{ID: 9, Name: "Wine Crate", Quantity: 1}).Error)

	svc, err := NewService(NewRepository(db), 10)
	require.NoError(t, err)

	got, err := svc.ResolveAuctionItem(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, "Signed Baseball", got.Name)

	// Exists globally, not linked to auction 1.
	_, err = svc.ResolveAuctionItem(context.Background(), 1, 9)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotInAuction))

	// Does not exist at all: indistinguishable from not-in-auction.
	_, err = svc.ResolveAuctionItem(context.Background(), 1, 999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotInAuction))
}

func TestResolveBidder(t *testing.T) {
	db := setupCatalogTestDB(t)
	require.NoError(t, db.Create(&models.Bidder{ID: 7, Name: "Alice Zhang"}).Error)

	svc, err := NewService(NewRepository(db), 10)
	require.NoError(t, err)

	got, err := svc.ResolveBidder(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Alice Zhang", got.Name)

	_, err = svc.ResolveBidder(context.Background(), 999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
