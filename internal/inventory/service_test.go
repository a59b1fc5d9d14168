package inventory

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gavelworks/auctiondesk/internal/bids"
	"github.com/gavelworks/auctiondesk/pkg/db/models"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
)

var inventoryDBSeq int

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	inventoryDBSeq++
	dsn := fmt.Sprintf("file:inventory_test_%d?mode=memory&cache=shared", inventoryDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Auction{}, &models.Item{}, &models.Bidder{},
		&models.AuctionItem{}, &models.WinningBid{},
	))
	return db
}

func seedInventoryFixture(t *testing.T, db *gorm.DB, itemQuantity int) {
	t.Helper()

	require.NoError(t, db.Create(&models.Auction{ID: 1, Description: "Spring Gala"}).Error)
	require.NoError(t, db.Create(&models.Item{ID: 10, Name: "Wine Crate", Quantity: itemQuantity}).Error)
	require.NoError(t, db.Create(&models.AuctionItem{AuctionID: 1, ItemID: 10}).Error)
	require.NoError(t, db.Create(&models.Bidder{ID: 7, Name: "Alice Zhang"}).Error)
}

func TestCheckEmptyItem(t *testing.T) {
	db := setupInventoryTestDB(t)
	seedInventoryFixture(t, db, 3)

	svc, err := NewService(bids.NewRepository(db))
	require.NoError(t, err)

	snap, err := svc.Check(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.TotalQuantity)
	assert.Equal(t, 0, snap.AllocatedQuantity)
	assert.Equal(t, 3, snap.AvailableQuantity)
	assert.True(t, snap.CanAddBid)
	assert.Empty(t, snap.ExistingBids)
}

func TestCheckAllocationMath(t *testing.T) {
	db := setupInventoryTestDB(t)
	seedInventoryFixture(t, db, 3)

	bidderID := uint(7)
	require.NoError(t, db.Create(&models.WinningBid{
		AuctionID: 1, ItemID: 10, BidderID: &bidderID,
		Price: decimal.RequireFromString("25.50"), QuantityWon: 2,
	}).Error)

	svc, err := NewService(bids.NewRepository(db))
	require.NoError(t, err)

	snap, err := svc.Check(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.AllocatedQuantity)
	assert.Equal(t, 1, snap.AvailableQuantity)
	assert.True(t, snap.CanAddBid)
	require.Len(t, snap.ExistingBids, 1)
	assert.Equal(t, uint(7), snap.ExistingBids[0].BidderID)
	assert.Equal(t, "Alice Zhang", snap.ExistingBids[0].BidderName)
}

func TestCheckFullyAllocated(t *testing.T) {
	db := setupInventoryTestDB(t)
	seedInventoryFixture(t, db, 2)

	bidderID := uint(7)
	require.NoError(t, db.Create(&models.WinningBid{
		AuctionID: 1, ItemID: 10, BidderID: &bidderID,
		Price: decimal.RequireFromString("25.50"), QuantityWon: 2,
	}).Error)

	svc, err := NewService(bids.NewRepository(db))
	require.NoError(t, err)

	snap, err := svc.Check(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.AvailableQuantity)
	assert.False(t, snap.CanAddBid)
}

func TestCheckRejectsForeignItem(t *testing.T) {
	db := setupInventoryTestDB(t)
	seedInventoryFixture(t, db, 1)
	require.NoError(t, db.Create(&models.Item{ID: 99, Name: "Unlisted", Quantity: 1}).Error)

	svc, err := NewService(bids.NewRepository(db))
	require.NoError(t, err)

	_, err = svc.Check(context.Background(), 1, 99)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotInAuction))
}
