package services

import (
	"testing"
	"time"

	"github.com/xinyucaoo/influenceBay-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }

func openAuction(startingBid float64, endsAt time.Time) *models.Listing {
	return &models.Listing{
		ID:            "listing-1",
		OwnerID:       "owner-1",
		OwnerRole:     models.RoleBrand,
		PricingMode:   models.PricingAuction,
		StartingBid:   floatPtr(startingBid),
		AuctionEndsAt: timePtr(endsAt),
		Status:        models.ListingStatusOpen,
	}
}

func openFixed(price float64) *models.Listing {
	return &models.Listing{
		ID:          "listing-1",
		OwnerID:     "owner-1",
		OwnerRole:   models.RoleCreator,
		PricingMode: models.PricingFixed,
		FixedPrice:  floatPtr(price),
		Status:      models.ListingStatusOpen,
	}
}

func TestEvaluateNewOffer(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	endsAt := now.Add(24 * time.Hour)

	t.Run("rejects when listing is not open", func(t *testing.T) {
		listing := openFixed(500)
		listing.Status = models.ListingStatusClosed

		err := EvaluateNewOffer(listing, nil, 600, now)
		require.NotNil(t, err)
		assert.Equal(t, RejectListingNotOpen, err.Reason)
	})

	t.Run("rejects sold listing", func(t *testing.T) {
		listing := openFixed(500)
		listing.Status = models.ListingStatusSold

		err := EvaluateNewOffer(listing, nil, 600, now)
		require.NotNil(t, err)
		assert.Equal(t, RejectListingNotOpen, err.Reason)
	})

	t.Run("rejects ended auction regardless of amount", func(t *testing.T) {
		listing := openAuction(100, now.Add(-time.Minute))

		err := EvaluateNewOffer(listing, nil, 1000000, now)
		require.NotNil(t, err)
		assert.Equal(t, RejectAuctionEnded, err.Reason)
	})

	t.Run("auction ending exactly now is ended", func(t *testing.T) {
		listing := openAuction(100, now)

		err := EvaluateNewOffer(listing, nil, 200, now)
		require.NotNil(t, err)
		assert.Equal(t, RejectAuctionEnded, err.Reason)
	})

	t.Run("fixed price admits exact match", func(t *testing.T) {
		listing := openFixed(500)

		err := EvaluateNewOffer(listing, nil, 500, now)
		assert.Nil(t, err)
	})

	t.Run("fixed price rejects one below", func(t *testing.T) {
		listing := openFixed(500)

		err := EvaluateNewOffer(listing, nil, 499, now)
		require.NotNil(t, err)
		assert.Equal(t, RejectBelowMinimum, err.Reason)
		assert.Equal(t, 500.0, err.Floor)
	})

	t.Run("fixed price admits above asking", func(t *testing.T) {
		listing := openFixed(500)

		err := EvaluateNewOffer(listing, nil, 650, now)
		assert.Nil(t, err)
	})

	t.Run("auction rejects bid equal to starting bid", func(t *testing.T) {
		listing := openAuction(100, endsAt)

		err := EvaluateNewOffer(listing, nil, 100, now)
		require.NotNil(t, err)
		assert.Equal(t, RejectBelowMinimum, err.Reason)
		assert.Equal(t, 100.0, err.Floor)
	})

	t.Run("auction admits first bid above starting bid", func(t *testing.T) {
		listing := openAuction(100, endsAt)

		err := EvaluateNewOffer(listing, nil, 101, now)
		assert.Nil(t, err)
	})

	t.Run("auction rejects tie with current leader", func(t *testing.T) {
		listing := openAuction(100, endsAt)
		highest := &models.Offer{ID: "offer-1", Amount: 150, Status: models.OfferStatusPending}

		err := EvaluateNewOffer(listing, highest, 150, now)
		require.NotNil(t, err)
		assert.Equal(t, RejectBelowMinimum, err.Reason)
		assert.Equal(t, 150.0, err.Floor)
	})

	t.Run("auction admits strictly higher bid", func(t *testing.T) {
		listing := openAuction(100, endsAt)
		highest := &models.Offer{ID: "offer-1", Amount: 150, Status: models.OfferStatusPending}

		err := EvaluateNewOffer(listing, highest, 150.01, now)
		assert.Nil(t, err)
	})

	t.Run("auction floor falls back to starting bid when leader is below it", func(t *testing.T) {
		// 领先报价低于起拍价的情况不应降低门槛
		listing := openAuction(200, endsAt)
		highest := &models.Offer{ID: "offer-1", Amount: 150, Status: models.OfferStatusPending}

		err := EvaluateNewOffer(listing, highest, 180, now)
		require.NotNil(t, err)
		assert.Equal(t, 200.0, err.Floor)
	})
}

func TestApplyAcceptedOffer(t *testing.T) {
	listing := openAuction(100, time.Now().Add(time.Hour))

	t.Run("accept cascades rejection to other pending offers only", func(t *testing.T) {
		offers := []models.Offer{
			{ID: "offer-1", Status: models.OfferStatusOutbid},
			{ID: "offer-2", Status: models.OfferStatusPending},
			{ID: "offer-3", Status: models.OfferStatusPending},
			{ID: "offer-4", Status: models.OfferStatusRejected},
		}

		mutation := ApplyAcceptedOffer(listing, offers, "offer-3")

		assert.Equal(t, "offer-3", mutation.AcceptOfferID)
		assert.Equal(t, []string{"offer-2"}, mutation.RejectOfferIDs)
		assert.Equal(t, listing.ID, mutation.ListingID)
		assert.Equal(t, models.ListingStatusSold, mutation.ListingToStatus)
	})

	t.Run("sole pending offer cascades nothing", func(t *testing.T) {
		offers := []models.Offer{
			{ID: "offer-1", Status: models.OfferStatusPending},
		}

		mutation := ApplyAcceptedOffer(listing, offers, "offer-1")

		assert.Empty(t, mutation.RejectOfferIDs)
		assert.Equal(t, models.ListingStatusSold, mutation.ListingToStatus)
	})
}
