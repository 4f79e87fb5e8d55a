package services

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/xinyucaoo/influenceBay-sub000/models"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMarketStore 内存实现，同时满足 ListingStore 和 OfferStore 接口
type fakeMarketStore struct {
	listings map[string]*models.Listing
	offers   map[string]*models.Offer
	seq      int

	// getForUpdateErrs 按调用顺序注入 GetForUpdate 错误（模拟事务竞争）
	getForUpdateErrs []error
}

func newFakeMarketStore() *fakeMarketStore {
	return &fakeMarketStore{
		listings: make(map[string]*models.Listing),
		offers:   make(map[string]*models.Offer),
	}
}

func (f *fakeMarketStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeMarketStore) Create(ctx context.Context, listing *models.Listing) error {
	if listing.ID == "" {
		f.seq++
		listing.ID = fmt.Sprintf("listing-%d", f.seq)
	}
	cp := *listing
	f.listings[listing.ID] = &cp
	return nil
}

func (f *fakeMarketStore) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	listing, ok := f.listings[id]
	if !ok {
		return nil, nil
	}
	cp := *listing
	return &cp, nil
}

func (f *fakeMarketStore) GetForUpdate(ctx context.Context, id string) (*models.Listing, error) {
	if len(f.getForUpdateErrs) > 0 {
		err := f.getForUpdateErrs[0]
		f.getForUpdateErrs = f.getForUpdateErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.GetByID(ctx, id)
}

func (f *fakeMarketStore) UpdateStatus(ctx context.Context, id, status string) error {
	if listing, ok := f.listings[id]; ok {
		listing.Status = status
		return nil
	}
	if offer, ok := f.offers[id]; ok {
		offer.Status = status
		return nil
	}
	return fmt.Errorf("no row with id %s", id)
}

func (f *fakeMarketStore) CreateOffer(ctx context.Context, offer *models.Offer) error {
	f.seq++
	if offer.ID == "" {
		offer.ID = fmt.Sprintf("offer-%d", f.seq)
	}
	offer.CreatedAt = time.Unix(int64(f.seq), 0)
	cp := *offer
	f.offers[offer.ID] = &cp
	return nil
}

func (f *fakeMarketStore) GetOfferByID(ctx context.Context, id string) (*models.Offer, error) {
	offer, ok := f.offers[id]
	if !ok {
		return nil, nil
	}
	cp := *offer
	return &cp, nil
}

func (f *fakeMarketStore) ListByListing(ctx context.Context, listingID string) ([]models.Offer, error) {
	var out []models.Offer
	for _, offer := range f.offers {
		if offer.ListingID == listingID {
			out = append(out, *offer)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeMarketStore) ListByListingAndResponder(ctx context.Context, listingID, responderID string) ([]models.Offer, error) {
	all, _ := f.ListByListing(ctx, listingID)
	var out []models.Offer
	for _, offer := range all {
		if offer.ResponderID == responderID {
			out = append(out, offer)
		}
	}
	return out, nil
}

func (f *fakeMarketStore) FindPendingByResponder(ctx context.Context, listingID, responderID string) (*models.Offer, error) {
	for _, offer := range f.offers {
		if offer.ListingID == listingID && offer.ResponderID == responderID && offer.Status == models.OfferStatusPending {
			cp := *offer
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeMarketStore) HighestActive(ctx context.Context, listingID string) (*models.Offer, error) {
	var best *models.Offer
	for _, offer := range f.offers {
		if offer.ListingID != listingID {
			continue
		}
		if offer.Status != models.OfferStatusPending && offer.Status != models.OfferStatusAccepted {
			continue
		}
		if best == nil || offer.Amount > best.Amount {
			best = offer
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (f *fakeMarketStore) RejectPendingExcept(ctx context.Context, listingID, exceptOfferID string) error {
	for _, offer := range f.offers {
		if offer.ListingID == listingID && offer.ID != exceptOfferID && offer.Status == models.OfferStatusPending {
			offer.Status = models.OfferStatusRejected
		}
	}
	return nil
}

// fakeOfferStore 把 fakeMarketStore 适配到 OfferStore 接口
// （Create/GetByID 与刊登侧同名，分开收口避免冲突）
type fakeOfferStore struct{ *fakeMarketStore }

func (f fakeOfferStore) Create(ctx context.Context, offer *models.Offer) error {
	return f.CreateOffer(ctx, offer)
}

func (f fakeOfferStore) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	return f.GetOfferByID(ctx, id)
}

func newTestService(opts ...ListingServiceOption) (*ListingService, *fakeMarketStore) {
	store := newFakeMarketStore()
	svc := NewListingService(store, fakeOfferStore{store}, opts...)
	return svc, store
}

func seedFixedListing(store *fakeMarketStore, ownerID string, price float64) *models.Listing {
	listing := openFixed(price)
	listing.ID = "listing-fixed"
	listing.OwnerID = ownerID
	listing.OwnerRole = models.RoleBrand
	store.listings[listing.ID] = listing
	return listing
}

func seedAuctionListing(store *fakeMarketStore, ownerID string, startingBid float64, endsAt time.Time) *models.Listing {
	listing := openAuction(startingBid, endsAt)
	listing.ID = "listing-auction"
	listing.OwnerID = ownerID
	store.listings[listing.ID] = listing
	return listing
}

func TestCreateListing(t *testing.T) {
	ctx := context.Background()

	t.Run("valid fixed listing is stored open", func(t *testing.T) {
		svc, store := newTestService()

		listing, err := svc.CreateListing(ctx, "brand-1", models.RoleBrand, CreateListingInput{
			Title:       "春季美妆合作",
			PricingMode: models.PricingFixed,
			FixedPrice:  floatPtr(500),
		})
		require.NoError(t, err)
		assert.Equal(t, models.ListingStatusOpen, listing.Status)
		assert.NotEmpty(t, listing.ID)
		assert.Contains(t, store.listings, listing.ID)
	})

	t.Run("fixed listing with auction fields is rejected", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.CreateListing(ctx, "brand-1", models.RoleBrand, CreateListingInput{
			Title:       "混用定价",
			PricingMode: models.PricingFixed,
			FixedPrice:  floatPtr(500),
			StartingBid: floatPtr(100),
		})
		assert.ErrorIs(t, err, models.ErrConflictingPriceMode)
	})

	t.Run("auction listing requires end time", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.CreateListing(ctx, "creator-1", models.RoleCreator, CreateListingInput{
			Title:       "开箱视频竞价",
			PricingMode: models.PricingAuction,
			StartingBid: floatPtr(100),
		})
		assert.ErrorIs(t, err, models.ErrAuctionEndRequired)
	})
}

func TestSubmitOffer(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixedNow := func() time.Time { return now }

	t.Run("fixed listing admits exact asking price", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)

		result, err := svc.SubmitOffer(ctx, "listing-fixed", "creator-1", models.RoleCreator, 500, "可以下周交付")
		require.NoError(t, err)
		assert.Equal(t, models.OfferStatusPending, result.Offer.Status)
		assert.Nil(t, result.Outbid)
	})

	t.Run("fixed listing rejects below asking price with floor", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)

		_, err := svc.SubmitOffer(ctx, "listing-fixed", "creator-1", models.RoleCreator, 499, "")
		policyErr, ok := AsPolicyError(err)
		require.True(t, ok)
		assert.Equal(t, RejectBelowMinimum, policyErr.Reason)
		assert.Equal(t, 500.0, policyErr.Floor)
		assert.Empty(t, store.offers)
	})

	t.Run("auction bid sequence keeps a single leader", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedAuctionListing(store, "brand-1", 100, now.Add(24*time.Hour))

		first, err := svc.SubmitOffer(ctx, "listing-auction", "creator-1", models.RoleCreator, 150, "")
		require.NoError(t, err)
		assert.Nil(t, first.Outbid)

		// 平价出价被拒，领先者不变
		_, err = svc.SubmitOffer(ctx, "listing-auction", "creator-2", models.RoleCreator, 150, "")
		policyErr, ok := AsPolicyError(err)
		require.True(t, ok)
		assert.Equal(t, RejectBelowMinimum, policyErr.Reason)
		assert.Equal(t, 150.0, policyErr.Floor)

		second, err := svc.SubmitOffer(ctx, "listing-auction", "creator-2", models.RoleCreator, 200, "")
		require.NoError(t, err)
		require.NotNil(t, second.Outbid)
		assert.Equal(t, first.Offer.ID, second.Outbid.ID)
		assert.Equal(t, models.OfferStatusOutbid, store.offers[first.Offer.ID].Status)

		// 任何时刻最多一个 pending，且为当前最高价
		var pending []*models.Offer
		for _, offer := range store.offers {
			if offer.Status == models.OfferStatusPending {
				pending = append(pending, offer)
			}
		}
		require.Len(t, pending, 1)
		assert.Equal(t, 200.0, pending[0].Amount)
	})

	t.Run("second pending offer from same responder conflicts", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)

		_, err := svc.SubmitOffer(ctx, "listing-fixed", "creator-1", models.RoleCreator, 500, "")
		require.NoError(t, err)

		_, err = svc.SubmitOffer(ctx, "listing-fixed", "creator-1", models.RoleCreator, 600, "")
		assert.ErrorIs(t, err, ErrDuplicatePending)
	})

	t.Run("fixed listing allows concurrent pending offers from different responders", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)

		first, err := svc.SubmitOffer(ctx, "listing-fixed", "creator-1", models.RoleCreator, 500, "")
		require.NoError(t, err)
		second, err := svc.SubmitOffer(ctx, "listing-fixed", "creator-2", models.RoleCreator, 550, "")
		require.NoError(t, err)

		// 一口价不竞价，先到的报价不会被出局
		assert.Nil(t, second.Outbid)
		assert.Equal(t, models.OfferStatusPending, store.offers[first.Offer.ID].Status)
	})

	t.Run("owner cannot offer on own listing", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)

		_, err := svc.SubmitOffer(ctx, "listing-fixed", "brand-1", models.RoleBrand, 500, "")
		assert.ErrorIs(t, err, ErrSelfOffer)
	})

	t.Run("responder role must be counterpart of owner role", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)

		_, err := svc.SubmitOffer(ctx, "listing-fixed", "brand-2", models.RoleBrand, 500, "")
		assert.ErrorIs(t, err, ErrWrongRole)
	})

	t.Run("offer on ended auction is rejected", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedAuctionListing(store, "brand-1", 100, now.Add(-time.Hour))

		_, err := svc.SubmitOffer(ctx, "listing-auction", "creator-1", models.RoleCreator, 999, "")
		policyErr, ok := AsPolicyError(err)
		require.True(t, ok)
		assert.Equal(t, RejectAuctionEnded, policyErr.Reason)
	})

	t.Run("missing listing", func(t *testing.T) {
		svc, _ := newTestService(WithNowFunc(fixedNow))

		_, err := svc.SubmitOffer(ctx, "no-such", "creator-1", models.RoleCreator, 100, "")
		assert.ErrorIs(t, err, ErrListingNotFound)
	})

	t.Run("negative amount", func(t *testing.T) {
		svc, _ := newTestService(WithNowFunc(fixedNow))

		_, err := svc.SubmitOffer(ctx, "listing-fixed", "creator-1", models.RoleCreator, -1, "")
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})

	t.Run("message over 500 runes", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)

		long := make([]rune, 501)
		for i := range long {
			long[i] = '字'
		}
		_, err := svc.SubmitOffer(ctx, "listing-fixed", "creator-1", models.RoleCreator, 500, string(long))
		assert.ErrorIs(t, err, ErrMessageTooLong)
	})

	t.Run("deadlock is retried then succeeds", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)
		store.getForUpdateErrs = []error{
			&mysql.MySQLError{Number: 1213, Message: "Deadlock found"},
			&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"},
		}

		result, err := svc.SubmitOffer(ctx, "listing-fixed", "creator-1", models.RoleCreator, 500, "")
		require.NoError(t, err)
		assert.Equal(t, models.OfferStatusPending, result.Offer.Status)
	})

	t.Run("persistent contention gives up after retry budget", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow), WithMaxRetries(2))
		seedFixedListing(store, "brand-1", 500)
		for i := 0; i < 10; i++ {
			store.getForUpdateErrs = append(store.getForUpdateErrs, &mysql.MySQLError{Number: 1213})
		}

		_, err := svc.SubmitOffer(ctx, "listing-fixed", "creator-1", models.RoleCreator, 500, "")
		assert.ErrorIs(t, err, ErrTooMuchContention)
	})
}

func TestDecideOffer(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixedNow := func() time.Time { return now }

	setup := func(t *testing.T) (*ListingService, *fakeMarketStore, []string) {
		t.Helper()
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)

		var ids []string
		for i, responder := range []string{"creator-1", "creator-2", "creator-3"} {
			result, err := svc.SubmitOffer(ctx, "listing-fixed", responder, models.RoleCreator, 500+float64(i)*10, "")
			require.NoError(t, err)
			ids = append(ids, result.Offer.ID)
		}
		return svc, store, ids
	}

	t.Run("accept cascades to siblings and marks listing sold", func(t *testing.T) {
		svc, store, ids := setup(t)

		decided, err := svc.DecideOffer(ctx, "listing-fixed", "brand-1", ids[1], models.OfferStatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, models.OfferStatusAccepted, decided.Status)

		assert.Equal(t, models.OfferStatusRejected, store.offers[ids[0]].Status)
		assert.Equal(t, models.OfferStatusAccepted, store.offers[ids[1]].Status)
		assert.Equal(t, models.OfferStatusRejected, store.offers[ids[2]].Status)
		assert.Equal(t, models.ListingStatusSold, store.listings["listing-fixed"].Status)
	})

	t.Run("sold listing refuses further offers", func(t *testing.T) {
		svc, _, ids := setup(t)

		_, err := svc.DecideOffer(ctx, "listing-fixed", "brand-1", ids[0], models.OfferStatusAccepted)
		require.NoError(t, err)

		_, err = svc.SubmitOffer(ctx, "listing-fixed", "creator-9", models.RoleCreator, 900, "")
		policyErr, ok := AsPolicyError(err)
		require.True(t, ok)
		assert.Equal(t, RejectListingNotOpen, policyErr.Reason)
	})

	t.Run("reject touches only the target offer", func(t *testing.T) {
		svc, store, ids := setup(t)

		decided, err := svc.DecideOffer(ctx, "listing-fixed", "brand-1", ids[0], models.OfferStatusRejected)
		require.NoError(t, err)
		assert.Equal(t, models.OfferStatusRejected, decided.Status)

		assert.Equal(t, models.OfferStatusPending, store.offers[ids[1]].Status)
		assert.Equal(t, models.OfferStatusPending, store.offers[ids[2]].Status)
		assert.Equal(t, models.ListingStatusOpen, store.listings["listing-fixed"].Status)
	})

	t.Run("deciding a settled offer again is invalid", func(t *testing.T) {
		svc, _, ids := setup(t)

		_, err := svc.DecideOffer(ctx, "listing-fixed", "brand-1", ids[0], models.OfferStatusRejected)
		require.NoError(t, err)

		_, err = svc.DecideOffer(ctx, "listing-fixed", "brand-1", ids[0], models.OfferStatusAccepted)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("only the owner decides", func(t *testing.T) {
		svc, _, ids := setup(t)

		_, err := svc.DecideOffer(ctx, "listing-fixed", "creator-1", ids[0], models.OfferStatusAccepted)
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("offer must belong to the listing", func(t *testing.T) {
		svc, store, _ := setup(t)
		seedAuctionListing(store, "brand-1", 100, now.Add(time.Hour))
		other, err := svc.SubmitOffer(ctx, "listing-auction", "creator-5", models.RoleCreator, 200, "")
		require.NoError(t, err)

		_, err = svc.DecideOffer(ctx, "listing-fixed", "brand-1", other.Offer.ID, models.OfferStatusAccepted)
		assert.ErrorIs(t, err, ErrOfferNotFound)
	})

	t.Run("unknown decision verb", func(t *testing.T) {
		svc, _, ids := setup(t)

		_, err := svc.DecideOffer(ctx, "listing-fixed", "brand-1", ids[0], "maybe")
		assert.ErrorIs(t, err, ErrInvalidDecision)
	})
}

func TestCloseListing(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixedNow := func() time.Time { return now }

	t.Run("close leaves pending offers untouched", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)
		result, err := svc.SubmitOffer(ctx, "listing-fixed", "creator-1", models.RoleCreator, 500, "")
		require.NoError(t, err)

		closed, err := svc.CloseListing(ctx, "listing-fixed", "brand-1")
		require.NoError(t, err)
		assert.Equal(t, models.ListingStatusClosed, closed.Status)

		// 无成交关闭只停止新报价，不级联拒绝
		assert.Equal(t, models.OfferStatusPending, store.offers[result.Offer.ID].Status)

		_, err = svc.SubmitOffer(ctx, "listing-fixed", "creator-2", models.RoleCreator, 600, "")
		policyErr, ok := AsPolicyError(err)
		require.True(t, ok)
		assert.Equal(t, RejectListingNotOpen, policyErr.Reason)
	})

	t.Run("pending offer on closed listing cannot be accepted", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)
		result, err := svc.SubmitOffer(ctx, "listing-fixed", "creator-1", models.RoleCreator, 500, "")
		require.NoError(t, err)

		_, err = svc.CloseListing(ctx, "listing-fixed", "brand-1")
		require.NoError(t, err)

		// closed 是终态：接受会推进 sold，必须被拦下
		_, err = svc.DecideOffer(ctx, "listing-fixed", "brand-1", result.Offer.ID, models.OfferStatusAccepted)
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, models.ListingStatusClosed, store.listings["listing-fixed"].Status)
		assert.Equal(t, models.OfferStatusPending, store.offers[result.Offer.ID].Status)
	})

	t.Run("pending offer on closed listing can still be rejected", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)
		result, err := svc.SubmitOffer(ctx, "listing-fixed", "creator-1", models.RoleCreator, 500, "")
		require.NoError(t, err)

		_, err = svc.CloseListing(ctx, "listing-fixed", "brand-1")
		require.NoError(t, err)

		decided, err := svc.DecideOffer(ctx, "listing-fixed", "brand-1", result.Offer.ID, models.OfferStatusRejected)
		require.NoError(t, err)
		assert.Equal(t, models.OfferStatusRejected, decided.Status)
		assert.Equal(t, models.ListingStatusClosed, store.listings["listing-fixed"].Status)
	})

	t.Run("closing twice is invalid", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)

		_, err := svc.CloseListing(ctx, "listing-fixed", "brand-1")
		require.NoError(t, err)
		_, err = svc.CloseListing(ctx, "listing-fixed", "brand-1")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("only the owner closes", func(t *testing.T) {
		svc, store := newTestService(WithNowFunc(fixedNow))
		seedFixedListing(store, "brand-1", 500)

		_, err := svc.CloseListing(ctx, "listing-fixed", "creator-1")
		assert.ErrorIs(t, err, ErrNotOwner)
	})
}

func TestListOffers(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	svc, store := newTestService(WithNowFunc(func() time.Time { return now }))
	seedFixedListing(store, "brand-1", 500)
	_, err := svc.SubmitOffer(ctx, "listing-fixed", "creator-1", models.RoleCreator, 500, "")
	require.NoError(t, err)
	_, err = svc.SubmitOffer(ctx, "listing-fixed", "creator-2", models.RoleCreator, 550, "")
	require.NoError(t, err)

	t.Run("owner sees all offers", func(t *testing.T) {
		offers, err := svc.ListOffers(ctx, "listing-fixed", "brand-1")
		require.NoError(t, err)
		assert.Len(t, offers, 2)
	})

	t.Run("responder sees only own offers", func(t *testing.T) {
		offers, err := svc.ListOffers(ctx, "listing-fixed", "creator-1")
		require.NoError(t, err)
		require.Len(t, offers, 1)
		assert.Equal(t, "creator-1", offers[0].ResponderID)
	})

	t.Run("stranger sees nothing", func(t *testing.T) {
		offers, err := svc.ListOffers(ctx, "listing-fixed", "creator-9")
		require.NoError(t, err)
		assert.Empty(t, offers)
	})

	t.Run("missing listing", func(t *testing.T) {
		_, err := svc.ListOffers(ctx, "no-such", "brand-1")
		assert.ErrorIs(t, err, ErrListingNotFound)
	})
}
