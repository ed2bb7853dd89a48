package fulfillment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
)

func testAddress(t *testing.T) valueobject.Address {
	t.Helper()
	addr, err := valueobject.NewAddress("Madhya Pradesh", "Sehore", "Ashta", "Mandi Road, Warehouse 4", valueobject.WithPinCode("466116"))
	require.NoError(t, err)
	return addr
}

func TestLogisticsLifecycle(t *testing.T) {
	addr := testAddress(t)

	newShipment := func(t *testing.T) *Logistics {
		l, err := NewLogistics(uuid.New(), uuid.New(), "KrishiExpress", addr, addr, time.Now())
		require.NoError(t, err)
		return l
	}

	t.Run("scheduled to delivered", func(t *testing.T) {
		l := newShipment(t)
		assert.Equal(t, ShipmentStatusScheduled, l.Status)

		require.NoError(t, l.Dispatch("KE123456"))
		assert.Equal(t, ShipmentStatusInTransit, l.Status)
		assert.Equal(t, "KE123456", l.TrackingNumber)

		require.NoError(t, l.MarkDelivered(time.Now()))
		assert.Equal(t, ShipmentStatusDelivered, l.Status)
		require.NotNil(t, l.DeliveredAt)
	})

	t.Run("failure requires a reason", func(t *testing.T) {
		l := newShipment(t)
		require.Error(t, l.MarkFailed(""))
		require.NoError(t, l.MarkFailed("vehicle breakdown"))
		assert.Equal(t, ShipmentStatusFailed, l.Status)
	})

	t.Run("no transitions out of delivered", func(t *testing.T) {
		l := newShipment(t)
		require.NoError(t, l.Dispatch(""))
		require.NoError(t, l.MarkDelivered(time.Now()))

		require.Error(t, l.Dispatch("again"))
		require.Error(t, l.MarkFailed("too late"))
	})

	t.Run("rejects missing carrier", func(t *testing.T) {
		_, err := NewLogistics(uuid.New(), uuid.New(), "", addr, addr, time.Now())
		require.Error(t, err)
	})
}

func TestDisputeLifecycle(t *testing.T) {
	newOpenDispute := func(t *testing.T) *Dispute {
		d, err := NewDispute(uuid.New(), uuid.New(), uuid.New(), "short delivery", []string{"https://files.example/evid1.jpg"})
		require.NoError(t, err)
		return d
	}

	t.Run("open review resolve", func(t *testing.T) {
		d := newOpenDispute(t)
		require.NoError(t, d.StartReview())
		require.NoError(t, d.Resolve(uuid.New(), "refund issued"))

		assert.Equal(t, DisputeStatusResolved, d.Status)
		assert.Equal(t, "refund issued", d.Resolution)
		require.NotNil(t, d.ResolvedAt)
	})

	t.Run("resolution note is mandatory", func(t *testing.T) {
		d := newOpenDispute(t)
		require.NoError(t, d.StartReview())
		require.Error(t, d.Resolve(uuid.New(), ""))
	})

	t.Run("cannot resolve without review", func(t *testing.T) {
		d := newOpenDispute(t)
		err := d.Resolve(uuid.New(), "refund issued")
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	})

	t.Run("evidence only while open", func(t *testing.T) {
		d := newOpenDispute(t)
		require.NoError(t, d.AddEvidence("https://files.example/evid2.jpg"))
		require.NoError(t, d.StartReview())
		require.NoError(t, d.AddEvidence("https://files.example/evid3.jpg"))
		require.NoError(t, d.Reject(uuid.New(), "no fault found"))

		require.Error(t, d.AddEvidence("https://files.example/evid4.jpg"))
		assert.Len(t, d.EvidenceURLs, 3)
	})

	t.Run("cannot dispute yourself", func(t *testing.T) {
		partyID := uuid.New()
		_, err := NewDispute(uuid.New(), partyID, partyID, "reason", nil)
		require.Error(t, err)
	})
}

func TestQualityInspection(t *testing.T) {
	t.Run("records inspection", func(t *testing.T) {
		qi, err := NewQualityInspection(uuid.New(), uuid.New(), "A", decimal.RequireFromString("11.5"), true, "", time.Now())
		require.NoError(t, err)
		assert.True(t, qi.Passed)
	})

	t.Run("rejects impossible moisture", func(t *testing.T) {
		_, err := NewQualityInspection(uuid.New(), uuid.New(), "A", decimal.NewFromInt(101), true, "", time.Now())
		require.Error(t, err)
	})
}

func TestRating(t *testing.T) {
	t.Run("accepts scores one through five", func(t *testing.T) {
		for score := 1; score <= 5; score++ {
			_, err := NewRating(uuid.New(), uuid.New(), uuid.New(), score, "")
			require.NoError(t, err)
		}
	})

	t.Run("rejects out-of-range scores", func(t *testing.T) {
		_, err := NewRating(uuid.New(), uuid.New(), uuid.New(), 0, "")
		require.Error(t, err)
		_, err = NewRating(uuid.New(), uuid.New(), uuid.New(), 6, "")
		require.Error(t, err)
	})

	t.Run("rejects self rating", func(t *testing.T) {
		partyID := uuid.New()
		_, err := NewRating(uuid.New(), partyID, partyID, 5, "")
		require.Error(t, err)
	})
}

func TestVerification(t *testing.T) {
	t.Run("approve pending review", func(t *testing.T) {
		v, err := NewVerification(uuid.New(), shared.RoleFarmer, "kyc-doc-001")
		require.NoError(t, err)

		require.NoError(t, v.Approve(uuid.New(), "documents in order"))
		assert.True(t, v.IsVerified())
		require.Error(t, v.Approve(uuid.New(), "twice"))
	})

	t.Run("rejected review can be reopened", func(t *testing.T) {
		v, err := NewVerification(uuid.New(), shared.RoleDistributor, "kyc-doc-002")
		require.NoError(t, err)

		require.NoError(t, v.Reject(uuid.New(), "document expired"))
		require.NoError(t, v.Reopen("kyc-doc-003"))

		assert.Equal(t, VerificationStatusPending, v.Status)
		assert.Nil(t, v.ReviewedByID)
		assert.Equal(t, "kyc-doc-003", v.DocumentRef)
	})

	t.Run("verified review cannot be reopened", func(t *testing.T) {
		v, err := NewVerification(uuid.New(), shared.RoleRetailer, "kyc-doc-004")
		require.NoError(t, err)
		require.NoError(t, v.Approve(uuid.New(), ""))
		require.Error(t, v.Reopen("kyc-doc-005"))
	})
}
