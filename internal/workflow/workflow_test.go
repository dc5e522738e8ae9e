package workflow

import (
	"testing"

	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide_ReturnTransitions(t *testing.T) {
	t.Run("pending to approved is allowed without side effects", func(t *testing.T) {
		d, err := Decide(EntityReturn, string(domain.ReturnStatusPending), string(domain.ReturnStatusApproved))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Empty(t, d.SideEffects)
	})

	t.Run("approved to completed carries stock write-back", func(t *testing.T) {
		d, err := Decide(EntityReturn, string(domain.ReturnStatusApproved), string(domain.ReturnStatusCompleted))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, []SideEffect{SideEffectStockWriteBack}, d.SideEffects)
	})

	t.Run("pending to rejected carries rejection reason side effect", func(t *testing.T) {
		d, err := Decide(EntityReturn, string(domain.ReturnStatusPending), string(domain.ReturnStatusRejected))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, []SideEffect{SideEffectStoreRejectionReason}, d.SideEffects)
	})

	t.Run("completed is unreachable except via approved", func(t *testing.T) {
		for _, from := range []domain.ReturnStatus{
			domain.ReturnStatusPending,
			domain.ReturnStatusCompleted,
			domain.ReturnStatusRejected,
		} {
			d, err := Decide(EntityReturn, string(from), string(domain.ReturnStatusCompleted))
			require.NoError(t, err)
			assert.False(t, d.Allowed, "COMPLETED must not be reachable from %s", from)
			assert.NotEmpty(t, d.Reason)
		}
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		for _, to := range []domain.ReturnStatus{
			domain.ReturnStatusPending,
			domain.ReturnStatusApproved,
			domain.ReturnStatusCompleted,
		} {
			d, err := Decide(EntityReturn, string(domain.ReturnStatusRejected), string(to))
			require.NoError(t, err)
			assert.False(t, d.Allowed)
		}
	})
}

func TestDecide_IntrastatTransitions(t *testing.T) {
	t.Run("happy path is strictly forward", func(t *testing.T) {
		chain := []domain.IntrastatStatus{
			domain.IntrastatStatusOpen,
			domain.IntrastatStatusReady,
			domain.IntrastatStatusSent,
			domain.IntrastatStatusConfirmed,
		}
		for i := 0; i < len(chain)-1; i++ {
			d, err := Decide(EntityIntrastatDeclaration, string(chain[i]), string(chain[i+1]))
			require.NoError(t, err)
			assert.True(t, d.Allowed, "%s -> %s must be allowed", chain[i], chain[i+1])
		}
	})

	t.Run("skipping a stage is denied", func(t *testing.T) {
		d, err := Decide(EntityIntrastatDeclaration, string(domain.IntrastatStatusOpen), string(domain.IntrastatStatusSent))
		require.NoError(t, err)
		assert.False(t, d.Allowed)
	})

	t.Run("reverse transitions are denied", func(t *testing.T) {
		d, err := Decide(EntityIntrastatDeclaration, string(domain.IntrastatStatusSent), string(domain.IntrastatStatusReady))
		require.NoError(t, err)
		assert.False(t, d.Allowed)

		d, err = Decide(EntityIntrastatDeclaration, string(domain.IntrastatStatusConfirmed), string(domain.IntrastatStatusOpen))
		require.NoError(t, err)
		assert.False(t, d.Allowed)
	})
}

func TestDecide_DocumentTransitions(t *testing.T) {
	t.Run("failed OCR can be resubmitted", func(t *testing.T) {
		d, err := Decide(EntityDocument, string(domain.DocumentStatusFailed), string(domain.DocumentStatusProcessing))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("uploaded cannot jump straight to processed", func(t *testing.T) {
		d, err := Decide(EntityDocument, string(domain.DocumentStatusUploaded), string(domain.DocumentStatusProcessed))
		require.NoError(t, err)
		assert.False(t, d.Allowed)
	})
}

func TestDecide_StockTransitions(t *testing.T) {
	t.Run("reservation fulfil commits stock", func(t *testing.T) {
		d, err := Decide(EntityStockReservation, string(domain.ReservationStatusReserved), string(domain.ReservationStatusFulfilled))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, []SideEffect{SideEffectStockCommit}, d.SideEffects)
	})

	t.Run("reservation release does not commit stock", func(t *testing.T) {
		d, err := Decide(EntityStockReservation, string(domain.ReservationStatusReserved), string(domain.ReservationStatusReleased))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, []SideEffect{SideEffectStockRelease}, d.SideEffects)
	})

	t.Run("expected receipt arrival books stock per item", func(t *testing.T) {
		d, err := Decide(EntityExpectedReceipt, string(domain.ExpectedReceiptStatusExpected), string(domain.ExpectedReceiptStatusReceived))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, []SideEffect{SideEffectStockReceipt}, d.SideEffects)
	})

	t.Run("fulfilled reservation is terminal", func(t *testing.T) {
		d, err := Decide(EntityStockReservation, string(domain.ReservationStatusFulfilled), string(domain.ReservationStatusReleased))
		require.NoError(t, err)
		assert.False(t, d.Allowed)
	})
}

func TestDecide_InvalidInput(t *testing.T) {
	t.Run("unknown entity type is an error", func(t *testing.T) {
		_, err := Decide(EntityType("invoice"), "A", "B")
		assert.Error(t, err)
	})

	t.Run("target status outside the enum is an error, not a denial", func(t *testing.T) {
		_, err := Decide(EntityReturn, string(domain.ReturnStatusPending), "SHIPPED")
		assert.Error(t, err)
	})

	t.Run("source status outside the enum is an error", func(t *testing.T) {
		_, err := Decide(EntityReturn, "DRAFT", string(domain.ReturnStatusApproved))
		assert.Error(t, err)
	})
}

func TestAllowedTargets(t *testing.T) {
	targets := AllowedTargets(EntityReturn, string(domain.ReturnStatusPending))
	assert.ElementsMatch(t, []string{
		string(domain.ReturnStatusApproved),
		string(domain.ReturnStatusRejected),
	}, targets)

	assert.Empty(t, AllowedTargets(EntityReturn, string(domain.ReturnStatusRejected)))
}
