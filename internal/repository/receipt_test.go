package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-engine/internal/common"
	"github.com/joseph-ayodele/receipt-engine/internal/entity"
)

func testRepo(t *testing.T) ReceiptRepository {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewReceiptRepository(db, "sqlite", nil)
}

func sample() entity.CanonicalReceipt {
	return entity.CanonicalReceipt{
		Merchant:      "Acme Mart",
		Date:          "01/15/2024",
		InvoiceNumber: entity.Unknown,
		Subtotal:      8.00,
		Tax:           0.64,
		Total:         8.64,
	}
}

func TestInsertAndFetchMetadata(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, sample(), "acme.jpg")
	require.NoError(t, err)

	total, tax, err := repo.FetchMetadata(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 8.64, total)
	assert.Equal(t, 0.64, tax)
}

func TestExistsMatchesExactly(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, sample(), "acme.jpg")
	require.NoError(t, err)

	found, count, err := repo.Exists(ctx, ExistsQuery{Merchant: "Acme Mart", Date: "01/15/2024", Total: 8.64})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, count)

	// No tolerance on total.
	found, count, err = repo.Exists(ctx, ExistsQuery{Merchant: "Acme Mart", Date: "01/15/2024", Total: 8.65})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, count)
}

func TestExistsInvoiceNumberParticipation(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	rec := sample()
	rec.InvoiceNumber = "INV-1"
	_, err := repo.Insert(ctx, rec, "acme.jpg")
	require.NoError(t, err)

	// A different invoice number excludes the match.
	found, _, err := repo.Exists(ctx, ExistsQuery{Merchant: "Acme Mart", Date: "01/15/2024", Total: 8.64, InvoiceNumber: "INV-2"})
	require.NoError(t, err)
	assert.False(t, found)

	// The Unknown sentinel does not participate in the predicate.
	found, count, err := repo.Exists(ctx, ExistsQuery{Merchant: "Acme Mart", Date: "01/15/2024", Total: 8.64, InvoiceNumber: entity.Unknown})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, count)
}

func TestLineItemsRoundTripPreservesOrder(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, sample(), "acme.jpg")
	require.NoError(t, err)

	items := []entity.LineItem{
		{Name: "Coffee", Qty: 2, Price: 4.00},
		{Name: "Bagel", Qty: 1, Price: 2.50},
		{Name: "Muffin", Qty: 3, Price: 1.25},
	}
	require.NoError(t, repo.InsertLineItems(ctx, id, items))

	got, err := repo.FetchLineItems(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestListDeleteClear(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	first, err := repo.Insert(ctx, sample(), "a.jpg")
	require.NoError(t, err)
	second := sample()
	second.Merchant = "Corner Shop"
	_, err = repo.Insert(ctx, second, "b.jpg")
	require.NoError(t, err)
	require.NoError(t, repo.InsertLineItems(ctx, first, []entity.LineItem{{Name: "Coffee", Qty: 1, Price: 4.00}}))

	recs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	require.NoError(t, repo.Delete(ctx, first))
	items, err := repo.FetchLineItems(ctx, first)
	require.NoError(t, err)
	assert.Empty(t, items)

	err = repo.Delete(ctx, first)
	assert.ErrorIs(t, err, common.ErrNotFound)

	n, err := repo.Clear(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	recs, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFetchMetadataNotFound(t *testing.T) {
	repo := testRepo(t)

	_, _, err := repo.FetchMetadata(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}
