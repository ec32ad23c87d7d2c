package cart

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/niledreams/backend-travel/internal/store"
)

// Repo is the persistence surface the cart service depends on. The read
// methods run outside a transaction; every mutation goes through Mutate so
// concurrent requests against the same cart never interleave partial writes.
type Repo interface {
	GetCartByToken(ctx context.Context, token string) (store.Cart, error)
	CreateCart(ctx context.Context, token string) (store.Cart, error)
	GetCart(ctx context.Context, id string) (store.Cart, error)
	UpdateCartContact(ctx context.Context, cartID string, name, email, phone *string) (store.Cart, error)
	ListEntries(ctx context.Context, cartID string) ([]store.CartEntry, error)
	GetTripBySlug(ctx context.Context, slug string) (store.Trip, error)
	GetTripOption(ctx context.Context, tripID, optionID string) (store.TripOption, error)
	ListTripExtrasByIDs(ctx context.Context, tripID string, ids []string) ([]store.TripExtra, error)
	ListTripExtras(ctx context.Context, tripID string) ([]store.TripExtra, error)
	ListTripsByIDs(ctx context.Context, ids []string) ([]store.Trip, error)
	Mutate(ctx context.Context, cartID string, fn func(EntryTx) error) error
}

// EntryTx is the entry write surface available inside a Mutate callback. All
// operations are scoped to the cart the transaction was opened for.
type EntryTx interface {
	ListEntries(ctx context.Context) ([]store.CartEntry, error)
	GetEntry(ctx context.Context, entryID string) (store.CartEntry, error)
	InsertEntry(ctx context.Context, e store.CartEntry) (store.CartEntry, error)
	UpdateEntry(ctx context.Context, e store.CartEntry) (store.CartEntry, error)
	DeleteEntry(ctx context.Context, entryID string) error
	SetAppliedPhase(ctx context.Context, entryID string, phaseID *string) error
	ClearAppliedPhases(ctx context.Context) (int64, error)
}

// PGRepo implements Repo on the pgx-backed store.
type PGRepo struct {
	Store *store.Store
}

func (r PGRepo) GetCartByToken(ctx context.Context, token string) (store.Cart, error) {
	return r.Store.GetCartByToken(ctx, token)
}

func (r PGRepo) CreateCart(ctx context.Context, token string) (store.Cart, error) {
	return r.Store.CreateCart(ctx, token)
}

func (r PGRepo) GetCart(ctx context.Context, id string) (store.Cart, error) {
	return r.Store.GetCart(ctx, id)
}

func (r PGRepo) UpdateCartContact(ctx context.Context, cartID string, name, email, phone *string) (store.Cart, error) {
	return r.Store.UpdateCartContact(ctx, cartID, name, email, phone)
}

func (r PGRepo) ListEntries(ctx context.Context, cartID string) ([]store.CartEntry, error) {
	return r.Store.ListEntries(ctx, cartID)
}

func (r PGRepo) GetTripBySlug(ctx context.Context, slug string) (store.Trip, error) {
	return r.Store.GetTripBySlug(ctx, slug)
}

func (r PGRepo) GetTripOption(ctx context.Context, tripID, optionID string) (store.TripOption, error) {
	return r.Store.GetTripOption(ctx, tripID, optionID)
}

func (r PGRepo) ListTripExtrasByIDs(ctx context.Context, tripID string, ids []string) ([]store.TripExtra, error) {
	return r.Store.ListTripExtrasByIDs(ctx, tripID, ids)
}

func (r PGRepo) ListTripExtras(ctx context.Context, tripID string) ([]store.TripExtra, error) {
	return r.Store.ListTripExtras(ctx, tripID)
}

func (r PGRepo) ListTripsByIDs(ctx context.Context, ids []string) ([]store.Trip, error) {
	return r.Store.ListTripsByIDs(ctx, ids)
}

// Mutate runs fn inside a single transaction and bumps the cart's updated_at
// timestamp once the callback succeeds.
func (r PGRepo) Mutate(ctx context.Context, cartID string, fn func(EntryTx) error) error {
	return r.Store.WithTx(ctx, func(tx pgx.Tx) error {
		if err := fn(pgEntryTx{tx: tx, cartID: cartID}); err != nil {
			return err
		}
		return store.TouchCart(ctx, tx, cartID)
	})
}

type pgEntryTx struct {
	tx     pgx.Tx
	cartID string
}

func (t pgEntryTx) ListEntries(ctx context.Context) ([]store.CartEntry, error) {
	return store.ListEntriesTx(ctx, t.tx, t.cartID)
}

func (t pgEntryTx) GetEntry(ctx context.Context, entryID string) (store.CartEntry, error) {
	return store.GetEntryTx(ctx, t.tx, t.cartID, entryID)
}

func (t pgEntryTx) InsertEntry(ctx context.Context, e store.CartEntry) (store.CartEntry, error) {
	e.CartID = t.cartID
	return store.InsertEntryTx(ctx, t.tx, e)
}

func (t pgEntryTx) UpdateEntry(ctx context.Context, e store.CartEntry) (store.CartEntry, error) {
	e.CartID = t.cartID
	return store.UpdateEntryTx(ctx, t.tx, e)
}

func (t pgEntryTx) DeleteEntry(ctx context.Context, entryID string) error {
	return store.DeleteEntryTx(ctx, t.tx, t.cartID, entryID)
}

func (t pgEntryTx) SetAppliedPhase(ctx context.Context, entryID string, phaseID *string) error {
	return store.SetAppliedPhaseTx(ctx, t.tx, t.cartID, entryID, phaseID)
}

func (t pgEntryTx) ClearAppliedPhases(ctx context.Context) (int64, error) {
	return store.ClearAppliedPhasesTx(ctx, t.tx, t.cartID)
}
