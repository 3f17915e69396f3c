// Package wallettest provides an in-memory ledger for tests of packages that
// move money through the wallet service.
package wallettest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"
)

// Repo is an in-memory walletRepo.WalletRepository.
type Repo struct {
	mu   sync.Mutex
	rows []models.WalletTransaction

	// InsertErr, when set, is returned for inserts whose type matches FailType
	// (or for every insert when FailType is empty).
	InsertErr error
	FailType  models.TransactionType
	Deleted   []string
}

func (r *Repo) Insert(ctx context.Context, tx *models.WalletTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.InsertErr != nil && (r.FailType == "" || r.FailType == tx.Type) {
		return r.InsertErr
	}
	r.rows = append(r.rows, *tx)
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			r.Deleted = append(r.Deleted, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			cp := row
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].Status = status
			if reference != "" {
				r.rows[i].Reference = reference
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *Repo) FindByReference(ctx context.Context, reference string) (*models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Reference == reference {
			cp := row
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Repo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.WalletTransaction, error) {
	return r.filter(func(tx models.WalletTransaction) bool { return tx.UserID == userID }, limit), nil
}

func (r *Repo) ListBySession(ctx context.Context, sessionID string) ([]models.WalletTransaction, error) {
	return r.filter(func(tx models.WalletTransaction) bool { return tx.SessionID == sessionID }, 0), nil
}

func (r *Repo) Totals(ctx context.Context, userID string) ([]models.LedgerTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := map[[2]string]float64{}
	for _, row := range r.rows {
		if row.UserID == userID {
			sums[[2]string{string(row.Type), string(row.Status)}] += row.Amount
		}
	}
	out := make([]models.LedgerTotal, 0, len(sums))
	for k, v := range sums {
		out = append(out, models.LedgerTotal{Type: models.TransactionType(k[0]), Status: models.TransactionStatus(k[1]), Amount: v})
	}
	return out, nil
}

// Rows returns a snapshot of the ledger.
func (r *Repo) Rows() []models.WalletTransaction {
	return r.filter(func(models.WalletTransaction) bool { return true }, 0)
}

func (r *Repo) filter(keep func(models.WalletTransaction) bool, limit int64) []models.WalletTransaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WalletTransaction
	for _, row := range r.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

// Seed inserts a completed row directly, bypassing the service.
func (r *Repo) Seed(userID string, typ models.TransactionType, amount float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, models.WalletTransaction{
		ID:     fmt.Sprintf("seed-%d", len(r.rows)),
		UserID: userID,
		Type:   typ,
		Amount: amount,
		Status: models.TxCompleted,
	})
}
