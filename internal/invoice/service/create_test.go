package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/Rosario027/finalerp/internal/invoice/domain"
	"github.com/Rosario027/finalerp/internal/invoice/numbering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// flakyRepo fails chosen writes and delegates the rest to the real repository.
type flakyRepo struct {
	domain.Repository

	mu               sync.Mutex
	duplicateInserts int
	insertItemsErr   error
	insertCalls      int
}

func (r *flakyRepo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	r.mu.Lock()
	r.insertCalls++
	fail := r.duplicateInserts > 0
	if fail {
		r.duplicateInserts--
	}
	r.mu.Unlock()

	if fail {
		return fmt.Errorf("insert invoice %s: %w", invoice.InvoiceNumber, gorm.ErrDuplicatedKey)
	}
	return r.Repository.Insert(ctx, db, invoice)
}

func (r *flakyRepo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.InvoiceItem) error {
	r.mu.Lock()
	err := r.insertItemsErr
	r.mu.Unlock()

	if err != nil {
		return err
	}
	return r.Repository.InsertItems(ctx, db, items)
}

func (f *fixture) useFlakyRepo() *flakyRepo {
	svc := f.svc.(*Service)
	repo := &flakyRepo{Repository: svc.repo}
	svc.repo = repo
	return repo
}

func (f *fixture) assertEmpty(t *testing.T) {
	t.Helper()
	var invoices, items int64
	require.NoError(t, f.db.Model(&domain.Invoice{}).Count(&invoices).Error)
	require.NoError(t, f.db.Model(&domain.InvoiceItem{}).Count(&items).Error)
	assert.Zero(t, invoices)
	assert.Zero(t, items)
}

func TestCreate_RetriesDuplicateNumber(t *testing.T) {
	tests := []struct {
		name       string
		duplicates int
		wantErr    error
		wantNumber string
	}{
		{"first attempt", 0, nil, "FY25-26/001"},
		{"one collision", 1, nil, "FY25-26/001"},
		{"last attempt succeeds", maxCreateAttempts - 1, nil, "FY25-26/001"},
		{"attempts exhausted", maxCreateAttempts, domain.ErrInvoiceNumberBusy, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			repo := f.useFlakyRepo()
			repo.duplicateInserts = tt.duplicates

			resp, err := f.svc.Create(ctx, cashRequest("", item("10", 1, "5")))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, maxCreateAttempts, repo.insertCalls)
				f.assertEmpty(t)

				preview, err := f.svc.PreviewNextNumber(ctx)
				require.NoError(t, err)
				assert.Equal(t, "FY25-26/001", preview.InvoiceNumber)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantNumber, resp.InvoiceNumber)
			assert.Equal(t, tt.duplicates+1, repo.insertCalls)

			var count int64
			require.NoError(t, f.db.Model(&domain.Invoice{}).Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})
	}
}

func TestCreate_ItemInsertFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := f.useFlakyRepo()
	diskFull := errors.New("disk full")
	repo.insertItemsErr = diskFull

	_, err := f.svc.Create(ctx, cashRequest("", item("10", 1, "5"), item("20", 2, "12")))
	require.ErrorIs(t, err, diskFull)
	assert.Equal(t, 1, repo.insertCalls, "storage errors are not retried")
	f.assertEmpty(t)

	var seq numbering.Sequence
	err = f.db.Where("prefix = ?", "FY25-26/").Take(&seq).Error
	if err == nil {
		assert.Zero(t, seq.LastSequence)
	} else {
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	}

	repo.insertItemsErr = nil
	resp := f.create(t, cashRequest("", item("10", 1, "5")))
	assert.Equal(t, "FY25-26/001", resp.InvoiceNumber)
}

func TestCreate_ConcurrentNumbersAreUniqueAndContiguous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const workers = 12

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []string
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.svc.Create(ctx, cashRequest("", item("10", 1, "5")))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers = append(numbers, resp.InvoiceNumber)
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	sort.Strings(numbers)
	want := make([]string, 0, workers)
	for i := 1; i <= workers; i++ {
		want = append(want, numbering.Format("FY25-26/", int64(i)))
	}
	assert.Equal(t, want, numbers)
}
