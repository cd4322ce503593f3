package worker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/sheets/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func validExpense(t *testing.T) core.Expense {
	t.Helper()
	amount, err := core.ParseMoney("9.99")
	require.NoError(t, err)
	return core.Expense{
		ID:       "e1",
		Title:    "Streaming",
		Amount:   amount,
		Category: "Entertainment",
		Date:     core.NewDate(2024, time.April, 2),
	}
}

func TestExportWorker_HandleEvent(t *testing.T) {
	sheet := memory.New()
	w := NewExportWorker(sheet, quietLogger())
	ctx := context.Background()
	e := validExpense(t)

	for _, kind := range []core.EventKind{core.EventCreated, core.EventMaterialized, core.EventUpdated, core.EventDeleted} {
		require.NoError(t, w.HandleEvent(ctx, core.ExpenseEvent{Kind: kind, UserID: "alice", Expense: e}))
	}

	rows := sheet.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-04-02", "Streaming", "Entertainment", "9.99", "", "alice"}, rows[0])
	assert.Equal(t, ExportStats{Exported: 2, Skipped: 2}, w.Stats())
}

func TestExportWorker_DropsInvalidExpense(t *testing.T) {
	sheet := memory.New()
	w := NewExportWorker(sheet, quietLogger())

	err := w.HandleEvent(context.Background(), core.ExpenseEvent{Kind: core.EventCreated, UserID: "alice", Expense: core.Expense{ID: "bad"}})
	assert.NoError(t, err, "invalid rows are dropped, not requeued")
	assert.Empty(t, sheet.Rows())
	assert.Equal(t, int64(1), w.Stats().Skipped)
}

type failingAppender struct{ err error }

func (f failingAppender) Append(context.Context, string, core.Expense) (string, error) {
	return "", f.err
}

func TestExportWorker_AppendFailureRequeues(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewExportWorker(failingAppender{err: boom}, quietLogger())

	err := w.HandleEvent(context.Background(), core.ExpenseEvent{Kind: core.EventCreated, UserID: "alice", Expense: validExpense(t)})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1), w.Stats().Failed)
}

type fakeSource struct {
	events []core.ExpenseEvent
}

func (f fakeSource) ConsumeExpenseEvents(ctx context.Context, handler amqp.Handler) error {
	for _, e := range f.events {
		if err := handler(ctx, e); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestExportWorker_RunStopsOnCancel(t *testing.T) {
	sheet := memory.New()
	w := NewExportWorker(sheet, quietLogger())
	src := fakeSource{events: []core.ExpenseEvent{{Kind: core.EventCreated, UserID: "bob", Expense: validExpense(t)}}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, src) }()

	require.Eventually(t, func() bool { return len(sheet.Rows()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
