package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"spendwise/internal/auth"
	"spendwise/internal/core"
	"spendwise/internal/services"
	"spendwise/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useSQLite points the configuration at a fresh database and returns its path.
func useSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spendwise.db")
	t.Setenv("BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", path)
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// withStore opens the database directly so tests can seed data.
func withStore(t *testing.T, path string, fn func(storage.Store)) {
	t.Helper()
	store, err := storage.NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()
	fn(store)
}

func lookupUser(t *testing.T, store storage.Store, username string) auth.User {
	t.Helper()
	u, found, err := auth.NewService(store).Lookup(context.Background(), username)
	require.NoError(t, err)
	require.True(t, found)
	return u
}

func TestUserRegisterLoginAndReport(t *testing.T) {
	path := useSQLite(t)

	out, _, err := run(t, "user", "register", "ann", "--password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "registered ann")

	_, _, err = run(t, "user", "register", "ann", "--password", "secret1")
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)

	_, _, err = run(t, "user", "register", "bob", "--password", "secret1", "--confirm", "secret2")
	assert.ErrorIs(t, err, auth.ErrPasswordMismatch)

	_, _, err = run(t, "user", "login", "ann", "--password", "nope-nope")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	out, _, err = run(t, "user", "login", "ann", "--password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "credentials valid for ann")

	withStore(t, path, func(store storage.Store) {
		u := lookupUser(t, store, "ann")
		title, category, desc := "Lunch", "Food & Dining", "team lunch"
		amount := core.MoneyFromCents(1250)
		date := core.NewDate(2024, time.March, 10)
		_, err := services.NewExpenseService(store).Create(context.Background(), u.ID, core.ExpenseFields{
			Title: &title, Amount: &amount, Category: &category, Date: &date, Description: &desc,
		})
		require.NoError(t, err)
	})

	out, errOut, err := run(t, "report", "monthly", "--user", "ann", "--month", "2024-03")
	require.NoError(t, err)
	assert.Equal(t, "Date,Title,Category,Amount,Description\n\"Mar 10, 2024\",Lunch,Food & Dining,$12.50,team lunch", out)
	assert.Contains(t, errOut, "March 2024: 1 expenses, $12.50")

	dir := t.TempDir()
	_, _, err = run(t, "report", "category", "--user", "ann", "--out", dir)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "expenses-by-category.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Category,Total Spent,Percentage\nFood & Dining,$12.50,100.0%", string(data))
}

func TestReportErrors(t *testing.T) {
	useSQLite(t)

	_, _, err := run(t, "report", "monthly", "--user", "ghost")
	assert.ErrorContains(t, err, `unknown user "ghost"`)

	_, _, err = run(t, "user", "register", "ann", "--password", "secret1")
	require.NoError(t, err)
	_, _, err = run(t, "report", "weekly", "--user", "ann")
	assert.Error(t, err)

	_, _, err = run(t, "report", "monthly")
	assert.Error(t, err, "--user is required")
}

func TestRecurringOnce(t *testing.T) {
	path := useSQLite(t)
	_, _, err := run(t, "user", "register", "ann", "--password", "secret1")
	require.NoError(t, err)

	var userID string
	withStore(t, path, func(store storage.Store) {
		userID = lookupUser(t, store, "ann").ID
		expenses := services.NewExpenseService(store)
		title := "Gym"
		amount := core.MoneyFromCents(3000)
		rt := core.RecurrenceType("monthly")
		start := core.DateOf(time.Now().UTC()).AddDays(-1)
		_, err := services.NewRecurringService(store, expenses).Create(context.Background(), userID, core.TemplateFields{
			Title: &title, Amount: &amount, RecurrenceType: &rt, StartDate: &start,
		})
		require.NoError(t, err)
	})

	out, _, err := run(t, "recurring", "--once")
	require.NoError(t, err)
	assert.Equal(t, "created 1 expenses\n", out)

	// nothing is due any more
	out, _, err = run(t, "recurring", "--once")
	require.NoError(t, err)
	assert.Equal(t, "created 0 expenses\n", out)

	withStore(t, path, func(store storage.Store) {
		list, err := services.NewExpenseService(store).List(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Gym", list[0].Title)
	})
}

func TestMigrate(t *testing.T) {
	path := useSQLite(t)
	out, _, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied for sqlite backend")
	assert.FileExists(t, path)

	t.Setenv("BACKEND", "memory")
	out, _, err = run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to migrate")
}

func TestInvalidConfigurationIsRejected(t *testing.T) {
	useSQLite(t)
	t.Setenv("PORT", "abc")
	_, _, err := run(t, "migrate")
	assert.ErrorContains(t, err, "configuration validation failed")
}

func TestExportWorkerRequiresAMQP(t *testing.T) {
	useSQLite(t)
	_, _, err := run(t, "export-worker")
	assert.ErrorContains(t, err, "AMQP_URL")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SPENDWISE_CLI_TEST_KEY=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SPENDWISE_CLI_TEST_KEY") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("SPENDWISE_CLI_TEST_KEY"))

	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
}
