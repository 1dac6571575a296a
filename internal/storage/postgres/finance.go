package postgres

import (
	"context"
	"errors"
	"fmt"

	"finflow/internal/models"
	"finflow/internal/storage"

	"github.com/jackc/pgx/v5"
)

const expenseColumns = `id, user_id, amount, description, category, date::text, recurring, recurring_frequency, notes, created_at`

func scanExpense(row pgx.Row) (models.Expense, error) {
	var e models.Expense
	err := row.Scan(
		&e.ID, &e.UserID, &e.Amount, &e.Description, &e.Category,
		&e.Date, &e.Recurring, &e.RecurringFrequency, &e.Notes, &e.CreatedAt,
	)
	return e, err
}

func (s *Storage) Expenses(ctx context.Context, userID int64) ([]models.Expense, error) {
	const op = "storage.postgres.Expenses"

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = $1 ORDER BY date DESC;`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

func (s *Storage) AddExpense(ctx context.Context, e models.Expense) (models.Expense, error) {
	const op = "storage.postgres.AddExpense"

	query := `
		INSERT INTO expenses (user_id, amount, description, category, date, recurring, recurring_frequency, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + expenseColumns + `;
	`

	created, err := scanExpense(s.pool.QueryRow(ctx, query,
		e.UserID, e.Amount, e.Description, e.Category, e.Date,
		e.Recurring, e.RecurringFrequency, e.Notes,
	))
	if err != nil {
		return models.Expense{}, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (s *Storage) UpdateExpense(ctx context.Context, e models.Expense) (models.Expense, error) {
	const op = "storage.postgres.UpdateExpense"

	query := `
		UPDATE expenses
		SET amount = $1, description = $2, category = $3, date = $4,
		    recurring = $5, recurring_frequency = $6, notes = $7
		WHERE id = $8 AND user_id = $9
		RETURNING ` + expenseColumns + `;
	`

	updated, err := scanExpense(s.pool.QueryRow(ctx, query,
		e.Amount, e.Description, e.Category, e.Date,
		e.Recurring, e.RecurringFrequency, e.Notes,
		e.ID, e.UserID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Expense{}, storage.ErrRecordNotFound
		}
		return models.Expense{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func (s *Storage) DeleteExpense(ctx context.Context, userID, id int64) error {
	return s.deleteOwned(ctx, "expenses", userID, id)
}

const incomeColumns = `id, user_id, amount, source, date::text, recurring, recurring_frequency, notes, created_at`

func scanIncome(row pgx.Row) (models.Income, error) {
	var in models.Income
	err := row.Scan(
		&in.ID, &in.UserID, &in.Amount, &in.Source,
		&in.Date, &in.Recurring, &in.RecurringFrequency, &in.Notes, &in.CreatedAt,
	)
	return in, err
}

func (s *Storage) Incomes(ctx context.Context, userID int64) ([]models.Income, error) {
	const op = "storage.postgres.Incomes"

	query := `SELECT ` + incomeColumns + ` FROM incomes WHERE user_id = $1 ORDER BY date DESC;`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	incomes := []models.Income{}
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		incomes = append(incomes, in)
	}

	return incomes, rows.Err()
}

func (s *Storage) AddIncome(ctx context.Context, in models.Income) (models.Income, error) {
	const op = "storage.postgres.AddIncome"

	query := `
		INSERT INTO incomes (user_id, amount, source, date, recurring, recurring_frequency, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + incomeColumns + `;
	`

	created, err := scanIncome(s.pool.QueryRow(ctx, query,
		in.UserID, in.Amount, in.Source, in.Date,
		in.Recurring, in.RecurringFrequency, in.Notes,
	))
	if err != nil {
		return models.Income{}, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (s *Storage) UpdateIncome(ctx context.Context, in models.Income) (models.Income, error) {
	const op = "storage.postgres.UpdateIncome"

	query := `
		UPDATE incomes
		SET amount = $1, source = $2, date = $3, recurring = $4, recurring_frequency = $5, notes = $6
		WHERE id = $7 AND user_id = $8
		RETURNING ` + incomeColumns + `;
	`

	updated, err := scanIncome(s.pool.QueryRow(ctx, query,
		in.Amount, in.Source, in.Date, in.Recurring, in.RecurringFrequency, in.Notes,
		in.ID, in.UserID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Income{}, storage.ErrRecordNotFound
		}
		return models.Income{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func (s *Storage) DeleteIncome(ctx context.Context, userID, id int64) error {
	return s.deleteOwned(ctx, "incomes", userID, id)
}

const budgetColumns = `id, user_id, category, amount, month, spent, notes, created_at`

func scanBudget(row pgx.Row) (models.Budget, error) {
	var b models.Budget
	err := row.Scan(
		&b.ID, &b.UserID, &b.Category, &b.Amount, &b.Month, &b.Spent, &b.Notes, &b.CreatedAt,
	)
	return b, err
}

func (s *Storage) Budgets(ctx context.Context, userID int64) ([]models.Budget, error) {
	const op = "storage.postgres.Budgets"

	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 ORDER BY month DESC, category;`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		budgets = append(budgets, b)
	}

	return budgets, rows.Err()
}

func (s *Storage) AddBudget(ctx context.Context, b models.Budget) (models.Budget, error) {
	const op = "storage.postgres.AddBudget"

	query := `
		INSERT INTO budgets (user_id, category, amount, month, spent, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + budgetColumns + `;
	`

	created, err := scanBudget(s.pool.QueryRow(ctx, query,
		b.UserID, b.Category, b.Amount, b.Month, b.Spent, b.Notes,
	))
	if err != nil {
		return models.Budget{}, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (s *Storage) UpdateBudget(ctx context.Context, b models.Budget) (models.Budget, error) {
	const op = "storage.postgres.UpdateBudget"

	query := `
		UPDATE budgets
		SET category = $1, amount = $2, month = $3, spent = $4, notes = $5
		WHERE id = $6 AND user_id = $7
		RETURNING ` + budgetColumns + `;
	`

	updated, err := scanBudget(s.pool.QueryRow(ctx, query,
		b.Category, b.Amount, b.Month, b.Spent, b.Notes,
		b.ID, b.UserID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Budget{}, storage.ErrRecordNotFound
		}
		return models.Budget{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func (s *Storage) DeleteBudget(ctx context.Context, userID, id int64) error {
	return s.deleteOwned(ctx, "budgets", userID, id)
}

const wishlistColumns = `id, user_id, name, price, priority, url, notes, target_date::text, saved, created_at`

func scanWishlistItem(row pgx.Row) (models.WishlistItem, error) {
	var w models.WishlistItem
	err := row.Scan(
		&w.ID, &w.UserID, &w.Name, &w.Price, &w.Priority,
		&w.URL, &w.Notes, &w.TargetDate, &w.Saved, &w.CreatedAt,
	)
	return w, err
}

func (s *Storage) WishlistItems(ctx context.Context, userID int64) ([]models.WishlistItem, error) {
	const op = "storage.postgres.WishlistItems"

	query := `SELECT ` + wishlistColumns + ` FROM wishlist WHERE user_id = $1 ORDER BY priority, price;`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := []models.WishlistItem{}
	for rows.Next() {
		w, err := scanWishlistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, w)
	}

	return items, rows.Err()
}

func (s *Storage) AddWishlistItem(ctx context.Context, w models.WishlistItem) (models.WishlistItem, error) {
	const op = "storage.postgres.AddWishlistItem"

	query := `
		INSERT INTO wishlist (user_id, name, price, priority, url, notes, target_date, saved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + wishlistColumns + `;
	`

	created, err := scanWishlistItem(s.pool.QueryRow(ctx, query,
		w.UserID, w.Name, w.Price, w.Priority, w.URL, w.Notes, w.TargetDate, w.Saved,
	))
	if err != nil {
		return models.WishlistItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (s *Storage) UpdateWishlistItem(ctx context.Context, w models.WishlistItem) (models.WishlistItem, error) {
	const op = "storage.postgres.UpdateWishlistItem"

	query := `
		UPDATE wishlist
		SET name = $1, price = $2, priority = $3, url = $4, notes = $5, target_date = $6, saved = $7
		WHERE id = $8 AND user_id = $9
		RETURNING ` + wishlistColumns + `;
	`

	updated, err := scanWishlistItem(s.pool.QueryRow(ctx, query,
		w.Name, w.Price, w.Priority, w.URL, w.Notes, w.TargetDate, w.Saved,
		w.ID, w.UserID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.WishlistItem{}, storage.ErrRecordNotFound
		}
		return models.WishlistItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func (s *Storage) DeleteWishlistItem(ctx context.Context, userID, id int64) error {
	return s.deleteOwned(ctx, "wishlist", userID, id)
}

// MonthlySummary aggregates incomes and expenses for a YYYY-MM month.
func (s *Storage) MonthlySummary(ctx context.Context, userID int64, month string) (models.MonthlyReport, error) {
	const op = "storage.postgres.MonthlySummary"

	query := `
		SELECT
			COALESCE((SELECT SUM(amount) FROM incomes
				WHERE user_id = $1 AND to_char(date, 'YYYY-MM') = $2), 0),
			COALESCE((SELECT SUM(amount) FROM expenses
				WHERE user_id = $1 AND to_char(date, 'YYYY-MM') = $2), 0);
	`

	report := models.MonthlyReport{Month: month}

	err := s.pool.QueryRow(ctx, query, userID, month).Scan(&report.TotalIncome, &report.TotalExpenses)
	if err != nil {
		return models.MonthlyReport{}, fmt.Errorf("%s: %w", op, err)
	}

	if report.TotalIncome > 0 {
		report.SavingsRate = (report.TotalIncome - report.TotalExpenses) / report.TotalIncome
	}

	return report, nil
}

// deleteOwned removes a row only when it belongs to the user, so a
// missing row and a foreign row are indistinguishable to the caller.
func (s *Storage) deleteOwned(ctx context.Context, table string, userID, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2;`, table)

	tag, err := s.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("storage.postgres.deleteOwned: %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrRecordNotFound
	}

	return nil
}
