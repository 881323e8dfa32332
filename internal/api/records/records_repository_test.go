package records

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-user-records/internal/types"
)

var recordRowColumns = []string{
	"id", "seq", "first_name", "last_name", "email", "mobile", "gender", "status",
	"location", "profile_image", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*PostgresRecordRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewPostgresRecordRepo(pool, slog.Default()), pool
}

func addRecordRow(rows *pgxmock.Rows, rec types.Record) *pgxmock.Rows {
	return rows.AddRow(
		rec.ID, rec.Seq, rec.FirstName, rec.LastName, rec.Email, rec.Mobile,
		string(rec.Gender), string(rec.Status), rec.Location, rec.ProfileImage,
		rec.CreatedAt, rec.UpdatedAt,
	)
}

func TestPostgresCreate(t *testing.T) {
	ctx := context.Background()
	params := types.CreateRecordParams{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Mobile:    "+44123",
		Gender:    "F",
		Status:    "Active",
		Location:  "London",
	}

	t.Run("success", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		now := time.Now().UTC()
		want := types.Record{
			ID: uuid.New(), Seq: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
			Mobile: "+44123", Gender: types.GenderFemale, Status: types.RecordStatusActive,
			Location: "London", CreatedAt: now, UpdatedAt: now,
		}
		pool.ExpectQuery("INSERT INTO users").
			WithArgs("Ada", "Lovelace", "ada@example.com", "+44123", "F", "Active", "London", "").
			WillReturnRows(addRecordRow(pgxmock.NewRows(recordRowColumns), want))

		got, err := repo.Create(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, want, *got)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("unique violation maps to duplicate email", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery("INSERT INTO users").
			WithArgs("Ada", "Lovelace", "ada@example.com", "+44123", "F", "Active", "London", "").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", Detail: "Key (email)=(ada@example.com) already exists."})

		_, err := repo.Create(ctx, params)
		assert.ErrorIs(t, err, types.ErrDuplicateEmail)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("check violation maps to validation", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery("INSERT INTO users").
			WithArgs("Ada", "Lovelace", "ada@example.com", "+44123", "F", "Active", "London", "").
			WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "users_gender_check"})

		_, err := repo.Create(ctx, params)
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("other failures are storage errors", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery("INSERT INTO users").
			WithArgs("Ada", "Lovelace", "ada@example.com", "+44123", "F", "Active", "London", "").
			WillReturnError(errors.New("connection reset by peer"))

		_, err := repo.Create(ctx, params)
		assert.ErrorIs(t, err, types.ErrStorage)
		assert.NoError(t, pool.ExpectationsWereMet())
	})
}

func TestPostgresGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		id := uuid.New()
		pool.ExpectQuery("FROM users WHERE id = \\$1").
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(recordRowColumns))

		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("found", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		now := time.Now().UTC()
		want := types.Record{
			ID: uuid.New(), Seq: 9, FirstName: "Alan", LastName: "Turing", Email: "alan@example.com",
			Mobile: "+44999", Gender: types.GenderMale, Status: types.RecordStatusInactive,
			Location: "Manchester", ProfileImage: "a.png", CreatedAt: now, UpdatedAt: now,
		}
		pool.ExpectQuery("FROM users WHERE id = \\$1").
			WithArgs(want.ID).
			WillReturnRows(addRecordRow(pgxmock.NewRows(recordRowColumns), want))

		got, err := repo.GetByID(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, *got)
		assert.NoError(t, pool.ExpectationsWereMet())
	})
}

func TestPostgresUpdate(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	first := "Grace"
	email := "grace@example.com"

	t.Run("sets only supplied columns", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		now := time.Now().UTC()
		want := types.Record{
			ID: id, Seq: 3, FirstName: first, LastName: "Hopper", Email: email,
			Mobile: "+1", Gender: types.GenderFemale, Status: types.RecordStatusActive,
			Location: "Arlington", CreatedAt: now.Add(-time.Hour), UpdatedAt: now,
		}
		pool.ExpectQuery("UPDATE users SET first_name = \\$1, email = \\$2, updated_at = GREATEST").
			WithArgs(first, email, id).
			WillReturnRows(addRecordRow(pgxmock.NewRows(recordRowColumns), want))

		got, err := repo.Update(ctx, id, types.UpdateRecordParams{FirstName: &first, Email: &email})
		require.NoError(t, err)
		assert.Equal(t, want, *got)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("empty update still touches updated_at", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery("UPDATE users SET updated_at = GREATEST").
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(recordRowColumns))

		_, err := repo.Update(ctx, id, types.UpdateRecordParams{})
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("email taken", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery("UPDATE users SET email = \\$1").
			WithArgs(email, id).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := repo.Update(ctx, id, types.UpdateRecordParams{Email: &email})
		assert.ErrorIs(t, err, types.ErrDuplicateEmail)
		assert.NoError(t, pool.ExpectationsWereMet())
	})
}

func TestPostgresDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the deleted record", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		now := time.Now().UTC()
		want := types.Record{
			ID: uuid.New(), Seq: 4, FirstName: "Linus", LastName: "Torvalds", Email: "linus@example.com",
			Mobile: "+358", Gender: types.GenderMale, Status: types.RecordStatusActive,
			Location: "Helsinki", ProfileImage: "x.jpg", CreatedAt: now, UpdatedAt: now,
		}
		pool.ExpectQuery("DELETE FROM users WHERE id = \\$1 RETURNING").
			WithArgs(want.ID).
			WillReturnRows(addRecordRow(pgxmock.NewRows(recordRowColumns), want))

		got, err := repo.Delete(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, "x.jpg", got.ProfileImage)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		id := uuid.New()
		pool.ExpectQuery("DELETE FROM users WHERE id = \\$1 RETURNING").
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(recordRowColumns))

		_, err := repo.Delete(ctx, id)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, pool.ExpectationsWereMet())
	})
}

func TestPostgresList(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	rec := types.Record{
		ID: uuid.New(), Seq: 2, FirstName: "John", LastName: "Smith", Email: "john@example.com",
		Mobile: "+1", Gender: types.GenderMale, Status: types.RecordStatusActive,
		Location: "Lisbon", CreatedAt: now, UpdatedAt: now,
	}

	t.Run("unfiltered", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery("SELECT count\\(\\*\\) FROM users").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(11)))
		pool.ExpectQuery("ORDER BY created_at DESC, seq DESC OFFSET \\$1 LIMIT \\$2").
			WithArgs(10, 5).
			WillReturnRows(addRecordRow(pgxmock.NewRows(recordRowColumns), rec))

		records, total, err := repo.List(ctx, types.ListParams{Page: 3, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, int64(11), total)
		require.Len(t, records, 1)
		assert.Equal(t, rec.ID, records[0].ID)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("search binds the text once for every column", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery("SELECT count\\(\\*\\) FROM users WHERE strpos").
			WithArgs("john smith").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
		pool.ExpectQuery("first_name \\|\\| ' ' \\|\\| last_name.*OFFSET \\$2 LIMIT \\$3").
			WithArgs("john smith", 0, 5).
			WillReturnRows(addRecordRow(pgxmock.NewRows(recordRowColumns), rec))

		records, total, err := repo.List(ctx, types.ListParams{Page: 1, Limit: 5, Search: "john smith"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, records, 1)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("page past the end", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery("SELECT count\\(\\*\\) FROM users").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))

		records, total, err := repo.List(ctx, types.ListParams{Page: 10, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.NotNil(t, records)
		assert.Empty(t, records)
		assert.NoError(t, pool.ExpectationsWereMet(), "no page query past the end")
	})

	t.Run("overflowing page", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery("SELECT count\\(\\*\\) FROM users").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

		records, total, err := repo.List(ctx, types.ListParams{Page: 1<<62 + 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.NotNil(t, records)
		assert.Empty(t, records)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("count failure", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery("SELECT count\\(\\*\\) FROM users").
			WillReturnError(errors.New("too many connections"))

		_, _, err := repo.List(ctx, types.ListParams{Page: 1, Limit: 5})
		assert.ErrorIs(t, err, types.ErrStorage)
		assert.NoError(t, pool.ExpectationsWereMet())
	})
}

func TestPostgresListAll(t *testing.T) {
	ctx := context.Background()

	t.Run("query failure", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery("FROM users ORDER BY created_at DESC, seq DESC").
			WillReturnError(errors.New("canceling statement due to statement timeout"))

		records, err := repo.ListAll(ctx)
		assert.Nil(t, records)
		assert.ErrorIs(t, err, types.ErrStorage)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("row error mid stream", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		now := time.Now().UTC()
		rows := pgxmock.NewRows(recordRowColumns)
		for i := 0; i < 3; i++ {
			addRecordRow(rows, types.Record{
				ID: uuid.New(), Seq: int64(i), FirstName: "Row", LastName: "Row", Email: "r@example.com",
				Mobile: "1", Gender: types.GenderMale, Status: types.RecordStatusActive,
				Location: "X", CreatedAt: now, UpdatedAt: now,
			})
		}
		rows.RowError(1, errors.New("connection lost"))
		pool.ExpectQuery("FROM users ORDER BY created_at DESC, seq DESC").WillReturnRows(rows)

		records, err := repo.ListAll(ctx)
		assert.Nil(t, records)
		assert.ErrorIs(t, err, types.ErrStorage)
		assert.NoError(t, pool.ExpectationsWereMet())
	})
}
