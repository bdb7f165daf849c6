package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkurbatov/lessonhub-api/internal/models"
)

func TestReplaceForSourceSwapsBatch(t *testing.T) {
	db, mock := newDBMock(t)
	repo := NewExternalEventRepository(db)

	start := time.Date(2026, time.January, 5, 14, 0, 0, 0, time.UTC)
	parent := "series-1"

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM external_events WHERE source_id = \$1`).
		WithArgs("src-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`INSERT INTO external_events`).
		WithArgs("ev-1", "src-1", "t-1", nil, start, start.Add(time.Hour), "standalone", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO external_events`).
		WithArgs("ev-2", "src-1", "t-1", &parent, start.Add(2*time.Hour), start.Add(3*time.Hour), "recurring instance", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceForSource(context.Background(), "src-1", []models.ExternalEvent{
		{ID: "ev-1", TeacherID: "t-1", Start: start, End: start.Add(time.Hour), Description: "standalone"},
		{ID: "ev-2", TeacherID: "t-1", ParentID: &parent, Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour), Description: "recurring instance"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceForSourceEmptiesWhenToldTo(t *testing.T) {
	db, mock := newDBMock(t)
	repo := NewExternalEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM external_events WHERE source_id = \$1`).
		WithArgs("src-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	err := repo.ReplaceForSource(context.Background(), "src-1", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
