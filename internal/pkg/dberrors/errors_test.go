package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "topic_comments_topic_id_fkey"}
	wrapped := fmt.Errorf("insert user: %w", dup)

	assert.True(t, IsDuplicateConstraintError(wrapped, "users_email_key"))
	assert.False(t, IsDuplicateConstraintError(wrapped, "users_student_id_key"))
	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(errors.New("boom")))
}
