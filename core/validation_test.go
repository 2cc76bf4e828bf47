package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateColumns(t *testing.T) {
	header := []string{"Requirement ID", "Description", "Status"}

	t.Run("valid mapping", func(t *testing.T) {
		err := ValidateColumns("child", header, ColumnMapping{IDColumn: "Requirement ID", TextColumn: "Description"})
		assert.NoError(t, err)
	})

	t.Run("header cells are trimmed", func(t *testing.T) {
		err := ValidateColumns("child", []string{" Requirement ID ", "Description"}, ColumnMapping{IDColumn: "Requirement ID", TextColumn: "Description"})
		assert.NoError(t, err)
	})

	t.Run("empty mapping", func(t *testing.T) {
		err := ValidateColumns("child", header, ColumnMapping{IDColumn: "", TextColumn: "Description"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInputShape))
	})

	t.Run("same column for id and text", func(t *testing.T) {
		err := ValidateColumns("parent", header, ColumnMapping{IDColumn: "Description", TextColumn: "Description"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInputShape))
		assert.Contains(t, err.Error(), "same column")
	})

	t.Run("missing column carries expected and actual names", func(t *testing.T) {
		err := ValidateColumns("parent", header, ColumnMapping{IDColumn: "Requirement ID", TextColumn: "User Requirement"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInputShape))

		var shapeErr *InputShapeError
		require.True(t, errors.As(err, &shapeErr))
		assert.Equal(t, "parent", shapeErr.Table)
		assert.Equal(t, []string{"Requirement ID", "User Requirement"}, shapeErr.Expected)
		assert.Equal(t, header, shapeErr.Actual)
	})

	t.Run("typo gets a suggestion", func(t *testing.T) {
		err := ValidateColumns("child", header, ColumnMapping{IDColumn: "Requirment ID", TextColumn: "Description"})
		require.Error(t, err)

		var shapeErr *InputShapeError
		require.True(t, errors.As(err, &shapeErr))
		assert.Equal(t, "Requirement ID", shapeErr.Suggestions["Requirment ID"])
		assert.Contains(t, err.Error(), "did you mean")
	})

	t.Run("unrelated name gets no suggestion", func(t *testing.T) {
		err := ValidateColumns("child", header, ColumnMapping{IDColumn: "zzz", TextColumn: "Description"})
		require.Error(t, err)

		var shapeErr *InputShapeError
		require.True(t, errors.As(err, &shapeErr))
		assert.Empty(t, shapeErr.Suggestions)
	})
}

func TestConfigError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := NewConfigError("lexicon_path", "malformed lexicon file", cause)

	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "lexicon_path")
	assert.Contains(t, err.Error(), "malformed lexicon file")

	wrapped := NewConfigError("top_k", "must be at least 1", nil)
	assert.True(t, errors.Is(wrapped, ErrInvalidConfig))
	assert.NotContains(t, wrapped.Error(), "<nil>")
}
