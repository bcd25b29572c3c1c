package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reciclamais/waste-service/pkg/util/errorutil"
	"github.com/reciclamais/waste-service/pkg/util/validation"
)

type signup struct {
	Name  string  `json:"name" validate:"required,min=3,max=50"`
	Email string  `json:"email" validate:"required,email"`
	Score float64 `json:"score" validate:"gt=0"`
}

func TestStructValid(t *testing.T) {
	err := validation.Struct(signup{Name: "Maria", Email: "maria@example.com", Score: 1}, "invalid signup")
	assert.NoError(t, err)
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := validation.Struct(signup{Name: "Al", Email: "nope"}, "invalid signup")
	require.Error(t, err)

	var de *errorutil.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, errorutil.CodeValidation, de.Code)
	assert.Equal(t, "invalid signup", de.Message)
	assert.Equal(t, "min=3", de.Details["name"])
	assert.Equal(t, "email", de.Details["email"])
	assert.Equal(t, "gt=0", de.Details["score"])
}
