package domain_test

import (
	"testing"

	"github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Role
	}{
		{"patient", domain.RolePatient},
		{"Doctor", domain.RoleDoctor},
		{" admin ", domain.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseRole(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}

	t.Run("rejects unknown labels", func(t *testing.T) {
		_, err := domain.ParseRole("faculty")
		assert.ErrorIs(t, err, domain.ErrUnknownRole)
	})
}

func TestRole_StringRoundTrip(t *testing.T) {
	for _, r := range []domain.Role{domain.RolePatient, domain.RoleDoctor, domain.RoleAdmin} {
		parsed, err := domain.ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
	assert.Equal(t, "unknown", domain.Role(0).String())
}

func TestNewActor(t *testing.T) {
	id := uuid.New()

	actor, err := domain.NewActor(id, domain.RoleDoctor)
	require.NoError(t, err)
	assert.True(t, actor.Is(id))
	assert.False(t, actor.Is(uuid.New()))

	_, err = domain.NewActor(id, domain.Role(42))
	assert.ErrorIs(t, err, domain.ErrUnknownRole)
}
