package cli

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/pkg/config"
)

func withFlags(t *testing.T, as, role string) {
	t.Helper()
	actorFlag, roleFlag = as, role
	t.Cleanup(func() { actorFlag, roleFlag = "", "" })
}

func TestCurrentActor(t *testing.T) {
	doctor := sharedDomain.Actor{ID: uuid.New(), Role: sharedDomain.RoleDoctor}
	SetApp(&App{DefaultActor: doctor})
	t.Cleanup(func() { SetApp(nil) })

	t.Run("default identity", func(t *testing.T) {
		withFlags(t, "", "")
		actor, err := CurrentActor()
		require.NoError(t, err)
		assert.Equal(t, doctor, actor)
	})

	t.Run("flags override", func(t *testing.T) {
		other := uuid.New()
		withFlags(t, other.String(), "admin")
		actor, err := CurrentActor()
		require.NoError(t, err)
		assert.Equal(t, other, actor.ID)
		assert.Equal(t, sharedDomain.RoleAdmin, actor.Role)
	})

	t.Run("bad flags", func(t *testing.T) {
		withFlags(t, "nope", "")
		_, err := CurrentActor()
		assert.ErrorContains(t, err, "invalid --as")

		withFlags(t, "", "nurse")
		_, err = CurrentActor()
		assert.ErrorIs(t, err, sharedDomain.ErrUnknownRole)
	})

	t.Run("no identity", func(t *testing.T) {
		withFlags(t, "", "")
		SetApp(&App{})
		_, err := CurrentActor()
		assert.ErrorContains(t, err, "CLINICQ_ACTOR_ID")
	})
}

func TestCurrentActor_NoApp(t *testing.T) {
	SetApp(nil)
	_, err := CurrentActor()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestConfiguredActor(t *testing.T) {
	id := uuid.New()

	actor, err := ConfiguredActor(&config.Config{ActorID: id.String(), ActorRole: "doctor"})
	require.NoError(t, err)
	assert.Equal(t, id, actor.ID)
	assert.Equal(t, sharedDomain.RoleDoctor, actor.Role)

	actor, err = ConfiguredActor(&config.Config{ActorRole: "patient"})
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, actor.ID)

	_, err = ConfiguredActor(&config.Config{ActorRole: "patient", ActorID: "x"})
	assert.ErrorContains(t, err, "CLINICQ_ACTOR_ID")

	_, err = ConfiguredActor(&config.Config{ActorRole: "root"})
	assert.ErrorContains(t, err, "CLINICQ_ACTOR_ROLE")
}
