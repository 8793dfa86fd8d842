package fixturekit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/fixturekit/fixturekit/fake"
)

// Test entity fixtures shared across the package tests.

type User struct {
	ID        uuid.UUID
	Email     string
	Role      string
	Password  string
	CreatedAt time.Time
	Profile   *Profile
	Author    any
	Comments  []*Comment
}

type Comment struct {
	Seq  int
	Body string
}

type Profile struct {
	Bio string
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func newUser(ctx context.Context, src *fake.Source, settings any, seq int) (any, error) {
	return &User{
		ID:    uuid.New(),
		Email: fmt.Sprintf("user%d@example.com", seq),
		Role:  "generated",
	}, nil
}

func newComment(ctx context.Context, src *fake.Source, settings any, seq int) (any, error) {
	return &Comment{Seq: seq, Body: "lorem"}, nil
}

func newProfile(ctx context.Context, src *fake.Source, settings any, seq int) (any, error) {
	return &Profile{Bio: "bio"}, nil
}

func TestMakeManySequenceScenario(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	reg.MustDefine(User{}, newUser)

	reg.ResetSequences()

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	users, err := f.MakeMany(ctx, 3)
	require.NoError(t, err)
	require.Len(t, users, 3)

	for i, want := range []string{"user0@example.com", "user1@example.com", "user2@example.com"} {
		assert.Equal(t, want, users[i].(*User).Email)
	}
}

func TestSequenceIndependenceAcrossKeys(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	reg.MustDefine(User{}, newUser)
	reg.MustDefine(Comment{}, newComment)

	uf, err := reg.Factory(User{})
	require.NoError(t, err)
	cf, err := reg.Factory(Comment{})
	require.NoError(t, err)

	u0, err := uf.Make(ctx)
	require.NoError(t, err)
	c0, err := cf.Make(ctx)
	require.NoError(t, err)
	u1, err := uf.Make(ctx)
	require.NoError(t, err)

	assert.Equal(t, "user0@example.com", u0.(*User).Email)
	assert.Equal(t, 0, c0.(*Comment).Seq)
	assert.Equal(t, "user1@example.com", u1.(*User).Email)
}

func TestResetSequencesRewindsEveryKey(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	reg.MustDefine(User{}, newUser)
	reg.MustDefine(Comment{}, newComment)

	uf, _ := reg.Factory(User{})
	cf, _ := reg.Factory(Comment{})

	_, err := uf.MakeMany(ctx, 2)
	require.NoError(t, err)
	_, err = cf.Make(ctx)
	require.NoError(t, err)

	reg.ResetSequences()

	u, err := uf.Make(ctx)
	require.NoError(t, err)
	c, err := cf.Make(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user0@example.com", u.(*User).Email)
	assert.Equal(t, 0, c.(*Comment).Seq)
}

func TestHookOrdering(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	var calls []string
	logHook := func(name string) HookFunc {
		return func(ctx context.Context, entity any) error {
			calls = append(calls, name)
			return nil
		}
	}

	reg.MustDefine(User{}, newUser).
		BeforeMake(logHook("before1")).
		BeforeMake(logHook("before2")).
		AfterMake(logHook("after1")).
		AfterMake(logHook("after2"))

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	_, err = f.Make(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"before1", "before2", "after1", "after2"}, calls)
}

func TestOverridePrecedence(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	reg.MustDefine(User{}, newUser).
		State("elevated", func(ctx context.Context, entity any) (any, error) {
			entity.(*User).Role = "state"
			return entity, nil
		})

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	entity, err := f.State("elevated").Make(ctx, map[string]any{"Role": "override"})
	require.NoError(t, err)

	assert.Equal(t, "override", entity.(*User).Role)
}

func TestStateActivationOrder(t *testing.T) {
	ctx := context.Background()

	setRole := func(role string) StateFunc {
		return func(ctx context.Context, entity any) (any, error) {
			entity.(*User).Role = role
			return entity, nil
		}
	}

	tests := []struct {
		name   string
		states []string
		want   string
	}{
		{name: "admin then verified", states: []string{"admin", "verified"}, want: "verified"},
		{name: "verified then admin", states: []string{"verified", "admin"}, want: "admin"},
		{name: "duplicates re-apply", states: []string{"admin", "verified", "admin"}, want: "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t)
			reg.MustDefine(User{}, newUser).
				State("admin", setRole("admin")).
				State("verified", setRole("verified"))

			f, err := reg.Factory(User{})
			require.NoError(t, err)

			entity, err := f.States(tt.states...).Make(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entity.(*User).Role)
		})
	}
}

func TestUndefinedStateFails(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	reg.MustDefine(User{}, newUser)

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	_, err = f.State("doesNotExist").Make(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUndefinedState)
	assert.Contains(t, err.Error(), `"doesNotExist"`)
	assert.Contains(t, err.Error(), "not defined")
	assert.Contains(t, err.Error(), `"User"`)
}

func TestBuildBypassesPipeline(t *testing.T) {
	reg := newTestRegistry(t)

	generatorCalls := 0
	hookCalls := 0
	reg.MustDefine(User{}, func(ctx context.Context, src *fake.Source, settings any, seq int) (any, error) {
		generatorCalls++
		return &User{}, nil
	}).
		BeforeMake(func(ctx context.Context, entity any) error {
			hookCalls++
			return nil
		}).
		AfterMake(func(ctx context.Context, entity any) error {
			hookCalls++
			return nil
		}).
		State("admin", func(ctx context.Context, entity any) (any, error) {
			hookCalls++
			return entity, nil
		})

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	entity, err := f.State("admin").Build(map[string]any{"Email": "x"})
	require.NoError(t, err)

	user, ok := entity.(*User)
	require.True(t, ok)
	assert.Equal(t, "x", user.Email)
	assert.Zero(t, generatorCalls)
	assert.Zero(t, hookCalls)
}

func TestBuildRejectsUnknownField(t *testing.T) {
	reg := newTestRegistry(t)
	reg.MustDefine(User{}, newUser)

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	_, err = f.Build(map[string]any{"Nope": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), `"Nope"`)
}

func TestAssociationFanOut(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	reg.MustDefine(User{}, newUser).
		Association("Comments", Comment{}, 3).
		Association("Profile", Profile{})
	reg.MustDefine(Comment{}, newComment)
	reg.MustDefine(Profile{}, newProfile)

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	entity, err := f.Make(ctx)
	require.NoError(t, err)

	user := entity.(*User)
	require.Len(t, user.Comments, 3)
	for i, c := range user.Comments {
		assert.Equal(t, i, c.Seq)
	}
	require.NotNil(t, user.Profile)
	assert.Equal(t, "bio", user.Profile.Bio)
}

func TestAssociationTargetUndefined(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	reg.MustDefine(User{}, newUser).
		Association("Comments", Comment{}, 2)

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	_, err = f.Make(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUndefinedFactory)
	assert.Contains(t, err.Error(), `"Comment"`)
}

func TestMakeManyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	boom := errors.New("generator exploded")
	reg.MustDefine(User{}, func(ctx context.Context, src *fake.Source, settings any, seq int) (any, error) {
		if seq == 2 {
			return nil, boom
		}
		return &User{}, nil
	})

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	entities, err := f.MakeMany(ctx, 5)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, entities)
}

func TestMakeManyRejectsNegativeCount(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	reg.MustDefine(User{}, newUser)

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	_, err = f.MakeMany(ctx, -1)
	require.ErrorIs(t, err, ErrInvalidCount)
}

func TestUserErrorsPropagateUnmodified(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("hook failed")

	reg := newTestRegistry(t)
	afterRan := false
	reg.MustDefine(User{}, newUser).
		BeforeMake(func(ctx context.Context, entity any) error {
			return boom
		}).
		AfterMake(func(ctx context.Context, entity any) error {
			afterRan = true
			return nil
		})

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	entity, err := f.Make(ctx)
	assert.Equal(t, boom, err)
	assert.Nil(t, entity)
	assert.False(t, afterRan)
}

func TestAfterHooksObserveOverriddenFields(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	var observed string
	reg.MustDefine(User{}, newUser).
		AfterMake(func(ctx context.Context, entity any) error {
			observed = entity.(*User).Role
			return nil
		})

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	_, err = f.Make(ctx, map[string]any{"Role": "override"})
	require.NoError(t, err)
	assert.Equal(t, "override", observed)
}

func TestMapTransform(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	reg.MustDefine(User{}, newUser)

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	f.Map(func(ctx context.Context, entity any) (any, error) {
		entity.(*User).Role = "first"
		return entity, nil
	})
	// Only the last recorded transform runs.
	f.Map(func(ctx context.Context, entity any) (any, error) {
		entity.(*User).Role = "second"
		return entity, nil
	})

	entity, err := f.Make(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", entity.(*User).Role)
}

func TestSettingsReachTheGenerator(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	var got any
	reg.MustDefine(User{}, func(ctx context.Context, src *fake.Source, settings any, seq int) (any, error) {
		got = settings
		return &User{}, nil
	})

	f, err := reg.Factory(User{}, "tenant-a")
	require.NoError(t, err)

	_, err = f.Make(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", got)
}

func TestMakeWithTracer(t *testing.T) {
	ctx := context.Background()
	reg := New(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTracer(noop.NewTracerProvider().Tracer("test")),
	)
	reg.MustDefine(User{}, newUser)

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	entity, err := f.Make(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user0@example.com", entity.(*User).Email)
}

func TestMakeAs(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	reg.MustDefine(User{}, newUser)

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	user, err := MakeAs[*User](ctx, f)
	require.NoError(t, err)
	assert.Equal(t, "user0@example.com", user.Email)

	_, err = MakeAs[*Comment](ctx, f)
	require.Error(t, err)
}

func TestBuildAs(t *testing.T) {
	reg := newTestRegistry(t)
	reg.MustDefine(User{}, newUser)

	f, err := reg.Factory(User{})
	require.NoError(t, err)

	user, err := BuildAs[*User](f, map[string]any{"Email": "x@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "x@example.com", user.Email)
}
