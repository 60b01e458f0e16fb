package conversation

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/transcendencex/txchat/internal/errors"
)

func newTestRegistry() *Registry {
	return NewRegistry(nil, "", 0, nil)
}

func TestRegistry_Create(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r := NewRegistry(nil, "", 0, func() time.Time { return fixed })

	first := r.Create("Hello!")
	second := r.Create("Hello again!")

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, r.Len())

	list := r.List()
	assert.Equal(t, second, list[0].ID, "newest first")
	assert.Equal(t, first, list[1].ID)
	assert.Equal(t, DefaultTitle, list[0].Title)
	assert.Equal(t, "Hello again!", list[0].Preview)
	assert.Equal(t, fixed, list[0].CreatedAt)

	active, ok := r.ActiveID()
	require.True(t, ok)
	assert.Equal(t, second, active)
}

func TestRegistry_CustomTitle(t *testing.T) {
	r := NewRegistry(nil, "Untitled", 0, nil)
	id := r.Create("x")

	conv, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Untitled", conv.Title)
}

func TestRegistry_Select(t *testing.T) {
	r := newTestRegistry()
	first := r.Create("one")
	r.Create("two")

	conv, err := r.Select(first)
	require.NoError(t, err)
	assert.Equal(t, "one", conv.Preview)

	active, _ := r.ActiveID()
	assert.Equal(t, first, active)
}

func TestRegistry_SelectUnknown(t *testing.T) {
	r := newTestRegistry()
	id := r.Create("one")

	_, err := r.Select(snowflake.ID(12345))
	require.Error(t, err)
	assert.True(t, apierrors.IsNotFoundError(err))

	active, ok := r.ActiveID()
	assert.True(t, ok)
	assert.Equal(t, id, active, "active pointer unchanged")
}

func TestRegistry_Delete(t *testing.T) {
	r := newTestRegistry()
	first := r.Create("one")
	second := r.Create("two")

	found, wasActive := r.Delete(first)
	assert.True(t, found)
	assert.False(t, wasActive)

	found, wasActive = r.Delete(second)
	assert.True(t, found)
	assert.True(t, wasActive)

	_, ok := r.ActiveID()
	assert.False(t, ok)
	_, ok = r.Active()
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_DeleteIdempotent(t *testing.T) {
	r := newTestRegistry()
	id := r.Create("one")
	keep := r.Create("two")

	r.Delete(id)
	before := r.List()

	found, wasActive := r.Delete(id)
	assert.False(t, found)
	assert.False(t, wasActive)
	assert.Equal(t, before, r.List())

	active, _ := r.ActiveID()
	assert.Equal(t, keep, active)
}

func TestRegistry_DeleteDoesNotAliasList(t *testing.T) {
	r := newTestRegistry()
	a := r.Create("a")
	r.Create("b")
	r.Create("c")

	list := r.List()
	r.Delete(a)

	assert.Len(t, list, 3)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_UpdatePreview(t *testing.T) {
	r := NewRegistry(nil, "", 10, nil)
	id := r.Create("start")

	r.UpdatePreview(id, "short")
	conv, _ := r.Get(id)
	assert.Equal(t, "short", conv.Preview)

	r.UpdatePreview(id, "this is longer than ten")
	conv, _ = r.Get(id)
	assert.Equal(t, "this is lo...", conv.Preview)

	// unknown id is a no-op
	r.UpdatePreview(snowflake.ID(1), "ignored")
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ListIsACopy(t *testing.T) {
	r := newTestRegistry()
	id := r.Create("one")

	list := r.List()
	list[0].Preview = "mutated"

	conv, _ := r.Get(id)
	assert.Equal(t, "one", conv.Preview)
}
