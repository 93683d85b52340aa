package devserver

import (
	"testing"

	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, users ...string) *Catalog {
	t.Helper()
	c := NewCatalog()
	for _, u := range users {
		_, err := c.Register(u, u+"@example.com", "pw-"+u)
		require.NoError(t, err)
	}
	return c
}

func addImages(t *testing.T, c *Catalog, owner string, titles ...string) []image.Record {
	t.Helper()
	out := make([]image.Record, 0, len(titles))
	for _, title := range titles {
		r, err := c.AddImage(owner, image.Record{HostingID: "h-" + title, Info: image.Info{Title: title}})
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func TestCatalog_Auth(t *testing.T) {
	c := seedCatalog(t, "ann")

	t.Run("duplicate register", func(t *testing.T) {
		_, err := c.Register("ann", "", "x")
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("missing password", func(t *testing.T) {
		_, err := c.Register("bob", "", "")
		assert.ErrorIs(t, err, image.ErrInvalidInput)
	})

	t.Run("login", func(t *testing.T) {
		acc, err := c.Login("ann", "pw-ann")
		require.NoError(t, err)
		assert.NotEmpty(t, acc.UserToken)

		name, ok := c.Authenticate(acc.UserToken)
		assert.True(t, ok)
		assert.Equal(t, "ann", name)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := c.Login("ann", "nope")
		assert.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, ok := c.Authenticate("bogus")
		assert.False(t, ok)
	})
}

func TestCatalog_List(t *testing.T) {
	c := seedCatalog(t, "ann")
	recs := addImages(t, c, "ann", "beach", "forest", "beach at night", "city", "mountain")

	page, total, filtered := c.List(ScopeOwned, "ann", 1, 2, "")
	assert.Equal(t, uint(5), total)
	assert.Nil(t, filtered)
	require.Len(t, page, 2)
	assert.Equal(t, recs[2].ID, page[0].ID)
	assert.Equal(t, recs[3].ID, page[1].ID)

	page, total, filtered = c.List(ScopeOwned, "ann", 0, 10, "BEACH")
	assert.Equal(t, uint(2), total)
	assert.Equal(t, []string{recs[0].ID, recs[2].ID}, filtered)
	assert.Len(t, page, 2)

	page, total, _ = c.List(ScopeOwned, "ann", 9, 2, "")
	assert.Empty(t, page)
	assert.Equal(t, uint(5), total)

	_, _, filtered = c.List(ScopeOwned, "ann", 0, 10, "zzz")
	assert.Equal(t, []string{}, filtered)
}

func TestCatalog_List_HugePageArguments(t *testing.T) {
	c := seedCatalog(t, "ann")
	recs := addImages(t, c, "ann", "beach", "forest", "city")
	const most = uint(1<<32 - 1)

	var page []image.Record
	var total uint
	require.NotPanics(t, func() { page, total, _ = c.List(ScopeOwned, "ann", most, most, "") })
	assert.Empty(t, page)
	assert.Equal(t, uint(3), total)

	require.NotPanics(t, func() { page, _, _ = c.List(ScopeOwned, "ann", 0, most, "") })
	require.Len(t, page, 3)
	assert.Equal(t, recs[0].ID, page[0].ID)

	require.NotPanics(t, func() { page, _, _ = c.List(ScopeOwned, "ann", 1<<31, 2, "") })
	assert.Empty(t, page)
}

func TestCatalog_ShareAndVisibility(t *testing.T) {
	c := seedCatalog(t, "ann", "bob")
	recs := addImages(t, c, "ann", "a", "b")

	_, err := c.Get("bob", recs[0].ID)
	assert.ErrorIs(t, err, image.ErrNotFound)

	require.NoError(t, c.Share("ann", []string{recs[0].ID}, []image.ShareAction{
		{Name: "bob", Action: image.ShareAdd},
		{Name: "ghost", Action: image.ShareAdd},
	}))
	_, err = c.Update("ann", []image.PartialUpdate{{ID: recs[0].ID, Info: image.InfoPatch{OpenedTo: image.Ptr([]string{"bob"})}}})
	require.NoError(t, err)

	page, total, _ := c.List(ScopeOpenedTo, "bob", 0, 10, "")
	assert.Equal(t, uint(1), total)
	require.Len(t, page, 1)
	assert.Equal(t, recs[0].ID, page[0].ID)

	_, err = c.Get("bob", recs[0].ID)
	require.NoError(t, err)

	err = c.Share("bob", []string{recs[0].ID}, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, c.Share("ann", []string{recs[0].ID}, []image.ShareAction{{Name: "bob", Action: image.ShareRemove}}))
	_, total, _ = c.List(ScopeOpenedTo, "bob", 0, 10, "")
	assert.Equal(t, uint(0), total)
}

func TestCatalog_Update(t *testing.T) {
	c := seedCatalog(t, "ann", "bob")
	recs := addImages(t, c, "ann", "a")
	_, err := c.Update("ann", []image.PartialUpdate{{ID: recs[0].ID, Info: image.InfoPatch{IsPublic: image.Ptr(true)}}})
	require.NoError(t, err)

	t.Run("owner merges fields", func(t *testing.T) {
		got, err := c.Update("ann", []image.PartialUpdate{{
			ID:   recs[0].ID,
			Info: image.InfoPatch{Tags: image.Ptr([]string{"x", "x", "y"})},
		}})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, []string{"x", "y"}, got[0].Info.Tags)
		assert.True(t, got[0].Info.IsPublic)
		assert.Equal(t, "a", got[0].Info.Title)
	})

	t.Run("viewer may like", func(t *testing.T) {
		got, err := c.Update("bob", []image.PartialUpdate{{
			ID:   recs[0].ID,
			Info: image.InfoPatch{Likes: image.Ptr([]string{"bob"})},
		}})
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, got[0].Info.Likes)
	})

	t.Run("viewer may not retag", func(t *testing.T) {
		_, err := c.Update("bob", []image.PartialUpdate{{
			ID:   recs[0].ID,
			Info: image.InfoPatch{Tags: image.Ptr([]string{"mine"})},
		}})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown image", func(t *testing.T) {
		_, err := c.Update("ann", []image.PartialUpdate{{ID: "nope", Info: image.InfoPatch{Title: image.Ptr("t")}}})
		assert.ErrorIs(t, err, image.ErrNotFound)
	})
}

func TestCatalog_Delete(t *testing.T) {
	c := seedCatalog(t, "ann", "bob")
	recs := addImages(t, c, "ann", "a", "b", "c")
	require.NoError(t, c.Share("ann", []string{recs[1].ID}, []image.ShareAction{{Name: "bob", Action: image.ShareAdd}}))

	remaining, hosting, err := c.Delete("ann", []image.SelectionEntry{image.EntryFor(recs[1]), {ID: "missing"}})
	require.NoError(t, err)
	assert.Equal(t, []string{recs[0].ID, recs[2].ID}, remaining)
	assert.Equal(t, []string{"h-b"}, hosting)

	_, total, _ := c.List(ScopeOpenedTo, "bob", 0, 10, "")
	assert.Equal(t, uint(0), total)

	_, _, err = c.Delete("bob", []image.SelectionEntry{image.EntryFor(recs[0])})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCatalog_PublicIDs(t *testing.T) {
	c := seedCatalog(t, "ann")
	assert.Equal(t, []string{}, c.PublicIDs())

	recs := addImages(t, c, "ann", "a", "b")
	_, err := c.Update("ann", []image.PartialUpdate{{ID: recs[1].ID, Info: image.InfoPatch{IsPublic: image.Ptr(true)}}})
	require.NoError(t, err)

	assert.Equal(t, []string{recs[1].ID}, c.PublicIDs())
	page, total, _ := c.List(ScopePublic, "", 0, 10, "")
	assert.Equal(t, uint(1), total)
	assert.Equal(t, recs[1].ID, page[0].ID)
}
