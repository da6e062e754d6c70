package palette

import (
	"testing"

	biostream "github.com/bigyambat/BioStream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Len(t, c.Templates(), 15)
	assert.Equal(t, []string{
		CategoryDataSources,
		CategoryTransformations,
		CategoryRScripts,
		CategoryVisualizations,
		CategoryControlFlow,
	}, c.Categories())

	for _, nt := range biostream.NodeTypes {
		_, ok := c.ForType(nt)
		assert.True(t, ok, "no template for %s", nt)
	}

	// Params are already JSON-shaped.
	for _, tpl := range c.Templates() {
		norm, err := biostream.NormalizeParams(tpl.DefaultParams)
		require.NoError(t, err)
		assert.Equal(t, tpl.DefaultParams, norm, tpl.ID)
	}
}

func TestGetAndForType(t *testing.T) {
	c := Default()

	tpl, ok := c.Get("ml-model")
	require.True(t, ok)
	assert.Equal(t, biostream.NodeRScript, tpl.Type)
	assert.Equal(t, 0.2, tpl.DefaultParams["test_size"])

	_, ok = c.Get("nope")
	assert.False(t, ok)

	first, ok := c.ForType(biostream.NodeTransform)
	require.True(t, ok)
	assert.Equal(t, "filter-data", first.ID)

	_, ok = c.ForType("spreadsheet")
	assert.False(t, ok)
}

func TestTemplatesAreCopies(t *testing.T) {
	c := Default()
	tpl, _ := c.Get("csv-reader")
	tpl.DefaultParams["file_path"] = "changed.csv"

	again, _ := c.Get("csv-reader")
	assert.Equal(t, "input.csv", again.DefaultParams["file_path"])
}

func TestFilter(t *testing.T) {
	c := Default()

	t.Run("search matches label and description", func(t *testing.T) {
		got := c.Filter("PLOT", "")
		ids := templateIDs(got)
		assert.Equal(t, []string{"scatter-plot", "line-plot"}, ids)

		got = c.Filter("sql", AllCategories)
		assert.Equal(t, []string{"db-query"}, templateIDs(got))
	})

	t.Run("category restricts", func(t *testing.T) {
		got := c.Filter("", CategoryControlFlow)
		assert.Equal(t, []string{"conditional-branch", "loop", "parallel-execution"}, templateIDs(got))

		got = c.Filter("data", CategoryVisualizations)
		assert.Empty(t, got)
	})

	t.Run("no filter returns everything", func(t *testing.T) {
		assert.Len(t, c.Filter("  ", ""), 15)
	})
}

func TestGrouped(t *testing.T) {
	groups := Default().Grouped()
	require.Len(t, groups, 5)
	total := 0
	for _, g := range groups {
		assert.Len(t, g.Templates, 3, g.Category)
		total += len(g.Templates)
	}
	assert.Equal(t, 15, total)
}

func TestNewIgnoresDuplicateIDs(t *testing.T) {
	c := New([]Template{
		{ID: "a", Type: biostream.NodeControl, Label: "first"},
		{ID: "a", Type: biostream.NodeControl, Label: "second"},
	})
	tpl, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first", tpl.Label)
	assert.Len(t, c.Templates(), 1)
}

func TestPayload(t *testing.T) {
	tpl, _ := Default().Get("group-by")

	p, err := DecodePayload(EncodePayload(tpl))
	require.NoError(t, err)
	assert.Equal(t, Payload{TemplateID: "group-by", Type: biostream.NodeTransform}, p)

	p, err = DecodePayload([]byte("visualization"))
	require.NoError(t, err)
	assert.Equal(t, Payload{Type: biostream.NodeVisualization}, p)

	for _, bad := range []string{"", "   ", "{", `{"foo": 1}`, `["x"]`, `{"type": 3}`} {
		_, err := DecodePayload([]byte(bad))
		assert.ErrorIs(t, err, ErrBadPayload, "payload %q", bad)
	}
}

func templateIDs(ts []Template) []string {
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
	}
	return ids
}

func TestIconFor(t *testing.T) {
	assert.Equal(t, "📁", IconFor(biostream.NodeDataSource))
	assert.Equal(t, "🎮", IconFor(biostream.NodeControl))
	assert.Equal(t, GenericIcon, IconFor("spreadsheet"))
}
