package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kentxun/anymind/internal/client/models"
	"github.com/kentxun/anymind/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(id string) *models.Record {
	ts := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)
	return &models.Record{
		ID:         id,
		Content:    "buy milk #temp",
		CreatedAt:  ts,
		UpdatedAt:  ts,
		WeekKey:    "2024-W05",
		SystemTags: []string{"#temp"},
	}
}

func TestNew_CreatesFromMultilineInput(t *testing.T) {
	app, out := newTestApp("buy milk #temp\n\nsoon\n.\n")
	fr := app.records.(*fakeRecords)

	require.NoError(t, app.New(context.Background()))
	assert.Equal(t, "buy milk #temp\n\nsoon", fr.created)
	assert.Contains(t, out.String(), "Created new-1 #x")
}

func TestEdit(t *testing.T) {
	t.Run("replaces content", func(t *testing.T) {
		app, out := newTestApp("new text #p1\n.\n")
		fr := newFakeRecords(sampleRecord("r1"))
		app.records = fr

		require.NoError(t, app.Edit(context.Background(), []string{"r1"}))
		assert.Equal(t, "new text #p1", fr.updated["r1"])
		assert.Contains(t, out.String(), "Current text:\nbuy milk #temp")
		assert.Contains(t, out.String(), "Updated r1")
	})

	t.Run("unchanged text is not written", func(t *testing.T) {
		app, out := newTestApp("buy milk #temp\n.\n")
		fr := newFakeRecords(sampleRecord("r1"))
		app.records = fr

		require.NoError(t, app.Edit(context.Background(), []string{"r1"}))
		assert.Empty(t, fr.updated)
		assert.Contains(t, out.String(), "Unchanged")
	})

	t.Run("unknown id", func(t *testing.T) {
		app, _ := newTestApp("")
		err := app.Edit(context.Background(), []string{"nope"})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		app, _ := newTestApp("")
		assert.ErrorIs(t, app.Edit(context.Background(), nil), errUsage)
	})
}

func TestDelete(t *testing.T) {
	app, out := newTestApp("")
	fr := newFakeRecords(sampleRecord("r1"))
	app.records = fr

	require.NoError(t, app.Delete(context.Background(), []string{"r1"}))
	assert.Equal(t, []string{"r1"}, fr.deleted)
	assert.Contains(t, out.String(), "Deleted r1")

	err := app.Delete(context.Background(), []string{"r2"})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, []string{"r1"}, fr.deleted)
}

func TestShow(t *testing.T) {
	app, out := newTestApp("")
	rec := sampleRecord("r1")
	rec.SyncEnabled = true
	app.records = newFakeRecords(rec)

	require.NoError(t, app.Show(context.Background(), []string{"r1"}))
	s := out.String()
	assert.Contains(t, s, "r1")
	assert.Contains(t, s, "2024-W05")
	assert.Contains(t, s, "#temp")
	assert.Contains(t, s, string(models.SyncPending))
	assert.Contains(t, s, "\nbuy milk #temp\n")
}

func TestList_PassesQuery(t *testing.T) {
	app, out := newTestApp("")
	fr := newFakeRecords()
	fr.rows = []models.RecordSummary{{ID: "r1", Preview: "buy milk", Tags: []string{"#temp"}, SyncStatus: models.SyncDisabled}}
	app.records = fr

	require.NoError(t, app.List(context.Background(), []string{"--tags", "p1,", "Work", "--or", "--group", "2024-W05"}))
	assert.Equal(t, models.RecordQuery{
		Tags:     []string{"#p1", "#work"},
		TagMode:  models.TagFilterOr,
		Grouping: models.GroupByWeek,
		GroupKey: "2024-W05",
	}, fr.lastQ)
	assert.Contains(t, out.String(), "buy milk")
	assert.Contains(t, out.String(), string(models.SyncDisabled))

	err := app.List(context.Background(), []string{"--bogus"})
	assert.ErrorIs(t, err, errUsage)
}

func TestList_Empty(t *testing.T) {
	app, out := newTestApp("")
	require.NoError(t, app.List(context.Background(), nil))
	assert.Contains(t, out.String(), "No records")
}

func TestSearch(t *testing.T) {
	app, _ := newTestApp("")
	fr := app.records.(*fakeRecords)

	require.NoError(t, app.Search(context.Background(), []string{"buy", "mil"}))
	assert.Equal(t, "buy mil", fr.lastQ.Search)

	assert.ErrorIs(t, app.Search(context.Background(), nil), errUsage)
}

func TestGroups(t *testing.T) {
	app, out := newTestApp("")
	fr := app.records.(*fakeRecords)
	fr.groups = []models.GroupSummary{{Key: "2024-01", Count: 3}}

	require.NoError(t, app.Groups(context.Background(), nil))
	assert.Equal(t, models.GroupByWeek, fr.lastG)

	require.NoError(t, app.Groups(context.Background(), []string{"MONTH"}))
	assert.Equal(t, models.GroupByMonth, fr.lastG)
	assert.Contains(t, out.String(), "2024-01")

	assert.ErrorIs(t, app.Groups(context.Background(), []string{"year"}), errUsage)
}

func TestTags(t *testing.T) {
	app, out := newTestApp("")
	fr := app.records.(*fakeRecords)
	fr.tagRows = []models.TagSummary{{Name: "#p1", IsSystem: true, Count: 2}, {Name: "#work", Count: 1}}

	require.NoError(t, app.Tags(context.Background()))
	assert.Contains(t, out.String(), "#p1")
	assert.Contains(t, out.String(), "system")
	assert.Contains(t, out.String(), "#work")
}

func TestEnableDisable(t *testing.T) {
	rev := int64(4)
	synced := sampleRecord("synced")
	synced.ServerRev = &rev
	local := sampleRecord("local")

	app, out := newTestApp("")
	fr := newFakeRecords(synced, local)
	app.records = fr
	ctx := context.Background()

	require.NoError(t, app.Enable(ctx, []string{"local"}))
	assert.True(t, fr.toggled["local"])

	require.NoError(t, app.Disable(ctx, []string{"synced"}))
	assert.False(t, fr.toggled["synced"])
	assert.Contains(t, out.String(), "remote copy is removed on next sync")

	require.NoError(t, app.Disable(ctx, []string{"local"}))
	assert.ErrorIs(t, app.Enable(ctx, []string{"missing"}), common.ErrNotFound)
}

func TestRecordErrorsPropagate(t *testing.T) {
	app, _ := newTestApp("")
	boom := errors.New("boom")
	app.records.(*fakeRecords).err = boom

	assert.ErrorIs(t, app.Show(context.Background(), []string{"x"}), boom)
	assert.ErrorIs(t, app.List(context.Background(), nil), boom)
	assert.ErrorIs(t, app.Tags(context.Background()), boom)
}
