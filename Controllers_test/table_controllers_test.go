package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/services"
)

func tableIDs(tables []services.TableView) []string {
	ids := make([]string, 0, len(tables))
	for _, t := range tables {
		ids = append(ids, t.ID)
	}
	return ids
}

func floorCount(snap services.BrowserSnapshot, floor models.Floor) int {
	for _, f := range snap.Floors {
		if f.Floor == floor {
			return f.Count
		}
	}
	return -1
}

func TestMountBrowserGroupsTablesByFloor(t *testing.T) {
	env := setupEnv(t)

	snap := env.mountBrowser(t)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, models.FloorAll, snap.SelectedFloor)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.LoadError)
	assert.Nil(t, snap.Notification)

	// KV099 tidak dikenal, jadi tidak tampil
	assert.Equal(t, []string{"1", "2", "3", "4"}, tableIDs(snap.Tables))
	assert.Equal(t, 2, floorCount(snap, models.Floor1))
	assert.Equal(t, 1, floorCount(snap, models.Floor2))
	assert.Equal(t, 1, floorCount(snap, models.Floor3))
	assert.Equal(t, 4, floorCount(snap, models.FloorAll))

	assert.Equal(t, []string{"a.jpg", "b.jpg"}, snap.Tables[0].Images)
	assert.Equal(t, []string{}, snap.Tables[1].Images)
	assert.False(t, snap.Selection.HasSelection)
	assert.Equal(t, services.MsgNoSelectionHint, snap.Selection.Hint)
}

func TestMountBrowserUpstreamFailureShowsEmptyGrid(t *testing.T) {
	env := setupEnv(t)
	env.upstream.stub("GET /all", http.StatusInternalServerError, `{"message":"db down"}`)

	snap := env.mountBrowser(t)
	assert.Empty(t, snap.Tables)
	assert.Nil(t, snap.Notification)
	assert.Equal(t, "db down", snap.LoadError)
	assert.Equal(t, 0, floorCount(snap, models.FloorAll))
}

func TestSelectFloorFiltersAndClearsSelection(t *testing.T) {
	env := setupEnv(t)
	snap := env.mountBrowser(t)

	code, resp := env.do(t, http.MethodPut, browserPath(snap.ID, "/selection"), map[string]string{"table_id": "3"})
	require.Equal(t, http.StatusOK, code)
	detail := decode[services.TableDetail](t, resp.Data)
	require.True(t, detail.HasSelection)
	assert.Equal(t, "7", detail.Table.Number)
	assert.Equal(t, "Tầng 2", detail.FloorLabel)

	code, resp = env.do(t, http.MethodPut, browserPath(snap.ID, "/floor"), map[string]string{"floor": "Floor_1"})
	require.Equal(t, http.StatusOK, code)
	snap = decode[services.BrowserSnapshot](t, resp.Data)
	assert.Equal(t, models.Floor1, snap.SelectedFloor)
	assert.Equal(t, []string{"1", "2"}, tableIDs(snap.Tables))
	assert.False(t, snap.Selection.HasSelection)

	code, resp = env.do(t, http.MethodGet, browserPath(snap.ID, "/tables"), nil)
	require.Equal(t, http.StatusOK, code)
	visible := decode[[]models.Table](t, resp.Data)
	assert.Len(t, visible, 2)
}

func TestSelectTableOutsideCurrentFloor(t *testing.T) {
	env := setupEnv(t)
	snap := env.mountBrowser(t)

	code, _ := env.do(t, http.MethodPut, browserPath(snap.ID, "/floor"), map[string]string{"floor": "Floor_3"})
	require.Equal(t, http.StatusOK, code)

	code, resp := env.do(t, http.MethodPut, browserPath(snap.ID, "/selection"), map[string]string{"table_id": "1"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, resp.Status)
}

func TestSelectUnknownFloor(t *testing.T) {
	env := setupEnv(t)
	snap := env.mountBrowser(t)

	code, resp := env.do(t, http.MethodPut, browserPath(snap.ID, "/floor"), map[string]string{"floor": "Floor_9"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "unknown floor")

	code, _ = env.do(t, http.MethodPut, browserPath(snap.ID, "/floor"), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDeleteSelectedTable(t *testing.T) {
	env := setupEnv(t)
	snap := env.mountBrowser(t)

	code, _ := env.do(t, http.MethodPut, browserPath(snap.ID, "/selection"), map[string]string{"table_id": "2"})
	require.Equal(t, http.StatusOK, code)

	code, resp := env.do(t, http.MethodDelete, browserPath(snap.ID, "/selection"), nil)
	require.Equal(t, http.StatusOK, code)
	snap = decode[services.BrowserSnapshot](t, resp.Data)

	assert.Equal(t, []string{"1", "3", "4"}, tableIDs(snap.Tables))
	assert.Equal(t, 1, floorCount(snap, models.Floor1))
	assert.False(t, snap.Selection.HasSelection)
	require.NotNil(t, snap.Notification)
	assert.Equal(t, models.SeveritySuccess, snap.Notification.Severity)
	assert.Equal(t, services.MsgTableDeleted, snap.Notification.Message)
	assert.True(t, snap.Notification.Blocking)

	_, deleted, _ := env.upstream.snapshot()
	assert.Equal(t, []string{"2"}, deleted)

	code, resp = env.do(t, http.MethodDelete, browserPath(snap.ID, "/notification"), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, decode[services.BrowserSnapshot](t, resp.Data).Notification)
}

func TestDeleteTableByID(t *testing.T) {
	env := setupEnv(t)
	snap := env.mountBrowser(t)

	code, resp := env.do(t, http.MethodDelete, browserPath(snap.ID, "/tables/4"), nil)
	require.Equal(t, http.StatusOK, code)
	snap = decode[services.BrowserSnapshot](t, resp.Data)
	assert.Equal(t, 0, floorCount(snap, models.Floor3))
}

func TestDeleteTableUpstreamFailureKeepsState(t *testing.T) {
	env := setupEnv(t)
	snap := env.mountBrowser(t)
	env.upstream.stub("DELETE /delete", http.StatusInternalServerError, "boom")

	code, _ := env.do(t, http.MethodPut, browserPath(snap.ID, "/selection"), map[string]string{"table_id": "1"})
	require.Equal(t, http.StatusOK, code)

	code, resp := env.do(t, http.MethodDelete, browserPath(snap.ID, "/selection"), nil)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.False(t, resp.Status)

	snap = decode[services.BrowserSnapshot](t, resp.Data)
	assert.Equal(t, []string{"1", "2", "3", "4"}, tableIDs(snap.Tables))
	assert.True(t, snap.Selection.HasSelection)
	require.NotNil(t, snap.Notification)
	assert.Equal(t, models.SeverityError, snap.Notification.Severity)
	assert.Equal(t, services.MsgTableDeleteError, snap.Notification.Message)
}

func TestDeleteWithoutSelection(t *testing.T) {
	env := setupEnv(t)
	snap := env.mountBrowser(t)

	code, resp := env.do(t, http.MethodDelete, browserPath(snap.ID, "/selection"), nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, services.ErrNoSelection.Error(), resp.Message)

	_, deleted, _ := env.upstream.snapshot()
	assert.Empty(t, deleted)
}

func TestUnknownBrowserInstance(t *testing.T) {
	env := setupEnv(t)

	code, _ := env.do(t, http.MethodGet, browserPath("missing"), nil)
	assert.Equal(t, http.StatusNotFound, code)

	snap := env.mountBrowser(t)
	code, _ = env.do(t, http.MethodDelete, browserPath(snap.ID), nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, http.MethodGet, browserPath(snap.ID), nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = env.do(t, http.MethodDelete, browserPath(snap.ID), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMountBrowserSkipsMistypedRecord(t *testing.T) {
	env := setupEnv(t)
	env.upstream.mu.Lock()
	env.upstream.tables = []map[string]interface{}{
		{"maBan": 1, "soBan": "5", "soChoNgoi": 4, "hinhAnh": "", "maKhuVuc": "KV001"},
		{"maBan": 2, "soBan": "6", "soChoNgoi": "4", "hinhAnh": "", "maKhuVuc": "KV002"},
	}
	env.upstream.mu.Unlock()

	snap := env.mountBrowser(t)
	assert.Empty(t, snap.LoadError)
	assert.Equal(t, []string{"1"}, tableIDs(snap.Tables))
	assert.Equal(t, 0, floorCount(snap, models.Floor2))
}

func TestDeleteTableAcceptsNoContent(t *testing.T) {
	env := setupEnv(t)
	snap := env.mountBrowser(t)
	env.upstream.stub("DELETE /delete", http.StatusNoContent, "")

	code, resp := env.do(t, http.MethodDelete, browserPath(snap.ID, "/tables/3"), nil)
	require.Equal(t, http.StatusOK, code, resp.Message)
	snap = decode[services.BrowserSnapshot](t, resp.Data)
	assert.Equal(t, []string{"1", "2", "4"}, tableIDs(snap.Tables))
	require.NotNil(t, snap.Notification)
	assert.Equal(t, services.MsgTableDeleted, snap.Notification.Message)
}
