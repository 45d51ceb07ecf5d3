package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

type TableController struct {
	Screens *services.ScreenRegistry
}

func NewTableController(screens *services.ScreenRegistry) *TableController {
	return &TableController{Screens: screens}
}

// MountBrowser -> membuat table browser baru dan memuat daftar meja.
// ?async=true mengembalikan segera dengan loading=true.
func (tc *TableController) MountBrowser(c *gin.Context) {
	wait := c.Query("async") != "true"
	browser := tc.Screens.MountBrowser(c.Request.Context(), wait)

	utils.InfoLogger.Printf("Table browser mounted: %s", browser.ID)
	utils.RespondJSON(c, http.StatusCreated, "Table browser mounted", browser.Snapshot())
}

// GetBrowser -> state lengkap browser
func (tc *TableController) GetBrowser(c *gin.Context) {
	browser, ok := tc.browser(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table browser", browser.Snapshot())
}

// GetVisibleTables -> meja sesuai filter lantai
func (tc *TableController) GetVisibleTables(c *gin.Context) {
	browser, ok := tc.browser(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", browser.VisibleTables())
}

// SelectFloor -> ganti filter lantai, pilihan meja di-reset
func (tc *TableController) SelectFloor(c *gin.Context) {
	browser, ok := tc.browser(c)
	if !ok {
		return
	}

	var body struct {
		Floor string `json:"floor" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := browser.SelectFloor(models.Floor(body.Floor)); err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Floor selected", browser.Snapshot())
}

// SelectTable -> pilih meja dari tampilan saat ini
func (tc *TableController) SelectTable(c *gin.Context) {
	browser, ok := tc.browser(c)
	if !ok {
		return
	}

	var body struct {
		TableID string `json:"table_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if _, err := browser.SelectTable(body.TableID); err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table selected", browser.Selection())
}

// GetSelection -> detail meja terpilih
func (tc *TableController) GetSelection(c *gin.Context) {
	browser, ok := tc.browser(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", browser.Selection())
}

// DeleteTable -> menghapus meja berdasarkan maBan
func (tc *TableController) DeleteTable(c *gin.Context) {
	browser, ok := tc.browser(c)
	if !ok {
		return
	}
	tc.respondDelete(c, browser, browser.DeleteTable(c.Request.Context(), c.Param("table_id")))
}

// DeleteSelectedTable -> menghapus meja yang sedang dipilih
func (tc *TableController) DeleteSelectedTable(c *gin.Context) {
	browser, ok := tc.browser(c)
	if !ok {
		return
	}
	tc.respondDelete(c, browser, browser.DeleteSelected(c.Request.Context()))
}

// DismissNotification -> tutup alert
func (tc *TableController) DismissNotification(c *gin.Context) {
	browser, ok := tc.browser(c)
	if !ok {
		return
	}
	browser.DismissNotification()
	utils.RespondJSON(c, http.StatusOK, "Notification dismissed", browser.Snapshot())
}

// UnmountBrowser -> buang state browser
func (tc *TableController) UnmountBrowser(c *gin.Context) {
	id := c.Param("browser_id")
	if err := tc.Screens.UnmountBrowser(id); err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.InfoLogger.Printf("Table browser unmounted: %s", id)
	utils.RespondJSON(c, http.StatusOK, "Table browser unmounted", gin.H{"id": id})
}

func (tc *TableController) respondDelete(c *gin.Context, browser *services.TableBrowser, err error) {
	if err != nil {
		// State tidak berubah; kirim snapshot supaya client bisa menampilkan alert
		utils.RespondErrorData(c, statusFor(err), err, browser.Snapshot())
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", browser.Snapshot())
}

func (tc *TableController) browser(c *gin.Context) (*services.TableBrowser, bool) {
	browser, err := tc.Screens.Browser(c.Param("browser_id"))
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return nil, false
	}
	return browser, true
}
