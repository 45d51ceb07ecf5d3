package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

type ActivityController struct {
	Recorder *services.ActivityRecorder
}

func NewActivityController(recorder *services.ActivityRecorder) *ActivityController {
	return &ActivityController{Recorder: recorder}
}

// GetRecentActivity -> log aktivitas terbaru, ?limit=
func (ac *ActivityController) GetRecentActivity(c *gin.Context) {
	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}
		if n > maxActivityLimit {
			n = maxActivityLimit
		}
		limit = n
	}

	logs, err := ac.Recorder.Recent(limit)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Recent activity", logs)
}
