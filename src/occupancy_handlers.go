package main

import (
	"net/http"
	"time"

	"hms/src/types"
	"hms/src/utils"

	"github.com/gin-gonic/gin"
)

// Check-in and check-out are keyed by room, not booking: the service picks
// the eligible booking deterministically so front-desk clients cannot race
// each other into ambiguity.
func occupancyHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/rooms/:id/check-in", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := ctx.GetString("actor")
			booking, err := utils.CheckInRoom(params.ID, actor, time.Now())
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/rooms/:id/check-out", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := ctx.GetString("actor")
			booking, err := utils.CheckOutRoom(params.ID, actor, time.Now())
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return g
}
