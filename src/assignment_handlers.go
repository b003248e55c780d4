package main

import (
	"net/http"

	"hms/src/types"
	"hms/src/utils"

	"github.com/gin-gonic/gin"
)

func assignmentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings/:id/candidates", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			candidates, err := utils.FindCandidateRooms(params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": candidates, "count": len(candidates)})
		}).
		PUT("/bookings/:id/room", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.AssignRoomRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := ctx.GetString("actor")
			booking, err := utils.AssignRoom(params.ID, body.RoomID, actor, body.Notes)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		DELETE("/bookings/:id/room", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := ctx.GetString("actor")
			if err := utils.UnassignRoom(params.ID, actor); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
