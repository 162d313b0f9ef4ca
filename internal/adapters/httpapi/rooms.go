package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nvoss/codeshare/internal/app"
)

// createRoom hands out a fresh room id. The room itself is created
// lazily on the first websocket join.
func createRoom(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"roomId": uuid.NewString()})
}

// listRooms reports the live rooms and their rosters.
func listRooms(rooms *app.RoomManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": rooms.List()})
	}
}
