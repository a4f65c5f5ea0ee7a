package handler

import (
	"net/http"

	"psi-tracker/internal/questionnaire"
	"psi-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// GET /api/questionarios
func ListQuestionnaires(c *gin.Context) {
	c.JSON(http.StatusOK, questionnaire.All())
}

// GET /api/questionarios/:id
func GetQuestionnaire(c *gin.Context) {
	def, err := questionnaire.Lookup(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrUnknownQuestionnaire.Message})
		return
	}
	c.JSON(http.StatusOK, def)
}
