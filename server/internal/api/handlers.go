package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/coffeetrack/coffeetrack/server/internal/model"
	"github.com/coffeetrack/coffeetrack/server/internal/store"
)

// maxErrorLen caps the error text returned with a 500.
const maxErrorLen = 200

// errMissingPlantID is returned when a required plant_id query parameter
// is absent.
var errMissingPlantID = errors.New("plant_id is required")

// --- plants -----------------------------------------------------------------

// createPlant handles POST /plants.
func (s *Server) createPlant(c *gin.Context) {
	var body plantBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	plant := body.Plant
	if err := plant.Validate(); err != nil {
		fail(c, err)
		return
	}
	s.create(c, model.PlantCollection, plant)
}

// listPlants handles GET /plants.
func (s *Server) listPlants(c *gin.Context) {
	plants, err := store.QueryAs[model.Plant](c.Request.Context(), s.store, model.PlantCollection, nil)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, plants)
}

// --- growth logs ------------------------------------------------------------

// createGrowthLog handles POST /growth-logs.
func (s *Server) createGrowthLog(c *gin.Context) {
	var body growthLogBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	entry := body.GrowthLog
	if err := entry.Validate(); err != nil {
		fail(c, err)
		return
	}
	s.create(c, model.GrowthLogCollection, entry)
}

// listGrowthLogs handles GET /growth-logs. An empty plant_id lists all logs.
func (s *Server) listGrowthLogs(c *gin.Context) {
	var filter bson.M
	if id := c.Query("plant_id"); id != "" {
		filter = bson.M{"plant_id": id}
	}
	logs, err := store.QueryAs[model.GrowthLog](c.Request.Context(), s.store, model.GrowthLogCollection, filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// --- sensor readings --------------------------------------------------------

// createSensorReading handles POST /sensor-readings.
func (s *Server) createSensorReading(c *gin.Context) {
	var body sensorReadingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	reading := body.SensorReading
	if err := reading.Validate(); err != nil {
		fail(c, err)
		return
	}
	reading.Stamp(time.Now())
	s.create(c, model.SensorReadingCollection, reading)
}

// latestSensorReadings handles GET /sensor-readings/latest.
func (s *Server) latestSensorReadings(c *gin.Context) {
	plantID, ok := requirePlantID(c)
	if !ok {
		return
	}

	limit := s.opts.ReadingsLimit
	if raw, present := c.GetQuery("limit"); present {
		n, err := strconv.Atoi(raw)
		if err != nil {
			jsonErr(c, http.StatusBadRequest, fmt.Sprintf("limit must be an integer, got %q", raw))
			return
		}
		limit = n
	}

	readings, err := s.stats.LatestReadings(c.Request.Context(), plantID, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, readings)
}

// --- stats ------------------------------------------------------------------

// plantStats handles GET /stats/plant.
func (s *Server) plantStats(c *gin.Context) {
	plantID, ok := requirePlantID(c)
	if !ok {
		return
	}
	out, err := s.stats.PlantStats(c.Request.Context(), plantID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- helpers ----------------------------------------------------------------

// create persists doc and answers with its new id.
func (s *Server) create(c *gin.Context, collection string, doc any) {
	id, err := s.store.Create(c.Request.Context(), collection, doc)
	if err != nil {
		fail(c, err)
		return
	}
	slog.Debug("api: created document", "collection", collection, "id", id,
		"request_id", c.GetString(requestIDKey))
	c.JSON(http.StatusOK, CreatedResponse{ID: id})
}

// requirePlantID reads the plant_id query parameter, answering 400 when it
// is missing or empty. It is not format-checked.
func requirePlantID(c *gin.Context) (string, bool) {
	id := c.Query("plant_id")
	if id == "" {
		jsonErr(c, http.StatusBadRequest, errMissingPlantID.Error())
		return "", false
	}
	return id, true
}

// badRequest answers a body that could not be decoded.
func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	jsonErr(c, http.StatusBadRequest, "invalid request body: "+err.Error())
}

// fail maps err to a status code and writes it.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, model.ErrInvalidIdentifier):
		jsonErr(c, http.StatusBadRequest, "Invalid plant_id format")
	default:
		jsonErr(c, http.StatusInternalServerError, truncate(err.Error(), maxErrorLen))
	}
}

func jsonErr(c *gin.Context, code int, msg string) {
	c.JSON(code, errorResponse{Error: msg})
}

// truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
