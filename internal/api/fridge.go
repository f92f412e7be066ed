package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"fridgechef/internal/inventory"
	"fridgechef/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// AddIngredientRequest is the body of POST /api/fridge
type AddIngredientRequest struct {
	Ingredient string           `json:"ingredient" binding:"required"`
	Quantity   *QuantityRequest `json:"quantity" binding:"required"`
}

// QuantityRequest is the quantity part of an add request
type QuantityRequest struct {
	Value *float64 `json:"value" binding:"required"`
	Unit  string   `json:"unit" binding:"required"`
}

// RemoveIngredientRequest is the body of DELETE /api/fridge
type RemoveIngredientRequest struct {
	Ingredient string `json:"ingredient" binding:"required"`
}

// snapshotMessage is pushed to websocket subscribers
type snapshotMessage struct {
	Fridge []models.IngredientRecord `json:"fridge"`
}

// GetFridge lists the fridge, optionally filtered by ?search=
func (a *FridgeAPI) GetFridge(c *gin.Context) {
	items, err := a.inventory.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// AddIngredient puts a new ingredient in the fridge and returns the snapshot
func (a *FridgeAPI) AddIngredient(c *gin.Context) {
	var req AddIngredientRequest
	if err := bindStrict(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Writes and their broadcasts are serialized so subscribers see
	// snapshots in commit order.
	a.writeMu.Lock()
	m, err := a.inventory.Add(c.Request.Context(), inventory.AddInput{
		Name:  req.Ingredient,
		Value: req.Quantity.Value,
		Unit:  req.Quantity.Unit,
	})
	if err == nil {
		a.publish(m.Fridge)
	}
	a.writeMu.Unlock()

	if errors.Is(err, inventory.ErrSnapshotUnavailable) {
		a.log.Error("fridge snapshot unavailable after add", zap.String("name", m.Item.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Added %s but could not reload the fridge", m.Item.Name),
			"item":  m.Item,
		})
		return
	}
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Added %s to the fridge", m.Item.Name),
		"item":    m.Item,
		"fridge":  m.Fridge,
	})
}

// RemoveIngredient deletes an ingredient by name and returns the snapshot
func (a *FridgeAPI) RemoveIngredient(c *gin.Context) {
	var req RemoveIngredientRequest
	if err := bindStrict(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a.writeMu.Lock()
	m, err := a.inventory.Remove(c.Request.Context(), req.Ingredient)
	if err == nil {
		a.publish(m.Fridge)
	}
	a.writeMu.Unlock()

	if errors.Is(err, inventory.ErrSnapshotUnavailable) {
		name := models.NormalizeName(req.Ingredient)
		a.log.Error("fridge snapshot unavailable after remove", zap.String("name", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Removed %s but could not reload the fridge", name),
		})
		return
	}
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Removed %s from the fridge", models.NormalizeName(req.Ingredient)),
		"fridge":  m.Fridge,
	})
}

// FridgeFeed streams the fridge snapshot over a websocket
func (a *FridgeAPI) FridgeFeed(c *gin.Context) {
	ctx := c.Request.Context()
	err := a.hub.Serve(c.Writer, c.Request, func() (interface{}, error) {
		items, err := a.inventory.List(ctx, "")
		if err != nil {
			return nil, err
		}
		return snapshotMessage{Fridge: items}, nil
	})
	if err != nil {
		a.log.Warn("websocket subscription failed", zap.Error(err))
	}
}

// GetRecipes suggests recipes for the current fridge contents
func (a *FridgeAPI) GetRecipes(c *gin.Context) {
	result, err := a.recipes.Suggest(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ParseReceipt extracts the text of the uploaded "receipt" file
func (a *FridgeAPI) ParseReceipt(c *gin.Context) {
	if a.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.maxUploadSize)
	}

	if a.maxUploadSize > 0 && c.Request.ContentLength > a.maxUploadSize {
		a.uploadTooLarge(c)
		return
	}

	header, err := c.FormFile("receipt")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.uploadTooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	file, err := header.Open()
	if err != nil {
		a.respondError(c, err)
		return
	}
	defer file.Close()

	text, err := a.receipts.Parse(c.Request.Context(), header.Filename, file)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (a *FridgeAPI) uploadTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": fmt.Sprintf("Receipt exceeds the %d byte upload limit", a.maxUploadSize),
	})
}

func (a *FridgeAPI) publish(fridge []models.IngredientRecord) {
	if a.metrics != nil {
		a.metrics.SetFridgeSize(len(fridge))
	}
	a.hub.Broadcast(snapshotMessage{Fridge: fridge})
}

// respondError maps domain errors onto status codes. Unclassified errors are
// logged and hidden behind a generic message.
func (a *FridgeAPI) respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrDependency):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		a.log.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindStrict decodes a JSON body, rejecting unknown fields, then runs the
// binding validator.
func bindStrict(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}
