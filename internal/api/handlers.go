package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annel0/caaluza/internal/eventbus"
	"github.com/annel0/caaluza/internal/generator"
	"github.com/annel0/caaluza/internal/mapformat"
	"github.com/annel0/caaluza/internal/storage"
	"github.com/annel0/caaluza/internal/validation"
)

func abortWithError(c *gin.Context, status int, format string, args ...interface{}) {
	c.AbortWithStatusJSON(status, mapformat.ErrorResponse{Error: fmt.Sprintf(format, args...)})
}

// fillBounds подставляет размеры поля сервера туда, где метаданные их не задают
func (rs *RestServer) fillBounds(m *mapformat.Map) {
	if m.Metadata.Width <= 0 {
		m.Metadata.Width = rs.bounds.Width
	}
	if m.Metadata.Height <= 0 {
		m.Metadata.Height = rs.bounds.Height
	}
	if m.Metadata.Depth <= 0 {
		m.Metadata.Depth = rs.bounds.Depth
	}
}

// handleValidate проверяет присланную карту
func (rs *RestServer) handleValidate(c *gin.Context) {
	var m mapformat.Map
	if err := c.ShouldBindJSON(&m); err != nil {
		abortWithError(c, http.StatusBadRequest, "malformed map: %v", err)
		return
	}
	rs.fillBounds(&m)

	res, err := rs.validator.Validate(c.Request.Context(), m)
	if err != nil {
		rs.log.Error("валидация %q: %v", m.Metadata.Name, err)
		abortWithError(c, http.StatusInternalServerError, "validation failed")
		return
	}
	if res.Errors == nil {
		res.Errors = []validation.Error{}
	}

	offending := res.Offending()
	rs.domain.observeValidation(res.Valid, len(offending))
	rs.log.Debug("валидация %q: bricks=%d valid=%v errors=%d", m.Metadata.Name, len(m.Bricks), res.Valid, len(res.Errors))

	rs.publish(c, eventbus.EventMapValidated, eventbus.MapValidated{
		Name:      m.Metadata.Name,
		Bricks:    len(m.Bricks),
		Valid:     res.Valid,
		Errors:    len(res.Errors),
		Offending: offending,
	})
	c.JSON(http.StatusOK, res)
}

// handleSaveMap создаёт или перезаписывает карту
func (rs *RestServer) handleSaveMap(c *gin.Context) {
	name := c.Param("name")
	if err := storage.ValidateName(name); err != nil {
		abortWithError(c, http.StatusBadRequest, "%v", err)
		return
	}

	var m mapformat.Map
	if err := c.ShouldBindJSON(&m); err != nil {
		abortWithError(c, http.StatusBadRequest, "malformed map: %v", err)
		return
	}
	if m.Metadata.Name == "" {
		m.Metadata.Name = name
	}
	if m.Metadata.Timestamp == "" {
		m.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	ctx := c.Request.Context()
	_, err := rs.store.Load(ctx, name)
	created := errors.Is(err, storage.ErrMapNotFound)
	if err != nil && !created {
		rs.log.Error("проверка карты %q: %v", name, err)
		abortWithError(c, http.StatusInternalServerError, "storage error")
		return
	}

	if err := rs.store.Save(ctx, name, m); err != nil {
		rs.log.Error("сохранение карты %q: %v", name, err)
		abortWithError(c, http.StatusInternalServerError, "storage error")
		return
	}
	rs.domain.mapsSaved.Inc()
	rs.log.Info("карта %q сохранена (%d кирпичей)", name, len(m.Bricks))

	rs.publish(c, eventbus.EventMapSaved, eventbus.MapSaved{
		Name:   name,
		Author: m.Metadata.Author,
		Bricks: len(m.Bricks),
	})

	if created {
		c.JSON(http.StatusCreated, mapformat.SaveResponse{MapID: name, Message: "Map created successfully"})
		return
	}
	c.JSON(http.StatusOK, mapformat.SaveResponse{
		MapID:   name,
		Message: fmt.Sprintf("Map with id %s updated successfully", name),
	})
}

// handleLoadMap возвращает сохранённую карту
func (rs *RestServer) handleLoadMap(c *gin.Context) {
	name := c.Param("name")
	m, err := rs.store.Load(c.Request.Context(), name)
	switch {
	case errors.Is(err, storage.ErrMapNotFound), errors.Is(err, storage.ErrInvalidName):
		abortWithError(c, http.StatusNotFound, "Map with id %s not found", name)
		return
	case err != nil:
		rs.log.Error("загрузка карты %q: %v", name, err)
		abortWithError(c, http.StatusInternalServerError, "storage error")
		return
	}
	c.JSON(http.StatusOK, mapformat.LoadResponse{MapID: name, Map: m})
}

// handleDeleteMap удаляет карту
func (rs *RestServer) handleDeleteMap(c *gin.Context) {
	name := c.Param("name")
	err := rs.store.Delete(c.Request.Context(), name)
	switch {
	case errors.Is(err, storage.ErrMapNotFound), errors.Is(err, storage.ErrInvalidName):
		abortWithError(c, http.StatusNotFound, "Map with id %s not found", name)
		return
	case err != nil:
		rs.log.Error("удаление карты %q: %v", name, err)
		abortWithError(c, http.StatusInternalServerError, "storage error")
		return
	}
	rs.domain.mapsDeleted.Inc()
	rs.log.Info("карта %q удалена", name)

	rs.publish(c, eventbus.EventMapDeleted, eventbus.MapDeleted{Name: name})
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Map with id %s deleted successfully", name)})
}

// handleListMaps возвращает имена всех карт
func (rs *RestServer) handleListMaps(c *gin.Context) {
	names, err := rs.store.List(c.Request.Context())
	if err != nil {
		rs.log.Error("список карт: %v", err)
		abortWithError(c, http.StatusInternalServerError, "storage error")
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, mapformat.ListResponse{Maps: names})
}

// handleGenerate собирает случайную карту
func (rs *RestServer) handleGenerate(c *gin.Context) {
	var opts generator.Options
	var err error
	if opts.Pieces, err = intQuery(c, "nrpieces"); err != nil {
		abortWithError(c, http.StatusBadRequest, "%v", err)
		return
	}
	if opts.MaxHeight, err = intQuery(c, "maxheight"); err != nil {
		abortWithError(c, http.StatusBadRequest, "%v", err)
		return
	}
	if raw := c.Query("seed"); raw != "" {
		if opts.Seed, err = strconv.ParseInt(raw, 10, 64); err != nil {
			abortWithError(c, http.StatusBadRequest, "seed: %q is not an integer", raw)
			return
		}
	}
	opts.Name = c.Query("name")
	opts = opts.Clamp()

	m := rs.generator.Generate(opts)
	rs.domain.mapsGenerated.Inc()
	rs.log.Debug("сгенерирована карта: pieces=%d height=%d seed=%d bricks=%d", opts.Pieces, opts.MaxHeight, opts.Seed, len(m.Bricks))

	rs.publish(c, eventbus.EventMapGenerated, eventbus.MapGenerated{
		Pieces:    opts.Pieces,
		MaxHeight: opts.MaxHeight,
		Seed:      opts.Seed,
		Bricks:    len(m.Bricks),
	})
	c.JSON(http.StatusOK, mapformat.GenerateResponse{Map: m})
}

// intQuery читает целый параметр запроса; отсутствие даёт 0
func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, raw)
	}
	return v, nil
}

// handleHealth сообщает состояние процесса
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, rs.metrics.Health())
}
