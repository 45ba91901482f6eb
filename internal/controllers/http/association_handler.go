package http

import (
	"net/http"

	"storefront-service/internal/domain"

	"github.com/gin-gonic/gin"
)

const targetKey = "target"

func (h *Handler) productTarget(c *gin.Context) { h.pathTarget(c, domain.EntityProduct) }
func (h *Handler) collectionTarget(c *gin.Context) { h.pathTarget(c, domain.EntityCollection) }

func (h *Handler) pathTarget(c *gin.Context, kind domain.EntityKind) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	c.Set(targetKey, domain.EntityRef{Kind: kind, ID: id})
	c.Next()
}

func targetFrom(c *gin.Context) domain.EntityRef {
	ref, _ := c.MustGet(targetKey).(domain.EntityRef)
	return ref
}

func bindTarget(c *gin.Context) (domain.EntityRef, bool) {
	var req TargetRequest
	if !bindJSON(c, &req) {
		return domain.EntityRef{}, false
	}
	ref, err := req.ref()
	if err != nil {
		writeError(c, err)
		return domain.EntityRef{}, false
	}
	return ref, true
}

func (h *Handler) Like(c *gin.Context) {
	target, ok := bindTarget(c)
	if !ok {
		return
	}
	like, err := h.assoc.Like(c.Request.Context(), actorFrom(c), target)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toLiked(*like))
}

func (h *Handler) Unlike(c *gin.Context) {
	target, ok := bindTarget(c)
	if !ok {
		return
	}
	if err := h.assoc.Unlike(c.Request.Context(), actorFrom(c), target); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MyLikes(c *gin.Context) {
	likes, err := h.assoc.ListMyLikes(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(likes, toLiked))
}

func (h *Handler) LikesFor(c *gin.Context) {
	likes, err := h.assoc.LikesFor(c.Request.Context(), targetFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Page[AssociationResponse]{Count: likes.Count, Results: mapAll(likes.Items, toLiked)})
}

func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.assoc.ListTags(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *Handler) Tag(c *gin.Context) {
	var req TagRequest
	if !bindJSON(c, &req) {
		return
	}
	target, err := req.ref()
	if err != nil {
		writeError(c, err)
		return
	}
	item, err := h.assoc.Tag(c.Request.Context(), actorFrom(c), req.Label, target)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTagged(*item))
}

func (h *Handler) Untag(c *gin.Context) {
	var req TagRequest
	if !bindJSON(c, &req) {
		return
	}
	target, err := req.ref()
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.assoc.Untag(c.Request.Context(), actorFrom(c), req.Label, target); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) TagsFor(c *gin.Context) {
	tags, err := h.assoc.TagsFor(c.Request.Context(), targetFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(tags, toTagged))
}
